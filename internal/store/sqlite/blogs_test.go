package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/flashblog/flashblog-server/internal/domain"
	"github.com/flashblog/flashblog-server/internal/store"
)

func TestCreateAndGetBlog(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	makeTestUser(t, s, "user-1")
	b := makeTestBlog(t, s, "blog-1", "user-1", "hello-world")

	got, err := s.GetBlog(ctx, "blog-1")
	if err != nil {
		t.Fatalf("GetBlog: %v", err)
	}
	if got.Title != b.Title || got.Slug != "hello-world" || !got.Published {
		t.Errorf("got title=%q slug=%q published=%v", got.Title, got.Slug, got.Published)
	}
	if got.PublishedAt == nil {
		t.Error("PublishedAt should round-trip")
	}

	bySlug, err := s.GetBlogBySlug(ctx, "hello-world")
	if err != nil {
		t.Fatalf("GetBlogBySlug: %v", err)
	}
	if bySlug.ID != "blog-1" {
		t.Errorf("GetBlogBySlug: got %s", bySlug.ID)
	}
}

func TestCreateBlog_DuplicateSlug(t *testing.T) {
	s := newTestStore(t)

	makeTestUser(t, s, "user-1")
	makeTestBlog(t, s, "blog-1", "user-1", "same-slug")

	now := time.Now()
	dup := &domain.Blog{Title: "Other", Content: "c", Slug: "same-slug", AuthorID: "user-1"}
	dup.ID = "blog-2"
	dup.CreatedAt = now
	dup.UpdatedAt = now

	err := s.CreateBlog(context.Background(), dup, nil)
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestCreateBlog_TagsAtomic(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	makeTestUser(t, s, "user-1")
	makeTestTag(t, s, "tag-a", "Go", "go")

	now := time.Now()
	b := &domain.Blog{Title: "Tagged", Content: "c", Slug: "tagged", AuthorID: "user-1"}
	b.ID = "blog-1"
	b.CreatedAt = now
	b.UpdatedAt = now

	if err := s.CreateBlog(ctx, b, []string{"tag-a"}); err != nil {
		t.Fatalf("CreateBlog: %v", err)
	}

	tags, err := s.GetBlogTags(ctx, "blog-1")
	if err != nil {
		t.Fatalf("GetBlogTags: %v", err)
	}
	if len(tags) != 1 || tags[0].ID != "tag-a" {
		t.Fatalf("expected tag-a attached, got %v", tags)
	}
	assertUsage(t, s, "tag-a", 1)

	// A failing tag write rolls the post back with it.
	b2 := &domain.Blog{Title: "Broken", Content: "c", Slug: "broken", AuthorID: "user-1"}
	b2.ID = "blog-2"
	b2.CreatedAt = now
	b2.UpdatedAt = now
	if err := s.CreateBlog(ctx, b2, []string{"tag-missing"}); err == nil {
		t.Fatal("expected an error for an unknown tag ID")
	}
	if _, err := s.GetBlog(ctx, "blog-2"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("post should not survive a failed tag write, got %v", err)
	}
}

func TestSlugExists(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	makeTestUser(t, s, "user-1")
	makeTestBlog(t, s, "blog-1", "user-1", "taken")

	exists, err := s.SlugExists(ctx, "taken", "")
	if err != nil {
		t.Fatalf("SlugExists: %v", err)
	}
	if !exists {
		t.Error("expected taken slug to exist")
	}

	// A post's own slug doesn't count against it.
	exists, err = s.SlugExists(ctx, "taken", "blog-1")
	if err != nil {
		t.Fatalf("SlugExists: %v", err)
	}
	if exists {
		t.Error("expected own slug to be excluded")
	}

	exists, err = s.SlugExists(ctx, "free", "")
	if err != nil {
		t.Fatalf("SlugExists: %v", err)
	}
	if exists {
		t.Error("expected free slug to be available")
	}
}

func TestDeleteBlog_ReleasesTags(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	makeTestUser(t, s, "user-1")
	makeTestBlog(t, s, "blog-1", "user-1", "post-one")
	makeTestTag(t, s, "tag-a", "Go", "go")

	if err := s.SetBlogTags(ctx, "blog-1", []string{"tag-a"}); err != nil {
		t.Fatalf("SetBlogTags: %v", err)
	}
	assertUsage(t, s, "tag-a", 1)

	if err := s.DeleteBlog(ctx, "blog-1"); err != nil {
		t.Fatalf("DeleteBlog: %v", err)
	}
	assertUsage(t, s, "tag-a", 0)

	if _, err := s.GetBlog(ctx, "blog-1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteBlog_RemovesLikes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	makeTestUser(t, s, "user-1")
	makeTestBlog(t, s, "blog-1", "user-1", "post-one")
	makeTestComment(t, s, "comment-1", "blog-1", "user-1", "", time.Now())

	// Likes carry no foreign key to their target, so the blog delete has
	// to sweep them itself.
	if err := s.CreateLike(ctx, makeTestLike("like-1", "user-1", domain.LikeTargetBlog, "blog-1")); err != nil {
		t.Fatalf("CreateLike blog: %v", err)
	}
	if err := s.CreateLike(ctx, makeTestLike("like-2", "user-1", domain.LikeTargetComment, "comment-1")); err != nil {
		t.Fatalf("CreateLike comment: %v", err)
	}

	if err := s.DeleteBlog(ctx, "blog-1"); err != nil {
		t.Fatalf("DeleteBlog: %v", err)
	}

	for _, check := range []struct {
		target domain.LikeTarget
		id     string
	}{
		{domain.LikeTargetBlog, "blog-1"},
		{domain.LikeTargetComment, "comment-1"},
	} {
		liked, err := s.HasLiked(ctx, "user-1", check.target, check.id)
		if err != nil {
			t.Fatalf("HasLiked %s: %v", check.id, err)
		}
		if liked {
			t.Errorf("like on %s should be removed with the post", check.id)
		}
	}
}

func TestListBlogs_Filters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	makeTestUser(t, s, "user-1")
	makeTestUser(t, s, "user-2")
	makeTestBlog(t, s, "blog-1", "user-1", "post-one")
	makeTestBlog(t, s, "blog-2", "user-2", "post-two")

	// A draft by user-1.
	now := time.Now()
	draft := &domain.Blog{Title: "Draft", Content: "wip", Slug: "draft", AuthorID: "user-1"}
	draft.ID = "blog-3"
	draft.CreatedAt = now
	draft.UpdatedAt = now
	if err := s.CreateBlog(ctx, draft, nil); err != nil {
		t.Fatalf("CreateBlog: %v", err)
	}

	params := store.PaginationParams{Page: 1, PerPage: 10}

	// Public listing hides drafts.
	page, err := s.ListBlogs(ctx, store.BlogFilter{PublishedOnly: true}, params)
	if err != nil {
		t.Fatalf("ListBlogs: %v", err)
	}
	if page.Total != 2 {
		t.Errorf("published total: got %d, want 2", page.Total)
	}

	// Author's own listing includes their drafts.
	page, err = s.ListBlogs(ctx, store.BlogFilter{PublishedOnly: true, IncludeDraftsBy: "user-1"}, params)
	if err != nil {
		t.Fatalf("ListBlogs: %v", err)
	}
	if page.Total != 3 {
		t.Errorf("total with own drafts: got %d, want 3", page.Total)
	}

	// Filter by author.
	page, err = s.ListBlogs(ctx, store.BlogFilter{AuthorID: "user-2"}, params)
	if err != nil {
		t.Fatalf("ListBlogs: %v", err)
	}
	if page.Total != 1 || page.Items[0].ID != "blog-2" {
		t.Errorf("author filter: got total=%d", page.Total)
	}
}

func TestListBlogs_TagFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	makeTestUser(t, s, "user-1")
	makeTestBlog(t, s, "blog-1", "user-1", "post-one")
	makeTestBlog(t, s, "blog-2", "user-1", "post-two")
	makeTestTag(t, s, "tag-a", "Go", "go")

	if err := s.SetBlogTags(ctx, "blog-1", []string{"tag-a"}); err != nil {
		t.Fatalf("SetBlogTags: %v", err)
	}

	page, err := s.ListBlogs(ctx, store.BlogFilter{TagSlug: "go"}, store.PaginationParams{Page: 1, PerPage: 10})
	if err != nil {
		t.Fatalf("ListBlogs: %v", err)
	}
	if page.Total != 1 || page.Items[0].ID != "blog-1" {
		t.Errorf("tag filter: got total=%d", page.Total)
	}
	if len(page.Items[0].Tags) != 1 {
		t.Errorf("tags should be loaded on listed posts, got %d", len(page.Items[0].Tags))
	}
}

func TestIncrementViewCount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	makeTestUser(t, s, "user-1")
	makeTestBlog(t, s, "blog-1", "user-1", "post-one")

	for i := 0; i < 3; i++ {
		if err := s.IncrementViewCount(ctx, "blog-1"); err != nil {
			t.Fatalf("IncrementViewCount: %v", err)
		}
	}

	got, err := s.GetBlog(ctx, "blog-1")
	if err != nil {
		t.Fatalf("GetBlog: %v", err)
	}
	if got.ViewCount != 3 {
		t.Errorf("view_count: got %d, want 3", got.ViewCount)
	}

	// Missing posts are silently ignored.
	if err := s.IncrementViewCount(ctx, "blog-missing"); err != nil {
		t.Errorf("IncrementViewCount on missing post: %v", err)
	}
}

func TestListBlogs_SearchFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	makeTestUser(t, s, "user-1")
	b1 := makeTestBlog(t, s, "blog-1", "user-1", "post-one")
	b1.Title = "Concurrency Patterns"
	b1.Content = "Goroutines and channels."
	if err := s.UpdateBlog(ctx, b1, nil); err != nil {
		t.Fatalf("UpdateBlog: %v", err)
	}
	b2 := makeTestBlog(t, s, "blog-2", "user-1", "post-two")
	b2.Title = "Sourdough Notes"
	b2.Content = "Flour and water. Channels of gluten."
	if err := s.UpdateBlog(ctx, b2, nil); err != nil {
		t.Fatalf("UpdateBlog: %v", err)
	}

	page, err := s.ListBlogs(ctx, store.BlogFilter{Search: "concurrency"}, store.PaginationParams{Page: 1, PerPage: 10})
	if err != nil {
		t.Fatalf("ListBlogs: %v", err)
	}
	if page.Total != 1 || page.Items[0].ID != "blog-1" {
		t.Errorf("title search: got total=%d", page.Total)
	}

	// Content matches too.
	page, err = s.ListBlogs(ctx, store.BlogFilter{Search: "channels"}, store.PaginationParams{Page: 1, PerPage: 10})
	if err != nil {
		t.Fatalf("ListBlogs: %v", err)
	}
	if page.Total != 2 {
		t.Errorf("content search: got total=%d, want 2", page.Total)
	}
}
