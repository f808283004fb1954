package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/flashblog/flashblog-server/internal/domain"
	"github.com/flashblog/flashblog-server/internal/store"
)

// makeTestComment creates and stores a comment. parentID may be empty.
func makeTestComment(t *testing.T, s *Store, id, blogID, authorID, parentID string, createdAt time.Time) *domain.Comment {
	t.Helper()
	c := &domain.Comment{
		BlogID:   blogID,
		AuthorID: authorID,
		Content:  "comment " + id,
	}
	c.ID = id
	c.CreatedAt = createdAt
	c.UpdatedAt = createdAt
	if parentID != "" {
		c.ParentID = &parentID
	}
	if err := s.CreateComment(context.Background(), c); err != nil {
		t.Fatalf("CreateComment(%s): %v", id, err)
	}
	return c
}

func blogCommentCount(t *testing.T, s *Store, blogID string) int {
	t.Helper()
	b, err := s.GetBlog(context.Background(), blogID)
	if err != nil {
		t.Fatalf("GetBlog: %v", err)
	}
	return b.CommentCount
}

func TestCreateComment_CounterMoves(t *testing.T) {
	s := newTestStore(t)

	makeTestUser(t, s, "user-1")
	makeTestBlog(t, s, "blog-1", "user-1", "post-one")

	now := time.Now()
	makeTestComment(t, s, "comment-1", "blog-1", "user-1", "", now)
	makeTestComment(t, s, "comment-2", "blog-1", "user-1", "comment-1", now)

	if got := blogCommentCount(t, s, "blog-1"); got != 2 {
		t.Errorf("comment_count: got %d, want 2", got)
	}
}

func TestDeleteCommentSubtree(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	makeTestUser(t, s, "user-1")
	makeTestBlog(t, s, "blog-1", "user-1", "post-one")

	// Tree: root -> reply1 -> reply2, plus an unrelated sibling.
	now := time.Now()
	makeTestComment(t, s, "root", "blog-1", "user-1", "", now)
	makeTestComment(t, s, "reply1", "blog-1", "user-1", "root", now.Add(time.Second))
	makeTestComment(t, s, "reply2", "blog-1", "user-1", "reply1", now.Add(2*time.Second))
	makeTestComment(t, s, "sibling", "blog-1", "user-1", "", now.Add(3*time.Second))

	// Like a nested reply so we can verify like cleanup.
	like := &domain.Like{
		ID:         "like-1",
		UserID:     "user-1",
		TargetType: domain.LikeTargetComment,
		TargetID:   "reply2",
		CreatedAt:  now,
	}
	if err := s.CreateLike(ctx, like); err != nil {
		t.Fatalf("CreateLike: %v", err)
	}

	deleted, err := s.DeleteCommentSubtree(ctx, "root")
	if err != nil {
		t.Fatalf("DeleteCommentSubtree: %v", err)
	}
	if deleted != 3 {
		t.Errorf("deleted: got %d, want 3", deleted)
	}

	// Counter drops by the subtree size, sibling stays.
	if got := blogCommentCount(t, s, "blog-1"); got != 1 {
		t.Errorf("comment_count: got %d, want 1", got)
	}
	if _, err := s.GetComment(ctx, "sibling"); err != nil {
		t.Errorf("sibling should survive: %v", err)
	}
	if _, err := s.GetComment(ctx, "reply2"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected reply2 gone, got %v", err)
	}

	// The like on the deleted reply is gone too.
	liked, err := s.HasLiked(ctx, "user-1", domain.LikeTargetComment, "reply2")
	if err != nil {
		t.Fatalf("HasLiked: %v", err)
	}
	if liked {
		t.Error("like on deleted comment should be removed")
	}
}

func TestDeleteCommentSubtree_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.DeleteCommentSubtree(context.Background(), "comment-missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListComments_Ordering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	makeTestUser(t, s, "user-1")
	makeTestBlog(t, s, "blog-1", "user-1", "post-one")

	base := time.Now()
	makeTestComment(t, s, "old", "blog-1", "user-1", "", base)
	makeTestComment(t, s, "new", "blog-1", "user-1", "", base.Add(time.Minute))
	makeTestComment(t, s, "reply-b", "blog-1", "user-1", "old", base.Add(3*time.Minute))
	makeTestComment(t, s, "reply-a", "blog-1", "user-1", "old", base.Add(2*time.Minute))
	makeTestComment(t, s, "nested", "blog-1", "user-1", "reply-a", base.Add(4*time.Minute))

	page, err := s.ListComments(ctx, "blog-1", store.PaginationParams{Page: 1, PerPage: 10})
	if err != nil {
		t.Fatalf("ListComments: %v", err)
	}

	if page.Total != 2 {
		t.Errorf("Total counts top-level only: got %d, want 2", page.Total)
	}
	if len(page.Items) != 2 {
		t.Fatalf("expected 2 top-level comments, got %d", len(page.Items))
	}

	// Top-level newest first.
	if page.Items[0].ID != "new" || page.Items[1].ID != "old" {
		t.Errorf("top-level order: got %s, %s", page.Items[0].ID, page.Items[1].ID)
	}

	// Replies oldest first, nesting preserved.
	old := page.Items[1]
	if len(old.Replies) != 2 {
		t.Fatalf("expected 2 replies on old, got %d", len(old.Replies))
	}
	if old.Replies[0].ID != "reply-a" || old.Replies[1].ID != "reply-b" {
		t.Errorf("reply order: got %s, %s", old.Replies[0].ID, old.Replies[1].ID)
	}
	if len(old.Replies[0].Replies) != 1 || old.Replies[0].Replies[0].ID != "nested" {
		t.Error("nested reply not attached under reply-a")
	}
}

func TestListComments_Pagination(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	makeTestUser(t, s, "user-1")
	makeTestBlog(t, s, "blog-1", "user-1", "post-one")

	base := time.Now()
	for i := 0; i < 5; i++ {
		makeTestComment(t, s, "comment-"+string(rune('a'+i)), "blog-1", "user-1", "",
			base.Add(time.Duration(i)*time.Second))
	}

	page, err := s.ListComments(ctx, "blog-1", store.PaginationParams{Page: 2, PerPage: 2})
	if err != nil {
		t.Fatalf("ListComments: %v", err)
	}
	if page.Total != 5 || page.TotalPages != 3 {
		t.Errorf("Total/TotalPages: got %d/%d, want 5/3", page.Total, page.TotalPages)
	}
	if !page.HasNext || !page.HasPrev {
		t.Error("middle page should have next and prev")
	}
	if len(page.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(page.Items))
	}
}

func TestUpdateComment(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	makeTestUser(t, s, "user-1")
	makeTestBlog(t, s, "blog-1", "user-1", "post-one")
	c := makeTestComment(t, s, "comment-1", "blog-1", "user-1", "", time.Now())

	c.Content = "revised"
	c.MarkEdited()
	if err := s.UpdateComment(ctx, c); err != nil {
		t.Fatalf("UpdateComment: %v", err)
	}

	got, err := s.GetComment(ctx, "comment-1")
	if err != nil {
		t.Fatalf("GetComment: %v", err)
	}
	if got.Content != "revised" || !got.Edited {
		t.Errorf("got content=%q edited=%v", got.Content, got.Edited)
	}
}

func TestListReplies(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	makeTestUser(t, s, "user-1")
	makeTestBlog(t, s, "blog-1", "user-1", "post-one")

	base := time.Now().Add(-time.Hour)
	makeTestComment(t, s, "comment-1", "blog-1", "user-1", "", base)
	makeTestComment(t, s, "reply-2", "blog-1", "user-1", "comment-1", base.Add(2*time.Minute))
	makeTestComment(t, s, "reply-1", "blog-1", "user-1", "comment-1", base.Add(time.Minute))

	page, err := s.ListReplies(ctx, "comment-1", store.PaginationParams{})
	if err != nil {
		t.Fatalf("ListReplies: %v", err)
	}
	if page.Total != 2 || len(page.Items) != 2 {
		t.Fatalf("expected 2 replies, got total=%d items=%d", page.Total, len(page.Items))
	}
	// Oldest first.
	if page.Items[0].ID != "reply-1" || page.Items[1].ID != "reply-2" {
		t.Errorf("replies out of order: %s, %s", page.Items[0].ID, page.Items[1].ID)
	}

	// One reply per page walks the set in the same order.
	page, err = s.ListReplies(ctx, "comment-1", store.PaginationParams{Page: 2, PerPage: 1})
	if err != nil {
		t.Fatalf("ListReplies page 2: %v", err)
	}
	if page.Total != 2 || len(page.Items) != 1 {
		t.Fatalf("page 2: got total=%d items=%d", page.Total, len(page.Items))
	}
	if page.Items[0].ID != "reply-2" {
		t.Errorf("page 2: got %s, want reply-2", page.Items[0].ID)
	}
	if !page.HasPrev || page.HasNext {
		t.Errorf("page 2: has_prev=%v has_next=%v", page.HasPrev, page.HasNext)
	}

	page, err = s.ListReplies(ctx, "reply-1", store.PaginationParams{})
	if err != nil {
		t.Fatalf("ListReplies leaf: %v", err)
	}
	if len(page.Items) != 0 {
		t.Errorf("leaf comment: got %d replies", len(page.Items))
	}
}
