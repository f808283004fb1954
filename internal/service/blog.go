package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/flashblog/flashblog-server/internal/domain"
	domainerrors "github.com/flashblog/flashblog-server/internal/errors"
	"github.com/flashblog/flashblog-server/internal/id"
	"github.com/flashblog/flashblog-server/internal/slug"
	"github.com/flashblog/flashblog-server/internal/store"
)

// slugMaxLength caps generated post and tag slugs.
const slugMaxLength = 60

// BlogService orchestrates post CRUD, publishing, and tag assignment.
type BlogService struct {
	store  store.Store
	logger *slog.Logger
}

// NewBlogService creates a new blog service.
func NewBlogService(store store.Store, logger *slog.Logger) *BlogService {
	return &BlogService{
		store:  store,
		logger: logger,
	}
}

// CreateBlogRequest contains the data for a new post.
type CreateBlogRequest struct {
	Title   string   `json:"title" validate:"required,min=1,max=200"`
	Content string   `json:"content" validate:"required"`
	Tags    []string `json:"tags,omitempty"`
	Publish bool     `json:"publish,omitempty"`
}

// UpdateBlogRequest contains partial post updates.
// Nil fields are left unchanged; a non-nil Tags replaces the whole set.
type UpdateBlogRequest struct {
	Title   *string   `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Content *string   `json:"content,omitempty"`
	Tags    *[]string `json:"tags,omitempty"`
}

// ListBlogsRequest contains listing filters.
type ListBlogsRequest struct {
	AuthorID string
	TagSlug  string
	Search   string
	// Published narrows to an exact publish state when non-nil.
	// false only yields results for authors browsing their own posts.
	Published *bool
	Page      int
	PerPage   int
}

// Create makes a new post, resolving a unique slug from the title.
func (s *BlogService) Create(ctx context.Context, author *domain.User, req CreateBlogRequest) (*domain.Blog, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	tags, err := s.resolveTagNames(ctx, req.Tags)
	if err != nil {
		return nil, err
	}

	blogID, err := id.Generate("blog")
	if err != nil {
		return nil, fmt.Errorf("generate blog ID: %w", err)
	}

	blogSlug, err := s.uniqueSlug(ctx, req.Title, blogID)
	if err != nil {
		return nil, err
	}

	blog := &domain.Blog{
		Title:    req.Title,
		Content:  req.Content,
		Slug:     blogSlug,
		AuthorID: author.ID,
	}
	blog.ID = blogID
	blog.InitTimestamps()
	if req.Publish {
		blog.Publish()
	}

	if err := s.store.CreateBlog(ctx, blog, tagIDs(tags)); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			// Slug race lost after the uniqueness check.
			return nil, domainerrors.Conflict("slug is already taken")
		}
		return nil, fmt.Errorf("create blog: %w", err)
	}

	if err := s.loadTags(ctx, blog); err != nil {
		return nil, err
	}

	s.logger.Info("post created",
		"blog_id", blog.ID,
		"author_id", author.ID,
		"published", blog.Published,
	)
	return blog, nil
}

// Get returns a post by ID, respecting draft visibility.
// Published reads bump the view counter.
func (s *BlogService) Get(ctx context.Context, viewer *domain.User, blogID string) (*domain.Blog, error) {
	blog, err := s.store.GetBlog(ctx, blogID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("post not found")
		}
		return nil, fmt.Errorf("get blog: %w", err)
	}

	if !blog.IsVisibleTo(viewer) {
		// Drafts look like they don't exist to everyone else.
		return nil, domainerrors.NotFound("post not found")
	}

	s.countView(ctx, blog)
	return blog, nil
}

// GetBySlug returns a post by slug, respecting draft visibility.
func (s *BlogService) GetBySlug(ctx context.Context, viewer *domain.User, blogSlug string) (*domain.Blog, error) {
	blog, err := s.store.GetBlogBySlug(ctx, blogSlug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("post not found")
		}
		return nil, fmt.Errorf("get blog by slug: %w", err)
	}

	if !blog.IsVisibleTo(viewer) {
		return nil, domainerrors.NotFound("post not found")
	}

	s.countView(ctx, blog)
	return blog, nil
}

// Update applies partial changes to a post. A title change re-derives the
// slug; the post keeps its old slug only if the title is untouched.
func (s *BlogService) Update(ctx context.Context, actor *domain.User, blogID string, req UpdateBlogRequest) (*domain.Blog, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	blog, err := s.getOwned(ctx, actor, blogID)
	if err != nil {
		return nil, err
	}

	// A nil ID set tells the store to leave the tag set untouched.
	var ids []string
	if req.Tags != nil {
		tags, err := s.resolveTagNames(ctx, *req.Tags)
		if err != nil {
			return nil, err
		}
		ids = tagIDs(tags)
	}

	if req.Title != nil && *req.Title != blog.Title {
		blog.Title = *req.Title
		blog.Slug, err = s.uniqueSlug(ctx, blog.Title, blog.ID)
		if err != nil {
			return nil, err
		}
	}
	if req.Content != nil {
		blog.Content = *req.Content
	}
	blog.Touch()

	if err := s.store.UpdateBlog(ctx, blog, ids); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Conflict("slug is already taken")
		}
		return nil, fmt.Errorf("update blog: %w", err)
	}

	if req.Tags != nil {
		if err := s.loadTags(ctx, blog); err != nil {
			return nil, err
		}
	}

	s.logger.Info("post updated", "blog_id", blog.ID, "actor_id", actor.ID)
	return blog, nil
}

// Delete removes a post, its comments, likes, and tag associations.
func (s *BlogService) Delete(ctx context.Context, actor *domain.User, blogID string) error {
	if _, err := s.getOwned(ctx, actor, blogID); err != nil {
		return err
	}

	if err := s.store.DeleteBlog(ctx, blogID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("post not found")
		}
		return fmt.Errorf("delete blog: %w", err)
	}

	s.logger.Info("post deleted", "blog_id", blogID, "actor_id", actor.ID)
	return nil
}

// Publish makes a draft public. Republishing keeps the original publish date.
func (s *BlogService) Publish(ctx context.Context, actor *domain.User, blogID string) (*domain.Blog, error) {
	blog, err := s.getOwned(ctx, actor, blogID)
	if err != nil {
		return nil, err
	}

	blog.Publish()
	blog.Touch()
	if err := s.store.UpdateBlog(ctx, blog, nil); err != nil {
		return nil, fmt.Errorf("publish blog: %w", err)
	}

	s.logger.Info("post published", "blog_id", blog.ID)
	return blog, nil
}

// Unpublish takes a post back to draft.
func (s *BlogService) Unpublish(ctx context.Context, actor *domain.User, blogID string) (*domain.Blog, error) {
	blog, err := s.getOwned(ctx, actor, blogID)
	if err != nil {
		return nil, err
	}

	blog.Unpublish()
	blog.Touch()
	if err := s.store.UpdateBlog(ctx, blog, nil); err != nil {
		return nil, fmt.Errorf("unpublish blog: %w", err)
	}

	s.logger.Info("post unpublished", "blog_id", blog.ID)
	return blog, nil
}

// List returns a page of posts. Drafts are hidden except from their own
// author browsing their own posts.
func (s *BlogService) List(ctx context.Context, viewer *domain.User, req ListBlogsRequest) (*store.Page[*domain.Blog], error) {
	filter := store.BlogFilter{
		AuthorID:      req.AuthorID,
		TagSlug:       req.TagSlug,
		Search:        req.Search,
		Published:     req.Published,
		PublishedOnly: true,
	}
	if viewer != nil && req.AuthorID == viewer.ID {
		filter.IncludeDraftsBy = viewer.ID
	}

	page, err := s.store.ListBlogs(ctx, filter, store.PaginationParams{Page: req.Page, PerPage: req.PerPage})
	if err != nil {
		return nil, fmt.Errorf("list blogs: %w", err)
	}
	return page, nil
}

// SetTags replaces the post's tag set.
func (s *BlogService) SetTags(ctx context.Context, actor *domain.User, blogID string, tagNames []string) (*domain.Blog, error) {
	blog, err := s.getOwned(ctx, actor, blogID)
	if err != nil {
		return nil, err
	}

	tags, err := s.resolveTagNames(ctx, tagNames)
	if err != nil {
		return nil, err
	}

	if err := s.store.SetBlogTags(ctx, blog.ID, tagIDs(tags)); err != nil {
		return nil, fmt.Errorf("set blog tags: %w", err)
	}
	if err := s.loadTags(ctx, blog); err != nil {
		return nil, err
	}
	return blog, nil
}

// getOwned loads a post and checks the actor may mutate it (author or admin).
func (s *BlogService) getOwned(ctx context.Context, actor *domain.User, blogID string) (*domain.Blog, error) {
	blog, err := s.store.GetBlog(ctx, blogID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("post not found")
		}
		return nil, fmt.Errorf("get blog: %w", err)
	}

	if blog.AuthorID != actor.ID && !actor.IsAdmin() {
		return nil, domainerrors.Forbidden("you do not own this post")
	}
	return blog, nil
}

// uniqueSlug derives a slug from the title and resolves collisions.
// Titles that reduce to nothing fall back to the post ID.
func (s *BlogService) uniqueSlug(ctx context.Context, title, blogID string) (string, error) {
	base := slug.Generate(title, slugMaxLength)
	if base == "" {
		base = blogID
	}
	return slug.ResolveUnique(ctx, base, s.store.SlugExists, blogID)
}

// resolveTagNames normalizes raw tag names and maps them to existing tags.
// Tags are admin-provisioned, so unknown names are an error, not a create.
func (s *BlogService) resolveTagNames(ctx context.Context, names []string) ([]*domain.Tag, error) {
	seen := make(map[string]bool, len(names))
	cleaned := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		cleaned = append(cleaned, name)
	}

	if len(cleaned) > domain.MaxTagsPerBlog {
		return nil, domainerrors.Validationf("a post can carry at most %d tags", domain.MaxTagsPerBlog)
	}
	if len(cleaned) == 0 {
		return []*domain.Tag{}, nil
	}

	tags, err := s.store.GetTagsByNames(ctx, cleaned)
	if err != nil {
		return nil, fmt.Errorf("resolve tags: %w", err)
	}

	if len(tags) != len(cleaned) {
		found := make(map[string]bool, len(tags))
		for _, t := range tags {
			found[strings.ToLower(t.Name)] = true
		}
		var missing []string
		for _, name := range cleaned {
			if !found[strings.ToLower(name)] {
				missing = append(missing, name)
			}
		}
		return nil, domainerrors.NotFoundf("unknown tags: %s", strings.Join(missing, ", ")).
			WithDetails(map[string]any{"unknown_tags": missing})
	}

	return tags, nil
}

// tagIDs collects the IDs of resolved tags. Always non-nil, so passing it
// to the store replaces the tag set even when the request cleared it.
func tagIDs(tags []*domain.Tag) []string {
	ids := make([]string, len(tags))
	for i, t := range tags {
		ids[i] = t.ID
	}
	return ids
}

// loadTags refreshes the post's loaded tags after a write.
func (s *BlogService) loadTags(ctx context.Context, blog *domain.Blog) error {
	loaded, err := s.store.GetBlogTags(ctx, blog.ID)
	if err != nil {
		return fmt.Errorf("load blog tags: %w", err)
	}
	blog.Tags = loaded
	return nil
}

// countView bumps the view counter for published reads.
// Failures are logged, never surfaced; a view count is not worth a 500.
func (s *BlogService) countView(ctx context.Context, blog *domain.Blog) {
	if !blog.Published {
		return
	}
	if err := s.store.IncrementViewCount(ctx, blog.ID); err != nil {
		s.logger.Warn("failed to count view", "blog_id", blog.ID, "error", err)
		return
	}
	blog.ViewCount++
}
