// Package store defines the persistence interface for the Flash Blog server.
package store

import (
	"context"
	"fmt"

	"github.com/flashblog/flashblog-server/internal/domain"
)

// BlogFilter narrows ListBlogs results.
// Zero value lists every post, newest first.
type BlogFilter struct {
	// AuthorID restricts to posts by one author when non-empty.
	AuthorID string
	// TagSlug restricts to posts carrying the tag when non-empty.
	TagSlug string
	// PublishedOnly hides drafts. Public listings always set this.
	PublishedOnly bool
	// IncludeDraftsBy additionally includes drafts owned by this user
	// when PublishedOnly is set. Used for "my posts" listings.
	IncludeDraftsBy string
	// Published filters on the exact publish state when non-nil.
	// Visibility rules above still apply, so published=false only
	// surfaces drafts the viewer is allowed to see.
	Published *bool
	// Search restricts to posts whose title or content contains the
	// substring (case-insensitive). Full-text ranking lives in the
	// search index; this is the plain listing filter.
	Search string
}

// TagFilter narrows and orders ListTags results.
type TagFilter struct {
	// Search restricts to tags whose name contains the substring.
	Search string
	// SortBy is one of "name", "usage_count", "created_at". Defaults to name.
	SortBy string
	// SortDesc reverses the sort order.
	SortDesc bool
}

// TagInUseError is returned by DeleteTag when the tag is still attached
// to posts. Carries the count observed inside the delete transaction.
type TagInUseError struct {
	UsageCount int
}

func (e *TagInUseError) Error() string {
	return fmt.Sprintf("tag is attached to %d post(s)", e.UsageCount)
}

// SearchIndexer is the interface for updating the search index.
// Store uses this to keep search in sync without depending on search implementation.
type SearchIndexer interface {
	IndexBlog(ctx context.Context, blog *domain.Blog) error
	DeleteBlog(ctx context.Context, blogID string) error
}

// NoopSearchIndexer is a no-op implementation for testing.
type NoopSearchIndexer struct{}

// IndexBlog is a no-op.
func (NoopSearchIndexer) IndexBlog(context.Context, *domain.Blog) error { return nil }

// DeleteBlog is a no-op.
func (NoopSearchIndexer) DeleteBlog(context.Context, string) error { return nil }

// Store defines the interface for all persistence operations.
type Store interface {
	// Lifecycle
	Close() error
	SetSearchIndexer(indexer SearchIndexer)

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	CountUsers(ctx context.Context) (int, error)

	// Auth sessions
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	GetSessionByRefreshToken(ctx context.Context, tokenHash string) (*domain.Session, error)
	UpdateSession(ctx context.Context, session *domain.Session) error
	DeleteSession(ctx context.Context, id string) error
	DeleteAllUserSessions(ctx context.Context, userID string) error
	DeleteExpiredSessions(ctx context.Context) (int, error)

	// Blogs
	// CreateBlog and UpdateBlog write the post and its tag set in one
	// transaction. A nil tagIDs leaves the tag set untouched.
	CreateBlog(ctx context.Context, blog *domain.Blog, tagIDs []string) error
	GetBlog(ctx context.Context, id string) (*domain.Blog, error)
	GetBlogBySlug(ctx context.Context, slug string) (*domain.Blog, error)
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
	UpdateBlog(ctx context.Context, blog *domain.Blog, tagIDs []string) error
	DeleteBlog(ctx context.Context, id string) error
	ListBlogs(ctx context.Context, filter BlogFilter, params PaginationParams) (*Page[*domain.Blog], error)
	IncrementViewCount(ctx context.Context, id string) error

	// Tags
	CreateTag(ctx context.Context, tag *domain.Tag) error
	GetTag(ctx context.Context, id string) (*domain.Tag, error)
	GetTagBySlug(ctx context.Context, slug string) (*domain.Tag, error)
	GetTagsByNames(ctx context.Context, names []string) ([]*domain.Tag, error)
	TagNameExists(ctx context.Context, name, excludeID string) (bool, error)
	UpdateTag(ctx context.Context, tag *domain.Tag) error
	DeleteTag(ctx context.Context, id string) error
	ListTags(ctx context.Context, filter TagFilter, params PaginationParams) (*Page[*domain.Tag], error)
	ListPopularTags(ctx context.Context, limit int) ([]*domain.Tag, error)
	SetBlogTags(ctx context.Context, blogID string, tagIDs []string) error
	GetBlogTags(ctx context.Context, blogID string) ([]domain.Tag, error)

	// Comments
	CreateComment(ctx context.Context, comment *domain.Comment) error
	GetComment(ctx context.Context, id string) (*domain.Comment, error)
	UpdateComment(ctx context.Context, comment *domain.Comment) error
	DeleteCommentSubtree(ctx context.Context, id string) (int, error)
	ListComments(ctx context.Context, blogID string, params PaginationParams) (*Page[*domain.Comment], error)
	ListReplies(ctx context.Context, parentID string, params PaginationParams) (*Page[*domain.Comment], error)

	// Likes
	CreateLike(ctx context.Context, like *domain.Like) error
	DeleteLike(ctx context.Context, userID string, targetType domain.LikeTarget, targetID string) error
	HasLiked(ctx context.Context, userID string, targetType domain.LikeTarget, targetID string) (bool, error)
}
