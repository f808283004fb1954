package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/flashblog/flashblog-server/internal/domain"
	domainerrors "github.com/flashblog/flashblog-server/internal/errors"
	"github.com/flashblog/flashblog-server/internal/id"
	"github.com/flashblog/flashblog-server/internal/store"
)

// CommentService handles the comment tree under posts.
type CommentService struct {
	store  store.Store
	logger *slog.Logger
}

// NewCommentService creates a new comment service.
func NewCommentService(store store.Store, logger *slog.Logger) *CommentService {
	return &CommentService{
		store:  store,
		logger: logger,
	}
}

// CreateCommentRequest contains the data for a new comment.
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=5000"`
}

// UpdateCommentRequest contains a comment edit.
type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=5000"`
}

// Create adds a top-level comment on a published post.
func (s *CommentService) Create(ctx context.Context, author *domain.User, blogID string, req CreateCommentRequest) (*domain.Comment, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	if err := s.checkCommentable(ctx, blogID); err != nil {
		return nil, err
	}

	return s.insert(ctx, author, blogID, nil, req.Content)
}

// Reply adds a reply under a top-level comment. Replying to a reply is not
// allowed here even though the storage supports deeper trees.
func (s *CommentService) Reply(ctx context.Context, author *domain.User, parentID string, req CreateCommentRequest) (*domain.Comment, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	parent, err := s.store.GetComment(ctx, parentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("comment not found")
		}
		return nil, fmt.Errorf("get parent comment: %w", err)
	}

	if parent.IsReply() {
		return nil, domainerrors.Validation("replies can only be added to top-level comments")
	}

	if err := s.checkCommentable(ctx, parent.BlogID); err != nil {
		return nil, err
	}

	return s.insert(ctx, author, parent.BlogID, &parent.ID, req.Content)
}

// Get returns a single comment by ID.
func (s *CommentService) Get(ctx context.Context, commentID string) (*domain.Comment, error) {
	comment, err := s.store.GetComment(ctx, commentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("comment not found")
		}
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return comment, nil
}

// Update edits a comment's content. Author only; edits are flagged.
func (s *CommentService) Update(ctx context.Context, actor *domain.User, commentID string, req UpdateCommentRequest) (*domain.Comment, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	comment, err := s.Get(ctx, commentID)
	if err != nil {
		return nil, err
	}

	if comment.AuthorID != actor.ID && !actor.IsAdmin() {
		return nil, domainerrors.Forbidden("you do not own this comment")
	}

	comment.Content = req.Content
	comment.MarkEdited()
	comment.Touch()

	if err := s.store.UpdateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}

	s.logger.Info("comment updated", "comment_id", comment.ID, "actor_id", actor.ID)
	return comment, nil
}

// Delete removes a comment and its whole reply subtree.
// Returns the number of comments removed.
func (s *CommentService) Delete(ctx context.Context, actor *domain.User, commentID string) (int, error) {
	comment, err := s.Get(ctx, commentID)
	if err != nil {
		return 0, err
	}

	if comment.AuthorID != actor.ID && !actor.IsAdmin() {
		return 0, domainerrors.Forbidden("you do not own this comment")
	}

	deleted, err := s.store.DeleteCommentSubtree(ctx, commentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, domainerrors.NotFound("comment not found")
		}
		return 0, fmt.Errorf("delete comment: %w", err)
	}

	s.logger.Info("comment deleted",
		"comment_id", commentID,
		"actor_id", actor.ID,
		"removed", deleted,
	)
	return deleted, nil
}

// ListByBlog returns a page of top-level comments with replies attached.
// Top-level comments sort newest first, replies oldest first.
func (s *CommentService) ListByBlog(ctx context.Context, blogID string, page, perPage int) (*store.Page[*domain.Comment], error) {
	if _, err := s.store.GetBlog(ctx, blogID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("post not found")
		}
		return nil, fmt.Errorf("get blog: %w", err)
	}

	comments, err := s.store.ListComments(ctx, blogID, store.PaginationParams{Page: page, PerPage: perPage})
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// ListReplies returns one page of direct replies to a comment, oldest first.
func (s *CommentService) ListReplies(ctx context.Context, commentID string, page, perPage int) (*store.Page[*domain.Comment], error) {
	if _, err := s.Get(ctx, commentID); err != nil {
		return nil, err
	}

	replies, err := s.store.ListReplies(ctx, commentID, store.PaginationParams{Page: page, PerPage: perPage})
	if err != nil {
		return nil, fmt.Errorf("list replies: %w", err)
	}
	return replies, nil
}

// checkCommentable verifies the post exists and accepts comments.
func (s *CommentService) checkCommentable(ctx context.Context, blogID string) error {
	blog, err := s.store.GetBlog(ctx, blogID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("post not found")
		}
		return fmt.Errorf("get blog: %w", err)
	}

	if !blog.Published {
		return domainerrors.Validation("comments are only allowed on published posts")
	}
	return nil
}

// insert writes the comment row; the counter moves in the same transaction.
func (s *CommentService) insert(ctx context.Context, author *domain.User, blogID string, parentID *string, content string) (*domain.Comment, error) {
	commentID, err := id.Generate("comment")
	if err != nil {
		return nil, fmt.Errorf("generate comment ID: %w", err)
	}

	comment := &domain.Comment{
		BlogID:   blogID,
		AuthorID: author.ID,
		ParentID: parentID,
		Content:  content,
	}
	comment.ID = commentID
	comment.InitTimestamps()

	if err := s.store.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	s.logger.Info("comment created",
		"comment_id", comment.ID,
		"blog_id", blogID,
		"reply", parentID != nil,
	)
	return comment, nil
}
