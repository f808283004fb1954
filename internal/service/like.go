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

// LikeService handles likes on posts and comments.
type LikeService struct {
	store  store.Store
	logger *slog.Logger
}

// NewLikeService creates a new like service.
func NewLikeService(store store.Store, logger *slog.Logger) *LikeService {
	return &LikeService{
		store:  store,
		logger: logger,
	}
}

// LikeBlog records a like on a published post.
func (s *LikeService) LikeBlog(ctx context.Context, user *domain.User, blogID string) error {
	blog, err := s.store.GetBlog(ctx, blogID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("post not found")
		}
		return fmt.Errorf("get blog: %w", err)
	}
	if !blog.Published {
		return domainerrors.NotFound("post not found")
	}

	return s.create(ctx, user.ID, domain.LikeTargetBlog, blogID)
}

// UnlikeBlog removes a like from a post.
func (s *LikeService) UnlikeBlog(ctx context.Context, user *domain.User, blogID string) error {
	return s.remove(ctx, user.ID, domain.LikeTargetBlog, blogID)
}

// LikeComment records a like on a comment.
func (s *LikeService) LikeComment(ctx context.Context, user *domain.User, commentID string) error {
	if _, err := s.store.GetComment(ctx, commentID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("comment not found")
		}
		return fmt.Errorf("get comment: %w", err)
	}

	return s.create(ctx, user.ID, domain.LikeTargetComment, commentID)
}

// UnlikeComment removes a like from a comment.
func (s *LikeService) UnlikeComment(ctx context.Context, user *domain.User, commentID string) error {
	return s.remove(ctx, user.ID, domain.LikeTargetComment, commentID)
}

// HasLiked reports whether the user has liked the target.
func (s *LikeService) HasLiked(ctx context.Context, userID string, target domain.LikeTarget, targetID string) (bool, error) {
	return s.store.HasLiked(ctx, userID, target, targetID)
}

func (s *LikeService) create(ctx context.Context, userID string, target domain.LikeTarget, targetID string) error {
	likeID, err := id.Generate("like")
	if err != nil {
		return fmt.Errorf("generate like ID: %w", err)
	}

	like := domain.NewLike(likeID, userID, target, targetID)
	if err := s.store.CreateLike(ctx, like); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domainerrors.Conflict("already liked")
		}
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("target not found")
		}
		return fmt.Errorf("create like: %w", err)
	}

	s.logger.Info("like added", "user_id", userID, "target", string(target), "target_id", targetID)
	return nil
}

func (s *LikeService) remove(ctx context.Context, userID string, target domain.LikeTarget, targetID string) error {
	err := s.store.DeleteLike(ctx, userID, target, targetID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("like not found")
		}
		return fmt.Errorf("delete like: %w", err)
	}

	s.logger.Info("like removed", "user_id", userID, "target", string(target), "target_id", targetID)
	return nil
}
