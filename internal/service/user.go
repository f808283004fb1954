package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/flashblog/flashblog-server/internal/domain"
	domainerrors "github.com/flashblog/flashblog-server/internal/errors"
	"github.com/flashblog/flashblog-server/internal/store"
)

// UserService handles user profile operations.
type UserService struct {
	store  store.Store
	logger *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(store store.Store, logger *slog.Logger) *UserService {
	return &UserService{
		store:  store,
		logger: logger,
	}
}

// UpdateProfileRequest contains the editable profile fields.
// Nil fields are left unchanged.
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name,omitempty" validate:"omitempty,min=1,max=100"`
	Bio         *string `json:"bio,omitempty" validate:"omitempty,max=500"`
}

// GetUser returns a user by ID.
func (s *UserService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// UpdateProfile applies profile changes for the authenticated user.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*domain.User, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != nil {
		user.DisplayName = *req.DisplayName
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	user.Touch()

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.logger.Info("profile updated", "user_id", userID)
	return user, nil
}
