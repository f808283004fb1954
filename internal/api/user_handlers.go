package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/flashblog/flashblog-server/internal/color"
	"github.com/flashblog/flashblog-server/internal/domain"
	"github.com/flashblog/flashblog-server/internal/service"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me",
		Summary:     "Get current user",
		Description: "Returns the authenticated user's profile",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCurrentUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateCurrentUser",
		Method:      http.MethodPatch,
		Path:        "/api/v1/users/me",
		Summary:     "Update current user",
		Description: "Updates the authenticated user's profile",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateCurrentUser)
}

// === DTOs ===

// UserResponse contains user information in API responses.
// The password hash never leaves the service layer.
type UserResponse struct {
	ID          string    `json:"id" doc:"User ID"`
	Email       string    `json:"email" doc:"User email"`
	DisplayName string    `json:"display_name" doc:"Display name"`
	Bio         string    `json:"bio,omitempty" doc:"Profile bio"`
	Role        string    `json:"role" doc:"Role (admin or user)"`
	AvatarColor string    `json:"avatar_color" doc:"Deterministic avatar color derived from the user ID"`
	CreatedAt   time.Time `json:"created_at" doc:"Creation timestamp"`
	UpdatedAt   time.Time `json:"updated_at" doc:"Last update timestamp"`
	LastLoginAt time.Time `json:"last_login_at" doc:"Last login timestamp"`
}

// UserOutput wraps the user response for Huma.
type UserOutput struct {
	Body UserResponse
}

// GetCurrentUserInput carries no parameters; auth comes from context.
type GetCurrentUserInput struct{}

// UpdateProfileRequest is the request body for profile updates.
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name,omitempty" validate:"omitempty,min=1,max=100" doc:"Display name"`
	Bio         *string `json:"bio,omitempty" validate:"omitempty,max=500" doc:"Profile bio"`
}

// UpdateProfileInput wraps the profile update for Huma.
type UpdateProfileInput struct {
	Body UpdateProfileRequest
}

// === Handlers ===

func (s *Server) handleGetCurrentUser(ctx context.Context, _ *GetCurrentUserInput) (*UserOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	return &UserOutput{Body: toUserResponse(user)}, nil
}

func (s *Server) handleUpdateCurrentUser(ctx context.Context, input *UpdateProfileInput) (*UserOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	updated, err := s.services.User.UpdateProfile(ctx, user.ID, service.UpdateProfileRequest{
		DisplayName: input.Body.DisplayName,
		Bio:         input.Body.Bio,
	})
	if err != nil {
		return nil, err
	}

	return &UserOutput{Body: toUserResponse(updated)}, nil
}

// === Helpers ===

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Bio:         u.Bio,
		Role:        string(u.Role),
		AvatarColor: color.ForUser(u.ID),
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}
