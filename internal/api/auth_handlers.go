package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/flashblog/flashblog-server/internal/service"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "register",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/register",
		Summary:     "Register new user",
		Description: "Creates a new user account and signs it in. The first account registered becomes the admin.",
		Tags:        []string{"Authentication"},
	}, s.handleRegister)

	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/login",
		Summary:     "User login",
		Description: "Authenticates a user and returns access and refresh tokens",
		Tags:        []string{"Authentication"},
	}, s.handleLogin)

	huma.Register(s.api, huma.Operation{
		OperationID: "refresh",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/refresh",
		Summary:     "Refresh tokens",
		Description: "Exchanges a refresh token for new tokens",
		Tags:        []string{"Authentication"},
	}, s.handleRefresh)

	huma.Register(s.api, huma.Operation{
		OperationID: "logout",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/logout",
		Summary:     "Logout",
		Description: "Revokes the session behind the presented refresh token",
		Tags:        []string{"Authentication"},
	}, s.handleLogout)

	huma.Register(s.api, huma.Operation{
		OperationID: "requestPasswordReset",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/password-reset/request",
		Summary:     "Request password reset",
		Description: "Emails a one-time reset code to the account. Always succeeds so the response does not reveal whether the address is registered.",
		Tags:        []string{"Authentication"},
	}, s.handleRequestPasswordReset)

	huma.Register(s.api, huma.Operation{
		OperationID: "confirmPasswordReset",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/password-reset/confirm",
		Summary:     "Confirm password reset",
		Description: "Redeems a one-time reset code for a new password. All sessions are revoked.",
		Tags:        []string{"Authentication"},
	}, s.handleConfirmPasswordReset)
}

// === DTOs ===

// RegisterRequest is the request body for user registration.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email,max=254" doc:"User email address"`
	Password    string `json:"password" validate:"required,min=8,max=1024" doc:"User password"`
	DisplayName string `json:"display_name" validate:"required,min=1,max=100" doc:"Public display name"`
}

// RegisterInput wraps the register request for Huma.
type RegisterInput struct {
	Body          RegisterRequest
	XForwardedFor string `header:"X-Forwarded-For"`
	XRealIP       string `header:"X-Real-IP"`
	UserAgent     string `header:"User-Agent"`
}

// LoginRequest is the request body for user login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=254" doc:"User email"`
	Password string `json:"password" validate:"required,max=1024" doc:"User password"`
}

// LoginInput wraps the login request with headers for Huma.
type LoginInput struct {
	Body          LoginRequest
	XForwardedFor string `header:"X-Forwarded-For"`
	XRealIP       string `header:"X-Real-IP"`
	UserAgent     string `header:"User-Agent"`
}

// RefreshRequest is the request body for token refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required" doc:"Refresh token"`
}

// RefreshInput wraps the refresh request with headers for Huma.
type RefreshInput struct {
	Body          RefreshRequest
	XForwardedFor string `header:"X-Forwarded-For"`
	XRealIP       string `header:"X-Real-IP"`
	UserAgent     string `header:"User-Agent"`
}

// LogoutRequest is the request body for logout.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required" doc:"Refresh token of the session to revoke"`
}

// LogoutInput wraps the logout request for Huma.
type LogoutInput struct {
	Body LogoutRequest
}

// PasswordResetRequestBody asks for a reset code to be mailed out.
type PasswordResetRequestBody struct {
	Email string `json:"email" validate:"required,email,max=254" doc:"Account email address"`
}

// PasswordResetRequestInput wraps the reset request for Huma.
type PasswordResetRequestInput struct {
	Body PasswordResetRequestBody
}

// PasswordResetConfirmBody redeems a reset code for a new password.
type PasswordResetConfirmBody struct {
	Email       string `json:"email" validate:"required,email,max=254" doc:"Account email address"`
	Code        string `json:"code" validate:"required,len=6" doc:"Six-digit reset code from the email"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=1024" doc:"Replacement password"`
}

// PasswordResetConfirmInput wraps the reset confirmation for Huma.
type PasswordResetConfirmInput struct {
	Body PasswordResetConfirmBody
}

// AuthResponse contains authentication tokens and user info.
type AuthResponse struct {
	AccessToken  string       `json:"access_token" doc:"PASETO access token"`
	RefreshToken string       `json:"refresh_token" doc:"Refresh token"`
	SessionID    string       `json:"session_id" doc:"Session identifier"`
	TokenType    string       `json:"token_type" doc:"Token type (Bearer)"`
	ExpiresIn    int          `json:"expires_in" doc:"Access token expiry in seconds"`
	User         UserResponse `json:"user" doc:"Authenticated user"`
}

// AuthOutput wraps the auth response for Huma.
type AuthOutput struct {
	Body AuthResponse
}

// === Handlers ===

func (s *Server) handleRegister(ctx context.Context, input *RegisterInput) (*AuthOutput, error) {
	resp, err := s.services.Auth.Register(ctx, service.RegisterRequest{
		Email:       input.Body.Email,
		Password:    input.Body.Password,
		DisplayName: input.Body.DisplayName,
	})
	if err != nil {
		return nil, err
	}

	return &AuthOutput{Body: mapAuthResponse(resp)}, nil
}

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*AuthOutput, error) {
	resp, err := s.services.Auth.Login(ctx, service.LoginRequest{
		Email:     input.Body.Email,
		Password:  input.Body.Password,
		IPAddress: extractIP(input.XForwardedFor, input.XRealIP),
		UserAgent: input.UserAgent,
	})
	if err != nil {
		return nil, err
	}

	return &AuthOutput{Body: mapAuthResponse(resp)}, nil
}

func (s *Server) handleRefresh(ctx context.Context, input *RefreshInput) (*AuthOutput, error) {
	resp, err := s.services.Auth.RefreshTokens(ctx, service.RefreshRequest{
		RefreshToken: input.Body.RefreshToken,
		IPAddress:    extractIP(input.XForwardedFor, input.XRealIP),
		UserAgent:    input.UserAgent,
	})
	if err != nil {
		return nil, err
	}

	return &AuthOutput{Body: mapAuthResponse(resp)}, nil
}

func (s *Server) handleLogout(ctx context.Context, input *LogoutInput) (*MessageOutput, error) {
	if err := s.services.Auth.Logout(ctx, input.Body.RefreshToken); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Logged out successfully"}}, nil
}

func (s *Server) handleRequestPasswordReset(ctx context.Context, input *PasswordResetRequestInput) (*MessageOutput, error) {
	if err := s.services.Auth.RequestPasswordReset(ctx, service.PasswordResetRequest{
		Email: input.Body.Email,
	}); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{
		Message: "If the address is registered, a reset code has been sent",
	}}, nil
}

func (s *Server) handleConfirmPasswordReset(ctx context.Context, input *PasswordResetConfirmInput) (*MessageOutput, error) {
	if err := s.services.Auth.ConfirmPasswordReset(ctx, service.PasswordResetConfirm{
		Email:       input.Body.Email,
		Code:        input.Body.Code,
		NewPassword: input.Body.NewPassword,
	}); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Password updated"}}, nil
}

// === Helpers ===

func mapAuthResponse(resp *service.AuthResponse) AuthResponse {
	return AuthResponse{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		SessionID:    resp.SessionID,
		TokenType:    resp.TokenType,
		ExpiresIn:    resp.ExpiresIn,
		User:         toUserResponse(resp.User),
	}
}

func extractIP(xForwardedFor, xRealIP string) string {
	if xForwardedFor != "" {
		for i := 0; i < len(xForwardedFor); i++ {
			if xForwardedFor[i] == ',' {
				return xForwardedFor[:i]
			}
		}
		return xForwardedFor
	}
	return xRealIP
}
