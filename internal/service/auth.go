// Package service holds the application services between the HTTP layer
// and the store.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/flashblog/flashblog-server/internal/auth"
	"github.com/flashblog/flashblog-server/internal/domain"
	domainerrors "github.com/flashblog/flashblog-server/internal/errors"
	"github.com/flashblog/flashblog-server/internal/id"
	"github.com/flashblog/flashblog-server/internal/mail"
	"github.com/flashblog/flashblog-server/internal/otp"
	"github.com/flashblog/flashblog-server/internal/store"
	"github.com/flashblog/flashblog-server/internal/validation"
)

// validate is the shared request validator for the service layer.
var validate = validation.New()

// AuthService handles registration, login, token refresh, and password reset.
// Session lifecycle is delegated to SessionService.
type AuthService struct {
	store          store.Store
	tokenService   *auth.TokenService
	sessionService *SessionService
	otpStore       *otp.Store
	mailSender     mail.Sender
	resetCodeTTL   time.Duration
	logger         *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	store store.Store,
	tokenService *auth.TokenService,
	sessionService *SessionService,
	otpStore *otp.Store,
	mailSender mail.Sender,
	resetCodeTTL time.Duration,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		store:          store,
		tokenService:   tokenService,
		sessionService: sessionService,
		otpStore:       otpStore,
		mailSender:     mailSender,
		resetCodeTTL:   resetCodeTTL,
		logger:         logger,
	}
}

// RegisterRequest contains user registration data.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=1024"`
	DisplayName string `json:"display_name" validate:"required,min=1,max=100"`
}

// LoginRequest contains user credentials.
type LoginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	IPAddress string `json:"-"` // Extracted from request by handler
	UserAgent string `json:"-"`
}

// RefreshRequest contains the refresh token presented for rotation.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
	IPAddress    string `json:"-"`
	UserAgent    string `json:"-"`
}

// PasswordResetRequest asks for a one-time code to be mailed out.
type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// PasswordResetConfirm redeems a one-time code for a new password.
type PasswordResetConfirm struct {
	Email       string `json:"email" validate:"required,email"`
	Code        string `json:"code" validate:"required,len=6"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=1024"`
}

// AuthResponse contains authentication tokens and user data.
type AuthResponse struct {
	User *domain.User `json:"user"`
	SessionResponse
}

// Register creates a new user account. The very first account becomes the
// admin; everyone after that is a regular user.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID, err := id.Generate("user")
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	role := domain.RoleUser
	count, err := s.store.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if count == 0 {
		role = domain.RoleAdmin
	}

	user := &domain.User{
		Email:        req.Email,
		PasswordHash: passwordHash,
		DisplayName:  req.DisplayName,
		Role:         role,
		Active:       true,
		LastLoginAt:  time.Now(),
	}
	user.ID = userID
	user.InitTimestamps()

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("email already in use")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	sessionResp, err := s.sessionService.CreateSession(ctx, user, "", "")
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.logger.Info("user registered",
		"user_id", userID,
		"role", string(role),
	)

	return &AuthResponse{
		User:            user,
		SessionResponse: *sessionResp,
	}, nil
}

// Login authenticates a user and creates a new session.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Don't leak whether the email exists.
			return nil, domainerrors.InvalidCredentials("invalid email or password")
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	valid, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return nil, domainerrors.InvalidCredentials("invalid email or password")
	}

	if !user.IsActive() {
		return nil, domainerrors.Forbidden("account is deactivated")
	}

	user.LastLoginAt = time.Now()
	user.Touch()
	if err := s.store.UpdateUser(ctx, user); err != nil {
		// Log but don't fail the login over a bookkeeping write.
		s.logger.Warn("failed to update last login time",
			"user_id", user.ID,
			"error", err,
		)
	}

	sessionResp, err := s.sessionService.CreateSession(ctx, user, req.IPAddress, req.UserAgent)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID)

	return &AuthResponse{
		User:            user,
		SessionResponse: *sessionResp,
	}, nil
}

// RefreshTokens generates new tokens using a refresh token.
// The old refresh token is invalidated (token rotation).
func (s *AuthService) RefreshTokens(ctx context.Context, req RefreshRequest) (*AuthResponse, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	sessionResp, user, err := s.sessionService.RefreshSession(ctx, req.RefreshToken, req.IPAddress, req.UserAgent)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		User:            user,
		SessionResponse: *sessionResp,
	}, nil
}

// Logout revokes the session holding a refresh token.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.sessionService.DeleteSessionByRefreshToken(ctx, refreshToken)
}

// RequestPasswordReset issues a one-time code and mails it to the user.
// Unknown emails succeed silently so the endpoint doesn't reveal which
// addresses have accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, req PasswordResetRequest) error {
	if err := validate.Validate(req); err != nil {
		return err
	}

	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Info("password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	if !user.IsActive() {
		return nil
	}

	code, err := s.otpStore.Issue(user.ID)
	if err != nil {
		return fmt.Errorf("issue reset code: %w", err)
	}

	msg := mail.ResetCodeMessage(user.Email, code, int(s.resetCodeTTL.Minutes()))
	if err := s.mailSender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send reset code: %w", err)
	}

	s.logger.Info("password reset code issued", "user_id", user.ID)
	return nil
}

// ConfirmPasswordReset redeems a one-time code, sets the new password,
// and revokes every session the user had.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, req PasswordResetConfirm) error {
	if err := validate.Validate(req); err != nil {
		return err
	}

	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.Unauthorized("invalid or expired reset code")
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	ok, err := s.otpStore.Verify(user.ID, req.Code)
	if err != nil {
		return fmt.Errorf("verify reset code: %w", err)
	}
	if !ok {
		return domainerrors.Unauthorized("invalid or expired reset code")
	}

	passwordHash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user.PasswordHash = passwordHash
	user.Touch()
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	// A reset means the old credentials may be compromised. Everyone out.
	if err := s.store.DeleteAllUserSessions(ctx, user.ID); err != nil {
		s.logger.Warn("failed to revoke sessions after password reset",
			"user_id", user.ID,
			"error", err,
		)
	}

	s.logger.Info("password reset completed", "user_id", user.ID)
	return nil
}

// VerifyAccessToken validates a bearer token and returns the user it
// belongs to. Used by the authentication middleware.
func (s *AuthService) VerifyAccessToken(ctx context.Context, tokenString string) (*domain.User, *auth.AccessClaims, error) {
	claims, err := s.tokenService.VerifyAccessToken(tokenString)
	if err != nil {
		return nil, nil, domainerrors.Unauthorized("invalid or expired token").WithCause(err)
	}

	user, err := s.store.GetUser(ctx, claims.UserID)
	if err != nil {
		return nil, nil, domainerrors.Unauthorized("invalid or expired token").WithCause(err)
	}

	if !user.IsActive() {
		return nil, nil, domainerrors.Forbidden("account is deactivated")
	}

	return user, claims, nil
}
