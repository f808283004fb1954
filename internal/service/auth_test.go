package service

import (
	"context"
	"strings"
	"testing"

	"github.com/flashblog/flashblog-server/internal/domain"
	domainerrors "github.com/flashblog/flashblog-server/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_Register_FirstUserIsAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp, err := env.auth.Register(ctx, RegisterRequest{
		Email:       "first@example.com",
		Password:    "correct horse battery",
		DisplayName: "First",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, resp.User.Role)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "Bearer", resp.TokenType)

	second, err := env.auth.Register(ctx, RegisterRequest{
		Email:       "second@example.com",
		Password:    "correct horse battery",
		DisplayName: "Second",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, second.User.Role)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.registerUser(t, "dup@example.com", "One")

	_, err := env.auth.Register(ctx, RegisterRequest{
		Email:       "DUP@example.com",
		Password:    "correct horse battery",
		DisplayName: "Two",
	})
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrAlreadyExists))
}

func TestAuthService_Login(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.registerUser(t, "login@example.com", "Login")

	resp, err := env.auth.Login(ctx, LoginRequest{
		Email:    "login@example.com",
		Password: "correct horse battery",
	})
	require.NoError(t, err)
	assert.Equal(t, user.ID, resp.User.ID)
	assert.NotEmpty(t, resp.AccessToken)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.registerUser(t, "user@example.com", "User")

	_, err := env.auth.Login(ctx, LoginRequest{
		Email:    "user@example.com",
		Password: "wrong password entirely",
	})
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrInvalidCredentials))

	// Unknown email gets the same error, so the response doesn't reveal
	// which addresses have accounts.
	_, err2 := env.auth.Login(ctx, LoginRequest{
		Email:    "nobody@example.com",
		Password: "wrong password entirely",
	})
	require.Error(t, err2)
	assert.Equal(t, err.Error(), err2.Error())
}

func TestAuthService_Login_InactiveAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.registerUser(t, "gone@example.com", "Gone")
	user.Active = false
	require.NoError(t, env.store.UpdateUser(ctx, user))

	_, err := env.auth.Login(ctx, LoginRequest{
		Email:    "gone@example.com",
		Password: "correct horse battery",
	})
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrForbidden))
}

func TestAuthService_RefreshRotatesToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp, err := env.auth.Register(ctx, RegisterRequest{
		Email:       "rotate@example.com",
		Password:    "correct horse battery",
		DisplayName: "Rotate",
	})
	require.NoError(t, err)

	refreshed, err := env.auth.RefreshTokens(ctx, RefreshRequest{RefreshToken: resp.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, resp.RefreshToken, refreshed.RefreshToken)
	assert.Equal(t, resp.SessionID, refreshed.SessionID)

	// The old token is dead after rotation.
	_, err = env.auth.RefreshTokens(ctx, RefreshRequest{RefreshToken: resp.RefreshToken})
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrTokenExpired))

	// The new one works.
	_, err = env.auth.RefreshTokens(ctx, RefreshRequest{RefreshToken: refreshed.RefreshToken})
	require.NoError(t, err)
}

func TestAuthService_Logout(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp, err := env.auth.Register(ctx, RegisterRequest{
		Email:       "bye@example.com",
		Password:    "correct horse battery",
		DisplayName: "Bye",
	})
	require.NoError(t, err)

	require.NoError(t, env.auth.Logout(ctx, resp.RefreshToken))

	_, err = env.auth.RefreshTokens(ctx, RefreshRequest{RefreshToken: resp.RefreshToken})
	require.Error(t, err)

	// Logging out twice is fine.
	require.NoError(t, env.auth.Logout(ctx, resp.RefreshToken))
}

func TestAuthService_PasswordReset(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first := env.registerUser(t, "reset@example.com", "Reset")

	require.NoError(t, env.auth.RequestPasswordReset(ctx, PasswordResetRequest{Email: "reset@example.com"}))

	msg, ok := env.mail.last()
	require.True(t, ok, "reset mail should have been sent")
	assert.Equal(t, "reset@example.com", msg.To)

	code := extractCode(t, msg.Body)
	require.NoError(t, env.auth.ConfirmPasswordReset(ctx, PasswordResetConfirm{
		Email:       "reset@example.com",
		Code:        code,
		NewPassword: "a brand new password",
	}))

	// Old password no longer works, new one does.
	_, err := env.auth.Login(ctx, LoginRequest{Email: "reset@example.com", Password: "correct horse battery"})
	require.Error(t, err)

	resp, err := env.auth.Login(ctx, LoginRequest{Email: "reset@example.com", Password: "a brand new password"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, resp.User.ID)

	// The code is single-use.
	err = env.auth.ConfirmPasswordReset(ctx, PasswordResetConfirm{
		Email:       "reset@example.com",
		Code:        code,
		NewPassword: "yet another password",
	})
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrUnauthorized))
}

func TestAuthService_PasswordReset_UnknownEmailSilent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.auth.RequestPasswordReset(ctx, PasswordResetRequest{Email: "ghost@example.com"}))

	_, ok := env.mail.last()
	assert.False(t, ok, "no mail for unknown addresses")
}

func TestAuthService_PasswordReset_RevokesSessions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp, err := env.auth.Register(ctx, RegisterRequest{
		Email:       "sessions@example.com",
		Password:    "correct horse battery",
		DisplayName: "Sessions",
	})
	require.NoError(t, err)

	require.NoError(t, env.auth.RequestPasswordReset(ctx, PasswordResetRequest{Email: "sessions@example.com"}))
	msg, ok := env.mail.last()
	require.True(t, ok)

	require.NoError(t, env.auth.ConfirmPasswordReset(ctx, PasswordResetConfirm{
		Email:       "sessions@example.com",
		Code:        extractCode(t, msg.Body),
		NewPassword: "a brand new password",
	}))

	// Pre-reset refresh tokens are revoked.
	_, err = env.auth.RefreshTokens(ctx, RefreshRequest{RefreshToken: resp.RefreshToken})
	require.Error(t, err)
}

func TestAuthService_VerifyAccessToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp, err := env.auth.Register(ctx, RegisterRequest{
		Email:       "verify@example.com",
		Password:    "correct horse battery",
		DisplayName: "Verify",
	})
	require.NoError(t, err)

	user, claims, err := env.auth.VerifyAccessToken(ctx, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, user.ID)
	assert.Equal(t, resp.User.ID, claims.UserID)

	_, _, err = env.auth.VerifyAccessToken(ctx, "not-a-token")
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrUnauthorized))
}

// extractCode pulls the six-digit code out of a reset mail body.
func extractCode(t *testing.T, body string) string {
	t.Helper()
	for _, field := range strings.Fields(body) {
		trimmed := strings.Trim(field, ".,:")
		if len(trimmed) == 6 && strings.Trim(trimmed, "0123456789") == "" {
			return trimmed
		}
	}
	t.Fatalf("no code found in mail body: %q", body)
	return ""
}
