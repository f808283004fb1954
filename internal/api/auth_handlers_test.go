package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_ReturnsTokens(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":        "new@example.com",
		"password":     "correct horse battery",
		"display_name": "New User",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[AuthResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	assert.True(t, envelope.Success)
	assert.NotEmpty(t, envelope.Data.AccessToken)
	assert.NotEmpty(t, envelope.Data.RefreshToken)
	assert.Equal(t, "Bearer", envelope.Data.TokenType)
	assert.Positive(t, envelope.Data.ExpiresIn)
	assert.Equal(t, "new@example.com", envelope.Data.User.Email)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ts := setupTestServer(t)

	ts.registerUser(t, "dupe@example.com")

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":        "dupe@example.com",
		"password":     "correct horse battery",
		"display_name": "Dupe",
	})
	assert.Equal(t, http.StatusConflict, resp.Code)

	var envelope testEnvelope[struct{}]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.False(t, envelope.Success)
	assert.NotEmpty(t, envelope.Error)
}

func TestRegister_InvalidBody(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":        "not-an-email",
		"password":     "short",
		"display_name": "",
	})
	assert.GreaterOrEqual(t, resp.Code, http.StatusBadRequest)
	assert.Less(t, resp.Code, http.StatusInternalServerError)
}

func TestLogin_Success(t *testing.T) {
	ts := setupTestServer(t)

	ts.registerUser(t, "login@example.com")

	resp := ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "login@example.com",
		"password": "correct horse battery",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[AuthResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.NotEmpty(t, envelope.Data.AccessToken)
}

func TestLogin_WrongPassword(t *testing.T) {
	ts := setupTestServer(t)

	ts.registerUser(t, "login@example.com")

	resp := ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "login@example.com",
		"password": "wrong password entirely",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestLogin_UnknownEmailSameError(t *testing.T) {
	ts := setupTestServer(t)

	ts.registerUser(t, "login@example.com")

	wrongPass := ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "login@example.com",
		"password": "wrong password entirely",
	})
	unknown := ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "nobody@example.com",
		"password": "wrong password entirely",
	})

	// Both failures must be indistinguishable.
	assert.Equal(t, wrongPass.Code, unknown.Code)

	var a, b testEnvelope[struct{}]
	require.NoError(t, json.Unmarshal(wrongPass.Body.Bytes(), &a))
	require.NoError(t, json.Unmarshal(unknown.Body.Bytes(), &b))
	assert.Equal(t, a.Error, b.Error)
	assert.Equal(t, a.Code, b.Code)
}

func TestRefresh_RotatesToken(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":        "rotate@example.com",
		"password":     "correct horse battery",
		"display_name": "Rotate",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var first testEnvelope[AuthResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &first))

	resp = ts.api.Post("/api/v1/auth/refresh", map[string]any{
		"refresh_token": first.Data.RefreshToken,
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var second testEnvelope[AuthResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &second))
	assert.NotEmpty(t, second.Data.RefreshToken)
	assert.NotEqual(t, first.Data.RefreshToken, second.Data.RefreshToken)

	// The old refresh token is spent.
	resp = ts.api.Post("/api/v1/auth/refresh", map[string]any{
		"refresh_token": first.Data.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestLogout_RevokesSession(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":        "bye@example.com",
		"password":     "correct horse battery",
		"display_name": "Bye",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[AuthResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	resp = ts.api.Post("/api/v1/auth/logout", map[string]any{
		"refresh_token": envelope.Data.RefreshToken,
	})
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Post("/api/v1/auth/refresh", map[string]any{
		"refresh_token": envelope.Data.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestPasswordReset_FullFlow(t *testing.T) {
	ts := setupTestServer(t)

	ts.registerUser(t, "reset@example.com")

	resp := ts.api.Post("/api/v1/auth/password-reset/request", map[string]any{
		"email": "reset@example.com",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	msg, ok := ts.mail.last()
	require.True(t, ok, "a reset email should have been sent")
	assert.Equal(t, "reset@example.com", msg.To)

	code := extractResetCode(t, msg.Body)

	resp = ts.api.Post("/api/v1/auth/password-reset/confirm", map[string]any{
		"email":        "reset@example.com",
		"code":         code,
		"new_password": "a brand new password",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	// Old password out, new password in.
	resp = ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "reset@example.com",
		"password": "correct horse battery",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "reset@example.com",
		"password": "a brand new password",
	})
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestPasswordReset_UnknownEmailStillOK(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/auth/password-reset/request", map[string]any{
		"email": "ghost@example.com",
	})
	assert.Equal(t, http.StatusOK, resp.Code)

	_, ok := ts.mail.last()
	assert.False(t, ok, "no email should be sent for unknown addresses")
}

func TestPasswordReset_BadCode(t *testing.T) {
	ts := setupTestServer(t)

	ts.registerUser(t, "reset@example.com")

	resp := ts.api.Post("/api/v1/auth/password-reset/request", map[string]any{
		"email": "reset@example.com",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Post("/api/v1/auth/password-reset/confirm", map[string]any{
		"email":        "reset@example.com",
		"code":         "000000",
		"new_password": "a brand new password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

// extractResetCode pulls the six-digit code out of a reset email body.
func extractResetCode(t *testing.T, body string) string {
	t.Helper()

	for _, field := range strings.Fields(body) {
		field = strings.Trim(field, ".,:")
		if len(field) != 6 {
			continue
		}
		allDigits := true
		for _, r := range field {
			if r < '0' || r > '9' {
				allDigits = false
				break
			}
		}
		if allDigits {
			return field
		}
	}

	t.Fatalf("no reset code found in body: %q", body)
	return ""
}
