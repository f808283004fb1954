package auth

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flashblog/flashblog-server/internal/domain"
)

const testKeyHex = "707172737475767778797a7b7c7d7e7f808182838485868788898a8b8c8d8e8f"

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	svc, err := NewTokenService(testKeyHex, 15*time.Minute, 720*time.Hour)
	require.NoError(t, err)
	return svc
}

func testUser() *domain.User {
	return &domain.User{
		Timestamps: domain.Timestamps{ID: "user-V1StGXR8Z5jdHi6BmyT"},
		Email:      "author@example.com",
		Role:       domain.RoleAdmin,
	}
}

func TestNewTokenService_KeyValidation(t *testing.T) {
	tests := []struct {
		name    string
		keyHex  string
		wantErr bool
	}{
		{name: "valid key", keyHex: testKeyHex},
		{name: "too short", keyHex: "abcd", wantErr: true},
		{name: "not hex", keyHex: strings.Repeat("z", 64), wantErr: true},
		{name: "empty", keyHex: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTokenService(tt.keyHex, time.Minute, time.Hour)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTokenService_AccessTokenRoundTrip(t *testing.T) {
	svc := newTestTokenService(t)
	user := testUser()

	tokenString, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(tokenString, "v4.local."))

	claims, err := svc.VerifyAccessToken(tokenString)
	require.NoError(t, err)

	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, "admin", claims.Role)
	assert.True(t, claims.IsAdmin())
	assert.Equal(t, user.ID, claims.Subject)
	assert.NotEmpty(t, claims.TokenID)
	assert.True(t, claims.Expiration.After(time.Now()))
}

func TestTokenService_VerifyRejectsExpired(t *testing.T) {
	svc, err := NewTokenService(testKeyHex, -time.Minute, time.Hour)
	require.NoError(t, err)

	tokenString, err := svc.GenerateAccessToken(testUser())
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(tokenString)
	assert.Error(t, err)
}

func TestTokenService_VerifyRejectsWrongKey(t *testing.T) {
	svc := newTestTokenService(t)
	tokenString, err := svc.GenerateAccessToken(testUser())
	require.NoError(t, err)

	otherKeyHex := strings.Repeat("0f", 32)
	other, err := NewTokenService(otherKeyHex, 15*time.Minute, time.Hour)
	require.NoError(t, err)

	_, err = other.VerifyAccessToken(tokenString)
	assert.Error(t, err)
}

func TestTokenService_VerifyRejectsGarbage(t *testing.T) {
	svc := newTestTokenService(t)

	_, err := svc.VerifyAccessToken("not-a-token")
	assert.Error(t, err)
}

func TestGenerateRefreshToken(t *testing.T) {
	svc := newTestTokenService(t)

	token1, err := svc.GenerateRefreshToken()
	require.NoError(t, err)
	token2, err := svc.GenerateRefreshToken()
	require.NoError(t, err)

	assert.NotEqual(t, token1, token2)

	decoded, err := base64.URLEncoding.DecodeString(token1)
	require.NoError(t, err)
	assert.Len(t, decoded, refreshTokenSize)
}

func TestHashRefreshToken(t *testing.T) {
	svc := newTestTokenService(t)

	token, err := svc.GenerateRefreshToken()
	require.NoError(t, err)

	hash := HashRefreshToken(token)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, token, hash)

	// Hashing is deterministic so the stored value can be matched later.
	assert.Equal(t, hash, HashRefreshToken(token))
}
