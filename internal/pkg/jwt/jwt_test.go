package jwt

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	svc, err := NewJWTService("test-secret-key-for-jwt", "1h", "24h", false, clock.New())
	require.NoError(t, err)
	return svc
}

func TestNewJWTService_BadDuration(t *testing.T) {
	_, err := NewJWTService("secret", "soon", "24h", false, nil)
	assert.Error(t, err)
}

func TestAccessTokenClaims(t *testing.T) {
	svc := newTestService(t)

	token, expiresAt, err := svc.GenerateAccessToken(user.User{
		ID:        "user-1",
		Email:     "dara@acme.test",
		CompanyID: "company-1",
		Role:      user.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Greater(t, expiresAt, int64(0))

	decoded, err := jwtauth.VerifyToken(svc.JWTAuth(), token)
	require.NoError(t, err)
	claims, err := decoded.AsMap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims["user_id"])
	assert.Equal(t, "company-1", claims["company_id"])
	assert.Equal(t, "admin", claims["role"])
	assert.Equal(t, TypeAccess, claims["type"])
}

func TestRefreshTokens(t *testing.T) {
	svc := newTestService(t)

	first, _, err := svc.GenerateRefreshToken("user-1")
	require.NoError(t, err)
	second, _, err := svc.GenerateRefreshToken("user-1")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	userID, err := svc.ValidateRefreshToken(first)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	// an SSE token is not accepted where a refresh token is expected
	sse, expiresIn, err := svc.GenerateSSEToken("user-1")
	require.NoError(t, err)
	assert.Equal(t, 300, expiresIn)
	_, err = svc.ValidateRefreshToken(sse)
	assert.ErrorIs(t, err, ErrWrongTokenType)

	userID, err = svc.ValidateSSEToken(sse)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestValidate_Garbage(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.ValidateSSEToken("not-a-token")
	assert.Error(t, err)
}
