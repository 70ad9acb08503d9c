package jwt

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
	TypeSSE     = "sse"

	sseTokenTTL = 5 * time.Minute
)

var ErrWrongTokenType = errors.New("unexpected token type")

type Service interface {
	GenerateAccessToken(u user.User) (token string, expiresAt int64, err error)
	GenerateRefreshToken(userID string) (token string, expiresAt int64, err error)
	GenerateSSEToken(userID string) (token string, expiresIn int, err error)
	ValidateSSEToken(tokenString string) (userID string, err error)
	ValidateRefreshToken(tokenString string) (userID string, err error)
	JWTAuth() *jwtauth.JWTAuth
	RefreshTokenCookie(token string, expiresAt int64) *http.Cookie
}

type JWTService struct {
	tokenAuth  *jwtauth.JWTAuth
	accessTTL  time.Duration
	refreshTTL time.Duration
	secure     bool
	clock      clock.Clock
}

// NewJWTService parses the token lifetimes ("15m", "168h") up front.
func NewJWTService(secretKey, accessTokenExpiration, refreshTokenExpiration string, secureCookies bool, clk clock.Clock) (Service, error) {
	accessTTL, err := time.ParseDuration(accessTokenExpiration)
	if err != nil {
		return nil, fmt.Errorf("parse access token expiration: %w", err)
	}
	refreshTTL, err := time.ParseDuration(refreshTokenExpiration)
	if err != nil {
		return nil, fmt.Errorf("parse refresh token expiration: %w", err)
	}
	if clk == nil {
		clk = clock.New()
	}

	return &JWTService{
		tokenAuth:  jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		secure:     secureCookies,
		clock:      clk,
	}, nil
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

// GenerateAccessToken carries the identity the handlers resolve on every request.
func (j *JWTService) GenerateAccessToken(u user.User) (token string, expiresAt int64, err error) {
	expiresAt = j.clock.Now().Add(j.accessTTL).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id":    u.ID,
		"email":      u.Email,
		"company_id": u.CompanyID,
		"role":       string(u.Role),
		"type":       TypeAccess,
		"exp":        expiresAt,
	})
	return tokenString, expiresAt, err
}

// GenerateRefreshToken adds a jti so two tokens issued in the same second differ.
func (j *JWTService) GenerateRefreshToken(userID string) (token string, expiresAt int64, err error) {
	expiresAt = j.clock.Now().Add(j.refreshTTL).Unix()
	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id": userID,
		"jti":     uuid.NewString(),
		"exp":     expiresAt,
		"type":    TypeRefresh,
	})
	return tokenString, expiresAt, err
}

func (j *JWTService) RefreshTokenCookie(token string, expiresAt int64) *http.Cookie {
	return &http.Cookie{
		Name:     "refresh_token",
		Value:    token,
		Path:     "/api/v1/auth",
		Expires:  time.Unix(expiresAt, 0),
		HttpOnly: true,
		Secure:   j.secure,
		SameSite: http.SameSiteStrictMode,
	}
}

// GenerateSSEToken generates a short-lived token for stream connections,
// which cannot carry an Authorization header from a browser EventSource.
func (j *JWTService) GenerateSSEToken(userID string) (token string, expiresIn int, err error) {
	expiresAt := j.clock.Now().Add(sseTokenTTL).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id": userID,
		"type":    TypeSSE,
		"exp":     expiresAt,
	})
	if err != nil {
		return "", 0, err
	}

	return tokenString, int(sseTokenTTL.Seconds()), nil
}

func (j *JWTService) ValidateSSEToken(tokenString string) (userID string, err error) {
	return j.validate(tokenString, TypeSSE)
}

func (j *JWTService) ValidateRefreshToken(tokenString string) (userID string, err error) {
	return j.validate(tokenString, TypeRefresh)
}

func (j *JWTService) validate(tokenString, wantType string) (string, error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return "", err
	}

	tokenType, ok := token.Get("type")
	if !ok || tokenType != wantType {
		return "", ErrWrongTokenType
	}

	userIDVal, ok := token.Get("user_id")
	if !ok {
		return "", jwt.ErrInvalidJWT()
	}
	userID, ok := userIDVal.(string)
	if !ok || userID == "" {
		return "", jwt.ErrInvalidJWT()
	}

	return userID, nil
}
