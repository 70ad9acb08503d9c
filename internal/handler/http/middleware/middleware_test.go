package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/ratelimit"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

type countingLimiter struct {
	counts map[string]int
	err    error
}

func (c *countingLimiter) Allow(_ context.Context, key string, rule ratelimit.Rule) (ratelimit.Result, error) {
	if c.err != nil {
		return ratelimit.Result{}, c.err
	}
	c.counts[key]++
	remaining := rule.Limit - c.counts[key]
	if remaining < 0 {
		return ratelimit.Result{Allowed: false, Limit: rule.Limit, ResetAt: time.Now().Add(rule.Window)}, nil
	}
	return ratelimit.Result{Allowed: true, Remaining: remaining, Limit: rule.Limit, ResetAt: time.Now().Add(rule.Window)}, nil
}

func TestRateLimit_RejectsOverLimit(t *testing.T) {
	limiter := &countingLimiter{counts: map[string]int{}}
	h := RateLimit(limiter, "login", ratelimit.Rule{Limit: 2, Window: time.Minute}, KeyByIP)(okHandler)

	var codes []int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
		if i == 2 {
			assert.NotEmpty(t, rec.Header().Get("Retry-After"))
			assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
		}
	}

	assert.Equal(t, []int{200, 200, 429}, codes)
	assert.Equal(t, 3, limiter.counts["login:ip:10.0.0.1"])
}

func TestRateLimit_FailsOpen(t *testing.T) {
	limiter := &countingLimiter{err: errors.New("redis: connection refused")}
	h := RateLimit(limiter, "login", ratelimit.Rule{Limit: 1, Window: time.Minute}, KeyByIP)(okHandler)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestKeyByUser(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	assert.Equal(t, "ip:10.0.0.2", KeyByUser(req))

	req = req.WithContext(WithIdentity(req.Context(), user.Identity{UserID: "user-1", CompanyID: "c", Role: user.RoleUser}))
	assert.Equal(t, "user:user-1", KeyByUser(req))
}

func newAuthRouter(t *testing.T, svc jwt.Service) http.Handler {
	t.Helper()
	r := chi.NewRouter()
	r.Use(jwtauth.Verifier(svc.JWTAuth()))
	r.Use(AuthRequired)
	r.Get("/me", func(w http.ResponseWriter, r *http.Request) {
		identity, ok := GetIdentity(r.Context())
		require.True(t, ok)
		w.Write([]byte(identity.UserID + "|" + identity.CompanyID + "|" + string(identity.Role)))
	})
	r.With(AdminOnly).Get("/admin", okHandler)
	r.With(RequirePermission(user.PermissionReportsView)).Get("/reports", okHandler)
	return r
}

func TestAuthRequired(t *testing.T) {
	svc, err := jwt.NewJWTService("test-secret", "15m", "24h", false, clock.New())
	require.NoError(t, err)
	router := newAuthRouter(t, svc)

	member := user.User{ID: "user-1", CompanyID: "company-1", Email: "a@acme.test", Role: user.RoleUser}
	access, _, err := svc.GenerateAccessToken(member)
	require.NoError(t, err)
	refresh, _, err := svc.GenerateRefreshToken("user-1")
	require.NoError(t, err)

	get := func(path, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := get("/me", access)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1|company-1|user", rec.Body.String())

	assert.Equal(t, http.StatusUnauthorized, get("/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get("/me", refresh).Code, "refresh tokens are not access tokens")
	assert.Equal(t, http.StatusForbidden, get("/admin", access).Code)
	assert.Equal(t, http.StatusForbidden, get("/reports", access).Code)

	admin := member
	admin.Role = user.RoleAdmin
	adminToken, _, err := svc.GenerateAccessToken(admin)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, get("/admin", adminToken).Code)
	assert.Equal(t, http.StatusOK, get("/reports", adminToken).Code)
}
