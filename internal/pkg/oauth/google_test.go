package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newFakeGoogle(t *testing.T, verified bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "access-123",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(GoogleInformation{
			GoogleID:      "google-123",
			Email:         "dara@acme.test",
			VerifiedEmail: verified,
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestGoogleService(srv *httptest.Server) *GoogleServiceImpl {
	svc := NewGoogleService(GoogleConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost/callback",
	}).(*GoogleServiceImpl)
	svc.config.Endpoint = oauth2.Endpoint{
		AuthURL:   srv.URL + "/auth",
		TokenURL:  srv.URL + "/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}
	svc.userInfoURL = srv.URL + "/userinfo"
	return svc
}

func TestGoogleService_Exchange(t *testing.T) {
	svc := newTestGoogleService(newFakeGoogle(t, true))

	info, err := svc.Exchange(context.Background(), "code-1")

	require.NoError(t, err)
	assert.Equal(t, "google-123", info.GoogleID)
	assert.Equal(t, "dara@acme.test", info.Email)
}

func TestGoogleService_ExchangeUnverified(t *testing.T) {
	svc := newTestGoogleService(newFakeGoogle(t, false))

	_, err := svc.Exchange(context.Background(), "code-1")

	assert.ErrorIs(t, err, ErrEmailNotVerified)
}

func TestGoogleService_StateAndRedirect(t *testing.T) {
	svc := newTestGoogleService(newFakeGoogle(t, true))

	first, err := svc.GenerateState()
	require.NoError(t, err)
	second, err := svc.GenerateState()
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	redirect, err := url.Parse(svc.RedirectURL(first))
	require.NoError(t, err)
	assert.Equal(t, first, redirect.Query().Get("state"))
	assert.Equal(t, "client", redirect.Query().Get("client_id"))
}
