package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/lamarqs/aria/internal/auth"
	"github.com/lamarqs/aria/internal/services"
	"github.com/lamarqs/aria/internal/shared"
)

type fakeExchanger struct {
	calls  atomic.Int32
	tokens *auth.TokenSet
	err    error
}

func (e *fakeExchanger) Exchange(ctx context.Context, code, verifier string) (*auth.TokenSet, error) {
	e.calls.Add(1)
	if e.err != nil {
		return nil, e.err
	}
	return e.tokens, nil
}

type fakeRefresher struct {
	tokens *auth.TokenSet
	err    error
}

func (r *fakeRefresher) Refresh(ctx context.Context, refreshToken string) (*auth.TokenSet, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.tokens, nil
}

func newTestAuthHandler(exchanger auth.Exchanger, refresher auth.Refresher) *AuthHandler {
	handler := NewAuthHandler(shared.SpotifyConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURI:  "http://localhost:8888/auth/callback",
		FrontendURI:  "http://localhost:3000",
	}, shared.NewLogger(nil))
	if exchanger != nil {
		handler.exchanger = exchanger
	}
	if refresher != nil {
		handler.refresher = refresher
	}
	return handler
}

func TestLoginEndpoint(t *testing.T) {
	handler := newTestAuthHandler(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/auth/login", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}

	location, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("bad redirect location: %v", err)
	}
	if location.Host != "accounts.spotify.com" {
		t.Errorf("redirect host = %q, want accounts.spotify.com", location.Host)
	}

	query := location.Query()
	if query.Get("code_challenge_method") != "S256" {
		t.Errorf("code_challenge_method = %q, want S256", query.Get("code_challenge_method"))
	}
	if query.Get("code_challenge") == "" {
		t.Error("missing code_challenge")
	}
	if query.Get("code_verifier") != "" {
		t.Error("verifier must never leave the server")
	}

	state := query.Get("state")
	if state == "" {
		t.Fatal("missing state")
	}
	if _, ok := handler.flows.Take(state); !ok {
		t.Error("verifier not stored for the issued state")
	}
}

func TestCallbackEndpoint(t *testing.T) {
	t.Run("error param redirects without exchange", func(t *testing.T) {
		exchanger := &fakeExchanger{}
		handler := newTestAuthHandler(exchanger, nil)

		req := httptest.NewRequest(http.MethodGet, "/auth/callback?error=access_denied", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusFound {
			t.Fatalf("status = %d, want 302", rec.Code)
		}
		location := rec.Header().Get("Location")
		if !strings.Contains(location, "error=access_denied") {
			t.Errorf("redirect missing error code: %s", location)
		}
		if exchanger.calls.Load() != 0 {
			t.Errorf("exchange called %d times, want 0", exchanger.calls.Load())
		}
	})

	t.Run("unknown state redirects with state_mismatch", func(t *testing.T) {
		exchanger := &fakeExchanger{}
		handler := newTestAuthHandler(exchanger, nil)

		req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=abc&state=forged", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if !strings.Contains(rec.Header().Get("Location"), "error=state_mismatch") {
			t.Errorf("expected state_mismatch redirect, got %s", rec.Header().Get("Location"))
		}
		if exchanger.calls.Load() != 0 {
			t.Errorf("exchange called %d times, want 0", exchanger.calls.Load())
		}
	})

	t.Run("successful exchange redirects with tokens", func(t *testing.T) {
		exchanger := &fakeExchanger{tokens: &auth.TokenSet{
			AccessToken:  "access-1",
			RefreshToken: "refresh-1",
			ExpiresIn:    3600,
		}}
		handler := newTestAuthHandler(exchanger, nil)
		handler.flows.Put("state-1", "verifier-1")

		req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=abc&state=state-1", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		location, err := url.Parse(rec.Header().Get("Location"))
		if err != nil {
			t.Fatalf("bad redirect location: %v", err)
		}
		if !strings.HasPrefix(location.Path, "/callback") {
			t.Errorf("redirect path = %q, want /callback", location.Path)
		}

		query := location.Query()
		if query.Get("access_token") != "access-1" {
			t.Errorf("access_token = %q", query.Get("access_token"))
		}
		if query.Get("refresh_token") != "refresh-1" {
			t.Errorf("refresh_token = %q", query.Get("refresh_token"))
		}
		if query.Get("expires_in") != "3600" {
			t.Errorf("expires_in = %q", query.Get("expires_in"))
		}
	})
}

func TestRefreshEndpoint(t *testing.T) {
	t.Run("missing refresh_token responds 400 with error field", func(t *testing.T) {
		handler := newTestAuthHandler(nil, nil)

		req := httptest.NewRequest(http.MethodPost, "/auth/refresh", strings.NewReader("{}"))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"error"`) {
			t.Errorf("body missing error field: %s", rec.Body.String())
		}
	})

	t.Run("misconfigured server responds 500", func(t *testing.T) {
		handler := newTestAuthHandler(nil, nil)
		handler.oauth = services.NewOAuthConfig(shared.SpotifyConfig{})

		body := strings.NewReader(`{"refresh_token":"rt"}`)
		req := httptest.NewRequest(http.MethodPost, "/auth/refresh", body)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", rec.Code)
		}
	})

	t.Run("forwards upstream rejection status", func(t *testing.T) {
		refresher := &fakeRefresher{err: &auth.RefreshError{Status: http.StatusBadRequest, Detail: "invalid_grant"}}
		handler := newTestAuthHandler(nil, refresher)

		body := strings.NewReader(`{"refresh_token":"revoked"}`)
		req := httptest.NewRequest(http.MethodPost, "/auth/refresh", body)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want forwarded 400", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "invalid_grant") {
			t.Errorf("body missing upstream detail: %s", rec.Body.String())
		}
	})

	t.Run("returns new token on success", func(t *testing.T) {
		refresher := &fakeRefresher{tokens: &auth.TokenSet{AccessToken: "fresh", ExpiresIn: 3600}}
		handler := newTestAuthHandler(nil, refresher)

		body := strings.NewReader(`{"refresh_token":"rt"}`)
		req := httptest.NewRequest(http.MethodPost, "/auth/refresh", body)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"access_token":"fresh"`) {
			t.Errorf("body missing access_token: %s", rec.Body.String())
		}
	})

	t.Run("rejects GET", func(t *testing.T) {
		handler := newTestAuthHandler(nil, nil)

		req := httptest.NewRequest(http.MethodGet, "/auth/refresh", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want 405", rec.Code)
		}
	})
}
