package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lamarqs/aria/internal/shared"
)

// countingRefresher records refresh invocations and returns a canned result.
type countingRefresher struct {
	calls  atomic.Int64
	tokens *TokenSet
	err    error
	delay  time.Duration
}

func (r *countingRefresher) Refresh(ctx context.Context, refreshToken string) (*TokenSet, error) {
	r.calls.Add(1)
	if r.delay > 0 {
		time.Sleep(r.delay)
	}
	if r.err != nil {
		return nil, r.err
	}
	return r.tokens, nil
}

func newProviderAt(store Store, refresher Refresher, now time.Time) *Provider {
	p := NewProvider(store, refresher, shared.NewLogger(io.Discard))
	p.now = func() time.Time { return now }
	return p
}

func TestProvider(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_800_000_000, 0)

	t.Run("No Credentials", func(t *testing.T) {
		p := newProviderAt(NewMemoryStore(), &countingRefresher{}, now)

		token, err := p.Token(ctx)
		if token != "" || !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got token=%q err=%v", token, err)
		}
		if p.State() != StateNoCredentials {
			t.Errorf("expected state no_credentials, got %v", p.State())
		}
	})

	t.Run("Valid Token Returned Unmodified", func(t *testing.T) {
		store := NewMemoryStore()
		store.Save(Record{AccessToken: "tok", RefreshToken: "ref", ExpiresAt: now.Unix() + 3600})
		refresher := &countingRefresher{}
		p := newProviderAt(store, refresher, now)

		token, err := p.Token(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if token != "tok" {
			t.Errorf("expected stored token, got %q", token)
		}
		if refresher.calls.Load() != 0 {
			t.Errorf("expected no refresh call, got %d", refresher.calls.Load())
		}
		if p.State() != StateValid {
			t.Errorf("expected state valid, got %v", p.State())
		}
	})

	t.Run("Within Buffer Triggers Refresh", func(t *testing.T) {
		store := NewMemoryStore()
		// 30s until expiry, inside the 60s buffer
		store.Save(Record{AccessToken: "stale", RefreshToken: "ref", ExpiresAt: now.Unix() + 30})
		refresher := &countingRefresher{tokens: &TokenSet{AccessToken: "fresh", ExpiresIn: 3600}}
		p := newProviderAt(store, refresher, now)

		token, err := p.Token(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if token != "fresh" {
			t.Errorf("expected refreshed token, got %q", token)
		}
		if refresher.calls.Load() != 1 {
			t.Errorf("expected exactly one refresh call, got %d", refresher.calls.Load())
		}
	})

	t.Run("Expired Record Refreshes And Persists", func(t *testing.T) {
		store := NewMemoryStore()
		store.Save(Record{AccessToken: "stale", RefreshToken: "ref", ExpiresAt: now.Unix() - 10})
		refresher := &countingRefresher{tokens: &TokenSet{AccessToken: "fresh", ExpiresIn: 3600}}
		p := newProviderAt(store, refresher, now)

		token, err := p.Token(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if token != "fresh" {
			t.Errorf("expected refreshed token, got %q", token)
		}

		record, ok, _ := store.Load()
		if !ok {
			t.Fatal("expected record to remain after refresh")
		}
		if record.AccessToken != "fresh" {
			t.Errorf("store should hold refreshed token, got %q", record.AccessToken)
		}
		if record.ExpiresAt != now.Unix()+3600 {
			t.Errorf("expiry must be issued_at + expires_in, got %d", record.ExpiresAt)
		}
		if record.RefreshToken != "ref" {
			t.Errorf("refresh token should be retained, got %q", record.RefreshToken)
		}
	})

	t.Run("Rotated Refresh Token Replaces Stored One", func(t *testing.T) {
		store := NewMemoryStore()
		store.Save(Record{AccessToken: "stale", RefreshToken: "old", ExpiresAt: now.Unix() - 10})
		refresher := &countingRefresher{tokens: &TokenSet{AccessToken: "fresh", RefreshToken: "rotated", ExpiresIn: 60}}
		p := newProviderAt(store, refresher, now)

		if _, err := p.Token(ctx); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		record, _, _ := store.Load()
		if record.RefreshToken != "rotated" {
			t.Errorf("expected rotated refresh token, got %q", record.RefreshToken)
		}
	})

	t.Run("Refresh Failure Clears Store Wholesale", func(t *testing.T) {
		store := NewMemoryStore()
		store.Save(Record{AccessToken: "stale", RefreshToken: "bad", ExpiresAt: now.Unix() - 10})
		refresher := &countingRefresher{err: &RefreshError{Status: 400, Detail: "invalid_grant"}}
		p := newProviderAt(store, refresher, now)

		token, err := p.Token(ctx)
		if token != "" || !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got token=%q err=%v", token, err)
		}

		if _, ok, _ := store.Load(); ok {
			t.Error("store must be fully cleared after refresh failure")
		}
		if p.State() != StateRefreshFailed {
			t.Errorf("expected state refresh_failed, got %v", p.State())
		}
	})

	t.Run("No Refresh Token Clears Store", func(t *testing.T) {
		store := NewMemoryStore()
		store.Save(Record{AccessToken: "stale", ExpiresAt: now.Unix() - 10})
		refresher := &countingRefresher{}
		p := newProviderAt(store, refresher, now)

		_, err := p.Token(ctx)
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
		if refresher.calls.Load() != 0 {
			t.Error("must not attempt refresh without a refresh token")
		}
		if _, ok, _ := store.Load(); ok {
			t.Error("store must be cleared")
		}
	})

	t.Run("Concurrent Callers Share One Refresh", func(t *testing.T) {
		store := NewMemoryStore()
		store.Save(Record{AccessToken: "stale", RefreshToken: "ref", ExpiresAt: now.Unix() - 10})
		refresher := &countingRefresher{
			tokens: &TokenSet{AccessToken: "fresh", ExpiresIn: 3600},
			delay:  20 * time.Millisecond,
		}
		p := newProviderAt(store, refresher, now)

		const callers = 10
		var wg sync.WaitGroup
		tokens := make([]string, callers)
		errs := make([]error, callers)

		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				tokens[i], errs[i] = p.Token(ctx)
			}(i)
		}
		wg.Wait()

		if got := refresher.calls.Load(); got != 1 {
			t.Errorf("expected exactly one outbound refresh, got %d", got)
		}
		for i := 0; i < callers; i++ {
			if errs[i] != nil {
				t.Errorf("caller %d: unexpected error %v", i, errs[i])
			}
			if tokens[i] != "fresh" {
				t.Errorf("caller %d: expected shared refreshed token, got %q", i, tokens[i])
			}
		}
	})

	t.Run("Invalidate Clears Store", func(t *testing.T) {
		store := NewMemoryStore()
		store.Save(Record{AccessToken: "tok", RefreshToken: "ref", ExpiresAt: now.Unix() + 3600})
		p := newProviderAt(store, &countingRefresher{}, now)

		if err := p.Invalidate(); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, ok, _ := store.Load(); ok {
			t.Error("expected store cleared after invalidate")
		}
	})
}

func TestRefreshError(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &RefreshError{Status: 400, Detail: "invalid_grant"})

	if !errors.Is(err, shared.ErrRefreshRejected) {
		t.Error("RefreshError should unwrap to ErrRefreshRejected")
	}

	var refreshErr *RefreshError
	if !errors.As(err, &refreshErr) || refreshErr.Status != 400 {
		t.Errorf("expected status 400, got %+v", refreshErr)
	}
}
