package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/lamarqs/aria/internal/services"
	"github.com/lamarqs/aria/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// appTokenMargin renews the application token this long before its
// stated expiry so a token never goes stale mid-request.
const appTokenMargin = 60 * time.Second

// appTokenTimeout bounds the client-credentials fetch. The cache lock is
// held across the fetch, so an unbounded hang would stall every caller.
const appTokenTimeout = 15 * time.Second

// AppTokenCache vends application access tokens obtained with the
// client-credentials grant. The token is cached process-wide; expiry is
// checked with an early margin and at most one fetch is in flight at a
// time, with waiters reusing its result.
//
// Implements [services.TokenSource] so catalog endpoints can share the
// typed client with user-token call sites.
type AppTokenCache struct {
	config     *clientcredentials.Config
	httpClient *http.Client
	now        func() time.Time

	mu    sync.Mutex
	token *oauth2.Token
}

var _ services.TokenSource = (*AppTokenCache)(nil)

// NewAppTokenCache builds a cache for the given application credentials.
func NewAppTokenCache(cfg shared.SpotifyConfig) (*AppTokenCache, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("%w: client id and secret are required for app tokens", shared.ErrMissingCredentials)
	}

	return &AppTokenCache{
		config: &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     services.TokenURL(),
		},
		httpClient: &http.Client{Timeout: appTokenTimeout},
		now:        time.Now,
	}, nil
}

// Token returns a usable application access token, fetching a new one
// when the cached token is absent or inside the renewal margin.
func (c *AppTokenCache) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fresh() {
		return c.token.AccessToken, nil
	}

	// Bound the fetch; an unresponsive token endpoint must fail, not hang.
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	token, err := c.config.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("client credentials grant failed: %w", err)
	}

	c.token = token
	return token.AccessToken, nil
}

// Invalidate drops the cached token so the next call fetches a new one.
// Used when the upstream rejects a token before its stated expiry.
func (c *AppTokenCache) Invalidate() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = nil
	return nil
}

// fresh reports whether the cached token is still safely usable.
// Caller holds the lock.
func (c *AppTokenCache) fresh() bool {
	if c.token == nil || c.token.AccessToken == "" {
		return false
	}
	if c.token.Expiry.IsZero() {
		return true
	}
	return c.now().Before(c.token.Expiry.Add(-appTokenMargin))
}
