package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lamarqs/aria/internal/shared"
)

// ExpiryBuffer is the safety margin before the recorded expiry at which a
// token is treated as stale.
const ExpiryBuffer = 60 * time.Second

// State describes the provider's position in the token lifecycle.
type State int

const (
	StateNoCredentials State = iota
	StateValid
	StateExpired
	StateRefreshing
	StateRefreshFailed
)

func (s State) String() string {
	switch s {
	case StateNoCredentials:
		return "no_credentials"
	case StateValid:
		return "valid"
	case StateExpired:
		return "expired"
	case StateRefreshing:
		return "refreshing"
	case StateRefreshFailed:
		return "refresh_failed"
	default:
		return "unknown"
	}
}

// Provider is the single chokepoint all outbound calls obtain access tokens
// from. It loads the credential record, returns the stored token while fresh,
// and refreshes through its [Refresher] once the expiry buffer is reached.
//
// Refreshes are serialized: concurrent Token callers during an in-flight
// refresh block on the same mutex and observe the refreshed record on their
// re-check rather than issuing their own refresh request.
type Provider struct {
	store     Store
	refresher Refresher
	logger    *log.Logger
	now       func() time.Time

	mu    sync.Mutex // serializes the refresh path
	state State
}

// NewProvider creates a Provider over the given store and refresher.
func NewProvider(store Store, refresher Refresher, logger *log.Logger) *Provider {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Provider{
		store:     store,
		refresher: refresher,
		logger:    logger,
		now:       time.Now,
		state:     StateNoCredentials,
	}
}

// State reports the most recent lifecycle state.
func (p *Provider) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Token returns a valid access token, refreshing if the stored one is within
// [ExpiryBuffer] of expiry. The absence of a usable token is always signaled
// by shared.ErrNotAuthenticated, never a panic, so callers decide whether to
// prompt a re-login.
func (p *Provider) Token(ctx context.Context) (string, error) {
	record, ok, err := p.store.Load()
	if err != nil {
		p.logger.Error("failed to load credentials", "error", err)
		return "", fmt.Errorf("%w: %v", shared.ErrNotAuthenticated, err)
	}
	if !ok {
		p.setState(StateNoCredentials)
		return "", shared.ErrNotAuthenticated
	}

	if p.fresh(record) {
		p.setState(StateValid)
		return record.AccessToken, nil
	}

	return p.refresh(ctx)
}

// Invalidate clears the credential record wholesale. Called by the request
// layer on a hard authentication failure.
func (p *Provider) Invalidate() error {
	p.setState(StateNoCredentials)
	return p.store.Clear()
}

// refresh serializes the refresh path. The record is re-loaded after the lock
// is acquired: a concurrent caller may have completed the refresh while this
// one waited, in which case the fresh token is returned without a second
// outbound request.
func (p *Provider) refresh(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	record, ok, err := p.store.Load()
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrNotAuthenticated, err)
	}
	if !ok {
		p.state = StateNoCredentials
		return "", shared.ErrNotAuthenticated
	}
	if p.fresh(record) {
		p.state = StateValid
		return record.AccessToken, nil
	}

	p.state = StateExpired
	if record.RefreshToken == "" {
		p.logger.Warn("access token expired with no refresh token")
		p.state = StateRefreshFailed
		p.store.Clear()
		return "", shared.ErrNotAuthenticated
	}

	p.state = StateRefreshing
	issuedAt := p.now()
	tokens, err := p.refresher.Refresh(ctx, record.RefreshToken)
	if err != nil {
		p.logger.Error("token refresh failed", "error", err)
		p.state = StateRefreshFailed
		// A failed refresh clears all fields together; no partial record may
		// remain in storage.
		if clearErr := p.store.Clear(); clearErr != nil {
			p.logger.Error("failed to clear credentials after refresh failure", "error", clearErr)
		}
		return "", fmt.Errorf("%w: %v", shared.ErrNotAuthenticated, err)
	}

	refreshed := Record{
		AccessToken:  tokens.AccessToken,
		RefreshToken: record.RefreshToken,
		ExpiresAt:    issuedAt.Unix() + tokens.ExpiresIn,
	}
	// The issuer decides whether the refresh token rotates.
	if tokens.RefreshToken != "" {
		refreshed.RefreshToken = tokens.RefreshToken
	}

	if err := p.store.Save(refreshed); err != nil {
		p.logger.Error("failed to persist refreshed credentials", "error", err)
		return "", fmt.Errorf("%w: %v", shared.ErrNotAuthenticated, err)
	}

	p.logger.Debug("access token refreshed", "expires_at", refreshed.ExpiresAt)
	p.state = StateValid
	return refreshed.AccessToken, nil
}

// fresh reports whether the record's token is still usable given the buffer.
func (p *Provider) fresh(record Record) bool {
	return p.now().Unix() < record.ExpiresAt-int64(ExpiryBuffer.Seconds())
}

func (p *Provider) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}
