package auth

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lamarqs/aria/internal/shared"
)

// CallbackState enumerates the callback exchange lifecycle.
type CallbackState int

const (
	CallbackAwaitingCode CallbackState = iota
	CallbackExchanging
	CallbackSuccess
	CallbackError
)

func (s CallbackState) String() string {
	switch s {
	case CallbackAwaitingCode:
		return "awaiting_code"
	case CallbackExchanging:
		return "exchanging"
	case CallbackSuccess:
		return "success"
	case CallbackError:
		return "error"
	default:
		return "unknown"
	}
}

// Exchanger submits an authorization code plus PKCE verifier to the token
// endpoint and returns the granted token set.
type Exchanger interface {
	Exchange(ctx context.Context, code, verifier string) (*TokenSet, error)
}

// Callback completes the authorization-code exchange and populates the
// credential store.
//
// It is a state machine: AwaitingCode → Exchanging → Success|Error. The
// transition table forbids re-entering Exchanging from a terminal state, so a
// repeated invocation with the same authorization code is a no-op rather than
// a second exchange attempt (authorization codes are single-use). A caller
// that arrives while an exchange is in flight waits for that exchange's
// outcome instead of starting its own.
type Callback struct {
	store    Store
	exch     Exchanger
	logger   *log.Logger
	now      func() time.Time
	verifier string

	mu     sync.Mutex
	state  CallbackState
	closed bool
	done   chan struct{} // closed when the exchange settles
	err    error
}

// NewCallback creates a callback for one login attempt. The verifier is the
// PKCE verifier stored before the redirect; it is consumed by the first
// Handle call and never leaks into a later attempt.
func NewCallback(store Store, exch Exchanger, verifier string, logger *log.Logger) *Callback {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Callback{
		store:    store,
		exch:     exch,
		logger:   logger,
		now:      time.Now,
		verifier: verifier,
		state:    CallbackAwaitingCode,
		done:     make(chan struct{}),
	}
}

// State reports the current position in the exchange lifecycle.
func (c *Callback) State() CallbackState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Close abandons the callback. An in-flight exchange is left to finish but its
// result is discarded: once closed, the callback never writes the credential
// store, so token activity the user started after navigating away cannot be
// clobbered by a late exchange response.
func (c *Callback) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

// Handle consumes the redirect query parameters and drives the exchange.
//
// An `error` parameter or a missing verifier fails closed without contacting
// the token endpoint. On success the credential store holds the new record.
func (c *Callback) Handle(ctx context.Context, params url.Values) error {
	c.mu.Lock()

	switch c.state {
	case CallbackSuccess:
		c.mu.Unlock()
		return nil
	case CallbackError:
		err := c.err
		c.mu.Unlock()
		return err
	case CallbackExchanging:
		// Ride the in-flight exchange.
		c.mu.Unlock()
		select {
		case <-c.done:
			return c.outcome()
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if errParam := params.Get("error"); errParam != "" {
		return c.fail(fmt.Errorf("authorization failed: %s", errParam))
	}

	code := params.Get("code")
	if code == "" {
		return c.fail(fmt.Errorf("%w: callback missing code parameter", shared.ErrInvalidInput))
	}

	verifier := c.verifier
	c.verifier = "" // single use, success or failure
	if verifier == "" {
		// Expired attempt or replayed/forged callback.
		return c.fail(shared.ErrMissingVerifier)
	}

	c.state = CallbackExchanging
	c.mu.Unlock()

	issuedAt := c.now()
	tokens, err := c.exch.Exchange(ctx, code, verifier)

	c.mu.Lock()
	if err != nil {
		c.logger.Error("token exchange failed", "error", err)
		return c.fail(fmt.Errorf("token exchange failed: %w", err))
	}

	if c.closed {
		// The user already navigated onward; do not write a late, conflicting
		// credential update.
		return c.fail(fmt.Errorf("callback abandoned before exchange completed"))
	}

	record := Record{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresAt:    issuedAt.Unix() + tokens.ExpiresIn,
	}
	if err := c.store.Save(record); err != nil {
		return c.fail(fmt.Errorf("failed to persist credentials: %w", err))
	}

	c.state = CallbackSuccess
	c.mu.Unlock()
	close(c.done)
	return nil
}

// fail moves to the terminal error state. Caller must hold c.mu.
func (c *Callback) fail(err error) error {
	c.state = CallbackError
	c.err = err
	c.mu.Unlock()
	close(c.done)
	return err
}

// outcome returns the settled result after done is closed.
func (c *Callback) outcome() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == CallbackSuccess {
		return nil
	}
	return c.err
}
