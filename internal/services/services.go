// package services implements clients for external music platform APIs
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/lamarqs/aria/internal/shared"
)

// TokenSource supplies bearer tokens for outbound API calls.
//
// Implementations: the per-user access token provider (internal/auth) and the
// server's client-credentials cache (internal/server).
type TokenSource interface {
	// Token returns a currently valid access token, or
	// shared.ErrNotAuthenticated when none can be obtained.
	Token(ctx context.Context) (string, error)
	// Invalidate discards the underlying credentials after a hard
	// authentication failure.
	Invalidate() error
}

// RateLimitError reports a 429 response with the upstream's retry-after hint.
// The caller decides whether to retry; the request layer never does.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited: retry after %s", e.RetryAfter)
	}
	return "rate limited"
}

func (e *RateLimitError) Unwrap() error { return shared.ErrRateLimited }

// UpstreamError reports a non-auth API failure with its status code.
type UpstreamError struct {
	Status int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error: status %d", e.Status)
}

func (e *UpstreamError) Unwrap() error { return shared.ErrUpstream }
