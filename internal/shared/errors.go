package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrCryptoUnavailable = fmt.Errorf("crypto primitive unavailable")
	ErrMissingVerifier   = fmt.Errorf("missing PKCE verifier")
	ErrNotAuthenticated  = fmt.Errorf("not authenticated")
	ErrRefreshRejected   = fmt.Errorf("token refresh rejected")
	ErrTimeout           = fmt.Errorf("operation timed out")

	// API errors surfaced by the request layer
	ErrForbidden   = fmt.Errorf("insufficient scope")
	ErrRateLimited = fmt.Errorf("rate limited")
	ErrUpstream    = fmt.Errorf("upstream error")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
