// Package server implements the backend token proxy and catalog API.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Token Proxy
//
// The browser never sees the client secret. Three endpoints carry the whole
// authorization dance on its behalf:
//
//	GET  /auth/login    → redirect to the authorization server with state + PKCE challenge
//	GET  /auth/callback → exchange the code, redirect to the frontend with tokens
//	POST /auth/refresh  → forward a refresh_token grant, relay the upstream verdict
//
// The PKCE verifier generated at /auth/login is held server-side keyed by the
// state value and consumed exactly once at /auth/callback.
//
// # Catalog API
//
// Browse endpoints under /api/spotify/ serve uniform card lists using the
// application's own client-credentials token. That token is cached
// process-wide with an early-expiry margin and a single in-flight fetch.
package server
