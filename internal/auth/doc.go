// Package auth implements the OAuth token lifecycle for the Spotify Web API.
//
// # Components
//
// [PKCE] generates the verifier/challenge pair for the authorization-code flow.
//
// [Store] persists the credential record (access token, refresh token, expiry)
// in durable storage; [SQLiteStore] is the default implementation and
// [MemoryStore] backs tests and short-lived sessions.
//
// [Provider] is the single chokepoint all outbound calls obtain tokens from.
// It checks expiry against a 60-second safety buffer, refreshes through a
// [Refresher] when stale, and serializes concurrent refreshes so at most one
// outbound refresh request is in flight per credential record.
//
// [Callback] completes the authorization-code exchange. It is an explicit
// state machine (AwaitingCode → Exchanging → Success|Error) whose transition
// table forbids a second exchange for the same authorization code, because
// authorization codes are single-use and callers may invoke the handler twice
// for one navigation.
//
// [LoginHandler] adapts [Callback] to a loopback HTTP listener for the CLI
// login flow, delivering the outcome through a result channel.
package auth
