package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lamarqs/aria/internal/shared"
)

// requestTimeout bounds every outbound token-endpoint call so an unresponsive
// issuer surfaces a failure instead of hanging.
const requestTimeout = 15 * time.Second

// TokenSet is the token endpoint's response to an exchange or refresh.
type TokenSet struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in"`
}

// RefreshError reports a rejected refresh with the upstream status and detail.
type RefreshError struct {
	Status int
	Detail string
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("token refresh rejected: status %d: %s", e.Status, e.Detail)
}

func (e *RefreshError) Unwrap() error { return shared.ErrRefreshRejected }

// Refresher exchanges a refresh token for a new access token.
//
// Implementations are idempotent from the caller's perspective: repeated calls
// with the same still-valid refresh token each yield a fresh access token.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*TokenSet, error)
}

// IssuerRefresher refreshes directly against the external token endpoint using
// HTTP Basic authentication with client id/secret. This requires the client
// secret, so it only runs in trusted contexts (the backend proxy or the CLI
// process), never in a browser.
type IssuerRefresher struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Client       *http.Client
}

// NewIssuerRefresher creates a refresher for the given token endpoint.
func NewIssuerRefresher(tokenURL, clientID, clientSecret string) *IssuerRefresher {
	return &IssuerRefresher{
		TokenURL:     tokenURL,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Client:       &http.Client{Timeout: requestTimeout},
	}
}

// Refresh posts a refresh_token grant and parses the resulting token set.
func (r *IssuerRefresher) Refresh(ctx context.Context, refreshToken string) (*TokenSet, error) {
	if refreshToken == "" {
		return nil, &RefreshError{Status: http.StatusBadRequest, Detail: "no refresh token"}
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(r.ClientID, r.ClientSecret)

	return doTokenRequest(r.Client, req)
}

// ProxyRefresher refreshes through the backend token proxy's /auth/refresh
// endpoint, for clients that must not hold the client secret.
type ProxyRefresher struct {
	BaseURL string
	Client  *http.Client
}

// NewProxyRefresher creates a refresher targeting the backend proxy at baseURL.
func NewProxyRefresher(baseURL string) *ProxyRefresher {
	return &ProxyRefresher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: requestTimeout},
	}
}

// Refresh posts {refresh_token} as JSON and parses {access_token, expires_in}.
func (r *ProxyRefresher) Refresh(ctx context.Context, refreshToken string) (*TokenSet, error) {
	if refreshToken == "" {
		return nil, &RefreshError{Status: http.StatusBadRequest, Detail: "no refresh token"}
	}

	body, err := json.Marshal(map[string]string{"refresh_token": refreshToken})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal refresh body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.BaseURL+"/auth/refresh", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return doTokenRequest(r.Client, req)
}

// doTokenRequest performs a token-endpoint request, mapping non-2xx responses
// to [RefreshError] with the upstream status and detail.
func doTokenRequest(client *http.Client, req *http.Request) (*TokenSet, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRefreshRejected, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RefreshError{Status: resp.StatusCode, Detail: errorDetail(data)}
	}

	var tokens TokenSet
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if tokens.AccessToken == "" {
		return nil, &RefreshError{Status: resp.StatusCode, Detail: "response missing access_token"}
	}

	return &tokens, nil
}

// errorDetail pulls a short diagnostic out of an OAuth error body.
func errorDetail(data []byte) string {
	var body struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Error != "" {
		if body.ErrorDescription != "" {
			return body.Error + ": " + body.ErrorDescription
		}
		return body.Error
	}

	detail := string(data)
	if len(detail) > 200 {
		detail = detail[:200]
	}
	return detail
}
