package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// CodeExchanger performs the confidential authorization-code exchange through
// [oauth2.Config], attaching the PKCE verifier alongside the client secret.
type CodeExchanger struct {
	Config *oauth2.Config
}

// NewCodeExchanger wraps an OAuth2 config for code exchange.
func NewCodeExchanger(config *oauth2.Config) *CodeExchanger {
	return &CodeExchanger{Config: config}
}

// Exchange submits code + verifier + redirect URI to the token endpoint.
func (e *CodeExchanger) Exchange(ctx context.Context, code, verifier string) (*TokenSet, error) {
	// Bound the exchange; an unresponsive token endpoint must fail, not hang.
	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: requestTimeout})

	token, err := e.Config.Exchange(ctx, code, oauth2.SetAuthURLParam("code_verifier", verifier))
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return nil, &RefreshError{
				Status: retrieveErr.Response.StatusCode,
				Detail: retrieveErr.ErrorCode + ": " + retrieveErr.ErrorDescription,
			}
		}
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	expiresIn := token.ExpiresIn
	if expiresIn == 0 && !token.Expiry.IsZero() {
		expiresIn = int64(time.Until(token.Expiry).Seconds())
	}

	return &TokenSet{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresIn:    expiresIn,
	}, nil
}
