package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/charmbracelet/log"
	"github.com/lamarqs/aria/internal/auth"
	"github.com/lamarqs/aria/internal/services"
	"github.com/lamarqs/aria/internal/shared"
	"golang.org/x/oauth2"
)

// AuthHandler serves the confidential half of the authorization-code flow:
// starting the dance, completing the exchange, and refreshing tokens.
// The client secret stays on this side of the wire.
type AuthHandler struct {
	oauth     *oauth2.Config
	exchanger auth.Exchanger
	refresher auth.Refresher
	flows     *FlowStore
	frontend  string
	logger    *log.Logger
}

// NewAuthHandler wires the proxy endpoints for the given configuration.
func NewAuthHandler(cfg shared.SpotifyConfig, logger *log.Logger) *AuthHandler {
	oauthCfg := services.NewOAuthConfig(cfg)
	return &AuthHandler{
		oauth:     oauthCfg,
		exchanger: auth.NewCodeExchanger(oauthCfg),
		refresher: auth.NewIssuerRefresher(services.TokenURL(), cfg.ClientID, cfg.ClientSecret),
		flows:     NewFlowStore(),
		frontend:  cfg.FrontendURI,
		logger:    logger,
	}
}

// Routes returns the proxy endpoints.
func (h *AuthHandler) Routes() []string {
	return []string{"/auth/login", "/auth/callback", "/auth/refresh"}
}

func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/auth/login":
		h.login(w, r)
	case "/auth/callback":
		h.callback(w, r)
	case "/auth/refresh":
		h.refresh(w, r)
	default:
		http.NotFound(w, r)
	}
}

// login generates a state value and PKCE pair, stashes the verifier, and
// redirects the browser to the authorization endpoint. Only the challenge
// leaves the server.
func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	state, err := shared.GenerateState()
	if err != nil {
		h.logger.Error("failed to generate state", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to start login")
		return
	}

	pkce, err := auth.GeneratePKCE()
	if err != nil {
		h.logger.Error("failed to generate PKCE pair", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to start login")
		return
	}

	h.flows.Put(state, pkce.Verifier)

	authURL := services.AuthCodeURL(h.oauth, state, pkce.Challenge)
	http.Redirect(w, r, authURL, http.StatusFound)
}

// callback completes the exchange server-side and hands the tokens to the
// frontend via redirect. Authorization errors and state mismatches redirect
// with a short diagnostic code instead of tokens; no exchange is attempted.
func (h *AuthHandler) callback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if errCode := query.Get("error"); errCode != "" {
		h.redirectError(w, r, errCode)
		return
	}

	code := query.Get("code")
	if code == "" {
		h.redirectError(w, r, "missing_code")
		return
	}

	verifier, ok := h.flows.Take(query.Get("state"))
	if !ok {
		h.logger.Warn("callback with unknown or expired state")
		h.redirectError(w, r, "state_mismatch")
		return
	}

	tokens, err := h.exchanger.Exchange(r.Context(), code, verifier)
	if err != nil {
		h.logger.Error("code exchange failed", "error", err)
		h.redirectError(w, r, "exchange_failed")
		return
	}

	params := url.Values{
		"access_token": {tokens.AccessToken},
		"expires_in":   {fmt.Sprintf("%d", tokens.ExpiresIn)},
	}
	if tokens.RefreshToken != "" {
		params.Set("refresh_token", tokens.RefreshToken)
	}
	http.Redirect(w, r, h.frontend+"/callback?"+params.Encode(), http.StatusFound)
}

// refresh forwards a refresh_token grant and relays the verdict.
func (h *AuthHandler) refresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "refresh_token is required")
		return
	}

	if h.oauth.ClientID == "" || h.oauth.ClientSecret == "" {
		writeError(w, http.StatusInternalServerError, "server is not configured for token refresh")
		return
	}

	tokens, err := h.refresher.Refresh(r.Context(), body.RefreshToken)
	if err != nil {
		var refreshErr *auth.RefreshError
		if errors.As(err, &refreshErr) {
			writeError(w, refreshErr.Status, refreshErr.Detail)
			return
		}
		h.logger.Error("refresh request failed", "error", err)
		writeError(w, http.StatusBadGateway, "token endpoint unreachable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": tokens.AccessToken,
		"expires_in":   tokens.ExpiresIn,
	})
}

// redirectError sends the browser back to the frontend login surface with a
// non-sensitive diagnostic code.
func (h *AuthHandler) redirectError(w http.ResponseWriter, r *http.Request, code string) {
	params := url.Values{"error": {code}}
	http.Redirect(w, r, h.frontend+"/callback?"+params.Encode(), http.StatusFound)
}
