package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/lamarqs/aria/internal/auth"
	"github.com/lamarqs/aria/internal/server"
	"github.com/lamarqs/aria/internal/services"
	"github.com/lamarqs/aria/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin runs the PKCE authorization-code flow with a local callback server.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if err := r.config.Validate(); err != nil {
		return err
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	record, err := r.doOAuth(ctx, auth.NewSQLiteStore(db))
	if err != nil {
		return err
	}

	r.writePlainln("✓ Authorization successful")
	expiresAt := time.Unix(record.ExpiresAt, 0)
	r.writePlain("✓ Access token valid until %s\n", expiresAt.Format(time.RFC1123))
	return nil
}

// doOAuth executes the authorization flow against a temporary local HTTP server.
func (r *Runner) doOAuth(ctx context.Context, store auth.Store) (*auth.Record, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}

	pkce, err := auth.GeneratePKCE()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PKCE pair: %w", err)
	}

	redirectURL, err := url.Parse(r.config.Spotify.RedirectURI)
	if err != nil {
		return nil, fmt.Errorf("%w: bad redirect_uri: %v", shared.ErrInvalidConfig, err)
	}

	oauthCfg := services.NewOAuthConfig(r.config.Spotify)
	authURL := services.AuthCodeURL(oauthCfg, state, pkce.Challenge)

	callback := auth.NewCallback(store, auth.NewCodeExchanger(oauthCfg), pkce.Verifier, r.logger)
	defer callback.Close()

	loginHandler := auth.NewLoginHandler(callback, store, state, redirectURL.Path, r.logger)
	router := server.NewBasicRouter()
	router.Handler(loginHandler)

	// Bind before handing out the authorization URL so the callback
	// cannot arrive ahead of a listening socket.
	listener, err := net.Listen("tcp", r.config.Server.Addr())
	if err != nil {
		return nil, fmt.Errorf("failed to bind callback listener: %w", err)
	}

	httpServer := &http.Server{Handler: router}
	defer httpServer.Close()

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Info("starting login callback server", "addr", listener.Addr().String())
		if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	r.writePlain("→ Opening browser for Spotify authorization...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warn("failed to open browser automatically", "error", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(2 * time.Minute)
	defer timeout.Stop()

	select {
	case result := <-loginHandler.Result():
		if err := result.Error(); err != nil {
			return nil, fmt.Errorf("authorization failed: %w", err)
		}
		return &result.Record, nil
	case err := <-serverErrors:
		return nil, fmt.Errorf("callback server error: %w", err)
	case <-timeout.C:
		return nil, fmt.Errorf("%w: authorization timed out", shared.ErrTimeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// AuthStatus reports whether stored credentials exist and when they expire.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	record, ok, err := auth.NewSQLiteStore(db).Load()
	if err != nil {
		return fmt.Errorf("failed to load credentials: %w", err)
	}
	if !ok {
		r.writePlain("✗ Not authenticated. Run `aria auth login`.\n")
		return nil
	}

	expiresAt := time.Unix(record.ExpiresAt, 0)
	r.writePlain("✓ Authenticated\n")
	if time.Now().After(expiresAt.Add(-auth.ExpiryBuffer)) {
		r.writePlain("Access token: expired (will refresh on next use)\n")
	} else {
		r.writePlain("Access token: valid until %s\n", expiresAt.Format(time.RFC1123))
	}
	if record.RefreshToken == "" {
		r.writePlain("Refresh token: none (re-login required at expiry)\n")
	}
	return nil
}

// AuthRefresh forces a token refresh regardless of remaining validity.
func (r *Runner) AuthRefresh(ctx context.Context, cmd *cli.Command) error {
	if err := r.config.Validate(); err != nil {
		return err
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	store := auth.NewSQLiteStore(db)
	record, ok, err := store.Load()
	if err != nil {
		return fmt.Errorf("failed to load credentials: %w", err)
	}
	if !ok || record.RefreshToken == "" {
		return fmt.Errorf("%w: no refresh token stored", shared.ErrNotAuthenticated)
	}

	refresher := auth.NewIssuerRefresher(services.TokenURL(),
		r.config.Spotify.ClientID, r.config.Spotify.ClientSecret)

	tokens, err := refresher.Refresh(ctx, record.RefreshToken)
	if err != nil {
		return fmt.Errorf("refresh failed: %w", err)
	}

	updated := auth.Record{
		AccessToken:  tokens.AccessToken,
		RefreshToken: record.RefreshToken,
		ExpiresAt:    time.Now().Unix() + tokens.ExpiresIn,
	}
	if tokens.RefreshToken != "" {
		updated.RefreshToken = tokens.RefreshToken
	}
	if err := store.Save(updated); err != nil {
		return fmt.Errorf("failed to save refreshed credentials: %w", err)
	}

	r.writePlain("✓ Access token refreshed, valid until %s\n",
		time.Unix(updated.ExpiresAt, 0).Format(time.RFC1123))
	return nil
}

// AuthLogout clears stored credentials.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := auth.NewSQLiteStore(db).Clear(); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}

	r.writePlain("✓ Credentials cleared\n")
	return nil
}
