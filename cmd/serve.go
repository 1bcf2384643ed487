package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/lamarqs/aria/internal/server"
	"github.com/lamarqs/aria/internal/services"
	"github.com/urfave/cli/v3"
)

// Serve runs the token proxy and catalog API until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if err := r.config.Validate(); err != nil {
		return err
	}

	appTokens, err := server.NewAppTokenCache(r.config.Spotify)
	if err != nil {
		return err
	}
	catalogClient := services.NewSpotify(appTokens, services.SpotifyOpts{
		HTTPClient: r.httpClient,
		Logger:     r.logger,
	})

	router := server.NewBasicRouter()
	router.Use(
		server.LoggingMiddleware(r.logger),
		server.CORSMiddleware(r.config.Spotify.FrontendURI),
	)
	router.Handler(server.NewAuthHandler(r.config.Spotify, r.logger))
	router.Handler(server.NewCatalogHandler(catalogClient, r.logger))

	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Addr()
	}

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return server.NewServer(addr, router, r.logger).Run(signalCtx)
}
