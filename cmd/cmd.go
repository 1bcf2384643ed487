// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

var configFlag = &cli.StringFlag{
	Name:    "config",
	Aliases: []string{"c"},
	Usage:   "Path to configuration file",
	Value:   "config.toml",
}

var jsonFlags = []cli.Flag{
	&cli.BoolFlag{
		Name:  "json",
		Usage: "Output raw JSON",
	},
	&cli.BoolFlag{
		Name:  "pretty",
		Usage: "Pretty-print output",
	},
}

// setupCommand initializes configuration and the local database
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create config file and initialize the database",
		Flags:  []cli.Flag{configFlag},
		Action: r.SetupDatabase,
	}
}

// serveCommand starts the token proxy and catalog API server
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the token proxy and catalog API server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (overrides config)",
			},
		},
		Action: r.Serve,
	}
}

// authCommand handles the local OAuth login lifecycle
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage Spotify authorization",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Authorize with Spotify using the PKCE code flow",
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show the state of the stored credentials",
				Action: r.AuthStatus,
			},
			{
				Name:   "refresh",
				Usage:  "Force an access token refresh",
				Action: r.AuthRefresh,
			},
			{
				Name:   "logout",
				Usage:  "Clear stored credentials",
				Action: r.AuthLogout,
			},
		},
	}
}

// meCommand surfaces the authenticated user's data
func meCommand(r *Runner) *cli.Command {
	limitFlag := &cli.IntFlag{
		Name:  "limit",
		Usage: "Maximum number of items to return",
		Value: 20,
	}

	return &cli.Command{
		Name:  "me",
		Usage: "Personalized data for the authorized user",
		Commands: []*cli.Command{
			{
				Name:   "profile",
				Usage:  "Show the user profile",
				Flags:  jsonFlags,
				Action: r.MeProfile,
			},
			{
				Name:   "recent",
				Usage:  "List recently played tracks",
				Flags:  append([]cli.Flag{limitFlag}, jsonFlags...),
				Action: r.MeRecent,
			},
			{
				Name:  "top",
				Usage: "List top tracks or artists",
				Flags: append([]cli.Flag{
					limitFlag,
					&cli.StringFlag{
						Name:  "kind",
						Usage: "tracks or artists",
						Value: "tracks",
					},
					&cli.StringFlag{
						Name:  "range",
						Usage: "short_term, medium_term, or long_term",
						Value: "medium_term",
					},
				}, jsonFlags...),
				Action: r.MeTop,
			},
		},
	}
}

// browseCommand surfaces anonymous catalog data via the app token
func browseCommand(r *Runner) *cli.Command {
	limitFlag := &cli.IntFlag{
		Name:  "limit",
		Usage: "Maximum number of items to return",
		Value: 20,
	}

	return &cli.Command{
		Name:  "browse",
		Usage: "Browse the catalog without a user login",
		Commands: []*cli.Command{
			{
				Name:   "releases",
				Usage:  "List new album releases",
				Flags:  append([]cli.Flag{limitFlag}, jsonFlags...),
				Action: r.BrowseReleases,
			},
			{
				Name:   "featured",
				Usage:  "List featured playlists",
				Flags:  append([]cli.Flag{limitFlag}, jsonFlags...),
				Action: r.BrowseFeatured,
			},
			{
				Name:   "categories",
				Usage:  "List browse categories",
				Flags:  append([]cli.Flag{limitFlag}, jsonFlags...),
				Action: r.BrowseCategories,
			},
			{
				Name:  "search",
				Usage: "Search the catalog",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "query",
					},
				},
				Flags: append([]cli.Flag{
					limitFlag,
					&cli.StringFlag{
						Name:  "type",
						Usage: "Comma-separated result types (track,artist,album,playlist)",
						Value: "track",
					},
				}, jsonFlags...),
				Action: r.BrowseSearch,
			},
		},
	}
}

// forecastCommand builds a mood forecast from listening history
func forecastCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "forecast",
		Usage: "Forecast your mood from listening history",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "source",
				Usage: "History source: recent or top",
				Value: "recent",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Number of tracks to analyze",
				Value: 50,
			},
			&cli.BoolFlag{
				Name:  "tui",
				Usage: "Run the interactive terminal interface",
			},
			&cli.BoolFlag{
				Name:  "markdown",
				Usage: "Render the forecast as Markdown",
			},
			&cli.BoolFlag{
				Name:  "save",
				Usage: "Persist the forecast to the local database",
			},
			&cli.BoolFlag{
				Name:  "history",
				Usage: "List saved forecasts instead of running a new one",
			},
		},
		Action: r.Forecast,
	}
}
