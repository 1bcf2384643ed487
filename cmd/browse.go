package main

import (
	"context"
	"fmt"

	"github.com/lamarqs/aria/internal/formatter"
	"github.com/lamarqs/aria/internal/models"
	"github.com/lamarqs/aria/internal/server"
	"github.com/lamarqs/aria/internal/services"
	"github.com/lamarqs/aria/internal/shared"
	"github.com/urfave/cli/v3"
)

// appClient builds a Spotify client running on the shared application token.
func (r *Runner) appClient() (*services.Spotify, error) {
	cache, err := server.NewAppTokenCache(r.config.Spotify)
	if err != nil {
		return nil, err
	}
	return services.NewSpotify(cache, services.SpotifyOpts{
		HTTPClient: r.httpClient,
		Logger:     r.logger,
	}), nil
}

// BrowseReleases prints the latest album releases.
func (r *Runner) BrowseReleases(ctx context.Context, cmd *cli.Command) error {
	client, err := r.appClient()
	if err != nil {
		return err
	}

	albums, err := client.NewReleases(ctx, int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	cards := models.AlbumCards(albums)
	if cmd.Bool("json") {
		return r.writeJSON(models.CardList{Items: cards}, cmd.Bool("pretty"))
	}
	return r.writePlain("%s", formatter.CardsToText("New releases", cards))
}

// BrowseFeatured prints featured playlists.
func (r *Runner) BrowseFeatured(ctx context.Context, cmd *cli.Command) error {
	client, err := r.appClient()
	if err != nil {
		return err
	}

	playlists, err := client.FeaturedPlaylists(ctx, int(cmd.Int("limit")), "")
	if err != nil {
		return err
	}

	cards := models.PlaylistCards(playlists)
	if cmd.Bool("json") {
		return r.writeJSON(models.CardList{Items: cards}, cmd.Bool("pretty"))
	}
	return r.writePlain("%s", formatter.CardsToText("Featured playlists", cards))
}

// BrowseCategories prints browse categories.
func (r *Runner) BrowseCategories(ctx context.Context, cmd *cli.Command) error {
	client, err := r.appClient()
	if err != nil {
		return err
	}

	categories, err := client.Categories(ctx, int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(categories, cmd.Bool("pretty"))
	}
	for i, category := range categories {
		r.writePlain("%d. %s\n", i+1, category.Name)
	}
	return nil
}

// BrowseSearch searches the catalog and prints card results.
func (r *Runner) BrowseSearch(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	if query == "" {
		return fmt.Errorf("%w: search query is required", shared.ErrMissingArgument)
	}

	client, err := r.appClient()
	if err != nil {
		return err
	}

	result, err := client.Search(ctx, query, cmd.String("type"), int(cmd.Int("limit")), "")
	if err != nil {
		return err
	}

	var cards []models.Card
	if result.Tracks != nil {
		cards = append(cards, models.TrackCards(result.Tracks.Items)...)
	}
	if result.Artists != nil {
		cards = append(cards, models.ArtistCards(result.Artists.Items)...)
	}
	if result.Albums != nil {
		cards = append(cards, models.AlbumCards(result.Albums.Items)...)
	}
	if result.Playlists != nil {
		cards = append(cards, models.PlaylistCards(result.Playlists.Items)...)
	}

	if cmd.Bool("json") {
		return r.writeJSON(models.CardList{Items: cards}, cmd.Bool("pretty"))
	}
	return r.writePlain("%s", formatter.CardsToText(fmt.Sprintf("Results for %q", query), cards))
}
