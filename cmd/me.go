package main

import (
	"context"
	"fmt"

	"github.com/lamarqs/aria/internal/formatter"
	"github.com/lamarqs/aria/internal/models"
	"github.com/lamarqs/aria/internal/shared"
	"github.com/urfave/cli/v3"
)

// MeProfile prints the authorized user's profile.
func (r *Runner) MeProfile(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	client, _ := r.userClient(db)
	user, err := client.Profile(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(user, cmd.Bool("pretty"))
	}

	r.writePlain("Name:      %s\n", user.DisplayName)
	r.writePlain("ID:        %s\n", user.ID)
	if user.Email != "" {
		r.writePlain("Email:     %s\n", user.Email)
	}
	if user.Country != "" {
		r.writePlain("Country:   %s\n", user.Country)
	}
	r.writePlain("Followers: %d\n", user.Followers.Total)
	return nil
}

// MeRecent prints the user's recently played tracks.
func (r *Runner) MeRecent(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	client, _ := r.userClient(db)
	tracks, err := client.RecentlyPlayed(ctx, int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	cards := models.TrackCards(tracks)
	if cmd.Bool("json") {
		return r.writeJSON(models.CardList{Items: cards}, cmd.Bool("pretty"))
	}
	return r.writePlain("%s", formatter.CardsToText("Recently played", cards))
}

// MeTop prints the user's top tracks or artists for a time range.
func (r *Runner) MeTop(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	client, _ := r.userClient(db)
	limit := int(cmd.Int("limit"))
	timeRange := cmd.String("range")

	var cards []models.Card
	var title string
	switch kind := cmd.String("kind"); kind {
	case "tracks":
		tracks, err := client.TopTracks(ctx, limit, timeRange)
		if err != nil {
			return err
		}
		cards = models.TrackCards(tracks)
		title = "Top tracks"
	case "artists":
		artists, err := client.TopArtists(ctx, limit, timeRange)
		if err != nil {
			return err
		}
		cards = models.ArtistCards(artists)
		title = "Top artists"
	default:
		return fmt.Errorf("%w: kind must be tracks or artists, got %q", shared.ErrInvalidArgument, kind)
	}

	if cmd.Bool("json") {
		return r.writeJSON(models.CardList{Items: cards}, cmd.Bool("pretty"))
	}
	return r.writePlain("%s", formatter.CardsToText(title, cards))
}
