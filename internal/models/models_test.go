package models

import (
	"testing"

	"github.com/lamarqs/aria/internal/services"
)

func TestTrackCard(t *testing.T) {
	t.Run("maps full track", func(t *testing.T) {
		track := services.Track{
			ID:   "t1",
			Name: "Song",
			Artists: []services.Artist{
				{ID: "a1", Name: "First"},
				{ID: "a2", Name: "Second"},
			},
			Album: services.Album{
				ID:     "al1",
				Name:   "Record",
				Images: []services.Image{{URL: "https://img/large"}, {URL: "https://img/small"}},
			},
		}

		card := TrackCard(track)
		if card.ID != "t1" || card.Title != "Song" {
			t.Errorf("unexpected identity: %+v", card)
		}
		if card.Subtitle != "First, Second" {
			t.Errorf("Subtitle = %q, want joined artists", card.Subtitle)
		}
		if card.Image != "https://img/large" {
			t.Errorf("Image = %q, want first image", card.Image)
		}
		if card.Type != CardTrack {
			t.Errorf("Type = %q, want track", card.Type)
		}
	})

	t.Run("missing images yield empty URL", func(t *testing.T) {
		card := TrackCard(services.Track{ID: "t1", Name: "Song"})
		if card.Image != "" {
			t.Errorf("Image = %q, want empty", card.Image)
		}
	})

	t.Run("track without ID is unmappable", func(t *testing.T) {
		card := TrackCard(services.Track{Name: "local file"})
		if card.ID != "" {
			t.Errorf("expected zero card, got %+v", card)
		}
	})
}

func TestCardSlices(t *testing.T) {
	t.Run("drops unmappable entries", func(t *testing.T) {
		cards := TrackCards([]services.Track{
			{ID: "t1", Name: "keep"},
			{Name: "drop"},
		})
		if len(cards) != 1 || cards[0].ID != "t1" {
			t.Errorf("expected single card t1, got %+v", cards)
		}
	})

	t.Run("empty input yields empty non-nil slice", func(t *testing.T) {
		cards := PlaylistCards(nil)
		if cards == nil || len(cards) != 0 {
			t.Errorf("expected empty slice, got %+v", cards)
		}
	})
}

func TestPlaylistCard(t *testing.T) {
	card := PlaylistCard(services.SimplePlaylist{
		ID:          "p1",
		Name:        "Focus",
		Description: "Instrumental focus beats",
		Images:      []services.Image{{URL: "https://img/p"}},
	})
	if card.Subtitle != "Instrumental focus beats" {
		t.Errorf("Subtitle = %q, want description", card.Subtitle)
	}
	if card.Type != CardPlaylist {
		t.Errorf("Type = %q, want playlist", card.Type)
	}
}
