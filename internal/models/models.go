// Package models holds the presentation shapes served to clients.
//
// A Card is the single unit every browse surface renders: a picture, a
// title, a line of context, and enough identity to act on a tap. Mappers
// here are the only place upstream catalog types cross into the response
// surface, so shape problems (missing images, empty artist lists) are
// handled once.
package models

import (
	"strings"

	"github.com/lamarqs/aria/internal/services"
)

// CardType tags what a card links to.
type CardType string

const (
	CardTrack    CardType = "track"
	CardArtist   CardType = "artist"
	CardAlbum    CardType = "album"
	CardPlaylist CardType = "playlist"
)

// Card is the uniform browse item.
type Card struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Subtitle string   `json:"subtitle"`
	Image    string   `json:"image"`
	Type     CardType `json:"type"`
}

// CardList wraps a card slice for JSON responses.
type CardList struct {
	Items []Card `json:"items"`
}

// firstImage picks the largest available image URL, or empty when the
// upstream item has none.
func firstImage(images []services.Image) string {
	if len(images) == 0 {
		return ""
	}
	return images[0].URL
}

// artistNames joins artist names for a subtitle line.
func artistNames(artists []services.Artist) string {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}
	return strings.Join(names, ", ")
}

// TrackCard maps a track to a card. Tracks without an ID (local files)
// produce a zero card; callers filter with Card.ID == "".
func TrackCard(t services.Track) Card {
	if t.ID == "" {
		return Card{}
	}
	return Card{
		ID:       t.ID,
		Title:    t.Name,
		Subtitle: artistNames(t.Artists),
		Image:    firstImage(t.Album.Images),
		Type:     CardTrack,
	}
}

// ArtistCard maps an artist to a card.
func ArtistCard(a services.Artist) Card {
	if a.ID == "" {
		return Card{}
	}
	return Card{
		ID:    a.ID,
		Title: a.Name,
		Image: firstImage(a.Images),
		Type:  CardArtist,
	}
}

// AlbumCard maps an album to a card.
func AlbumCard(a services.Album) Card {
	if a.ID == "" {
		return Card{}
	}
	return Card{
		ID:       a.ID,
		Title:    a.Name,
		Subtitle: artistNames(a.Artists),
		Image:    firstImage(a.Images),
		Type:     CardAlbum,
	}
}

// PlaylistCard maps a playlist to a card.
func PlaylistCard(p services.SimplePlaylist) Card {
	if p.ID == "" {
		return Card{}
	}
	return Card{
		ID:       p.ID,
		Title:    p.Name,
		Subtitle: p.Description,
		Image:    firstImage(p.Images),
		Type:     CardPlaylist,
	}
}

// TrackCards maps a track slice, dropping unmappable entries.
func TrackCards(tracks []services.Track) []Card {
	cards := make([]Card, 0, len(tracks))
	for _, t := range tracks {
		if c := TrackCard(t); c.ID != "" {
			cards = append(cards, c)
		}
	}
	return cards
}

// ArtistCards maps an artist slice, dropping unmappable entries.
func ArtistCards(artists []services.Artist) []Card {
	cards := make([]Card, 0, len(artists))
	for _, a := range artists {
		if c := ArtistCard(a); c.ID != "" {
			cards = append(cards, c)
		}
	}
	return cards
}

// AlbumCards maps an album slice, dropping unmappable entries.
func AlbumCards(albums []services.Album) []Card {
	cards := make([]Card, 0, len(albums))
	for _, a := range albums {
		if c := AlbumCard(a); c.ID != "" {
			cards = append(cards, c)
		}
	}
	return cards
}

// PlaylistCards maps a playlist slice, dropping unmappable entries.
func PlaylistCards(playlists []services.SimplePlaylist) []Card {
	cards := make([]Card, 0, len(playlists))
	for _, p := range playlists {
		if c := PlaylistCard(p); c.ID != "" {
			cards = append(cards, c)
		}
	}
	return cards
}
