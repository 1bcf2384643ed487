package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/lamarqs/aria/internal/models"
	"github.com/lamarqs/aria/internal/services"
	"github.com/lamarqs/aria/internal/shared"
)

const catalogLimit = 20

// CatalogHandler serves browse surfaces as uniform card lists. All calls
// run on the shared application token, never a user's credentials.
type CatalogHandler struct {
	spotify *services.Spotify
	logger  *log.Logger
}

// NewCatalogHandler builds the browse endpoints on top of the typed client.
func NewCatalogHandler(spotify *services.Spotify, logger *log.Logger) *CatalogHandler {
	return &CatalogHandler{spotify: spotify, logger: logger}
}

// Routes returns the browse endpoints.
func (h *CatalogHandler) Routes() []string {
	return []string{
		"/api/spotify/trending-songs",
		"/api/spotify/popular-artists",
		"/api/spotify/new-releases",
		"/api/spotify/popular-radio",
		"/api/spotify/featured-charts",
		"/api/spotify/top-tracks",
	}
}

func (h *CatalogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var cards []models.Card
	var err error

	switch r.URL.Path {
	case "/api/spotify/trending-songs":
		cards, err = h.trendingSongs(ctx)
	case "/api/spotify/popular-artists":
		cards, err = h.popularArtists(ctx)
	case "/api/spotify/new-releases":
		cards, err = h.newReleases(ctx)
	case "/api/spotify/popular-radio":
		cards, err = h.categoryCards(ctx, "toplists")
	case "/api/spotify/featured-charts":
		cards, err = h.featuredCharts(ctx)
	case "/api/spotify/top-tracks":
		cards, err = h.topTracks(ctx)
	default:
		http.NotFound(w, r)
		return
	}

	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.CardList{Items: cards})
}

// trendingSongs searches the catalog for current hits.
func (h *CatalogHandler) trendingSongs(ctx context.Context) ([]models.Card, error) {
	result, err := h.spotify.Search(ctx, "year:2026", "track", catalogLimit, "")
	if err != nil {
		return nil, err
	}
	if result.Tracks == nil {
		return []models.Card{}, nil
	}
	return models.TrackCards(result.Tracks.Items), nil
}

// popularArtists searches for high-profile artists.
func (h *CatalogHandler) popularArtists(ctx context.Context) ([]models.Card, error) {
	result, err := h.spotify.Search(ctx, "genre:pop", "artist", catalogLimit, "")
	if err != nil {
		return nil, err
	}
	if result.Artists == nil {
		return []models.Card{}, nil
	}
	return models.ArtistCards(result.Artists.Items), nil
}

func (h *CatalogHandler) newReleases(ctx context.Context) ([]models.Card, error) {
	albums, err := h.spotify.NewReleases(ctx, catalogLimit)
	if err != nil {
		return nil, err
	}
	return models.AlbumCards(albums), nil
}

func (h *CatalogHandler) featuredCharts(ctx context.Context) ([]models.Card, error) {
	playlists, err := h.spotify.FeaturedPlaylists(ctx, catalogLimit, "")
	if err != nil {
		return nil, err
	}
	return models.PlaylistCards(playlists), nil
}

// topTracks resolves the chart playlist for the configured market and
// returns its tracks.
func (h *CatalogHandler) topTracks(ctx context.Context) ([]models.Card, error) {
	result, err := h.spotify.Search(ctx, "Top 50", "playlist", 1, "")
	if err != nil {
		return nil, err
	}
	if result.Playlists == nil || len(result.Playlists.Items) == 0 {
		return []models.Card{}, nil
	}
	tracks, err := h.spotify.PlaylistTracks(ctx, result.Playlists.Items[0].ID, catalogLimit, "")
	if err != nil {
		return nil, err
	}
	return models.TrackCards(tracks), nil
}

func (h *CatalogHandler) categoryCards(ctx context.Context, categoryID string) ([]models.Card, error) {
	playlists, err := h.spotify.CategoryPlaylists(ctx, categoryID, catalogLimit)
	if err != nil {
		return nil, err
	}
	return models.PlaylistCards(playlists), nil
}

// writeFailure maps client errors onto proxy-appropriate statuses.
func (h *CatalogHandler) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, shared.ErrNotAuthenticated):
		writeError(w, http.StatusBadGateway, "catalog credentials unavailable")
	case errors.Is(err, shared.ErrRateLimited):
		var rateErr *services.RateLimitError
		if errors.As(err, &rateErr) && rateErr.RetryAfter > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(int(rateErr.RetryAfter.Seconds())))
		}
		writeError(w, http.StatusTooManyRequests, "upstream rate limit; retry later")
	default:
		h.logger.Error("catalog request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusBadGateway, "upstream request failed")
	}
}
