// Spotify Web API client.
//
// Every call funnels through the authenticated request layer in doRequest:
// token acquisition, rate limiting, bearer attachment, and failure mapping
// live in one place.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lamarqs/aria/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

// Scopes is the full capability list requested at login.
var Scopes = []string{
	"user-read-private",
	"user-read-email",
	"user-top-read",
	"user-read-recently-played",
	"user-library-read",
	"playlist-read-private",
	"user-read-playback-state",
	"user-modify-playback-state",
	"user-read-currently-playing",
}

// Endpoint returns the Spotify OAuth2 endpoint pair.
func Endpoint() oauth2.Endpoint {
	return oauth2.Endpoint{AuthURL: spotifyAuthURL, TokenURL: spotifyTokenURL}
}

// TokenURL exposes the token endpoint for components that speak to it
// directly (refresh, client-credentials grant).
func TokenURL() string { return spotifyTokenURL }

// NewOAuthConfig builds the [oauth2.Config] for the confidential flow.
func NewOAuthConfig(cfg shared.SpotifyConfig) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURI,
		Scopes:       Scopes,
		Endpoint:     Endpoint(),
	}
}

// AuthCodeURL builds the authorization URL for the PKCE-hardened code flow.
func AuthCodeURL(cfg *oauth2.Config, state, challenge string) string {
	return cfg.AuthCodeURL(state,
		oauth2.SetAuthURLParam("code_challenge", challenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
}

// Spotify is a typed client for the Spotify Web API.
//
// All requests obtain their bearer token from the configured [TokenSource];
// the client itself holds no credentials.
type Spotify struct {
	tokens     TokenSource
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
	baseURL    string
}

// SpotifyOpts contains optional construction parameters.
type SpotifyOpts struct {
	HTTPClient *http.Client
	Limiter    *rate.Limiter
	Logger     *log.Logger
	BaseURL    string // overridden in tests
}

// NewSpotify creates a client drawing tokens from the given source.
func NewSpotify(tokens TokenSource, opts SpotifyOpts) *Spotify {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	if opts.Limiter == nil {
		opts.Limiter = rate.NewLimiter(rate.Limit(10), 5)
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.BaseURL == "" {
		opts.BaseURL = spotifyBaseURL
	}

	return &Spotify{
		tokens:     tokens,
		httpClient: opts.HTTPClient,
		limiter:    opts.Limiter,
		logger:     opts.Logger,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
	}
}

func (s *Spotify) Name() string { return "Spotify" }

// doRequest performs an authenticated request to the Spotify API.
//
// A missing token short-circuits with shared.ErrNotAuthenticated before any
// network call. A 401 despite a freshly obtained token is a hard
// authentication failure: credentials are cleared and not retried.
func (s *Spotify) doRequest(ctx context.Context, method, endpoint string, query url.Values, result any) error {
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("%w: no usable access token", shared.ErrNotAuthenticated)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("request cancelled: %w", err)
	}

	apiURL := s.baseURL + endpoint
	if len(query) > 0 {
		apiURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return s.mapFailure(resp)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// mapFailure converts a non-2xx response into the error taxonomy.
func (s *Spotify) mapFailure(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		s.logger.Warn("bearer token rejected, clearing credentials", "status", resp.StatusCode)
		if err := s.tokens.Invalidate(); err != nil {
			s.logger.Error("failed to clear credentials", "error", err)
		}
		return fmt.Errorf("%w: upstream rejected bearer token", shared.ErrNotAuthenticated)

	case resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s (check the granted scopes)", shared.ErrForbidden, apiErrorMessage(body))

	case resp.StatusCode == http.StatusTooManyRequests:
		var retryAfter time.Duration
		if v := resp.Header.Get("Retry-After"); v != "" {
			if secs, err := strconv.Atoi(v); err == nil {
				retryAfter = time.Duration(secs) * time.Second
			}
		}
		return &RateLimitError{RetryAfter: retryAfter}

	default:
		return &UpstreamError{Status: resp.StatusCode}
	}
}

// apiErrorMessage extracts the message from a Spotify error envelope.
func apiErrorMessage(body []byte) string {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	return "forbidden"
}

// Profile retrieves the current authenticated user's profile.
func (s *Spotify) Profile(ctx context.Context) (*User, error) {
	var user User
	if err := s.doRequest(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// PlaybackState retrieves the current playback state.
// Returns nil when no device is active (Spotify responds 204).
func (s *Spotify) PlaybackState(ctx context.Context) (*Playback, error) {
	var playback Playback
	if err := s.doRequest(ctx, http.MethodGet, "/me/player", nil, &playback); err != nil {
		return nil, err
	}
	if playback.Device.ID == "" && playback.Item == nil {
		return nil, nil
	}
	return &playback, nil
}

// Play resumes playback on the active device.
func (s *Spotify) Play(ctx context.Context) error {
	return s.doRequest(ctx, http.MethodPut, "/me/player/play", nil, nil)
}

// Pause pauses playback on the active device.
func (s *Spotify) Pause(ctx context.Context) error {
	return s.doRequest(ctx, http.MethodPut, "/me/player/pause", nil, nil)
}

// Next skips to the next track.
func (s *Spotify) Next(ctx context.Context) error {
	return s.doRequest(ctx, http.MethodPost, "/me/player/next", nil, nil)
}

// Previous skips to the previous track.
func (s *Spotify) Previous(ctx context.Context) error {
	return s.doRequest(ctx, http.MethodPost, "/me/player/previous", nil, nil)
}

// Playlists retrieves the current user's playlists with pagination.
func (s *Spotify) Playlists(ctx context.Context, limit, offset int) (*Paginated[SimplePlaylist], error) {
	query := url.Values{
		"limit":  {strconv.Itoa(clampLimit(limit))},
		"offset": {strconv.Itoa(offset)},
	}

	var response Paginated[SimplePlaylist]
	if err := s.doRequest(ctx, http.MethodGet, "/me/playlists", query, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// PlaylistTracks retrieves tracks from a playlist. Null tracks (removed or
// local files) are filtered at the boundary.
func (s *Spotify) PlaylistTracks(ctx context.Context, playlistID string, limit int, market string) ([]Track, error) {
	query := url.Values{"limit": {strconv.Itoa(clampLimit(limit))}}
	if market != "" {
		query.Set("market", market)
	}

	var response Paginated[PlaylistTrack]
	endpoint := fmt.Sprintf("/playlists/%s/tracks", playlistID)
	if err := s.doRequest(ctx, http.MethodGet, endpoint, query, &response); err != nil {
		return nil, err
	}

	tracks := make([]Track, 0, len(response.Items))
	for _, item := range response.Items {
		if item.Track != nil && item.Track.ID != "" {
			tracks = append(tracks, *item.Track)
		}
	}
	return tracks, nil
}

// RecentlyPlayed retrieves the user's recently played tracks (max 50).
func (s *Spotify) RecentlyPlayed(ctx context.Context, limit int) ([]Track, error) {
	query := url.Values{"limit": {strconv.Itoa(clampLimit(limit))}}

	var response Paginated[playedItem]
	if err := s.doRequest(ctx, http.MethodGet, "/me/player/recently-played", query, &response); err != nil {
		return nil, err
	}

	tracks := make([]Track, 0, len(response.Items))
	for _, item := range response.Items {
		if item.Track != nil && item.Track.ID != "" {
			tracks = append(tracks, *item.Track)
		}
	}
	return tracks, nil
}

// TopTracks retrieves the user's top tracks for the given time range
// (short_term, medium_term, long_term).
func (s *Spotify) TopTracks(ctx context.Context, limit int, timeRange string) ([]Track, error) {
	query := url.Values{"limit": {strconv.Itoa(clampLimit(limit))}}
	if timeRange != "" {
		query.Set("time_range", timeRange)
	}

	var response Paginated[Track]
	if err := s.doRequest(ctx, http.MethodGet, "/me/top/tracks", query, &response); err != nil {
		return nil, err
	}
	return response.Items, nil
}

// TopArtists retrieves the user's top artists for the given time range.
func (s *Spotify) TopArtists(ctx context.Context, limit int, timeRange string) ([]Artist, error) {
	query := url.Values{"limit": {strconv.Itoa(clampLimit(limit))}}
	if timeRange != "" {
		query.Set("time_range", timeRange)
	}

	var response Paginated[Artist]
	if err := s.doRequest(ctx, http.MethodGet, "/me/top/artists", query, &response); err != nil {
		return nil, err
	}
	return response.Items, nil
}

// AudioFeatures retrieves audio features for multiple track IDs (up to 100).
func (s *Spotify) AudioFeatures(ctx context.Context, trackIDs []string) ([]AudioFeatures, error) {
	if len(trackIDs) == 0 {
		return nil, fmt.Errorf("%w: no track IDs provided", shared.ErrMissingArgument)
	}
	if len(trackIDs) > 100 {
		return nil, fmt.Errorf("%w: maximum 100 track IDs allowed", shared.ErrInvalidArgument)
	}

	query := url.Values{"ids": {strings.Join(trackIDs, ",")}}

	var response struct {
		AudioFeatures []*AudioFeatures `json:"audio_features"`
	}
	if err := s.doRequest(ctx, http.MethodGet, "/audio-features", query, &response); err != nil {
		return nil, err
	}

	// Unanalyzable tracks come back as null entries.
	features := make([]AudioFeatures, 0, len(response.AudioFeatures))
	for _, f := range response.AudioFeatures {
		if f != nil {
			features = append(features, *f)
		}
	}
	return features, nil
}

// Search queries the catalog. types is a comma-separated subset of
// track,artist,album,playlist.
func (s *Spotify) Search(ctx context.Context, q, types string, limit int, market string) (*SearchResult, error) {
	if q == "" {
		return nil, fmt.Errorf("%w: empty search query", shared.ErrMissingArgument)
	}

	query := url.Values{
		"q":     {q},
		"type":  {types},
		"limit": {strconv.Itoa(clampLimit(limit))},
	}
	if market != "" {
		query.Set("market", market)
	}

	var result SearchResult
	if err := s.doRequest(ctx, http.MethodGet, "/search", query, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// NewReleases retrieves the latest albums and singles.
func (s *Spotify) NewReleases(ctx context.Context, limit int) ([]Album, error) {
	query := url.Values{"limit": {strconv.Itoa(clampLimit(limit))}}

	var response struct {
		Albums Paginated[Album] `json:"albums"`
	}
	if err := s.doRequest(ctx, http.MethodGet, "/browse/new-releases", query, &response); err != nil {
		return nil, err
	}
	return response.Albums.Items, nil
}

// FeaturedPlaylists retrieves the browse surface's featured playlists.
func (s *Spotify) FeaturedPlaylists(ctx context.Context, limit int, market string) ([]SimplePlaylist, error) {
	query := url.Values{"limit": {strconv.Itoa(clampLimit(limit))}}
	if market != "" {
		query.Set("market", market)
	}

	var response struct {
		Playlists Paginated[SimplePlaylist] `json:"playlists"`
	}
	if err := s.doRequest(ctx, http.MethodGet, "/browse/featured-playlists", query, &response); err != nil {
		return nil, err
	}
	return response.Playlists.Items, nil
}

// Categories retrieves browse categories.
func (s *Spotify) Categories(ctx context.Context, limit int) ([]Category, error) {
	query := url.Values{"limit": {strconv.Itoa(clampLimit(limit))}}

	var response struct {
		Categories Paginated[Category] `json:"categories"`
	}
	if err := s.doRequest(ctx, http.MethodGet, "/browse/categories", query, &response); err != nil {
		return nil, err
	}
	return response.Categories.Items, nil
}

// CategoryPlaylists retrieves playlists for a browse category.
func (s *Spotify) CategoryPlaylists(ctx context.Context, categoryID string, limit int) ([]SimplePlaylist, error) {
	query := url.Values{"limit": {strconv.Itoa(clampLimit(limit))}}

	var response struct {
		Playlists Paginated[SimplePlaylist] `json:"playlists"`
	}
	endpoint := fmt.Sprintf("/browse/categories/%s/playlists", categoryID)
	if err := s.doRequest(ctx, http.MethodGet, endpoint, query, &response); err != nil {
		return nil, err
	}
	return response.Playlists.Items, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 50 {
		return 50
	}
	return limit
}
