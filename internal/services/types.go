// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

// Image represents an image resource.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

type followers struct {
	Total int `json:"total"`
}

// User represents a Spotify user profile.
type User struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	Country     string    `json:"country"`
	Product     string    `json:"product"` // premium, free, etc.
	Followers   followers `json:"followers"`
	Images      []Image   `json:"images"`
}

// Artist represents a Spotify artist.
type Artist struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Genres     []string `json:"genres"`
	Images     []Image  `json:"images"`
	Popularity int      `json:"popularity"`
	URI        string   `json:"uri"`
}

// Album represents a Spotify album.
type Album struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Artists     []Artist `json:"artists"`
	ReleaseDate string   `json:"release_date"`
	TotalTracks int      `json:"total_tracks"`
	Images      []Image  `json:"images"`
	URI         string   `json:"uri"`
}

// Track represents a Spotify track.
type Track struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Artists    []Artist `json:"artists"`
	Album      Album    `json:"album"`
	DurationMS int      `json:"duration_ms"`
	Explicit   bool     `json:"explicit"`
	Popularity int      `json:"popularity"`
	URI        string   `json:"uri"`
}

type Owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type playlistTrackCount struct {
	Total int `json:"total"`
}

// SimplePlaylist represents a simplified playlist object (used in lists).
type SimplePlaylist struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Owner       Owner              `json:"owner"`
	Public      bool               `json:"public"`
	Tracks      playlistTrackCount `json:"tracks"`
	Images      []Image            `json:"images"`
	URI         string             `json:"uri"`
}

// PlaylistTrack represents a track within a playlist context.
type PlaylistTrack struct {
	AddedAt string `json:"added_at"`
	Track   *Track `json:"track"` // may be null for removed/local tracks
}

// Device represents the playback device portion of a playback state.
type Device struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	VolumePercent int    `json:"volume_percent"`
}

// Playback represents the current playback state.
// Item is null when a device is active but nothing is loaded.
type Playback struct {
	Device     Device `json:"device"`
	IsPlaying  bool   `json:"is_playing"`
	ProgressMS int    `json:"progress_ms"`
	Item       *Track `json:"item"`
}

// AudioFeatures represents the audio-feature analysis of one track.
type AudioFeatures struct {
	ID           string  `json:"id"`
	Valence      float64 `json:"valence"`
	Energy       float64 `json:"energy"`
	Danceability float64 `json:"danceability"`
	Tempo        float64 `json:"tempo"`
	Acousticness float64 `json:"acousticness"`
}

// Paginated wraps a Spotify paging object.
type Paginated[T any] struct {
	Items    []T     `json:"items"`
	Total    int     `json:"total"`
	Limit    int     `json:"limit"`
	Offset   int     `json:"offset"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
}

type playedItem struct {
	PlayedAt string `json:"played_at"`
	Track    *Track `json:"track"`
}

// SearchResult aggregates the typed sections of a search response.
// Sections not requested are nil.
type SearchResult struct {
	Tracks    *Paginated[Track]          `json:"tracks"`
	Artists   *Paginated[Artist]         `json:"artists"`
	Albums    *Paginated[Album]          `json:"albums"`
	Playlists *Paginated[SimplePlaylist] `json:"playlists"`
}

// Category represents a browse category.
type Category struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Icons []Image `json:"icons"`
}
