package services

// Spotify API response types based on
// https://developer.spotify.com/documentation/web-api/reference/

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"

	"pastify/internal/models"
	"pastify/internal/shared"
)

const (
	spotifyBaseURL = "https://api.spotify.com/v1"

	// DefaultPlaylistImage is used when a playlist has no suitable thumbnail.
	DefaultPlaylistImage = "https://picsum.photos/60"

	pageLimit        = 50
	artistHitLimit   = 10
	requestsPerSec   = 10
	requestBurstSize = 10
)

// SpotifyImage represents an image resource.
//
// Width is a pointer because the API reports null for images without a
// declared width, which the thumbnail selection treats as acceptable.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height *int   `json:"height"`
	Width  *int   `json:"width"`
}

type owner struct {
	ID string `json:"id"`
}

type playlistTracksField struct {
	Total int `json:"total"`
}

// SpotifySimplePlaylist represents a simplified playlist object (used in lists).
type SpotifySimplePlaylist struct {
	ID     string              `json:"id"`
	Name   string              `json:"name"`
	Owner  owner               `json:"owner"`
	Tracks playlistTracksField `json:"tracks"`
	Images []SpotifyImage      `json:"images"`
}

// SpotifyPaginatedPlaylists represents a paginated response of playlists.
type SpotifyPaginatedPlaylists struct {
	Items []SpotifySimplePlaylist `json:"items"`
	Total int                     `json:"total"`
	Next  *string                 `json:"next"`
}

type playlistTrackItem struct {
	Track struct {
		URI string `json:"uri"`
	} `json:"track"`
}

type paginatedPlaylistTracks struct {
	Items []playlistTrackItem `json:"items"`
	Next  *string             `json:"next"`
}

type searchTrackItem struct {
	Type string `json:"type"`
	URI  string `json:"uri"`
}

type searchArtistItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpotifyClient implements [Catalog] against the Spotify Web API.
//
// The bearer credential is read from the [TokenStore] on every request, and
// any 401 clears the store before surfacing [shared.ErrTokenExpired].
type SpotifyClient struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenStore
	limiter    *rate.Limiter
}

// NewSpotifyClient creates a catalog client backed by the given token store.
func NewSpotifyClient(tokens TokenStore, httpClient *http.Client) *SpotifyClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &SpotifyClient{
		baseURL:    spotifyBaseURL,
		httpClient: httpClient,
		tokens:     tokens,
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSec), requestBurstSize),
	}
}

// SetBaseURL overrides the API base URL. Used by tests.
func (s *SpotifyClient) SetBaseURL(baseURL string) {
	s.baseURL = strings.TrimSuffix(baseURL, "/")
}

// doRequest performs an authenticated request against the API.
//
// endpoint may be a path relative to the base URL or an absolute URL, which
// pagination cursors are.
func (s *SpotifyClient) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	token, err := s.tokens.Load()
	if err != nil {
		return err
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	apiURL := endpoint
	if !strings.HasPrefix(endpoint, "http") {
		apiURL = s.baseURL + endpoint
	}

	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reqBody)
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

	if resp.StatusCode == http.StatusUnauthorized {
		// Token no longer valid. The stored credential is useless now, so
		// drop it before reporting expiry.
		if clearErr := s.tokens.Clear(); clearErr != nil {
			return fmt.Errorf("%w: failed to clear credential: %v", shared.ErrTokenExpired, clearErr)
		}
		return shared.ErrTokenExpired
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// CurrentUserID retrieves the authenticated user's id from /me.
func (s *SpotifyClient) CurrentUserID(ctx context.Context) (string, error) {
	var user struct {
		ID string `json:"id"`
	}
	if err := s.doRequest(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return "", err
	}
	return user.ID, nil
}

// OwnedPlaylists retrieves the caller's playlists, following the pagination
// cursor until exhausted, keeping only playlists owned by userID.
func (s *SpotifyClient) OwnedPlaylists(ctx context.Context, userID string) ([]models.Playlist, error) {
	var owned []models.Playlist
	endpoint := fmt.Sprintf("/me/playlists?limit=%d", pageLimit)

	for {
		var page SpotifyPaginatedPlaylists
		if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, err
		}

		for _, sp := range page.Items {
			if sp.Owner.ID != userID {
				continue
			}
			owned = append(owned, models.Playlist{
				ID:         sp.ID,
				Name:       sp.Name,
				ImageURL:   pickThumbnail(sp.Images),
				TrackCount: sp.Tracks.Total,
			})
		}

		if page.Next == nil {
			break
		}
		endpoint = *page.Next
	}

	return owned, nil
}

// pickThumbnail searches the image list for one with width 60 or no declared
// width, falling back to the static default image.
func pickThumbnail(images []SpotifyImage) string {
	for _, img := range images {
		if img.Width == nil || *img.Width == 60 {
			return img.URL
		}
	}
	return DefaultPlaylistImage
}

// PlaylistTrackURIs retrieves all track URIs of a playlist in order, following
// the pagination cursor until exhausted.
func (s *SpotifyClient) PlaylistTrackURIs(ctx context.Context, playlistID string) ([]string, error) {
	var uris []string
	endpoint := fmt.Sprintf("/playlists/%s/tracks?limit=%d", playlistID, pageLimit)

	for {
		var page paginatedPlaylistTracks
		if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			uris = append(uris, item.Track.URI)
		}

		if page.Next == nil {
			break
		}
		endpoint = *page.Next
	}

	return uris, nil
}

// CreatePlaylist creates a playlist under the given user and returns its id.
func (s *SpotifyClient) CreatePlaylist(ctx context.Context, name, userID string) (string, error) {
	endpoint := fmt.Sprintf("/users/%s/playlists", url.PathEscape(userID))
	body := map[string]string{"name": name}

	var created struct {
		ID string `json:"id"`
	}
	if err := s.doRequest(ctx, http.MethodPost, endpoint, body, &created); err != nil {
		return "", err
	}

	return created.ID, nil
}

// AddTracks appends the given URIs to a playlist.
//
// The API encodes the URI list as a comma-joined query parameter and rejects
// an empty list itself; no client-side validation is added.
func (s *SpotifyClient) AddTracks(ctx context.Context, playlistID string, uris []string) error {
	query := url.Values{"uris": {strings.Join(uris, ",")}}
	endpoint := fmt.Sprintf("/playlists/%s/tracks?%s", playlistID, query.Encode())
	return s.doRequest(ctx, http.MethodPost, endpoint, nil, nil)
}

// SearchTrack issues a track search and takes the top result only.
//
// Returns nil without error when there are zero results or the top hit is not
// a track.
func (s *SpotifyClient) SearchTrack(ctx context.Context, query string) (*models.ResolvedTrack, error) {
	endpoint := fmt.Sprintf("/search?q=%s&type=track", url.QueryEscape(query))

	var response struct {
		Tracks struct {
			Items []searchTrackItem `json:"items"`
			Total int               `json:"total"`
		} `json:"tracks"`
	}
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	if response.Tracks.Total == 0 || len(response.Tracks.Items) == 0 {
		return nil, nil
	}

	top := response.Tracks.Items[0]
	if top.Type != "track" {
		return nil, nil
	}

	return &models.ResolvedTrack{URI: top.URI}, nil
}

// SearchArtists returns the top artist matches for the query.
func (s *SpotifyClient) SearchArtists(ctx context.Context, query string) ([]models.Artist, error) {
	endpoint := fmt.Sprintf("/search?q=%s&type=artist&limit=%d", url.QueryEscape(query), artistHitLimit)

	var response struct {
		Artists struct {
			Items []searchArtistItem `json:"items"`
		} `json:"artists"`
	}
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	artists := make([]models.Artist, 0, len(response.Artists.Items))
	for _, item := range response.Artists.Items {
		artists = append(artists, models.Artist{ID: item.ID, Name: item.Name})
	}

	return artists, nil
}
