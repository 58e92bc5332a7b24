package services

import (
	"context"

	"pastify/internal/models"
)

// TokenStore holds the single bearer credential for the session.
//
// There is no refresh mechanism: expiry is detected reactively when a request
// comes back 401, at which point the catalog client clears the store.
type TokenStore interface {
	// Save persists the credential, replacing any previous one.
	Save(token string) error

	// Load reads the credential back. Returns [shared.ErrNotAuthenticated]
	// when no credential is stored.
	Load() (string, error)

	// Clear removes the credential.
	Clear() error
}

// Catalog defines the operations the client needs from the music catalog.
//
// Every call requires a stored credential and maps HTTP 401 to
// [shared.ErrTokenExpired] after clearing the token store.
type Catalog interface {
	// CurrentUserID returns the authenticated user's id.
	CurrentUserID(ctx context.Context) (string, error)

	// OwnedPlaylists returns every playlist owned by the given user,
	// following pagination until the collection is exhausted.
	OwnedPlaylists(ctx context.Context, userID string) ([]models.Playlist, error)

	// PlaylistTrackURIs returns the URIs of all tracks in a playlist, in
	// playlist order, following pagination until exhausted.
	PlaylistTrackURIs(ctx context.Context, playlistID string) ([]string, error)

	// CreatePlaylist creates a playlist under the given user and returns its id.
	CreatePlaylist(ctx context.Context, name, userID string) (string, error)

	// AddTracks appends the given track URIs to a playlist.
	AddTracks(ctx context.Context, playlistID string, uris []string) error

	// SearchTrack resolves a free-text query to the top track hit.
	// Returns nil when there is no match of the expected type.
	SearchTrack(ctx context.Context, query string) (*models.ResolvedTrack, error)

	// SearchArtists returns up to ten artist matches for the query.
	SearchArtists(ctx context.Context, query string) ([]models.Artist, error)
}
