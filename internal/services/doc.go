// Package services implements the [Catalog] interface against the Spotify Web API.
//
// # Catalog Interface
//
// [Catalog] names exactly the operations the rest of the client needs: current
// user lookup, owned-playlist listing, playlist track listing, playlist
// creation, bulk track addition, and track/artist search.
//
// # Pagination
//
// Collection endpoints return bounded pages with a continuation cursor.
// [SpotifyClient.OwnedPlaylists] and [SpotifyClient.PlaylistTrackURIs] follow
// the cursor until it is null and only then return the materialized sequence;
// partial pages are never exposed to callers.
//
// # Credential Handling
//
// The bearer token is read from the [TokenStore] on every request. A 401
// response means the token expired: the client clears the store and returns
// [shared.ErrTokenExpired]. There is no retry and no proactive refresh.
//
// # Rate Limiting
//
// Outbound requests pass through a [rate.Limiter] so that bulk line
// resolution cannot stampede the API.
package services
