package models

import "time"

// DraftPlaylistID is the sentinel playlist id for a playlist that has not been
// created on the server yet. A draft is identified by name only.
const DraftPlaylistID = "new"

// Playlist represents a playlist owned by the current user.
type Playlist struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ImageURL   string `json:"image_url"`
	TrackCount int    `json:"track_count"`
}

// IsDraft reports whether the playlist is a not-yet-created draft.
func (p Playlist) IsDraft() bool {
	return p.ID == DraftPlaylistID
}

// Draft returns a draft playlist with the given name.
func Draft(name string) Playlist {
	return Playlist{ID: DraftPlaylistID, Name: name}
}

// ResolvedTrack is the result of resolving one pasted line against the catalog.
type ResolvedTrack struct {
	URI string `json:"uri"`
}

// Artist is a search suggestion the user can select to bias track queries.
type Artist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CommitResult summarizes the outcome of a resolve-and-commit run.
//
// NoOp marks the normal "nothing to add" outcome: every line was unresolved or
// filtered as a duplicate, and no playlist mutation was issued.
type CommitResult struct {
	AddedCount int  `json:"added_count"`
	TotalLines int  `json:"total_lines"`
	NoOp       bool `json:"no_op"`
}

// Submission is a persisted record of one successful commit.
type Submission struct {
	ID           string    `json:"id"`
	PlaylistID   string    `json:"playlist_id"`
	PlaylistName string    `json:"playlist_name"`
	AddedCount   int       `json:"added_count"`
	TotalLines   int       `json:"total_lines"`
	CreatedAt    time.Time `json:"created_at"`
}
