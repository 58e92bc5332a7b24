package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"pastify/internal/models"
)

var _ list.Item = playlistItem{}

// playlistItem wraps [models.Playlist] to implement [list.Item].
//
// The draft playlist appears as a synthetic first entry so the user can
// create a new playlist from the same picker.
type playlistItem struct {
	playlist models.Playlist
}

func (i playlistItem) FilterValue() string { return i.playlist.Name }

func (i playlistItem) Title() string {
	if i.playlist.IsDraft() {
		return "+ New playlist"
	}
	return i.playlist.Name
}

func (i playlistItem) Description() string {
	if i.playlist.IsDraft() {
		return "create a playlist for these tracks"
	}
	return fmt.Sprintf("%d tracks", i.playlist.TrackCount)
}

// newPickerItems builds the picker list with the draft entry on top.
func newPickerItems(playlists []models.Playlist) []list.Item {
	items := make([]list.Item, 0, len(playlists)+1)
	items = append(items, playlistItem{playlist: models.Draft("")})
	for _, pl := range playlists {
		items = append(items, playlistItem{playlist: pl})
	}
	return items
}
