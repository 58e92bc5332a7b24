package tasks

import "fmt"

// ProgressUpdate represents a progress event during a commit run.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
}

// Operation phase enumeration
type Phase int

const (
	ResolveLines Phase = iota
	FilterDuplicates
	CreatePlaylist
	AddTracks
)

func (p Phase) String() string {
	switch p {
	case ResolveLines:
		return "resolve_lines"
	case FilterDuplicates:
		return "filter_duplicates"
	case CreatePlaylist:
		return "create_playlist"
	case AddTracks:
		return "add_tracks"
	default:
		return "unknown"
	}
}

func resolveUpdate(step, total int, query string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveLines,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Resolving %q...", query),
	}
}

func dedupeUpdate(existing int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FilterDuplicates,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Filtering against %d existing tracks...", existing),
	}
}

func createPlaylistUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Creating playlist %q...", name),
	}
}

func addTracksUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddTracks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Adding %d tracks...", count),
	}
}
