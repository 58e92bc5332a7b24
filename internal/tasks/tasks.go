package tasks

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"pastify/internal/models"
	"pastify/internal/services"
	"pastify/internal/shared"
)

// defaultMaxConcurrency bounds how many line resolutions are in flight at once.
const defaultMaxConcurrency = 8

// CommitRequest describes one resolve-and-commit run.
type CommitRequest struct {
	Lines            []string        // Raw pasted lines, one query each
	Hint             *models.Artist  // Optional artist bias appended to every query
	Target           models.Playlist // Existing playlist or a draft (id "new")
	UserID           string          // Owner for draft creation
	RemoveDuplicates bool            // Filter out URIs already in the target
}

// SubmissionRecorder persists the outcome of a successful commit.
//
// Recording failures are ignored so history persistence can never break a
// submission.
type SubmissionRecorder interface {
	Record(playlistID, playlistName string, result models.CommitResult) error
}

// Reconciler defines the resolve-and-commit operation.
type Reconciler interface {
	ResolveAndCommit(ctx context.Context, req CommitRequest, progress chan<- ProgressUpdate) (*models.CommitResult, error)
}

// ReconcileEngine implements [Reconciler] on top of a [services.Catalog].
type ReconcileEngine struct {
	catalog        services.Catalog
	recorder       SubmissionRecorder
	maxConcurrency int
}

// NewReconcileEngine creates an engine. The recorder may be nil.
func NewReconcileEngine(catalog services.Catalog, recorder SubmissionRecorder) *ReconcileEngine {
	return &ReconcileEngine{
		catalog:        catalog,
		recorder:       recorder,
		maxConcurrency: defaultMaxConcurrency,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *ReconcileEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// ResolveAndCommit resolves every line against the catalog and commits the
// matches to the target playlist.
//
// Lines resolve concurrently but the resolved URIs keep input order. Lines
// with no match are dropped without being reported individually. When nothing
// is left to add the run is a no-op, not an error. Any catalog failure aborts
// the whole run; a playlist created before a later failure is not undone.
func (e *ReconcileEngine) ResolveAndCommit(ctx context.Context, req CommitRequest, progress chan<- ProgressUpdate) (*models.CommitResult, error) {
	if e.catalog == nil {
		return nil, fmt.Errorf("%w: catalog client not initialized", shared.ErrAPIRequest)
	}

	queries := make([]string, len(req.Lines))
	for i, line := range req.Lines {
		if req.Hint != nil {
			line = line + " " + req.Hint.Name
		}
		queries[i] = line
	}

	total := len(queries)
	resolved := make([]*models.ResolvedTrack, total)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.maxConcurrency)

	for i, query := range queries {
		g.Go(func() error {
			e.sendProgress(progress, resolveUpdate(i+1, total, query))

			track, err := e.catalog.SearchTrack(gctx, query)
			if err != nil {
				return err
			}
			resolved[i] = track
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	uris := make([]string, 0, total)
	for _, track := range resolved {
		if track != nil {
			uris = append(uris, track.URI)
		}
	}

	if req.RemoveDuplicates && !req.Target.IsDraft() {
		existing, err := e.catalog.PlaylistTrackURIs(ctx, req.Target.ID)
		if err != nil {
			return nil, err
		}

		e.sendProgress(progress, dedupeUpdate(len(existing)))

		present := make(map[string]struct{}, len(existing))
		for _, uri := range existing {
			present[uri] = struct{}{}
		}

		filtered := uris[:0]
		for _, uri := range uris {
			if _, found := present[uri]; !found {
				filtered = append(filtered, uri)
			}
		}
		uris = filtered
	}

	if len(uris) == 0 {
		return &models.CommitResult{TotalLines: len(req.Lines), NoOp: true}, nil
	}

	playlistID := req.Target.ID
	if req.Target.IsDraft() {
		e.sendProgress(progress, createPlaylistUpdate(req.Target.Name))

		id, err := e.catalog.CreatePlaylist(ctx, req.Target.Name, req.UserID)
		if err != nil {
			return nil, err
		}
		playlistID = id
	}

	e.sendProgress(progress, addTracksUpdate(len(uris)))

	if err := e.catalog.AddTracks(ctx, playlistID, uris); err != nil {
		return nil, err
	}

	result := &models.CommitResult{AddedCount: len(uris), TotalLines: len(req.Lines)}

	if e.recorder != nil {
		// History is best-effort; a failed insert must not fail the commit.
		_ = e.recorder.Record(playlistID, req.Target.Name, *result)
	}

	return result, nil
}
