package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"pastify/internal/formatter"
	"pastify/internal/models"
	"pastify/internal/session"
	"pastify/internal/shared"
	"pastify/internal/tasks"
)

// Submit resolves pasted track lines and adds the matches to a playlist.
//
// Lines come from --file or stdin. The target is either an existing playlist
// (--playlist, by ID or name) or a new one (--name).
func (r *Runner) Submit(ctx context.Context, cmd *cli.Command) error {
	filePath := cmd.String("file")
	playlistRef := cmd.String("playlist")
	newName := cmd.String("name")
	artistHint := cmd.String("artist")
	keepDuplicates := cmd.Bool("keep-duplicates")
	useJSON := cmd.Bool("json")

	if playlistRef != "" && newName != "" {
		return fmt.Errorf("%w: cannot specify both --playlist and --name", shared.ErrInvalidArgument)
	}
	if playlistRef == "" && newName == "" {
		return fmt.Errorf("%w: either --playlist or --name must be provided", shared.ErrMissingArgument)
	}

	lines, err := r.readLines(filePath)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		return fmt.Errorf("%w: no track lines provided", shared.ErrInvalidInput)
	}

	if err := r.startSession(ctx); err != nil {
		return err
	}

	var target models.Playlist
	if newName != "" {
		target = models.Draft(newName)
	} else {
		for _, pl := range r.session.Playlists() {
			if pl.ID == playlistRef || pl.Name == playlistRef {
				target = pl
				break
			}
		}
		if target.ID == "" {
			return fmt.Errorf("%w: %q", shared.ErrPlaylistNotFound, playlistRef)
		}
	}

	var hint *models.Artist
	if artistHint != "" {
		// Prefer a catalog match so the hint carries the canonical artist name.
		if artists, err := r.catalog.SearchArtists(ctx, artistHint); err == nil && len(artists) > 0 {
			hint = &artists[0]
			r.logger.Info("using artist hint", "artist", hint.Name)
		} else {
			hint = &models.Artist{Name: artistHint}
		}
	}

	r.logger.Infof("submitting %v lines", len(lines))

	progress := make(chan tasks.ProgressUpdate, 50)
	drained := make(chan struct{})
	go func() {
		for update := range progress {
			r.logger.Info(update.Message, "phase", update.Phase.String(), "step", update.Step, "total", update.Total)
		}
		close(drained)
	}()

	result, err := r.session.Submit(ctx, tasks.CommitRequest{
		Lines:            lines,
		Hint:             hint,
		Target:           target,
		RemoveDuplicates: !keepDuplicates,
	}, progress)

	close(progress)
	<-drained

	if err != nil {
		return err
	}

	switch r.session.Status() {
	case session.StatusSuccess:
		r.writePlain("✓ %s\n", r.session.Message())
	case session.StatusError:
		r.writePlain("✗ %s\n", r.session.Message())
	case session.StatusLoggedOut:
		return fmt.Errorf("%w: run 'pastify auth login'", shared.ErrTokenExpired)
	}

	if useJSON && result != nil {
		return r.writeJSON(result, true)
	}

	return nil
}

// History shows past submissions.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	limit := int(cmd.Int("limit"))
	useJSON := cmd.Bool("json")
	save := cmd.Bool("save")
	outputFile := cmd.String("output")

	if r.submissions == nil {
		return fmt.Errorf("%w: database not initialized, run 'pastify setup'", shared.ErrServiceUnavailable)
	}

	submissions, err := r.submissions.List(limit)
	if err != nil {
		return fmt.Errorf("failed to list submissions: %w", err)
	}

	if save {
		file, err := formatter.WriteSubmissionsCSV(submissions, outputFile)
		if err != nil {
			return fmt.Errorf("failed to export history: %w", err)
		}
		return r.writePlain("✓ History exported to %s\n", file)
	}

	if useJSON {
		return r.writeJSON(submissions, true)
	}

	return r.writePlain("%s", formatter.SubmissionsToText(submissions))
}

// readLines reads track lines from a file or stdin.
func (r *Runner) readLines(filePath string) ([]string, error) {
	var data []byte
	var err error

	if filePath != "" {
		data, err = os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read input file: %w", err)
		}
	} else {
		data, err = io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
	}

	return shared.SplitLines(string(data)), nil
}
