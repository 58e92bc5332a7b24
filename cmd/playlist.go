package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"pastify/internal/formatter"
	"pastify/internal/shared"
)

// Playlists lists the user's owned playlists.
func (r *Runner) Playlists(ctx context.Context, cmd *cli.Command) error {
	limit := int(cmd.Int("limit"))
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")
	save := cmd.Bool("save")
	outputFile := cmd.String("output")

	if err := r.startSession(ctx); err != nil {
		return err
	}

	playlists := r.session.Playlists()
	if limit > 0 && limit < len(playlists) {
		playlists = playlists[:limit]
	}

	r.logger.Infof("listing %v playlists", len(playlists))

	if save {
		file, err := formatter.WritePlaylistsCSV(playlists, outputFile)
		if err != nil {
			return fmt.Errorf("failed to export playlists: %w", err)
		}
		return r.writePlain("✓ Playlists exported to %s\n", file)
	}

	if useJSON {
		return r.writeJSON(playlists, pretty)
	}

	return r.writePlain("%s", formatter.PlaylistsToText(playlists))
}

// Artists searches the catalog for artists matching the query.
func (r *Runner) Artists(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	if query == "" {
		return fmt.Errorf("%w: a search query is required", shared.ErrMissingArgument)
	}

	if err := r.startSession(ctx); err != nil {
		return err
	}

	artists, err := r.catalog.SearchArtists(ctx, query)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if useJSON {
		return r.writeJSON(artists, pretty)
	}

	if len(artists) == 0 {
		return r.writePlain("No artists found for %q\n", query)
	}

	r.writePlain("Found %d artists:\n\n", len(artists))
	for i, artist := range artists {
		r.writePlain("%d. %s [%s]\n", i+1, artist.Name, artist.ID)
	}

	return nil
}
