// package formatter provides functions to render playlists and submission history (CSV, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"pastify/internal/models"
	"pastify/internal/shared"
)

// PlaylistsToCSV converts an owned-playlist list to CSV with columns: ID, Name, Tracks, Image
func PlaylistsToCSV(playlists []models.Playlist) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Name", "Tracks", "Image"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, playlist := range playlists {
		record := []string{
			playlist.ID,
			playlist.Name,
			strconv.Itoa(playlist.TrackCount),
			playlist.ImageURL,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// PlaylistsToText converts an owned-playlist list to plain text format
func PlaylistsToText(playlists []models.Playlist) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlists: %d\n\n", len(playlists)))

	for i, playlist := range playlists {
		buf.WriteString(fmt.Sprintf("%d. %s (%d tracks) [%s]\n", i+1, playlist.Name, playlist.TrackCount, playlist.ID))
	}

	return buf.Bytes()
}

// SubmissionsToCSV converts submission history to CSV with columns: ID, Playlist, Added, Total, Date
func SubmissionsToCSV(submissions []models.Submission) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Playlist", "Added", "Total", "Date"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, submission := range submissions {
		record := []string{
			submission.ID,
			submission.PlaylistName,
			strconv.Itoa(submission.AddedCount),
			strconv.Itoa(submission.TotalLines),
			submission.CreatedAt.Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// SubmissionsToText converts submission history to plain text format
func SubmissionsToText(submissions []models.Submission) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Submissions: %d\n\n", len(submissions)))

	for i, submission := range submissions {
		buf.WriteString(fmt.Sprintf("%d. %s - added %d of %d (%s)\n",
			i+1,
			submission.PlaylistName,
			submission.AddedCount,
			submission.TotalLines,
			submission.CreatedAt.Format("2006-01-02 15:04"),
		))
	}

	return buf.Bytes()
}

// PlaylistsToJSON generates a pretty-printed JSON representation of the playlist list
func PlaylistsToJSON(playlists []models.Playlist) ([]byte, error) {
	return shared.MarshalJSON(playlists, true)
}

// SubmissionsToJSON generates a pretty-printed JSON representation of submission history
func SubmissionsToJSON(submissions []models.Submission) ([]byte, error) {
	return shared.MarshalJSON(submissions, true)
}

// WritePlaylistsCSV exports the playlist list to a CSV file.
//
// Defaults to playlists.csv as the filename.
func WritePlaylistsCSV(playlists []models.Playlist, filepath string) (string, error) {
	if filepath == "" {
		filepath = "playlists.csv"
	}

	csvData, err := PlaylistsToCSV(playlists)
	if err != nil {
		return "", fmt.Errorf("failed to generate CSV: %w", err)
	}

	if err := os.WriteFile(filepath, csvData, 0644); err != nil {
		return "", fmt.Errorf("failed to write CSV file: %w", err)
	}

	return filepath, nil
}

// WriteSubmissionsCSV exports submission history to a CSV file.
//
// Defaults to history.csv as the filename.
func WriteSubmissionsCSV(submissions []models.Submission, filepath string) (string, error) {
	if filepath == "" {
		filepath = "history.csv"
	}

	csvData, err := SubmissionsToCSV(submissions)
	if err != nil {
		return "", fmt.Errorf("failed to generate CSV: %w", err)
	}

	if err := os.WriteFile(filepath, csvData, 0644); err != nil {
		return "", fmt.Errorf("failed to write CSV file: %w", err)
	}

	return filepath, nil
}
