package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"pastify/internal/models"
	"pastify/internal/shared"
)

// SubmissionRepository persists the outcome of successful commits.
//
// Implements tasks.SubmissionRecorder.
type SubmissionRepository struct {
	db *sql.DB
}

// NewSubmissionRepository creates a new [SubmissionRepository] with the given database connection
func NewSubmissionRepository(db *sql.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Record inserts a submission with a generated id.
func (r *SubmissionRepository) Record(playlistID, playlistName string, result models.CommitResult) error {
	query := `
		INSERT INTO submissions (id, playlist_id, playlist_name, added_count, total_lines, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query, shared.GenerateID(), playlistID, playlistName, result.AddedCount, result.TotalLines, time.Now())
	if err != nil {
		return fmt.Errorf("failed to record submission: %w", err)
	}

	return nil
}

// List retrieves submissions in reverse chronological order, newest first.
func (r *SubmissionRepository) List(limit int) ([]models.Submission, error) {
	query := `
		SELECT id, playlist_id, playlist_name, added_count, total_lines, created_at
		FROM submissions
		ORDER BY created_at DESC
	`

	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer rows.Close()

	var submissions []models.Submission
	for rows.Next() {
		var s models.Submission
		if err := rows.Scan(&s.ID, &s.PlaylistID, &s.PlaylistName, &s.AddedCount, &s.TotalLines, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		submissions = append(submissions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate submissions: %w", err)
	}

	return submissions, nil
}
