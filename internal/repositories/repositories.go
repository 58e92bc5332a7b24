package repositories

import (
	"database/sql"
	"fmt"

	"pastify/internal/shared"
)

// credentialKey is the well-known key the bearer token is stored under.
const credentialKey = "spotifyToken"

// TokenRepository implements services.TokenStore on top of the credentials table.
//
// Exactly one credential is held at a time; saving replaces any previous one.
// The credential survives process restarts until expiry or explicit logout.
type TokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a new [TokenRepository] with the given database connection
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// Save persists the credential under the well-known key, replacing any previous value.
func (r *TokenRepository) Save(token string) error {
	query := `
		INSERT INTO credentials (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`

	if _, err := r.db.Exec(query, credentialKey, token); err != nil {
		return fmt.Errorf("failed to save credential: %w", err)
	}

	return nil
}

// Load reads the credential back. Absence means logged-out.
func (r *TokenRepository) Load() (string, error) {
	var token string
	err := r.db.QueryRow("SELECT value FROM credentials WHERE key = ?", credentialKey).Scan(&token)
	if err == sql.ErrNoRows {
		return "", shared.ErrNotAuthenticated
	}
	if err != nil {
		return "", fmt.Errorf("failed to load credential: %w", err)
	}

	return token, nil
}

// Clear removes the credential.
func (r *TokenRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM credentials WHERE key = ?", credentialKey); err != nil {
		return fmt.Errorf("failed to clear credential: %w", err)
	}
	return nil
}
