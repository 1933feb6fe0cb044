package postgres

import (
	"context"
	"database/sql"
	"errors"
)

// DefaultProfile is used when a store is not given a profile name.
const DefaultProfile = "local"

// PostgresBlobStore keeps one row per (profile, key). Several local profiles
// can share a database without seeing each other's lists.
type PostgresBlobStore struct {
	db      *sql.DB
	profile string
}

func NewBlobStore(db *sql.DB, profile string) *PostgresBlobStore {
	if profile == "" {
		profile = DefaultProfile
	}
	return &PostgresBlobStore{db: db, profile: profile}
}

func (s *PostgresBlobStore) InitSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS watch_state (
			profile TEXT NOT NULL,
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			updated_at TIMESTAMPTZ DEFAULT NOW(),
			PRIMARY KEY (profile, key)
		);
	`)
	return err
}

func (s *PostgresBlobStore) Get(ctx context.Context, key string) (string, bool, error) {
	query := `
		SELECT value
		FROM watch_state
		WHERE profile = $1 AND key = $2
	`
	var value string
	err := s.db.QueryRowContext(ctx, query, s.profile, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *PostgresBlobStore) Set(ctx context.Context, key string, value string) error {
	query := `
		INSERT INTO watch_state (profile, key, value, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (profile, key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`
	_, err := s.db.ExecContext(ctx, query, s.profile, key, value)
	return err
}
