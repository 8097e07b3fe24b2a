package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rs/zerolog"
)

// CacheStore is a sqlite-backed key-value store. The day cache depends only
// on Get/Set, so any store honoring that contract can stand in.
type CacheStore struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewCacheStore(db *sql.DB, logger zerolog.Logger) *CacheStore {
	return &CacheStore{db: db, logger: logger}
}

// Get returns the stored value and whether the key exists. Absence is not
// an error.
func (s *CacheStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM history_cache WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("cache read failed")
		return "", false, err
	}
	return value, true, nil
}

func (s *CacheStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO history_cache (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("cache write failed")
		return err
	}
	return nil
}
