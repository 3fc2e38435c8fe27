// Package db provides PostgreSQL persistence for the Cadence Playlist Generator.
//
// It is the sole owner of cached upstream state: per-user Spotify snapshots,
// per-artist top tracks, per-track tempo features, per-seed recommendations,
// and the per-user combined candidate set, plus users and web sessions.
// Records are upserted as whole replacements; callers receive copies.
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Common errors.
var (
	ErrNotFound = errors.New("not found")
)

// DB wraps a PostgreSQL connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// New creates a new database connection pool.
func New(ctx context.Context, databaseURL string) (*DB, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the database connection pool.
func (db *DB) Close() {
	db.pool.Close()
}

// Pool returns the underlying connection pool for advanced operations.
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

// Users returns a UserRepository.
func (db *DB) Users() *UserRepository {
	return &UserRepository{pool: db.pool}
}

// Sessions returns a SessionRepository.
func (db *DB) Sessions() *SessionRepository {
	return &SessionRepository{pool: db.pool}
}

// UserData returns a UserDataRepository.
func (db *DB) UserData() *UserDataRepository {
	return &UserDataRepository{pool: db.pool}
}

// ArtistTracks returns an ArtistTracksRepository.
func (db *DB) ArtistTracks() *ArtistTracksRepository {
	return &ArtistTracksRepository{pool: db.pool}
}

// Features returns a FeatureRepository.
func (db *DB) Features() *FeatureRepository {
	return &FeatureRepository{pool: db.pool}
}

// Recommendations returns a RecommendationRepository.
func (db *DB) Recommendations() *RecommendationRepository {
	return &RecommendationRepository{pool: db.pool}
}

// CombinedTracks returns a CombinedTracksRepository.
func (db *DB) CombinedTracks() *CombinedTracksRepository {
	return &CombinedTracksRepository{pool: db.pool}
}
