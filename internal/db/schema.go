package db

import (
	"context"
	"fmt"
)

// schemaStatements creates the cache tables. Statements are idempotent so
// InitSchema can run on every startup.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		display_name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		last_seen TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		access_token TEXT NOT NULL,
		refresh_token TEXT NOT NULL,
		token_expiry TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS user_spotify_data (
		user_id TEXT NOT NULL,
		data_key TEXT NOT NULL,
		payload JSONB NOT NULL,
		count INTEGER NOT NULL,
		last_fetched TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (user_id, data_key)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_user_data_fetched ON user_spotify_data(last_fetched)`,

	`CREATE TABLE IF NOT EXISTS artist_top_tracks (
		artist_id TEXT PRIMARY KEY,
		payload JSONB NOT NULL,
		count INTEGER NOT NULL,
		last_fetched TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_artist_tracks_fetched ON artist_top_tracks(last_fetched)`,

	`CREATE TABLE IF NOT EXISTS track_features (
		track_id TEXT PRIMARY KEY,
		tempo DOUBLE PRECISION,
		features JSONB,
		last_fetched TIMESTAMPTZ NOT NULL,
		fetch_status TEXT NOT NULL DEFAULT 'ok'
	)`,
	`CREATE INDEX IF NOT EXISTS idx_track_features_fetched ON track_features(last_fetched)`,

	`CREATE TABLE IF NOT EXISTS recommendations (
		seed_track_id TEXT PRIMARY KEY,
		recs JSONB NOT NULL,
		count INTEGER NOT NULL,
		last_fetched TIMESTAMPTZ NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS user_combined_tracks (
		user_id TEXT PRIMARY KEY,
		track_ids JSONB NOT NULL,
		count INTEGER NOT NULL,
		last_fetched TIMESTAMPTZ NOT NULL
	)`,
}

// InitSchema creates all tables and indexes if they do not already exist.
func (db *DB) InitSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("initializing schema: %w", err)
		}
	}
	return nil
}
