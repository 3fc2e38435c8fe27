package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserDataRepository handles per-user Spotify snapshot records
// (top tracks, saved tracks, top artists).
type UserDataRepository struct {
	pool *pgxpool.Pool
}

// Load retrieves the snapshot for one (user, data key) pair.
// Returns ErrNotFound if the user has no record for that key.
func (r *UserDataRepository) Load(ctx context.Context, userID string, key DataKey) (*UserDataRecord, error) {
	query := `
		SELECT user_id, data_key, payload, count, last_fetched
		FROM user_spotify_data
		WHERE user_id = $1 AND data_key = $2
	`
	var (
		record  UserDataRecord
		payload []byte
	)
	err := r.pool.QueryRow(ctx, query, userID, string(key)).Scan(
		&record.UserID,
		&record.Key,
		&payload,
		&record.Count,
		&record.LastFetched,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user data: %w", err)
	}
	if err := json.Unmarshal(payload, &record.Payload); err != nil {
		return nil, fmt.Errorf("decoding user data payload: %w", err)
	}
	return &record, nil
}

// Save upserts the whole snapshot for one (user, data key) pair. The write
// fully replaces any prior record, including its timestamp; the stored count
// is the payload length at write time.
func (r *UserDataRepository) Save(ctx context.Context, userID string, key DataKey, payload []json.RawMessage) error {
	encoded, err := encodeItems(payload)
	if err != nil {
		return fmt.Errorf("encoding user data payload: %w", err)
	}

	query := `
		INSERT INTO user_spotify_data (user_id, data_key, payload, count, last_fetched)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id, data_key) DO UPDATE SET
			payload = EXCLUDED.payload,
			count = EXCLUDED.count,
			last_fetched = EXCLUDED.last_fetched
	`
	if _, err := r.pool.Exec(ctx, query, userID, string(key), encoded, len(payload)); err != nil {
		return fmt.Errorf("upserting user data: %w", err)
	}
	return nil
}

// encodeItems marshals an opaque item list for JSONB storage. A nil slice is
// stored as an empty JSON array so empty upstream results round-trip.
func encodeItems(items []json.RawMessage) ([]byte, error) {
	if items == nil {
		items = []json.RawMessage{}
	}
	return json.Marshal(items)
}
