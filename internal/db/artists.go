package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ArtistTracksRepository handles cached artist top-track lists. Artist
// records are shared across users; concurrent pipeline runs race
// last-write-wins, which is safe because payloads are idempotent snapshots
// of the same upstream truth.
type ArtistTracksRepository struct {
	pool *pgxpool.Pool
}

// Load retrieves the cached top tracks for an artist.
// Returns ErrNotFound if the artist has never been fetched.
func (r *ArtistTracksRepository) Load(ctx context.Context, artistID string) (*ArtistTracksRecord, error) {
	query := `
		SELECT artist_id, payload, count, last_fetched
		FROM artist_top_tracks
		WHERE artist_id = $1
	`
	var (
		record  ArtistTracksRecord
		payload []byte
	)
	err := r.pool.QueryRow(ctx, query, artistID).Scan(
		&record.ArtistID,
		&payload,
		&record.Count,
		&record.LastFetched,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying artist tracks: %w", err)
	}
	if err := json.Unmarshal(payload, &record.Payload); err != nil {
		return nil, fmt.Errorf("decoding artist tracks payload: %w", err)
	}
	return &record, nil
}

// Save upserts the whole top-track list for an artist.
func (r *ArtistTracksRepository) Save(ctx context.Context, artistID string, payload []json.RawMessage) error {
	encoded, err := encodeItems(payload)
	if err != nil {
		return fmt.Errorf("encoding artist tracks payload: %w", err)
	}

	query := `
		INSERT INTO artist_top_tracks (artist_id, payload, count, last_fetched)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (artist_id) DO UPDATE SET
			payload = EXCLUDED.payload,
			count = EXCLUDED.count,
			last_fetched = EXCLUDED.last_fetched
	`
	if _, err := r.pool.Exec(ctx, query, artistID, encoded, len(payload)); err != nil {
		return fmt.Errorf("upserting artist tracks: %w", err)
	}
	return nil
}
