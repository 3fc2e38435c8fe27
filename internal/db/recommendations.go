package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RecommendationRepository handles cached similarity lookups keyed by seed
// track ID.
type RecommendationRepository struct {
	pool *pgxpool.Pool
}

// Load retrieves the cached recommendations for a seed track.
// Returns ErrNotFound if the seed has never been fetched.
func (r *RecommendationRepository) Load(ctx context.Context, seedID string) (*RecommendationRecord, error) {
	query := `
		SELECT seed_track_id, recs, count, last_fetched
		FROM recommendations
		WHERE seed_track_id = $1
	`
	var (
		record RecommendationRecord
		recs   []byte
	)
	err := r.pool.QueryRow(ctx, query, seedID).Scan(
		&record.SeedID,
		&recs,
		&record.Count,
		&record.LastFetched,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying recommendations: %w", err)
	}
	if err := json.Unmarshal(recs, &record.Recs); err != nil {
		return nil, fmt.Errorf("decoding recommendations payload: %w", err)
	}
	return &record, nil
}

// Save upserts the whole recommendation list for a seed track.
func (r *RecommendationRepository) Save(ctx context.Context, seedID string, recs []json.RawMessage) error {
	encoded, err := encodeItems(recs)
	if err != nil {
		return fmt.Errorf("encoding recommendations payload: %w", err)
	}

	query := `
		INSERT INTO recommendations (seed_track_id, recs, count, last_fetched)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (seed_track_id) DO UPDATE SET
			recs = EXCLUDED.recs,
			count = EXCLUDED.count,
			last_fetched = EXCLUDED.last_fetched
	`
	if _, err := r.pool.Exec(ctx, query, seedID, encoded, len(recs)); err != nil {
		return fmt.Errorf("upserting recommendations: %w", err)
	}
	return nil
}
