package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CombinedTracksRepository handles the unioned candidate track-ID set
// persisted per user after aggregation.
type CombinedTracksRepository struct {
	pool *pgxpool.Pool
}

// Load retrieves the combined track set for a user.
// Returns ErrNotFound if no pipeline run has been persisted for the user.
func (r *CombinedTracksRepository) Load(ctx context.Context, userID string) (*CombinedTracksRecord, error) {
	query := `
		SELECT user_id, track_ids, count, last_fetched
		FROM user_combined_tracks
		WHERE user_id = $1
	`
	var (
		record   CombinedTracksRecord
		trackIDs []byte
	)
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&record.UserID,
		&trackIDs,
		&record.Count,
		&record.LastFetched,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying combined tracks: %w", err)
	}
	if err := json.Unmarshal(trackIDs, &record.TrackIDs); err != nil {
		return nil, fmt.Errorf("decoding combined track IDs: %w", err)
	}
	return &record, nil
}

// Save upserts the whole combined track set for a user.
func (r *CombinedTracksRepository) Save(ctx context.Context, userID string, trackIDs []string) error {
	if trackIDs == nil {
		trackIDs = []string{}
	}
	encoded, err := json.Marshal(trackIDs)
	if err != nil {
		return fmt.Errorf("encoding combined track IDs: %w", err)
	}

	query := `
		INSERT INTO user_combined_tracks (user_id, track_ids, count, last_fetched)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			track_ids = EXCLUDED.track_ids,
			count = EXCLUDED.count,
			last_fetched = EXCLUDED.last_fetched
	`
	if _, err := r.pool.Exec(ctx, query, userID, encoded, len(trackIDs)); err != nil {
		return fmt.Errorf("upserting combined tracks: %w", err)
	}
	return nil
}
