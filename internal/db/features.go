package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// FeatureRepository handles cached tempo-analysis records. Feature records
// are shared across users and keyed by track ID; each upsert is a whole
// replacement, so concurrent writers race last-write-wins.
type FeatureRepository struct {
	pool *pgxpool.Pool
}

// LoadMany retrieves feature records for the given track IDs, returning a
// map keyed by track ID. Tracks that have never been fetched are simply
// omitted; callers must treat absence as "unknown", not as "no data".
func (r *FeatureRepository) LoadMany(ctx context.Context, trackIDs []string) (map[string]TrackFeatureRecord, error) {
	if len(trackIDs) == 0 {
		return make(map[string]TrackFeatureRecord), nil
	}

	query := `
		SELECT track_id, tempo, features, last_fetched, fetch_status
		FROM track_features
		WHERE track_id = ANY($1)
	`
	rows, err := r.pool.Query(ctx, query, trackIDs)
	if err != nil {
		return nil, fmt.Errorf("querying track features: %w", err)
	}
	defer rows.Close()

	result := make(map[string]TrackFeatureRecord)
	for rows.Next() {
		var record TrackFeatureRecord
		if err := rows.Scan(
			&record.TrackID,
			&record.Tempo,
			&record.Features,
			&record.LastFetched,
			&record.Status,
		); err != nil {
			return nil, fmt.Errorf("scanning track feature: %w", err)
		}
		result[record.TrackID] = record
	}
	return result, rows.Err()
}

// SaveBatch upserts feature records with fetch status "ok". Each record
// fully replaces any prior row for its track, advancing last_fetched.
func (r *FeatureRepository) SaveBatch(ctx context.Context, records []TrackFeatureRecord) error {
	if len(records) == 0 {
		return nil
	}

	query := `
		INSERT INTO track_features (track_id, tempo, features, last_fetched, fetch_status)
		VALUES ($1, $2, $3, NOW(), 'ok')
		ON CONFLICT (track_id) DO UPDATE SET
			tempo = EXCLUDED.tempo,
			features = EXCLUDED.features,
			last_fetched = EXCLUDED.last_fetched,
			fetch_status = EXCLUDED.fetch_status
	`

	batch := &pgx.Batch{}
	for _, record := range records {
		batch.Queue(query, record.TrackID, record.Tempo, record.Features)
	}

	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("batch upserting track features: %w", err)
	}
	return nil
}

// MarkNoData records that the upstream has confirmed it holds no feature
// data for the given tracks. Tempo and raw features are cleared; the rows
// become eligible for retry only once they go stale.
func (r *FeatureRepository) MarkNoData(ctx context.Context, trackIDs []string) error {
	if len(trackIDs) == 0 {
		return nil
	}

	query := `
		INSERT INTO track_features (track_id, tempo, features, last_fetched, fetch_status)
		VALUES ($1, NULL, NULL, NOW(), 'no_data')
		ON CONFLICT (track_id) DO UPDATE SET
			tempo = NULL,
			features = NULL,
			last_fetched = EXCLUDED.last_fetched,
			fetch_status = EXCLUDED.fetch_status
	`

	batch := &pgx.Batch{}
	for _, id := range trackIDs {
		batch.Queue(query, id)
	}

	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("marking tracks no_data: %w", err)
	}
	return nil
}
