package db

import (
	"context"
	"encoding/json"
)

// The methods below expose the resource store as one flat surface so the
// library engine can take a single injected store value. Each call delegates
// to the matching repository; every upsert is independently atomic.

// LoadUserData retrieves a per-user snapshot record.
func (db *DB) LoadUserData(ctx context.Context, userID string, key DataKey) (*UserDataRecord, error) {
	return db.UserData().Load(ctx, userID, key)
}

// SaveUserData upserts a per-user snapshot record.
func (db *DB) SaveUserData(ctx context.Context, userID string, key DataKey, payload []json.RawMessage) error {
	return db.UserData().Save(ctx, userID, key, payload)
}

// LoadArtistTracks retrieves a cached artist top-track list.
func (db *DB) LoadArtistTracks(ctx context.Context, artistID string) (*ArtistTracksRecord, error) {
	return db.ArtistTracks().Load(ctx, artistID)
}

// SaveArtistTracks upserts an artist top-track list.
func (db *DB) SaveArtistTracks(ctx context.Context, artistID string, payload []json.RawMessage) error {
	return db.ArtistTracks().Save(ctx, artistID, payload)
}

// LoadFeatures retrieves feature records for the given track IDs; tracks
// never fetched are omitted from the map.
func (db *DB) LoadFeatures(ctx context.Context, trackIDs []string) (map[string]TrackFeatureRecord, error) {
	return db.Features().LoadMany(ctx, trackIDs)
}

// SaveFeatures upserts feature records with fetch status "ok".
func (db *DB) SaveFeatures(ctx context.Context, records []TrackFeatureRecord) error {
	return db.Features().SaveBatch(ctx, records)
}

// MarkFeaturesNoData records confirmed-absent feature data for tracks.
func (db *DB) MarkFeaturesNoData(ctx context.Context, trackIDs []string) error {
	return db.Features().MarkNoData(ctx, trackIDs)
}

// LoadRecommendations retrieves cached recommendations for a seed track.
func (db *DB) LoadRecommendations(ctx context.Context, seedID string) (*RecommendationRecord, error) {
	return db.Recommendations().Load(ctx, seedID)
}

// SaveRecommendations upserts recommendations for a seed track.
func (db *DB) SaveRecommendations(ctx context.Context, seedID string, recs []json.RawMessage) error {
	return db.Recommendations().Save(ctx, seedID, recs)
}

// LoadCombinedTracks retrieves the persisted candidate set for a user.
func (db *DB) LoadCombinedTracks(ctx context.Context, userID string) (*CombinedTracksRecord, error) {
	return db.CombinedTracks().Load(ctx, userID)
}

// SaveCombinedTracks upserts the candidate set for a user.
func (db *DB) SaveCombinedTracks(ctx context.Context, userID string, trackIDs []string) error {
	return db.CombinedTracks().Save(ctx, userID, trackIDs)
}
