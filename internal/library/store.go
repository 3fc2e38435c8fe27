package library

import (
	"context"
	"encoding/json"

	"github.com/justestif/go-cadence-playlist/internal/catalog"
	"github.com/justestif/go-cadence-playlist/internal/db"
	"github.com/justestif/go-cadence-playlist/internal/reccobeats"
)

// Store is the resource store the engine reads and writes. Loads for absent
// keys return db.ErrNotFound (or omit the key, for the batch form); saves
// are whole-record upserts that advance last_fetched.
type Store interface {
	LoadUserData(ctx context.Context, userID string, key db.DataKey) (*db.UserDataRecord, error)
	SaveUserData(ctx context.Context, userID string, key db.DataKey, payload []json.RawMessage) error

	LoadArtistTracks(ctx context.Context, artistID string) (*db.ArtistTracksRecord, error)
	SaveArtistTracks(ctx context.Context, artistID string, payload []json.RawMessage) error

	LoadFeatures(ctx context.Context, trackIDs []string) (map[string]db.TrackFeatureRecord, error)
	SaveFeatures(ctx context.Context, records []db.TrackFeatureRecord) error
	MarkFeaturesNoData(ctx context.Context, trackIDs []string) error

	LoadRecommendations(ctx context.Context, seedID string) (*db.RecommendationRecord, error)
	SaveRecommendations(ctx context.Context, seedID string, recs []json.RawMessage) error

	LoadCombinedTracks(ctx context.Context, userID string) (*db.CombinedTracksRecord, error)
	SaveCombinedTracks(ctx context.Context, userID string, trackIDs []string) error
}

// CatalogSource is the injected Spotify catalog capability.
type CatalogSource interface {
	TopTracks(ctx context.Context, limit int) ([]catalog.Item, error)
	SavedTracksPage(ctx context.Context, limit, offset int) ([]catalog.Item, error)
	TopArtists(ctx context.Context, limit int) ([]catalog.Item, error)
	ArtistTopTracks(ctx context.Context, artistID string) ([]catalog.Item, error)
}

// TempoSource is the injected tempo-analysis capability.
type TempoSource interface {
	FeaturesBatch(ctx context.Context, trackIDs []string) ([]reccobeats.Feature, error)
	Similar(ctx context.Context, seedID string, size int) ([]reccobeats.Recommendation, error)
}

// Ensure the production implementations satisfy the seams.
var (
	_ Store         = (*db.DB)(nil)
	_ CatalogSource = (*catalog.Client)(nil)
	_ TempoSource   = (*reccobeats.Client)(nil)
)
