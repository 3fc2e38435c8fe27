// Package library implements the staleness-aware cache and reconciliation
// engine: per-resource fetch-or-reuse, batched tempo reconciliation, and the
// candidate-set aggregation used for playlist assembly.
package library

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/justestif/go-cadence-playlist/internal/catalog"
	"github.com/justestif/go-cadence-playlist/internal/db"
	"github.com/justestif/go-cadence-playlist/internal/reccobeats"
)

const (
	// topLimit is the number of top tracks/artists requested per user.
	topLimit = 50

	// savedPageSize is the page size for the saved-tracks collector.
	savedPageSize = 50
)

// Service is the cache engine for one user-facing pipeline run. It decides
// per resource whether cached data is usable, calls upstream when it is not,
// and upserts results. Only successful fetches advance the freshness clock:
// an upstream failure yields an empty result and leaves the store untouched,
// so the next run retries immediately regardless of TTL.
type Service struct {
	store   Store
	catalog CatalogSource
	tempo   TempoSource
	ttl     time.Duration
	logger  *log.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithTTL overrides the cache TTL (default db.CacheTTL).
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.ttl = ttl
	}
}

// WithLogger sets the structured logger used for fetch diagnostics.
func WithLogger(logger *log.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New creates a library service over the given store and upstream clients.
func New(store Store, cat CatalogSource, tempo TempoSource, opts ...Option) *Service {
	s := &Service{
		store:   store,
		catalog: cat,
		tempo:   tempo,
		ttl:     db.CacheTTL,
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TopTracks returns the user's top tracks, served from cache when fresh.
func (s *Service) TopTracks(ctx context.Context, userID string) ([]catalog.Item, error) {
	return s.userData(ctx, userID, db.KeyTopTracks, func(ctx context.Context) ([]catalog.Item, error) {
		return s.catalog.TopTracks(ctx, topLimit)
	})
}

// TopArtists returns the user's top artists, served from cache when fresh.
func (s *Service) TopArtists(ctx context.Context, userID string) ([]catalog.Item, error) {
	return s.userData(ctx, userID, db.KeyTopArtists, func(ctx context.Context) ([]catalog.Item, error) {
		return s.catalog.TopArtists(ctx, topLimit)
	})
}

// SavedTracks returns all of the user's saved tracks. On a cache miss the
// full collection is gathered page by page until a short or empty page
// signals the end. Nothing is deduplicated here; that is the aggregation
// step's job.
func (s *Service) SavedTracks(ctx context.Context, userID string) ([]catalog.Item, error) {
	return s.userData(ctx, userID, db.KeySavedTracks, s.collectSavedTracks)
}

// collectSavedTracks walks the paginated saved-tracks endpoint.
func (s *Service) collectSavedTracks(ctx context.Context) ([]catalog.Item, error) {
	var items []catalog.Item
	offset := 0
	for {
		page, err := s.catalog.SavedTracksPage(ctx, savedPageSize, offset)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		items = append(items, page...)
		if len(page) < savedPageSize {
			break
		}
		offset += savedPageSize
	}
	return items, nil
}

// userData is the fetch-or-reuse path for per-user snapshot records.
func (s *Service) userData(ctx context.Context, userID string, key db.DataKey, fetch func(context.Context) ([]catalog.Item, error)) ([]catalog.Item, error) {
	record, err := s.store.LoadUserData(ctx, userID, key)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return nil, err
	}
	if err == nil && !db.IsStale(record.LastFetched, s.ttl) {
		return catalog.FromRaws(record.Payload), nil
	}

	items, err := fetch(ctx)
	if err != nil {
		// Failure must not poison the cache with a fresh empty record;
		// the next run retries immediately regardless of TTL.
		s.logger.Warn("upstream fetch failed, serving empty", "resource", key, "err", err)
		return nil, nil
	}

	if err := s.store.SaveUserData(ctx, userID, key, catalog.Raws(items)); err != nil {
		return nil, err
	}
	return items, nil
}

// ArtistTopTracks returns one artist's top tracks, cached per artist across
// all users.
func (s *Service) ArtistTopTracks(ctx context.Context, artistID string) ([]catalog.Item, error) {
	record, err := s.store.LoadArtistTracks(ctx, artistID)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return nil, err
	}
	if err == nil && !db.IsStale(record.LastFetched, s.ttl) {
		return catalog.FromRaws(record.Payload), nil
	}

	items, err := s.catalog.ArtistTopTracks(ctx, artistID)
	if err != nil {
		s.logger.Warn("artist top tracks fetch failed, serving empty", "artist", artistID, "err", err)
		return nil, nil
	}

	if err := s.store.SaveArtistTracks(ctx, artistID, catalog.Raws(items)); err != nil {
		return nil, err
	}
	return items, nil
}

// SimilarTrackIDs looks up similarity recommendations for each seed track
// and returns the deduplicated set of recommended track IDs. Lookups are
// cached per seed; a failed lookup skips that seed and leaves its cache
// entry untouched.
func (s *Service) SimilarTrackIDs(ctx context.Context, seeds []catalog.Item, size int) ([]string, error) {
	seen := make(map[string]struct{})
	var ids []string
	add := func(id string) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	for _, seed := range seeds {
		if seed.ID == "" {
			continue
		}

		record, err := s.store.LoadRecommendations(ctx, seed.ID)
		if err != nil && !errors.Is(err, db.ErrNotFound) {
			return nil, err
		}
		if err == nil && !db.IsStale(record.LastFetched, s.ttl) {
			for _, id := range reccobeats.TrackIDsFromRaw(record.Recs) {
				add(id)
			}
			continue
		}

		recs, err := s.tempo.Similar(ctx, seed.ID, size)
		if err != nil {
			s.logger.Warn("similarity lookup failed, skipping seed", "seed", seed.ID, "err", err)
			continue
		}

		raws := make([]json.RawMessage, len(recs))
		for i, rec := range recs {
			raws[i] = rec.Raw
			add(rec.TrackID)
		}
		if err := s.store.SaveRecommendations(ctx, seed.ID, raws); err != nil {
			return nil, err
		}
	}

	return ids, nil
}
