package library

import (
	"context"
	"errors"

	"github.com/justestif/go-cadence-playlist/internal/catalog"
	"github.com/justestif/go-cadence-playlist/internal/db"
)

// ArtistsTopTracks fetches each artist's top tracks (cached per artist) and
// flattens them into one list. An artist whose fetch fails contributes
// nothing; the remaining artists still go through.
func (s *Service) ArtistsTopTracks(ctx context.Context, artists []catalog.Item) ([]catalog.Item, error) {
	var tracks []catalog.Item
	for _, artist := range artists {
		if artist.ID == "" {
			continue
		}
		items, err := s.ArtistTopTracks(ctx, artist.ID)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, items...)
	}
	return tracks, nil
}

// SaveCombinedTracks persists a user's unioned candidate set for
// observability and replay, independent of the filtering step.
func (s *Service) SaveCombinedTracks(ctx context.Context, userID string, trackIDs []string) error {
	return s.store.SaveCombinedTracks(ctx, userID, trackIDs)
}

// TempoProfile returns the known tempos of a user's persisted candidate
// set: one value per track with a confirmed tempo. Tracks never reconciled,
// confirmed as no_data, or missing a tempo value contribute nothing.
func (s *Service) TempoProfile(ctx context.Context, userID string) ([]float64, error) {
	combined, err := s.store.LoadCombinedTracks(ctx, userID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	features, err := s.store.LoadFeatures(ctx, combined.TrackIDs)
	if err != nil {
		return nil, err
	}

	tempos := make([]float64, 0, len(features))
	for _, id := range combined.TrackIDs {
		record, ok := features[id]
		if !ok || record.Status != db.StatusOK || record.Tempo == nil {
			continue
		}
		tempos = append(tempos, *record.Tempo)
	}
	return tempos, nil
}

// UnionIDs deduplicates each source list by ID (first occurrence wins) and
// unions them into one candidate set. The result carries no ordering
// guarantee beyond first-seen order.
func UnionIDs(sources ...[]string) []string {
	seen := make(map[string]struct{})
	var union []string
	for _, source := range sources {
		for _, id := range source {
			if id == "" {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			union = append(union, id)
		}
	}
	return union
}
