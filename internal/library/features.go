package library

import (
	"context"

	"github.com/justestif/go-cadence-playlist/internal/db"
	"github.com/justestif/go-cadence-playlist/internal/reccobeats"
)

// EnsureFeatures reconciles the feature cache against the given track IDs
// and returns a map covering every ID the store now knows about.
//
// IDs are partitioned into cached-and-fresh (served as-is), missing or stale
// (fetched upstream in chunks of reccobeats.MaxBatchSize), and no_data-and-
// fresh (skipped: the upstream has already confirmed it holds nothing for
// them). A no_data record becomes retryable once it goes stale.
//
// Each successful chunk upserts every returned record as "ok"; requested IDs
// the upstream did not return are recorded as no_data. A failed chunk is
// skipped whole: none of its IDs are written, so they stay absent and are
// retried on the next invocation. The result map therefore may not cover
// every requested ID; callers must treat absence as "unknown", not zero.
func (s *Service) EnsureFeatures(ctx context.Context, trackIDs []string) (map[string]db.TrackFeatureRecord, error) {
	if len(trackIDs) == 0 {
		return make(map[string]db.TrackFeatureRecord), nil
	}

	cached, err := s.store.LoadFeatures(ctx, trackIDs)
	if err != nil {
		return nil, err
	}

	var needed []string
	for _, id := range trackIDs {
		record, ok := cached[id]
		switch {
		case !ok:
			needed = append(needed, id)
		case db.IsStale(record.LastFetched, s.ttl):
			// Stale "ok" records are refreshed; stale no_data records get
			// one more chance in case the upstream has since learned the
			// track.
			needed = append(needed, id)
		}
	}

	if len(needed) == 0 {
		return cached, nil
	}

	s.logger.Info("fetching tempo features", "missing", len(needed), "requested", len(trackIDs))

	for start := 0; start < len(needed); start += reccobeats.MaxBatchSize {
		end := min(start+reccobeats.MaxBatchSize, len(needed))
		chunk := needed[start:end]

		features, err := s.tempo.FeaturesBatch(ctx, chunk)
		if err != nil {
			// A transient failure is not "no data": leave the whole chunk
			// unwritten so it stays eligible for retry.
			s.logger.Warn("feature batch failed, skipping chunk", "size", len(chunk), "err", err)
			continue
		}

		records := make([]db.TrackFeatureRecord, 0, len(features))
		returned := make(map[string]struct{}, len(features))
		for _, f := range features {
			records = append(records, db.TrackFeatureRecord{
				TrackID:  f.TrackID,
				Tempo:    f.Tempo,
				Features: f.Raw,
				Status:   db.StatusOK,
			})
			returned[f.TrackID] = struct{}{}
		}
		if err := s.store.SaveFeatures(ctx, records); err != nil {
			return nil, err
		}

		// IDs the upstream chose not to return genuinely have no data,
		// distinct from the request itself failing.
		var noData []string
		for _, id := range chunk {
			if _, ok := returned[id]; !ok {
				noData = append(noData, id)
			}
		}
		if err := s.store.MarkFeaturesNoData(ctx, noData); err != nil {
			return nil, err
		}
	}

	// Reload so the result reflects exactly what was persisted.
	return s.store.LoadFeatures(ctx, trackIDs)
}
