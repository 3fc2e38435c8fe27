package playlist

import (
	"github.com/justestif/go-cadence-playlist/internal/cadence"
	"github.com/justestif/go-cadence-playlist/internal/db"
)

// filterByTempo keeps the candidates whose known tempo falls inside the
// band, preserving candidate order. Tracks with no feature record, a
// no_data record, or a missing tempo are dropped rather than guessed at.
func filterByTempo(candidates []string, features map[string]db.TrackFeatureRecord, band cadence.Band) []string {
	matched := make([]string, 0, len(candidates))
	for _, id := range candidates {
		rec, ok := features[id]
		if !ok || rec.Status != db.StatusOK || rec.Tempo == nil {
			continue
		}
		if band.Contains(*rec.Tempo) {
			matched = append(matched, id)
		}
	}
	return matched
}
