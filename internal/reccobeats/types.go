// Package reccobeats provides a ReccoBeats API client for tempo analysis
// and similarity recommendations.
package reccobeats

import "encoding/json"

// Feature is one audio-features record. TrackID is the Spotify track ID
// parsed from the record's href; Raw preserves the upstream object for
// opaque storage. Tempo is nil when the upstream omits it.
type Feature struct {
	TrackID string
	Tempo   *float64
	Raw     json.RawMessage
}

// Recommendation is one similarity result for a seed track.
type Recommendation struct {
	TrackID string
	Raw     json.RawMessage
}

// TrackIDsFromRaw extracts the Spotify track IDs referenced by stored raw
// recommendation or feature records. Records without a parseable href are
// skipped.
func TrackIDsFromRaw(raws []json.RawMessage) []string {
	ids := make([]string, 0, len(raws))
	for _, raw := range raws {
		var fields featureFields
		if err := json.Unmarshal(raw, &fields); err != nil {
			continue
		}
		if id := ExtractTrackID(fields.Href); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// envelope is the common ReccoBeats list response shape.
type envelope struct {
	Content []json.RawMessage `json:"content"`
}

// featureFields are the typed fields the engine reads out of a feature
// record; everything else stays opaque.
type featureFields struct {
	Href  string   `json:"href"`
	Tempo *float64 `json:"tempo"`
}
