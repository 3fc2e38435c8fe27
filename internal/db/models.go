package db

import (
	"encoding/json"
	"time"
)

// DataKey identifies one of the per-user Spotify snapshot kinds.
type DataKey string

// Valid data keys for user_spotify_data records.
const (
	KeyTopTracks   DataKey = "top_tracks"
	KeySavedTracks DataKey = "saved_tracks"
	KeyTopArtists  DataKey = "top_artists"
)

// FetchStatus marks the outcome recorded for a track feature lookup.
type FetchStatus string

const (
	// StatusOK means the upstream returned feature data for the track.
	StatusOK FetchStatus = "ok"

	// StatusNoData means the upstream confirmed it has no data for the
	// track. It is retried only once the record goes stale, so known-empty
	// tracks are not re-requested on every run.
	StatusNoData FetchStatus = "no_data"
)

// User represents a Spotify user profile.
type User struct {
	ID          string
	DisplayName string
	Email       string
	LastSeen    time.Time
}

// Session represents an authenticated web session.
type Session struct {
	ID           string
	UserID       string
	AccessToken  string
	RefreshToken string
	TokenExpiry  time.Time
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

// UserDataRecord is a cached per-user Spotify snapshot (top tracks, saved
// tracks, or top artists). Payload items are opaque upstream records; the
// engine only ever reads their "id" field.
type UserDataRecord struct {
	UserID      string
	Key         DataKey
	Payload     []json.RawMessage
	Count       int
	LastFetched time.Time
}

// ArtistTracksRecord is a cached list of an artist's top tracks.
type ArtistTracksRecord struct {
	ArtistID    string
	Payload     []json.RawMessage
	Count       int
	LastFetched time.Time
}

// TrackFeatureRecord is a cached tempo-analysis result for one track.
// Status StatusNoData implies Tempo and Features are nil.
type TrackFeatureRecord struct {
	TrackID     string
	Tempo       *float64
	Features    json.RawMessage
	LastFetched time.Time
	Status      FetchStatus
}

// RecommendationRecord is a cached similarity lookup for one seed track.
type RecommendationRecord struct {
	SeedID      string
	Recs        []json.RawMessage
	Count       int
	LastFetched time.Time
}

// CombinedTracksRecord is the unioned candidate track-ID set for one user,
// persisted for observability and replay. Stored ordered, semantically a set.
type CombinedTracksRecord struct {
	UserID      string
	TrackIDs    []string
	Count       int
	LastFetched time.Time
}
