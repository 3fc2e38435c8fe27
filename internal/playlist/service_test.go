package playlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/justestif/go-cadence-playlist/internal/catalog"
	"github.com/justestif/go-cadence-playlist/internal/db"
	"github.com/justestif/go-cadence-playlist/internal/library"
	"github.com/justestif/go-cadence-playlist/internal/reccobeats"
)

// stubStore implements library.Store in memory.
type stubStore struct {
	userData     map[string]*db.UserDataRecord
	artistTracks map[string]*db.ArtistTracksRecord
	features     map[string]db.TrackFeatureRecord
	recs         map[string]*db.RecommendationRecord
	combined     map[string]*db.CombinedTracksRecord
}

func newStubStore() *stubStore {
	return &stubStore{
		userData:     make(map[string]*db.UserDataRecord),
		artistTracks: make(map[string]*db.ArtistTracksRecord),
		features:     make(map[string]db.TrackFeatureRecord),
		recs:         make(map[string]*db.RecommendationRecord),
		combined:     make(map[string]*db.CombinedTracksRecord),
	}
}

func (s *stubStore) LoadUserData(_ context.Context, userID string, key db.DataKey) (*db.UserDataRecord, error) {
	record, ok := s.userData[userID+"/"+string(key)]
	if !ok {
		return nil, db.ErrNotFound
	}
	return record, nil
}

func (s *stubStore) SaveUserData(_ context.Context, userID string, key db.DataKey, payload []json.RawMessage) error {
	s.userData[userID+"/"+string(key)] = &db.UserDataRecord{
		UserID: userID, Key: key, Payload: payload,
		Count: len(payload), LastFetched: time.Now(),
	}
	return nil
}

func (s *stubStore) LoadArtistTracks(_ context.Context, artistID string) (*db.ArtistTracksRecord, error) {
	record, ok := s.artistTracks[artistID]
	if !ok {
		return nil, db.ErrNotFound
	}
	return record, nil
}

func (s *stubStore) SaveArtistTracks(_ context.Context, artistID string, payload []json.RawMessage) error {
	s.artistTracks[artistID] = &db.ArtistTracksRecord{
		ArtistID: artistID, Payload: payload,
		Count: len(payload), LastFetched: time.Now(),
	}
	return nil
}

func (s *stubStore) LoadFeatures(_ context.Context, trackIDs []string) (map[string]db.TrackFeatureRecord, error) {
	result := make(map[string]db.TrackFeatureRecord)
	for _, id := range trackIDs {
		if record, ok := s.features[id]; ok {
			result[id] = record
		}
	}
	return result, nil
}

func (s *stubStore) SaveFeatures(_ context.Context, records []db.TrackFeatureRecord) error {
	for _, record := range records {
		record.LastFetched = time.Now()
		s.features[record.TrackID] = record
	}
	return nil
}

func (s *stubStore) MarkFeaturesNoData(_ context.Context, trackIDs []string) error {
	for _, id := range trackIDs {
		s.features[id] = db.TrackFeatureRecord{
			TrackID: id, LastFetched: time.Now(), Status: db.StatusNoData,
		}
	}
	return nil
}

func (s *stubStore) LoadRecommendations(_ context.Context, seedID string) (*db.RecommendationRecord, error) {
	record, ok := s.recs[seedID]
	if !ok {
		return nil, db.ErrNotFound
	}
	return record, nil
}

func (s *stubStore) SaveRecommendations(_ context.Context, seedID string, recs []json.RawMessage) error {
	s.recs[seedID] = &db.RecommendationRecord{
		SeedID: seedID, Recs: recs, Count: len(recs), LastFetched: time.Now(),
	}
	return nil
}

func (s *stubStore) LoadCombinedTracks(_ context.Context, userID string) (*db.CombinedTracksRecord, error) {
	record, ok := s.combined[userID]
	if !ok {
		return nil, db.ErrNotFound
	}
	return record, nil
}

func (s *stubStore) SaveCombinedTracks(_ context.Context, userID string, trackIDs []string) error {
	s.combined[userID] = &db.CombinedTracksRecord{
		UserID: userID, TrackIDs: trackIDs,
		Count: len(trackIDs), LastFetched: time.Now(),
	}
	return nil
}

// stubCatalog implements library.CatalogSource.
type stubCatalog struct {
	topTracks    []catalog.Item
	savedTracks  []catalog.Item
	topArtists   []catalog.Item
	artistTracks map[string][]catalog.Item
}

func (s *stubCatalog) TopTracks(_ context.Context, _ int) ([]catalog.Item, error) {
	return s.topTracks, nil
}

func (s *stubCatalog) SavedTracksPage(_ context.Context, limit, offset int) ([]catalog.Item, error) {
	if offset >= len(s.savedTracks) {
		return nil, nil
	}
	end := offset + limit
	if end > len(s.savedTracks) {
		end = len(s.savedTracks)
	}
	return s.savedTracks[offset:end], nil
}

func (s *stubCatalog) TopArtists(_ context.Context, _ int) ([]catalog.Item, error) {
	return s.topArtists, nil
}

func (s *stubCatalog) ArtistTopTracks(_ context.Context, artistID string) ([]catalog.Item, error) {
	return s.artistTracks[artistID], nil
}

// stubTempo implements library.TempoSource with fixed tempos per track.
type stubTempo struct {
	tempos       map[string]float64
	similar      map[string][]string
	similarCalls atomic.Int32
}

func (s *stubTempo) FeaturesBatch(_ context.Context, trackIDs []string) ([]reccobeats.Feature, error) {
	var features []reccobeats.Feature
	for _, id := range trackIDs {
		tempo, ok := s.tempos[id]
		if !ok {
			continue
		}
		t := tempo
		features = append(features, reccobeats.Feature{
			TrackID: id,
			Tempo:   &t,
			Raw:     json.RawMessage(fmt.Sprintf(`{"href":"https://open.spotify.com/track/%s","tempo":%v}`, id, tempo)),
		})
	}
	return features, nil
}

func (s *stubTempo) Similar(_ context.Context, seedID string, _ int) ([]reccobeats.Recommendation, error) {
	s.similarCalls.Add(1)
	var recs []reccobeats.Recommendation
	for _, id := range s.similar[seedID] {
		recs = append(recs, reccobeats.Recommendation{
			TrackID: id,
			Raw:     json.RawMessage(fmt.Sprintf(`{"href":"https://open.spotify.com/track/%s"}`, id)),
		})
	}
	return recs, nil
}

// stubCreator implements PlaylistCreator and records what it was asked for.
type stubCreator struct {
	createdName string
	addedTracks []string
	createErr   error
}

func (s *stubCreator) CreatePlaylist(_ context.Context, _, name, _ string) (*catalog.Playlist, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.createdName = name
	return &catalog.Playlist{
		ID:   "pl123",
		Name: name,
		URL:  "https://open.spotify.com/playlist/pl123",
	}, nil
}

func (s *stubCreator) AddTracksToPlaylist(_ context.Context, _ string, trackIDs []string) error {
	s.addedTracks = append(s.addedTracks, trackIDs...)
	return nil
}

func track(id string) catalog.Item {
	return catalog.Item{ID: id, Raw: json.RawMessage(fmt.Sprintf(`{"id":%q}`, id))}
}

func tracks(ids ...string) []catalog.Item {
	result := make([]catalog.Item, len(ids))
	for i, id := range ids {
		result[i] = track(id)
	}
	return result
}

func TestGenerate_EndToEnd(t *testing.T) {
	store := newStubStore()
	cat := &stubCatalog{
		topTracks:   tracks("A"),
		savedTracks: tracks("B"),
		topArtists:  tracks("artist1"),
		artistTracks: map[string][]catalog.Item{
			"artist1": tracks("C"),
		},
	}
	tempo := &stubTempo{
		tempos: map[string]float64{
			"A": 165.0, // in band
			"B": 100.0, // too slow
			"C": 180.0, // too fast
			"D": 160.0, // lower edge, in band
		},
		similar: map[string][]string{"A": {"D"}},
	}
	creator := &stubCreator{}

	lib := library.New(store, cat, tempo)

	var stages []Stage
	gen := NewGenerator(lib, creator, WithProgress(func(p Progress) {
		stages = append(stages, p.Stage)
	}))

	result, err := gen.Generate(context.Background(), "user1", 160)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Name != "Run Cadence 160 BPM" {
		t.Errorf("unexpected playlist name: %q", result.Name)
	}
	if creator.createdName != "Run Cadence 160 BPM" {
		t.Errorf("creator got name %q", creator.createdName)
	}
	if result.TrackCount != 2 {
		t.Errorf("expected 2 tracks, got %d", result.TrackCount)
	}
	if result.EmbedURL != "https://open.spotify.com/embed/playlist/pl123" {
		t.Errorf("unexpected embed URL: %q", result.EmbedURL)
	}

	if len(creator.addedTracks) != 2 || creator.addedTracks[0] != "A" || creator.addedTracks[1] != "D" {
		t.Errorf("expected [A D] added, got %v", creator.addedTracks)
	}

	// The candidate union is persisted before filtering.
	combined, ok := store.combined["user1"]
	if !ok {
		t.Fatal("expected combined tracks to be saved")
	}
	if len(combined.TrackIDs) != 4 {
		t.Errorf("expected 4 candidates persisted, got %v", combined.TrackIDs)
	}

	// Every stage fires, in order, including the similarity fan-out.
	wantStages := []Stage{
		StageTopTracks, StageSavedTracks, StageTopArtists,
		StageArtistTracks, StageSimilar, StageTempo, StageAssembling,
	}
	if len(stages) != len(wantStages) {
		t.Fatalf("expected stages %v, got %v", wantStages, stages)
	}
	for i, want := range wantStages {
		if stages[i] != want {
			t.Errorf("stage[%d] = %q, want %q", i, stages[i], want)
		}
	}
}

func TestGenerate_InvalidCadence(t *testing.T) {
	gen := NewGenerator(library.New(newStubStore(), &stubCatalog{}, &stubTempo{}), &stubCreator{})

	if _, err := gen.Generate(context.Background(), "user1", 0); !errors.Is(err, ErrInvalidCadence) {
		t.Errorf("expected ErrInvalidCadence, got %v", err)
	}
	if _, err := gen.Generate(context.Background(), "user1", -5); !errors.Is(err, ErrInvalidCadence) {
		t.Errorf("expected ErrInvalidCadence, got %v", err)
	}
}

func TestGenerate_NoCandidates(t *testing.T) {
	gen := NewGenerator(library.New(newStubStore(), &stubCatalog{}, &stubTempo{}), &stubCreator{})

	if _, err := gen.Generate(context.Background(), "user1", 160); !errors.Is(err, ErrNoCandidates) {
		t.Errorf("expected ErrNoCandidates, got %v", err)
	}
}

func TestGenerate_NoMatchingTracks(t *testing.T) {
	store := newStubStore()
	cat := &stubCatalog{topTracks: tracks("A", "B")}
	tempo := &stubTempo{
		tempos: map[string]float64{"A": 100.0, "B": 200.0},
	}
	creator := &stubCreator{}

	gen := NewGenerator(library.New(store, cat, tempo), creator)

	_, err := gen.Generate(context.Background(), "user1", 160)
	if !errors.Is(err, ErrNoMatchingTracks) {
		t.Fatalf("expected ErrNoMatchingTracks, got %v", err)
	}
	if creator.createdName != "" {
		t.Error("no playlist should be created when nothing matches")
	}
}

func TestGenerate_BandEdges(t *testing.T) {
	store := newStubStore()
	cat := &stubCatalog{topTracks: tracks("low", "high", "below", "above")}
	tempo := &stubTempo{
		tempos: map[string]float64{
			"low":   160.0,
			"high":  169.0,
			"below": 159.9,
			"above": 169.1,
		},
	}
	creator := &stubCreator{}

	gen := NewGenerator(library.New(store, cat, tempo), creator)

	result, err := gen.Generate(context.Background(), "user1", 160)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TrackCount != 2 {
		t.Errorf("expected both edge tempos kept, got %v", creator.addedTracks)
	}
	if len(creator.addedTracks) != 2 || creator.addedTracks[0] != "low" || creator.addedTracks[1] != "high" {
		t.Errorf("expected [low high], got %v", creator.addedTracks)
	}
}

func TestGenerate_LargeLibrarySkipsSimilar(t *testing.T) {
	store := newStubStore()

	saved := make([]catalog.Item, recThreshold)
	tempos := map[string]float64{}
	for i := range saved {
		id := fmt.Sprintf("s%04d", i)
		saved[i] = track(id)
		tempos[id] = 165.0
	}

	cat := &stubCatalog{
		topTracks:   tracks("A"),
		savedTracks: saved,
	}
	tempos["A"] = 165.0
	tempo := &stubTempo{
		tempos:  tempos,
		similar: map[string][]string{"A": {"D"}},
	}

	gen := NewGenerator(library.New(store, cat, tempo), &stubCreator{})

	result, err := gen.Generate(context.Background(), "user1", 160)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tempo.similarCalls.Load() != 0 {
		t.Errorf("expected similarity skipped for a large library, got %d calls", tempo.similarCalls.Load())
	}
	if result.TrackCount != recThreshold+1 {
		t.Errorf("expected %d tracks, got %d", recThreshold+1, result.TrackCount)
	}
}

func TestGenerate_NoDataTracksExcluded(t *testing.T) {
	store := newStubStore()
	cat := &stubCatalog{topTracks: tracks("known", "unknown")}
	// The upstream only knows one track; the other becomes no_data and
	// must not appear in the playlist.
	tempo := &stubTempo{tempos: map[string]float64{"known": 165.0}}
	creator := &stubCreator{}

	gen := NewGenerator(library.New(store, cat, tempo), creator)

	result, err := gen.Generate(context.Background(), "user1", 160)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TrackCount != 1 || creator.addedTracks[0] != "known" {
		t.Errorf("expected only the known track, got %v", creator.addedTracks)
	}
	if store.features["unknown"].Status != db.StatusNoData {
		t.Errorf("expected unknown track marked no_data, got %+v", store.features["unknown"])
	}
}

func TestGenerate_CreateFailureSurfaces(t *testing.T) {
	store := newStubStore()
	cat := &stubCatalog{topTracks: tracks("A")}
	tempo := &stubTempo{tempos: map[string]float64{"A": 165.0}}
	creator := &stubCreator{createErr: errors.New("spotify rejected the request")}

	gen := NewGenerator(library.New(store, cat, tempo), creator)

	if _, err := gen.Generate(context.Background(), "user1", 160); err == nil {
		t.Error("expected playlist creation failure to surface")
	}
}
