package reccobeats

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func TestExtractTrackID(t *testing.T) {
	tests := []struct {
		name string
		href string
		want string
	}{
		{"full URL", "https://open.spotify.com/track/abc123", "abc123"},
		{"with query string", "https://open.spotify.com/track/abc123?si=xyz", "abc123"},
		{"bare ID", "abc123", "abc123"},
		{"empty", "", ""},
		{"marker only", "https://open.spotify.com/track/", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractTrackID(tt.href); got != tt.want {
				t.Errorf("ExtractTrackID(%q) = %q, want %q", tt.href, got, tt.want)
			}
		})
	}
}

func TestTrackIDsFromRaw(t *testing.T) {
	raws := []json.RawMessage{
		json.RawMessage(`{"href":"https://open.spotify.com/track/a","tempo":120.5}`),
		json.RawMessage(`{"tempo":99.0}`),
		json.RawMessage(`{"href":"https://open.spotify.com/track/b"}`),
	}

	ids := TrackIDsFromRaw(raws)
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Errorf("unexpected IDs: %v", ids)
	}
}

func TestFeaturesBatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio-features" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		ids := r.URL.Query().Get("ids")
		if ids != "a,b,c" {
			t.Errorf("unexpected ids param: %q", ids)
		}
		// Upstream knows only two of the three tracks, plus one record
		// with an unusable href.
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content":[
			{"href":"https://open.spotify.com/track/a","tempo":165.2,"energy":0.8},
			{"href":"https://open.spotify.com/track/b","tempo":120.0},
			{"href":"","tempo":90.0}
		]}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	features, err := client.FeaturesBatch(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(features) != 2 {
		t.Fatalf("expected 2 features, got %d", len(features))
	}
	if features[0].TrackID != "a" || features[0].Tempo == nil || *features[0].Tempo != 165.2 {
		t.Errorf("unexpected first feature: %+v", features[0])
	}
	// Raw must carry the whole upstream record, not just the typed fields.
	if !strings.Contains(string(features[0].Raw), `"energy":0.8`) {
		t.Errorf("raw payload lost fields: %s", features[0].Raw)
	}
}

func TestFeaturesBatch_TooManyIDs(t *testing.T) {
	client := NewClient()

	ids := make([]string, MaxBatchSize+1)
	for i := range ids {
		ids[i] = "t"
	}

	_, err := client.FeaturesBatch(context.Background(), ids)
	if !errors.Is(err, ErrBatchTooLarge) {
		t.Errorf("expected ErrBatchTooLarge, got %v", err)
	}
}

func TestFeaturesBatch_EmptyInput(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	features, err := client.FeaturesBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(features) != 0 {
		t.Errorf("expected no features, got %d", len(features))
	}
	if calls.Load() != 0 {
		t.Errorf("expected no HTTP calls, got %d", calls.Load())
	}
}

func TestFeaturesBatch_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	if _, err := client.FeaturesBatch(context.Background(), []string{"a"}); err == nil {
		t.Error("expected error for server failure")
	}
}

func TestSimilar(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/track/recommendation" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("seeds"); got != "seed1" {
			t.Errorf("unexpected seeds param: %q", got)
		}
		if got := r.URL.Query().Get("size"); got != "3" {
			t.Errorf("unexpected size param: %q", got)
		}
		w.Write([]byte(`{"content":[
			{"href":"https://open.spotify.com/track/r1"},
			{"href":"https://open.spotify.com/track/r2"}
		]}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	recs, err := client.Similar(context.Background(), "seed1", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 2 || recs[0].TrackID != "r1" || recs[1].TrackID != "r2" {
		t.Errorf("unexpected recommendations: %+v", recs)
	}
}
