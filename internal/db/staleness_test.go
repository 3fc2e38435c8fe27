package db

import (
	"testing"
	"time"
)

func TestIsStale(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name        string
		lastFetched time.Time
		ttl         time.Duration
		want        bool
	}{
		{"zero time is stale", time.Time{}, CacheTTL, true},
		{"just fetched is fresh", now, CacheTTL, false},
		{"within TTL is fresh", now.Add(-29 * 24 * time.Hour), CacheTTL, false},
		{"past TTL is stale", now.Add(-31 * 24 * time.Hour), CacheTTL, true},
		{"just inside TTL is fresh", now.Add(-time.Hour + time.Minute), time.Hour, false},
		{"just past TTL is stale", now.Add(-time.Hour - time.Minute), time.Hour, true},
		{"future timestamp is fresh", now.Add(time.Hour), CacheTTL, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsStale(tt.lastFetched, tt.ttl); got != tt.want {
				t.Errorf("IsStale(%v, %v) = %v, want %v", tt.lastFetched, tt.ttl, got, tt.want)
			}
		})
	}
}

func TestIsStale_NonUTCTimestamp(t *testing.T) {
	// Timestamps read back in a non-UTC zone must compare by instant, not
	// by wall clock.
	loc := time.FixedZone("UTC+5", 5*60*60)
	fresh := time.Now().In(loc)

	if IsStale(fresh, CacheTTL) {
		t.Error("expected a current non-UTC timestamp to be fresh")
	}
}
