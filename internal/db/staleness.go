package db

import "time"

// CacheTTL is the duration after which a cached record is considered stale.
const CacheTTL = 30 * 24 * time.Hour // 30 days

// IsStale reports whether a record fetched at lastFetched is older than ttl.
// A zero timestamp (never fetched, or unparseable stored metadata) is
// maximally stale: the policy fails open toward re-fetching rather than
// serving bad data. Timestamps are compared in UTC.
func IsStale(lastFetched time.Time, ttl time.Duration) bool {
	if lastFetched.IsZero() {
		return true
	}
	return time.Now().UTC().Sub(lastFetched.UTC()) > ttl
}
