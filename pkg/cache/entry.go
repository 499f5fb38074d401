package cache

import (
	"time"
)

// Entry is a memoized call result.
type Entry struct {
	// Data is the assembled CSV of the call
	Data []byte `json:"data"`

	// Function is the endpoint name the entry belongs to
	Function string `json:"function"`

	// CachedAt is when we cached this result
	CachedAt time.Time `json:"cached_at"`

	// Expires is when the entry becomes stale. Zero means it never expires.
	Expires time.Time `json:"expires"`
}

// IsExpired returns true if the entry has expired.
func (e *Entry) IsExpired() bool {
	if e.Expires.IsZero() {
		return false
	}
	return time.Now().After(e.Expires)
}

// TTL returns the time until expiration.
// Returns 0 if already expired or if the entry never expires.
func (e *Entry) TTL() time.Duration {
	if e.Expires.IsZero() {
		return 0
	}
	ttl := time.Until(e.Expires)
	if ttl < 0 {
		return 0
	}
	return ttl
}

// newEntry builds an entry that expires after ttl (never when ttl <= 0).
func newEntry(key CallKey, data []byte, ttl time.Duration) *Entry {
	now := time.Now()
	entry := &Entry{
		Data:     data,
		Function: key.Function,
		CachedAt: now,
	}
	if ttl > 0 {
		entry.Expires = now.Add(ttl)
	}
	return entry
}
