// Package ratelimit paces requests to the tabular data service and tracks the
// call quota. After the service answers "-11:The number of API calls reached
// limit", requests are refused locally for a cooldown period instead of being
// sent and rejected again.
package ratelimit

import (
	"time"
)

// Redis keys for quota state storage.
const (
	RedisKeyBlockedUntil = "tabquery:rate_limit:blocked_until"
)

// QuotaState is the current call quota state.
// When a Redis client is configured the state is shared by every client using it.
type QuotaState struct {
	// BlockedUntil is when requests may resume. Zero when not blocked.
	BlockedUntil time.Time `json:"blocked_until"`

	// Shared is true when the state was read from Redis.
	Shared bool `json:"shared"`
}

// IsBlocked returns true if requests must not be sent.
func (s *QuotaState) IsBlocked() bool {
	return !s.BlockedUntil.IsZero() && time.Now().Before(s.BlockedUntil)
}

// TimeUntilReset returns the duration until requests may resume.
// Returns 0 if not blocked.
func (s *QuotaState) TimeUntilReset() time.Duration {
	if !s.IsBlocked() {
		return 0
	}
	return time.Until(s.BlockedUntil)
}
