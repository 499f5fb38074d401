package ratelimit

import (
	"testing"
	"time"
)

func TestQuotaState_IsBlocked(t *testing.T) {
	tests := []struct {
		name         string
		blockedUntil time.Time
		want         bool
	}{
		{"never blocked", time.Time{}, false},
		{"cooldown active", time.Now().Add(time.Minute), true},
		{"cooldown over", time.Now().Add(-time.Second), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := &QuotaState{BlockedUntil: tt.blockedUntil}
			if got := state.IsBlocked(); got != tt.want {
				t.Errorf("IsBlocked() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQuotaState_TimeUntilReset(t *testing.T) {
	state := &QuotaState{BlockedUntil: time.Now().Add(30 * time.Second)}
	got := state.TimeUntilReset()
	if got <= 29*time.Second || got > 30*time.Second {
		t.Errorf("TimeUntilReset() = %v, want ~30s", got)
	}

	past := &QuotaState{BlockedUntil: time.Now().Add(-time.Hour)}
	if got := past.TimeUntilReset(); got != 0 {
		t.Errorf("TimeUntilReset() = %v, want 0", got)
	}
}
