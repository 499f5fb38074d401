package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// ErrQuotaExhausted is returned while the call quota cooldown is active.
var ErrQuotaExhausted = errors.New("api call quota exhausted")

// Prometheus metrics for rate limit tracking.
var (
	rateLimitBlocksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tabquery_rate_limit_blocks_total",
		Help: "Total number of requests refused locally during a quota cooldown",
	})

	rateLimitThrottlesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tabquery_rate_limit_throttles_total",
		Help: "Total number of requests delayed by client-side pacing",
	})

	quotaExhaustedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tabquery_quota_exhausted_total",
		Help: "Total number of quota exhaustion responses from the service",
	})
)

// Config holds tracker configuration.
type Config struct {
	// RequestsPerSecond paces outgoing requests. 0 disables pacing.
	RequestsPerSecond float64

	// Burst is the pacing bucket size (default 1).
	Burst int

	// Cooldown is how long requests are refused after quota exhaustion. 0 disables the cooldown.
	Cooldown time.Duration
}

// Tracker gates requests on client-side pacing and the quota cooldown.
type Tracker struct {
	limiter  *rate.Limiter
	redis    *redis.Client
	cooldown time.Duration
	logger   zerolog.Logger

	mu           sync.Mutex
	blockedUntil time.Time
}

// NewTracker creates a tracker. redisClient may be nil, in which case the
// cooldown is tracked in-process only.
func NewTracker(cfg Config, redisClient *redis.Client, logger zerolog.Logger) *Tracker {
	t := &Tracker{
		redis:    redisClient,
		cooldown: cfg.Cooldown,
		logger:   logger,
	}
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		t.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return t
}

// GetState returns the current quota state, preferring the shared Redis state.
func (t *Tracker) GetState(ctx context.Context) (*QuotaState, error) {
	t.mu.Lock()
	local := t.blockedUntil
	t.mu.Unlock()

	if t.redis == nil {
		return &QuotaState{BlockedUntil: local}, nil
	}

	val, err := t.redis.Get(ctx, RedisKeyBlockedUntil).Result()
	if err == redis.Nil {
		return &QuotaState{BlockedUntil: local, Shared: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get blocked until: %w", err)
	}

	unix, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse blocked until: %w", err)
	}

	shared := time.Unix(unix, 0)
	if local.After(shared) {
		shared = local
	}
	return &QuotaState{BlockedUntil: shared, Shared: true}, nil
}

// Wait blocks until a request may be sent.
// It returns ErrQuotaExhausted during a cooldown and ctx.Err() if ctx ends while paced.
func (t *Tracker) Wait(ctx context.Context) error {
	state, err := t.GetState(ctx)
	if err != nil {
		// Shared state unavailable, fall back to pacing only
		t.logger.Warn().Err(err).Msg("Failed to read quota state")
	} else if state.IsBlocked() {
		t.logger.Error().
			Dur("wait_duration", state.TimeUntilReset()).
			Msg("API call quota exhausted - refusing request")
		rateLimitBlocksTotal.Inc()
		return fmt.Errorf("%w: retry in %v", ErrQuotaExhausted, state.TimeUntilReset().Round(time.Second))
	}

	if t.limiter == nil {
		return nil
	}

	r := t.limiter.Reserve()
	delay := r.Delay()
	if delay == 0 {
		return nil
	}

	rateLimitThrottlesTotal.Inc()
	t.logger.Debug().Dur("delay", delay).Msg("Pacing request")

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		r.Cancel()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// MarkExhausted starts the quota cooldown after the service reported the call limit.
func (t *Tracker) MarkExhausted(ctx context.Context) error {
	quotaExhaustedTotal.Inc()
	if t.cooldown <= 0 {
		return nil
	}

	until := time.Now().Add(t.cooldown)

	t.mu.Lock()
	t.blockedUntil = until
	t.mu.Unlock()

	t.logger.Warn().
		Time("blocked_until", until).
		Msg("API call quota exhausted - cooldown started")

	if t.redis == nil {
		return nil
	}

	if err := t.redis.Set(ctx, RedisKeyBlockedUntil, until.Unix(), t.cooldown).Err(); err != nil {
		return fmt.Errorf("store blocked until in redis: %w", err)
	}
	return nil
}

// Reset clears the local cooldown and, when shared, the Redis state.
func (t *Tracker) Reset(ctx context.Context) error {
	t.mu.Lock()
	t.blockedUntil = time.Time{}
	t.mu.Unlock()

	if t.redis == nil {
		return nil
	}
	if err := t.redis.Del(ctx, RedisKeyBlockedUntil).Err(); err != nil {
		return fmt.Errorf("clear blocked until in redis: %w", err)
	}
	return nil
}
