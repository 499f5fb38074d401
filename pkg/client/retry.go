package client

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// ErrorClass represents how a failed attempt is handled.
type ErrorClass string

const (
	// ErrorClassNetwork represents transport errors and timeouts. Retried.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassClient represents HTTP 400 and local failures. Not retried.
	ErrorClassClient ErrorClass = "client"
)

// RetryConfig holds the configuration for retry logic.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including the initial request).
	MaxAttempts int

	// Interval is the fixed delay between attempts.
	Interval time.Duration
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 5,
		Interval:    2 * time.Second,
	}
}

// shouldRetry determines if an error should be retried based on its classification.
func shouldRetry(errorClass ErrorClass) bool {
	return errorClass == ErrorClassNetwork
}

// retryWithInterval executes fn until it succeeds, returns a non-retryable
// error, or config.MaxAttempts is reached. Attempts are spaced by a fixed
// interval and the wait respects context cancellation.
func retryWithInterval(ctx context.Context, config RetryConfig, logger zerolog.Logger, fn func(attempt int) error, classify func(error) ErrorClass) error {
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		err := fn(attempt)
		if err == nil {
			if attempt > 1 {
				logger.Info().
					Int("attempt", attempt).
					Msg("Request succeeded after retry")
			}
			return nil
		}

		lastErr = err
		errorClass := classify(err)

		if !shouldRetry(errorClass) {
			return lastErr
		}

		if ctx.Err() != nil {
			return fmt.Errorf("%w: %v", ErrContextCancelled, ctx.Err())
		}

		if attempt >= config.MaxAttempts {
			break
		}

		retriesTotal.WithLabelValues(string(errorClass)).Inc()
		logger.Warn().
			Err(err).
			Str("error_class", string(errorClass)).
			Int("attempt", attempt).
			Dur("interval", config.Interval).
			Msg("Retrying request after interval")

		timer := time.NewTimer(config.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			logger.Warn().
				Int("attempt", attempt).
				Msg("Context cancelled during retry interval")
			return fmt.Errorf("%w: %v", ErrContextCancelled, ctx.Err())
		case <-timer.C:
		}
	}

	retryExhaustedTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
	logger.Error().
		Err(lastErr).
		Int("max_attempts", config.MaxAttempts).
		Msg("Retry attempts exhausted")

	return &TransportError{Attempts: config.MaxAttempts, Err: lastErr}
}
