package client

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Default service location.
const (
	DefaultHost    = "127.0.0.1"
	DefaultPort    = 8080
	DefaultBaseURL = "https://127.0.0.1:8080"
)

// Environment variables read by FromEnv.
const (
	EnvHost        = "TABQUERY_HOST"
	EnvPort        = "TABQUERY_PORT"
	EnvPrincipal   = "TABQUERY_PRINCIPAL"
	EnvToken       = "TABQUERY_TOKEN"
	EnvTimeout     = "TABQUERY_TIMEOUT"
	EnvMaxAttempts = "TABQUERY_MAX_ATTEMPTS"
	EnvRateLimit   = "TABQUERY_RATE_LIMIT"
)

// FromEnv builds a Config from DefaultConfig and the TABQUERY_* environment.
// A TABQUERY_TOKEN value becomes a StaticToken; otherwise tokens is used.
func FromEnv(tokens TokenProvider) (Config, error) {
	if tok := os.Getenv(EnvToken); tok != "" {
		tokens = StaticToken(tok)
	}
	cfg := DefaultConfig(tokens)

	port, err := getEnvInt(EnvPort, DefaultPort)
	if err != nil {
		return Config{}, err
	}
	cfg.BaseURL = fmt.Sprintf("https://%s:%d", getEnv(EnvHost, DefaultHost), port)
	cfg.Principal = getEnv(EnvPrincipal, cfg.Principal)

	if cfg.Timeout, err = getEnvDuration(EnvTimeout, cfg.Timeout); err != nil {
		return Config{}, err
	}
	if cfg.MaxAttempts, err = getEnvInt(EnvMaxAttempts, cfg.MaxAttempts); err != nil {
		return Config{}, err
	}

	if v := os.Getenv(EnvRateLimit); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s %q: %w", EnvRateLimit, v, err)
		}
		cfg.RateLimit = rps
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

// getEnvDuration accepts Go durations ("90s") and plain seconds ("90").
func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}
