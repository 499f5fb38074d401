// Package logging configures the zerolog logger shared by the tabquery packages.
package logging

import (
	"io"
	"os"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelDebug logs debug messages and above.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs info messages and above.
	LevelInfo LogLevel = "info"

	// LevelWarn logs warning messages and above.
	LevelWarn LogLevel = "warn"

	// LevelError logs error messages only.
	LevelError LogLevel = "error"

	// LevelDisabled turns logging off.
	LevelDisabled LogLevel = "disabled"
)

// Environment variables read by ConfigFromEnv.
const (
	EnvLevel  = "TABQUERY_LOG_LEVEL"
	EnvPretty = "TABQUERY_LOG_PRETTY"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output (default: false for JSON).
	Pretty bool

	// Output is the writer to output logs to (default: os.Stderr).
	Output io.Writer
}

// DefaultConfig returns a default logger configuration.
// Library use stays quiet below warnings.
func DefaultConfig() Config {
	return Config{
		Level:  LevelWarn,
		Pretty: false,
		Output: os.Stderr,
	}
}

// ConfigFromEnv overlays TABQUERY_LOG_LEVEL and TABQUERY_LOG_PRETTY on DefaultConfig.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if v := os.Getenv(EnvLevel); v != "" {
		cfg.Level = LogLevel(v)
	}
	if v := os.Getenv(EnvPretty); v != "" {
		if pretty, err := strconv.ParseBool(v); err == nil {
			cfg.Pretty = pretty
		}
	}
	return cfg
}

// configured is set once Setup has run.
var configured atomic.Bool

// Setup configures the global zerolog logger.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output}
	}

	logger := zerolog.New(output).With().Timestamp().Logger()
	log.Logger = logger
	configured.Store(true)

	return logger
}

// parseLevel converts LogLevel to zerolog.Level.
func parseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(string(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a new logger with the given component name.
// Until Setup has been called, component loggers only emit warnings and
// above so an embedding application that never configures logging is not
// flooded with debug output.
func NewLogger(component string) zerolog.Logger {
	logger := log.With().Str("component", component).Logger()
	if !configured.Load() {
		logger = logger.Level(zerolog.WarnLevel)
	}
	return logger
}

// Log Level Guidelines:
//
// Debug: request flow
//   - Planned queries and batch splits
//   - Cache hits
//   - Overflow probes
//   - Pacing delays
//
// Info: recoveries
//   - Request succeeded after retry
//
// Warn: conditions the caller may want to act on
//   - Retry attempts
//   - Service error sentinels
//   - Batched chunk at the page cap
//   - Several oversized list parameters
//   - Cache errors (call proceeds uncached)
//   - Malformed row-count header
//
// Error: failures
//   - Retry attempts exhausted
//   - Quota cooldown refusing requests
//
// Context Fields:
//   - component: emitting package (tabquery-client, ...)
//   - endpoint: logical endpoint name
//   - query: request query string
//   - chunk: 1-based chunk index of a batched call
//   - row_count: value of the row-count header
//   - attempt: 1-based attempt number
//   - error_class: network or client
