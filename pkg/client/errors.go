package client

import (
	"errors"
	"fmt"
)

// Common errors returned by the client.
var (
	// ErrNotAuthenticated is returned before any network call when no token is available.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrTransport is matched by TransportError after all attempts failed.
	ErrTransport = errors.New("transport failure")

	// ErrServer is matched by every ServerError.
	ErrServer = errors.New("server error")

	// ErrResultOverflow is matched by OverflowError.
	ErrResultOverflow = errors.New("result exceeds the row limit")

	// ErrContextCancelled is returned when the context is cancelled during retry.
	ErrContextCancelled = errors.New("context cancelled")
)

// ServerError is a failure reported by the service, either through a
// sentinel response body or an HTTP 400 status. A request refused locally
// during a quota cooldown is a RateLimited ServerError with Err set.
type ServerError struct {
	Category   Category
	Message    string
	Body       string
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *ServerError) Error() string {
	return fmt.Sprintf("tabquery %s error (status %d): %s", e.Category, e.StatusCode, e.Message)
}

// Is reports whether target is ErrServer.
func (e *ServerError) Is(target error) bool {
	return target == ErrServer
}

// Unwrap returns the local cause, if any.
func (e *ServerError) Unwrap() error {
	return e.Err
}

// IsCategory reports whether err is a ServerError of category c.
func IsCategory(err error, c Category) bool {
	var se *ServerError
	return errors.As(err, &se) && se.Category == c
}

// TransportError wraps the final error after every attempt raised.
type TransportError struct {
	Attempts int
	Err      error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure after %d attempts: %v", e.Attempts, e.Err)
}

// Is reports whether target is ErrTransport.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// Unwrap returns the final attempt's error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// OverflowError is returned when a result was truncated at the page cap.
type OverflowError struct {
	Cap      int
	Endpoint string
}

// Error implements the error interface.
func (e *OverflowError) Error() string {
	return fmt.Sprintf("result of %s exceeds the %d-row limit; narrow the query", e.Endpoint, e.Cap)
}

// Is reports whether target is ErrResultOverflow.
func (e *OverflowError) Is(target error) bool {
	return target == ErrResultOverflow
}
