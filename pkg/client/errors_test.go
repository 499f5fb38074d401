package client

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestServerError(t *testing.T) {
	err := &ServerError{
		Category:   CategoryNoPrivilege,
		Message:    CategoryNoPrivilege.Message(),
		Body:       "-403:Need Privilege",
		StatusCode: 200,
	}

	if !errors.Is(err, ErrServer) {
		t.Error("errors.Is(ServerError, ErrServer) = false, want true")
	}
	if errors.Is(err, ErrTransport) {
		t.Error("errors.Is(ServerError, ErrTransport) = true, want false")
	}
	if !strings.Contains(err.Error(), "no_privilege") {
		t.Errorf("Error() = %q, want category in message", err.Error())
	}
}

func TestIsCategory(t *testing.T) {
	wrapped := fmt.Errorf("chunk 2/3 of code: %w", &ServerError{Category: CategoryRateLimited})

	tests := []struct {
		name     string
		err      error
		category Category
		want     bool
	}{
		{"wrapped match", wrapped, CategoryRateLimited, true},
		{"wrapped mismatch", wrapped, CategoryNoPrivilege, false},
		{"not a server error", errors.New("boom"), CategoryRateLimited, false},
		{"nil", nil, CategoryUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsCategory(tt.err, tt.category); got != tt.want {
				t.Errorf("IsCategory() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTransportError(t *testing.T) {
	cause := errors.New("connection refused")
	err := &TransportError{Attempts: 5, Err: cause}

	if !errors.Is(err, ErrTransport) {
		t.Error("errors.Is(TransportError, ErrTransport) = false, want true")
	}
	if !errors.Is(err, cause) {
		t.Error("TransportError does not unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "5 attempts") {
		t.Errorf("Error() = %q, want attempt count", err.Error())
	}
}

func TestOverflowError(t *testing.T) {
	err := &OverflowError{Cap: 100000, Endpoint: "price_daily"}

	if !errors.Is(err, ErrResultOverflow) {
		t.Error("errors.Is(OverflowError, ErrResultOverflow) = false, want true")
	}
	if !strings.Contains(err.Error(), "100000") || !strings.Contains(err.Error(), "price_daily") {
		t.Errorf("Error() = %q, want cap and endpoint", err.Error())
	}
}
