package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// KeyPrefix namespaces every cache key.
const KeyPrefix = "tabquery"

// CallKey identifies one call: the endpoint function and its ordered arguments.
type CallKey struct {
	// Function is the endpoint name (e.g. "price_daily")
	Function string

	// Args are the ordered argument representations (e.g. "code=000001.XSHE")
	Args []string
}

// NewCallKey creates a CallKey.
func NewCallKey(function string, args []string) CallKey {
	return CallKey{Function: function, Args: args}
}

// Hash returns the hex sha256 of the function name and ordered arguments.
// Argument order is significant.
func (k CallKey) Hash() string {
	h := sha256.New()
	h.Write([]byte(k.Function))
	for _, arg := range k.Args {
		h.Write([]byte{0x1f})
		h.Write([]byte(arg))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// String generates the deterministic storage key.
// Format: tabquery:<function>:<hash>
//
// Example:
//
//	tabquery:price_daily:9f86d081884c7d65...
func (k CallKey) String() string {
	parts := []string{KeyPrefix}
	if fn := strings.TrimSpace(k.Function); fn != "" {
		parts = append(parts, fn)
	}
	parts = append(parts, k.Hash())
	return strings.Join(parts, ":")
}
