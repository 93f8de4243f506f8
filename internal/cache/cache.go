// Package cache provides the report cache behind the analytics
// endpoints: a byte-oriented Store with per-entry TTL and prefix
// invalidation, an embedded badger backend, an in-process fallback,
// and a circuit-breaker layering of the two.
package cache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// Store is a cache of serialized reports. Implementations must be safe
// for concurrent use.
type Store interface {
	// Get returns the cached value and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Invalidate removes every key that starts with prefix.
	Invalidate(ctx context.Context, prefix string) error
	Close() error
}

// Key builds a cache key from a method name and its parameters. The
// parameters are JSON-marshalled and digested, so structurally equal
// parameters always map to the same key.
func Key(method string, params any) string {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Sprintf("%s:%v", method, params)
	}

	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", method, sum[:16])
}
