// Package cache implements the time-boxed result cache shared by search
// pages and detail records. Entries carry their store time and expire
// lazily on read; there is no background sweep and no size bound.
package cache

import (
	"context"
	"encoding/json"
	"time"
)

// DefaultTTL is how long a cached entry stays valid.
const DefaultTTL = 24 * time.Hour

// Store is a time-boxed key-value cache. Get never fails: expired or
// malformed entries are deleted and reported as misses.
type Store interface {
	// Set serializes value with the current timestamp under key.
	Set(ctx context.Context, key string, value any) error

	// Get deserializes the entry under key into dest. Returns false on
	// miss, expiry, or a malformed entry; the latter two also delete
	// the entry so the cache self-heals.
	Get(ctx context.Context, key string, dest any) bool

	// Delete removes the entry under key.
	Delete(ctx context.Context, key string)

	Close() error
}

// envelope wraps a cached value with its store time (unix milliseconds).
type envelope struct {
	Value json.RawMessage `json:"value"`
	TS    int64           `json:"ts"`
}

func newEnvelope(value any, now time.Time) ([]byte, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Value: raw, TS: now.UnixMilli()})
}

// open unwraps entry bytes into dest. Returns false when the entry is
// malformed or older than ttl.
func open(data []byte, dest any, ttl time.Duration, now time.Time) bool {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return false
	}
	if now.UnixMilli()-env.TS > ttl.Milliseconds() {
		return false
	}
	return json.Unmarshal(env.Value, dest) == nil
}
