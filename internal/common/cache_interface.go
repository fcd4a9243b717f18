package common

import "time"

// CacheInterface is the shared cache behind the event listings, export
// token bookkeeping and reminder markers. Values are opaque bytes so the
// in-memory and Redis backends behave the same; callers encode.
type CacheInterface interface {
	Set(key string, value []byte, duration time.Duration)

	// Get returns the stored bytes and true, or nil and false on a miss.
	Get(key string) ([]byte, bool)

	Delete(key string)

	// SetIfAbsent stores a marker under key only when the key does not exist yet.
	// Returns true when this call created the key.
	SetIfAbsent(key string, duration time.Duration) bool

	// Close closes any underlying connections (for Redis, etc.)
	Close() error
}
