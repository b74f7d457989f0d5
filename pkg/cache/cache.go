// Package cache stores computed schedule layouts so repeated runs over an
// unchanged schedule skip the layout engine.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory, used by the CLI.
//   - [RedisCache]: a shared Redis instance, used by the HTTP server when
//     several replicas run behind a load balancer.
//   - [NullCache]: never stores anything.
//
// # Keys
//
// Keys are derived by a [Keyer] from the content hash of the input and the
// options that influence the output, so a changed merge gap never returns a
// stale layout. [ScopedKeyer] adds a prefix for namespace isolation.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Default time-to-live values for cached entries.
const (
	// TTLSchedule applies to normalized schedules (parsed, expanded).
	TTLSchedule = 24 * time.Hour

	// TTLLayout applies to computed layouts.
	TTLLayout = 7 * 24 * time.Hour

	// TTLArtifact applies to rendered output documents.
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with expiry.
//
// Get reports a miss as (nil, false, nil); an error means the backend itself
// failed. Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// OpenOptions selects and configures a backend.
type OpenOptions struct {
	Backend  string // file, redis or none; empty means file
	Dir      string // FileCache directory
	RedisURL string // RedisCache connection URL
}

// Open constructs the configured backend.
func Open(ctx context.Context, opts OpenOptions) (Cache, error) {
	switch opts.Backend {
	case "", BackendFile:
		c, err := NewFileCache(opts.Dir)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendRedis:
		c, err := NewRedisCache(ctx, opts.RedisURL)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendNone:
		return NewNullCache(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrBackend, opts.Backend)
	}
}
