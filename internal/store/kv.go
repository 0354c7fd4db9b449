package store

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when no value is stored under the key.
var ErrNotFound = errors.New("store: key not found")

// KV is a minimal key-value store.
type KV interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put replaces the value stored under key.
	Put(ctx context.Context, key string, value []byte) error

	// Close releases the backend's resources.
	Close() error
}

// Driver names accepted by Open.
const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Drivers lists the accepted driver names.
var Drivers = []string{DriverSQLite, DriverRedis, DriverMemory}

// Open connects to the backend named by driver. dsn is a file path for
// sqlite, a redis URL or "host:port[,password=...][,ssl=true]" for redis,
// and ignored for memory.
func Open(driver, dsn string) (KV, error) {
	switch driver {
	case DriverSQLite:
		if dsn == "" {
			return nil, fmt.Errorf("sqlite: database path is required")
		}
		return OpenSQLite(dsn)
	case DriverRedis:
		if dsn == "" {
			return nil, fmt.Errorf("redis: connection string is required")
		}
		return OpenRedis(dsn)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q: must be one of %v", driver, Drivers)
	}
}
