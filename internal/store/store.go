// Package store keeps the current snapshot of each dashboard session.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/adrecon/internal/model"
)

// ErrNotFound is returned when a session has no live snapshot.
var ErrNotFound = eris.New("store: snapshot not found")

// DefaultTTL is how long a snapshot outlives its upload when no TTL is set.
const DefaultTTL = 24 * time.Hour

// Store persists one immutable snapshot per session. Put replaces the
// session's snapshot atomically; readers see the old or the new one, never
// a mix.
type Store interface {
	Put(ctx context.Context, sessionID string, snap *model.Snapshot) error
	Get(ctx context.Context, sessionID string) (*model.Snapshot, error)
	Delete(ctx context.Context, sessionID string) error
	DeleteExpired(ctx context.Context) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open creates and migrates a store for driver. dsn is ignored by the
// memory driver.
func Open(ctx context.Context, driver, dsn string, ttl time.Duration) (Store, error) {
	var (
		s   Store
		err error
	)
	switch driver {
	case "", DriverMemory:
		s = NewMemory(ttl)
	case DriverSQLite:
		s, err = NewSQLite(dsn, ttl)
	case DriverPostgres:
		s, err = NewPostgres(ctx, dsn, ttl, nil)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func ttlOrDefault(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultTTL
	}
	return ttl
}
