package store

import (
	"context"
	"errors"
	"fmt"
)

// Supported backend drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// ErrUnknownDriver is returned by OpenBackend for an unsupported driver name.
var ErrUnknownDriver = errors.New("unknown store driver")

// Backend bundles the repositories available for a storage driver.
// Events and Snapshots are only provided by the SQLite driver.
type Backend struct {
	KV        KV
	Events    EventRepo
	Snapshots SnapshotRepo

	closeFn func() error
}

// Close releases the backend's connections.
func (b *Backend) Close() error {
	if b.closeFn == nil {
		return nil
	}
	return b.closeFn()
}

// OpenBackend opens the storage backend named by driver. dsn is a file path
// for sqlite, a connection string for postgres and ignored for memory.
func OpenBackend(ctx context.Context, driver, dsn string) (*Backend, error) {
	switch driver {
	case DriverSQLite, "":
		st, err := Open(dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return &Backend{
			KV:        st.KV(),
			Events:    st.EventRepo(),
			Snapshots: st.SnapshotRepo(),
			closeFn:   st.Close,
		}, nil
	case DriverPostgres:
		pg, err := OpenPostgres(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return &Backend{KV: pg, closeFn: pg.Close}, nil
	case DriverMemory:
		return &Backend{KV: NewMemoryKV()}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}
