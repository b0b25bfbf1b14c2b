package database

import (
	"context"
	"errors"
	"fmt"

	"commerce-insights/internal/dataset"
)

var ErrUnsupportedDriver = errors.New("unsupported database driver")

// Driver reads the eight-table schema from one kind of store. Drivers
// never issue writes.
type Driver interface {
	Connect(ctx context.Context, dsn string) error
	Close() error
	Load(ctx context.Context) (*dataset.Dataset, error)
}

// Rows is the cursor shape shared by pgx and database/sql results.
type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
	Close()
}

// Querier runs a read-only statement.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (Rows, error)
}

// NewDriver returns an unconnected driver by name. mongoDB names the
// database holding the collections and is ignored by the SQL drivers.
func NewDriver(name, mongoDB string) (Driver, error) {
	switch name {
	case "postgres":
		return &PostgresDriver{}, nil
	case "mysql":
		return &MySQLDriver{}, nil
	case "mongo":
		return &MongoDriver{Database: mongoDB}, nil
	case "sqlite":
		return &SQLiteDriver{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, name)
}

// Open connects the named driver, loads a snapshot, and releases the
// connection before returning.
func Open(ctx context.Context, name, dsn, mongoDB string) (ds *dataset.Dataset, err error) {
	driver, err := NewDriver(name, mongoDB)
	if err != nil {
		return nil, err
	}
	if err := driver.Connect(ctx, dsn); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", name, err)
	}
	defer func() {
		if cerr := driver.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", name, cerr)
		}
	}()

	ds, err = driver.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load from %s: %w", name, err)
	}
	return ds, nil
}
