package database

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"commerce-insights/internal/dataset"
)

type PostgresDriver struct {
	conn *pgx.Conn
}

func (pd *PostgresDriver) Connect(ctx context.Context, dsn string) error {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return err
	}
	pd.conn = conn
	return nil
}

func (pd *PostgresDriver) Close() error {
	if pd.conn == nil {
		return nil
	}
	return pd.conn.Close(context.Background())
}

// Load reads the snapshot inside one read-only transaction so every table
// comes from the same point in time.
func (pd *PostgresDriver) Load(ctx context.Context) (*dataset.Dataset, error) {
	if pd.conn == nil {
		return nil, errors.New("postgres: not connected")
	}
	tx, err := pd.conn.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly, IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return nil, err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback(ctx)
			panic(p) // re-panic after rollback
		}
		// nothing was written, so a rollback is how the transaction ends
		tx.Rollback(ctx)
	}()

	return loadSQL(ctx, pgxQuerier{tx: tx})
}

type pgxQuerier struct {
	tx pgx.Tx
}

func (q pgxQuerier) QueryContext(ctx context.Context, query string, args ...interface{}) (Rows, error) {
	return q.tx.Query(ctx, query, args...)
}
