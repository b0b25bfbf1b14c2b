package database

import (
	"context"
	"database/sql"
	"errors"

	_ "github.com/go-sql-driver/mysql"

	"commerce-insights/internal/dataset"
)

// MySQLDriver needs parseTime=true in the DSN so DATETIME columns scan
// into time.Time.
type MySQLDriver struct {
	db *sql.DB
}

func (md *MySQLDriver) Connect(ctx context.Context, dsn string) error {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return err
	}
	md.db = db
	return nil
}

func (md *MySQLDriver) Close() error {
	if md.db == nil {
		return nil
	}
	return md.db.Close()
}

func (md *MySQLDriver) Load(ctx context.Context) (*dataset.Dataset, error) {
	if md.db == nil {
		return nil, errors.New("mysql: not connected")
	}
	tx, err := md.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true, Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	return loadSQL(ctx, sqlQuerier{tx: tx})
}

type sqlQuerier struct {
	tx *sql.Tx
}

func (q sqlQuerier) QueryContext(ctx context.Context, query string, args ...interface{}) (Rows, error) {
	rows, err := q.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return sqlRows{rows}, nil
}

// sqlRows adapts *sql.Rows, whose Close returns an error, to Rows.
type sqlRows struct {
	*sql.Rows
}

func (r sqlRows) Close() { _ = r.Rows.Close() }
