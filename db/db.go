package db

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// conn is the subset of *sql.DB the request log uses.
type conn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PingContext(ctx context.Context) error
	Close() error
}

// DB wraps the database connection
type DB struct {
	conn conn
}

// Open connects to Postgres at url and makes sure the request log table exists.
func Open(ctx context.Context, url string) (*DB, error) {
	sqlDB, err := sql.Open("postgres", url)
	if err != nil {
		return nil, eris.Wrap(err, "db: open")
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, eris.Wrap(err, "db: ping")
	}

	db := &DB{conn: sqlDB}
	if err := db.initSchema(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	zap.L().Info("request log database ready")
	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) initSchema(ctx context.Context) error {
	_, err := db.conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS lookup_requests (
			id UUID PRIMARY KEY,
			account TEXT NOT NULL,
			source VARCHAR(20) NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'in_progress',
			error TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			finished_at TIMESTAMP,
			CONSTRAINT valid_status CHECK (status IN ('in_progress', 'done', 'failed'))
		)
	`)
	if err != nil {
		return eris.Wrap(err, "db: create lookup_requests table")
	}

	_, err = db.conn.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_lookup_requests_created_at ON lookup_requests(created_at)`)
	if err != nil {
		return eris.Wrap(err, "db: create lookup_requests index")
	}
	return nil
}
