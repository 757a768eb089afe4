package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
)

// Lookup statuses.
const (
	StatusInProgress = "in_progress"
	StatusDone       = "done"
	StatusFailed     = "failed"
)

// StartRequest records a lookup that is about to run. source names the surface that
// received it ("html", "api", "telegram").
func (db *DB) StartRequest(ctx context.Context, account, source string) (uuid.UUID, error) {
	id := uuid.New()
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO lookup_requests (id, account, source, status)
		VALUES ($1, $2, $3, $4)
	`, id, account, source, StatusInProgress)
	if err != nil {
		return uuid.Nil, eris.Wrapf(err, "db: insert request for %s", account)
	}
	return id, nil
}

// FinishRequest marks a lookup done, or failed with lookupErr's message.
func (db *DB) FinishRequest(ctx context.Context, id uuid.UUID, lookupErr error) error {
	status := StatusDone
	var message *string
	if lookupErr != nil {
		status = StatusFailed
		m := lookupErr.Error()
		message = &m
	}

	_, err := db.conn.ExecContext(ctx, `
		UPDATE lookup_requests
		SET status = $1, error = $2, finished_at = CURRENT_TIMESTAMP
		WHERE id = $3
	`, status, message, id)
	if err != nil {
		return eris.Wrapf(err, "db: finish request %s", id)
	}
	return nil
}

// PruneBefore deletes requests created before cutoff and returns how many went.
func (db *DB) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM lookup_requests WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, eris.Wrap(err, "db: prune requests")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, eris.Wrap(err, "db: prune rows affected")
	}
	return n, nil
}
