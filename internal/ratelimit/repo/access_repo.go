package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store is the admission-control ledger: one row per session, refreshed on
// every admitted request. CheckAndAdmit must be atomic — the check and the
// timestamp refresh happen as one operation, so concurrent requests from the
// same session inside the cooldown window admit at most one.
type Store interface {
	CheckAndAdmit(ctx context.Context, sessionID string, cooldown time.Duration) (bool, time.Duration, error)
}

// AccessRepo keeps access records in Postgres. The conditional upsert makes
// the whole check-and-refresh a single statement.
type AccessRepo struct {
	db *sqlx.DB
}

func NewAccessRepo(db *sqlx.DB) *AccessRepo { return &AccessRepo{db: db} }

// EnsureTable creates the access_records table if not exists (idempotent).
func (r *AccessRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS access_records (
  session_id TEXT PRIMARY KEY,
  last_access TIMESTAMPTZ NOT NULL
);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// CheckAndAdmit inserts a fresh record, or refreshes the timestamp only when
// the cooldown has elapsed. A rejected request does not refresh the stamp.
func (r *AccessRepo) CheckAndAdmit(ctx context.Context, sessionID string, cooldown time.Duration) (bool, time.Duration, error) {
	const q = `INSERT INTO access_records (session_id, last_access) VALUES ($1, NOW())
		ON CONFLICT (session_id) DO UPDATE SET last_access = NOW()
		WHERE access_records.last_access <= NOW() - ($2::float8 * interval '1 second')
		RETURNING last_access`
	var last time.Time
	err := r.db.GetContext(ctx, &last, q, sessionID, cooldown.Seconds())
	if err == nil {
		return true, 0, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, 0, err
	}

	// Rejected. Read the standing stamp to advise a retry delay; best-effort,
	// the record may have been refreshed by a concurrent admit in between.
	const sel = `SELECT last_access FROM access_records WHERE session_id = $1`
	if err := r.db.GetContext(ctx, &last, sel, sessionID); err != nil {
		return false, cooldown, nil
	}
	retry := cooldown - time.Since(last)
	if retry < 0 {
		retry = 0
	}
	return false, retry, nil
}
