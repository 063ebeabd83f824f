package repo

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-task-go-stdlib/internal/session/entity"
)

// Store is the persistence port for sessions. Get reports absent or expired
// sessions as sql.ErrNoRows; Delete of an absent session is not an error.
type Store interface {
	Save(ctx context.Context, s *entity.Session) error
	Get(ctx context.Context, id string) (*entity.Session, error)
	Delete(ctx context.Context, id string) error
}

// SessionRepo stores sessions in Postgres with a fixed TTL enforced at read time.
type SessionRepo struct {
	db *sqlx.DB
}

func NewSessionRepo(db *sqlx.DB) *SessionRepo { return &SessionRepo{db: db} }

// EnsureTable creates the sessions table if not exists (idempotent).
func (r *SessionRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS sessions (
  id TEXT PRIMARY KEY,
  user_id BIGINT NOT NULL,
  email TEXT NOT NULL,
  username TEXT NOT NULL,
  authenticated BOOLEAN NOT NULL DEFAULT false,
  expires_at TIMESTAMPTZ NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

func (r *SessionRepo) Save(ctx context.Context, s *entity.Session) error {
	const q = `INSERT INTO sessions (id, user_id, email, username, authenticated, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, q, s.ID, s.User.UserID, s.User.Email, s.User.Username, s.Authenticated, s.ExpiresAt)
	return err
}

func (r *SessionRepo) Get(ctx context.Context, id string) (*entity.Session, error) {
	const q = `SELECT id, user_id, email, username, authenticated, expires_at, created_at
		FROM sessions WHERE id = $1 AND expires_at > NOW()`
	var row struct {
		ID            string    `db:"id"`
		UserID        int64     `db:"user_id"`
		Email         string    `db:"email"`
		Username      string    `db:"username"`
		Authenticated bool      `db:"authenticated"`
		ExpiresAt     time.Time `db:"expires_at"`
		CreatedAt     time.Time `db:"created_at"`
	}
	if err := r.db.GetContext(ctx, &row, q, id); err != nil {
		return nil, err
	}
	return &entity.Session{
		ID:            row.ID,
		Authenticated: row.Authenticated,
		User:          entity.UserSummary{UserID: row.UserID, Email: row.Email, Username: row.Username},
		ExpiresAt:     row.ExpiresAt,
		CreatedAt:     row.CreatedAt,
	}, nil
}

func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}
