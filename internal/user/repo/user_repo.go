package repo

import (
	"context"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ovaphlow/pitchfork/service-task-go-stdlib/internal/user/entity"
)

// Duplicate-identity errors surfaced when the uniqueness constraint rejects
// an insert. The service performs existence lookups first, but two concurrent
// registrations can both pass the check; the constraint is the backstop.
var (
	ErrDuplicateEmail    = errors.New("email already exists")
	ErrDuplicateUsername = errors.New("username already exists")
)

// Repository is the persistence port for user accounts. Absent rows are
// reported as sql.ErrNoRows by every implementation.
type Repository interface {
	Create(ctx context.Context, u *entity.User) (int64, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	MarkEmailVerified(ctx context.Context, email string) error
}

// UserRepo provides data access for the users table using sqlx.
type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

// EnsureTable creates the users table if not exists (idempotent).
// This is a convenience for early development; prefer migrations in production.
func (r *UserRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS users (
  id BIGSERIAL PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  username TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  email_verified BOOLEAN NOT NULL DEFAULT false,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_users_username ON users(username);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// Create inserts a new user row and returns the new ID. Uniqueness-constraint
// violations are mapped to ErrDuplicateEmail / ErrDuplicateUsername.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) (int64, error) {
	const q = `INSERT INTO users (name, email, username, password_hash, email_verified)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`
	var id int64
	err := r.db.GetContext(ctx, &id, q, u.Name, u.Email, u.Username, u.PasswordHash, u.EmailVerified)
	if err != nil {
		return 0, mapUniqueViolation(err)
	}
	u.ID = id
	return id, nil
}

// GetByEmail returns a user matched by email (stored lowercase) or sql.ErrNoRows.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	const q = `SELECT id, name, email, username, password_hash, email_verified, created_at, updated_at
		FROM users WHERE email = $1`
	var row entity.User
	if err := r.db.GetContext(ctx, &row, q, strings.ToLower(email)); err != nil {
		return nil, err
	}
	return &row, nil
}

// GetByUsername fetches by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	const q = `SELECT id, name, email, username, password_hash, email_verified, created_at, updated_at
		FROM users WHERE username = $1`
	var row entity.User
	if err := r.db.GetContext(ctx, &row, q, username); err != nil {
		return nil, err
	}
	return &row, nil
}

// MarkEmailVerified flips email_verified for the addressed account. The
// verification action is idempotent so re-verifying is not an error.
func (r *UserRepo) MarkEmailVerified(ctx context.Context, email string) error {
	const q = `UPDATE users SET email_verified = true, updated_at = NOW() WHERE email = $1`
	_, err := r.db.ExecContext(ctx, q, strings.ToLower(email))
	return err
}

func mapUniqueViolation(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		if strings.Contains(pqErr.Constraint, "username") {
			return ErrDuplicateUsername
		}
		return ErrDuplicateEmail
	}
	return err
}
