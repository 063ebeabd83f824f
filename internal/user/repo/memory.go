package repo

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	"github.com/ovaphlow/pitchfork/service-task-go-stdlib/internal/user/entity"
)

// MemoryRepo is an in-memory Repository for tests and local development.
// It enforces the same uniqueness and not-found semantics as the Postgres repo.
type MemoryRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*entity.User
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{nextID: 1, users: make(map[int64]*entity.User)}
}

func (r *MemoryRepo) Create(_ context.Context, u *entity.User) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == strings.ToLower(u.Email) {
			return 0, ErrDuplicateEmail
		}
		if existing.Username == u.Username {
			return 0, ErrDuplicateUsername
		}
	}
	now := time.Now()
	stored := *u
	stored.ID = r.nextID
	stored.Email = strings.ToLower(u.Email)
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.users[stored.ID] = &stored
	r.nextID++
	u.ID = stored.ID
	return stored.ID, nil
}

func (r *MemoryRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	email = strings.ToLower(email)
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *MemoryRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *MemoryRepo) MarkEmailVerified(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	email = strings.ToLower(email)
	for _, u := range r.users {
		if u.Email == email {
			u.EmailVerified = true
			u.UpdatedAt = time.Now()
		}
	}
	return nil
}
