package repo

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/ovaphlow/pitchfork/service-task-go-stdlib/internal/task/entity"
)

// MemoryRepo is an in-memory Repository for tests and local development.
// The backing slice preserves insertion order.
type MemoryRepo struct {
	mu    sync.Mutex
	tasks []entity.Task
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) Insert(_ context.Context, t *entity.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.CreatedAt = time.Now()
	r.tasks = append(r.tasks, *t)
	return nil
}

func (r *MemoryRepo) GetByID(_ context.Context, id string) (*entity.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.tasks {
		if r.tasks[i].ID == id {
			cp := r.tasks[i]
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *MemoryRepo) List(_ context.Context, username string, skip, limit int) ([]entity.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	owned := []entity.Task{}
	for _, t := range r.tasks {
		if t.Username == username {
			owned = append(owned, t)
		}
	}
	if skip >= len(owned) {
		return []entity.Task{}, nil
	}
	end := skip + limit
	if end > len(owned) {
		end = len(owned)
	}
	return append([]entity.Task{}, owned[skip:end]...), nil
}

func (r *MemoryRepo) UpdateText(_ context.Context, id, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.tasks {
		if r.tasks[i].ID == id {
			r.tasks[i].Todo = text
			return nil
		}
	}
	return nil
}

func (r *MemoryRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.tasks {
		if r.tasks[i].ID == id {
			r.tasks = append(r.tasks[:i], r.tasks[i+1:]...)
			return nil
		}
	}
	return nil
}
