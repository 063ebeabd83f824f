package repo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-task-go-stdlib/internal/task/entity"
)

// Repository is the persistence port for tasks. GetByID reports an absent
// task as sql.ErrNoRows; List returns an empty slice when the window is past
// the end.
type Repository interface {
	Insert(ctx context.Context, t *entity.Task) error
	GetByID(ctx context.Context, id string) (*entity.Task, error)
	List(ctx context.Context, username string, skip, limit int) ([]entity.Task, error)
	UpdateText(ctx context.Context, id, text string) error
	Delete(ctx context.Context, id string) error
}

// TaskRepo provides data access for the tasks table using sqlx. The seq
// column gives a stable insertion order for pagination.
type TaskRepo struct {
	db *sqlx.DB
}

func NewTaskRepo(db *sqlx.DB) *TaskRepo { return &TaskRepo{db: db} }

// EnsureTable creates the tasks table if not exists (idempotent).
func (r *TaskRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS tasks (
  id TEXT PRIMARY KEY,
  todo TEXT NOT NULL,
  username TEXT NOT NULL,
  seq BIGSERIAL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_tasks_username ON tasks(username);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

func (r *TaskRepo) Insert(ctx context.Context, t *entity.Task) error {
	const q = `INSERT INTO tasks (id, todo, username) VALUES ($1, $2, $3) RETURNING created_at`
	return r.db.GetContext(ctx, &t.CreatedAt, q, t.ID, t.Todo, t.Username)
}

func (r *TaskRepo) GetByID(ctx context.Context, id string) (*entity.Task, error) {
	const q = `SELECT id, todo, username, created_at FROM tasks WHERE id = $1`
	var row entity.Task
	if err := r.db.GetContext(ctx, &row, q, id); err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *TaskRepo) List(ctx context.Context, username string, skip, limit int) ([]entity.Task, error) {
	const q = `SELECT id, todo, username, created_at FROM tasks
		WHERE username = $1 ORDER BY seq OFFSET $2 LIMIT $3`
	tasks := []entity.Task{}
	if err := r.db.SelectContext(ctx, &tasks, q, username, skip, limit); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *TaskRepo) UpdateText(ctx context.Context, id, text string) error {
	const q = `UPDATE tasks SET todo = $2 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id, text)
	return err
}

func (r *TaskRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	return err
}
