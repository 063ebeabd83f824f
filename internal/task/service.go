package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ovaphlow/pitchfork/service-task-go-stdlib/internal/task/entity"
	taskrepo "github.com/ovaphlow/pitchfork/service-task-go-stdlib/internal/task/repo"
	"github.com/ovaphlow/pitchfork/service-task-go-stdlib/pkg/utilities"
)

// PageSize is the fixed window for task listing.
const PageSize = 5

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("todo not found")
	ErrForbidden  = errors.New("not allowed")
)

// Service implements ownership-scoped task CRUD. Every operation takes the
// acting username from the caller's authenticated session.
type Service struct {
	repo taskrepo.Repository
}

func NewService(r taskrepo.Repository) *Service {
	return &Service{repo: r}
}

func validateTodo(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("%w: todo is missing", ErrValidation)
	}
	if len(text) < 3 || len(text) > 200 {
		return fmt.Errorf("%w: todo length should be 3-200", ErrValidation)
	}
	return nil
}

// Create validates the text and persists a new task owned by username.
func (s *Service) Create(ctx context.Context, username, text string) (*entity.Task, error) {
	if err := validateTodo(text); err != nil {
		return nil, err
	}
	t := &entity.Task{
		ID:       utilities.NewSnowflakeID(),
		Todo:     strings.TrimSpace(text),
		Username: username,
	}
	if err := s.repo.Insert(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// List returns the username's tasks in insertion order, windowed by skip with
// a fixed page size. No remaining tasks yields an empty slice, not an error.
func (s *Service) List(ctx context.Context, username string, skip int) ([]entity.Task, error) {
	if skip < 0 {
		skip = 0
	}
	return s.repo.List(ctx, username, skip, PageSize)
}

// Edit replaces the task's text after the ownership check. The task is loaded
// by ID and its owner compared to the acting username before any mutation, so
// a foreign ID is rejected with ErrForbidden rather than matching zero rows.
func (s *Service) Edit(ctx context.Context, username, taskID, newText string) (*entity.Task, error) {
	t, err := s.load(ctx, username, taskID)
	if err != nil {
		return nil, err
	}
	if err := validateTodo(newText); err != nil {
		return nil, err
	}
	t.Todo = strings.TrimSpace(newText)
	if err := s.repo.UpdateText(ctx, t.ID, t.Todo); err != nil {
		return nil, err
	}
	return t, nil
}

// Delete removes the task after the same NotFound/Forbidden checks as Edit.
func (s *Service) Delete(ctx context.Context, username, taskID string) error {
	t, err := s.load(ctx, username, taskID)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, t.ID)
}

func (s *Service) load(ctx context.Context, username, taskID string) (*entity.Task, error) {
	t, err := s.repo.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if t.Username != username {
		return nil, ErrForbidden
	}
	return t, nil
}
