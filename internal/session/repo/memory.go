package repo

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/ovaphlow/pitchfork/service-task-go-stdlib/internal/session/entity"
)

// MemoryStore is an in-memory Store for tests and local development.
// Now is injectable so expiry can be tested deterministically.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*entity.Session
	Now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*entity.Session), Now: time.Now}
}

func (m *MemoryStore) Save(_ context.Context, s *entity.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*entity.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || !s.ExpiresAt.After(m.Now()) {
		return nil, sql.ErrNoRows
	}
	cp := *s
	return &cp, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}
