package repo

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store for tests and local development. The
// single mutex makes the check-and-refresh atomic; Now is injectable so the
// cooldown can be tested deterministically.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]time.Time
	Now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]time.Time), Now: time.Now}
}

func (m *MemoryStore) CheckAndAdmit(_ context.Context, sessionID string, cooldown time.Duration) (bool, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.Now()
	last, ok := m.records[sessionID]
	if !ok || now.Sub(last) >= cooldown {
		m.records[sessionID] = now
		return true, 0, nil
	}
	return false, cooldown - now.Sub(last), nil
}
