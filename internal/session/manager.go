package session

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ovaphlow/pitchfork/service-task-go-stdlib/internal/session/entity"
	sessrepo "github.com/ovaphlow/pitchfork/service-task-go-stdlib/internal/session/repo"
)

type Config struct {
	TTL time.Duration
}

// ConfigFromEnv reads SESSION_TTL (Go duration, default 30 days).
func ConfigFromEnv() Config {
	ttl := 30 * 24 * time.Hour
	if v := os.Getenv("SESSION_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil && parsed > 0 {
			ttl = parsed
		}
	}
	return Config{TTL: ttl}
}

// Manager owns the session lifecycle: create after a successful login,
// load at gate time, destroy on logout. Sessions expire naturally via the
// store's TTL check.
type Manager struct {
	store sessrepo.Store
	ttl   time.Duration
	now   func() time.Time
}

func NewManager(store sessrepo.Store, cfg Config) *Manager {
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &Manager{store: store, ttl: ttl, now: time.Now}
}

// Create persists a new authenticated session and returns its opaque ID.
func (m *Manager) Create(ctx context.Context, user entity.UserSummary) (*entity.Session, error) {
	id, err := newSessionID()
	if err != nil {
		return nil, err
	}
	s := &entity.Session{
		ID:            id,
		Authenticated: true,
		User:          user,
		ExpiresAt:     m.now().Add(m.ttl),
		CreatedAt:     m.now(),
	}
	if err := m.store.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return s, nil
}

// Load returns the session for id, or (nil, nil) when it is absent or expired.
func (m *Manager) Load(ctx context.Context, id string) (*entity.Session, error) {
	if id == "" {
		return nil, nil
	}
	s, err := m.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

// Destroy removes the session. Destroying an already-absent session is not an error.
func (m *Manager) Destroy(ctx context.Context, id string) error {
	return m.store.Delete(ctx, id)
}

// TTL reports the configured session lifetime (used for cookie expiry).
func (m *Manager) TTL() time.Duration { return m.ttl }

func newSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
