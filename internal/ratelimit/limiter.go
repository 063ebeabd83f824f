package ratelimit

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/ovaphlow/pitchfork/service-task-go-stdlib/internal/ratelimit/repo"
)

type Config struct {
	Cooldown time.Duration
}

// ConfigFromEnv reads CREATE_COOLDOWN_SECONDS (default 5).
func ConfigFromEnv() Config {
	cooldown := 5 * time.Second
	if v := os.Getenv("CREATE_COOLDOWN_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cooldown = time.Duration(secs) * time.Second
		}
	}
	return Config{Cooldown: cooldown}
}

// Limiter is the per-session cooldown gate applied to write-heavy operations.
type Limiter struct {
	store    repo.Store
	cooldown time.Duration
}

func NewLimiter(store repo.Store, cfg Config) *Limiter {
	cooldown := cfg.Cooldown
	if cooldown == 0 {
		cooldown = 5 * time.Second
	}
	return &Limiter{store: store, cooldown: cooldown}
}

// CheckAndAdmit admits the request iff the session's cooldown has elapsed,
// refreshing the access record in the same atomic operation. On rejection it
// reports how long the caller should wait before retrying.
func (l *Limiter) CheckAndAdmit(ctx context.Context, sessionID string) (bool, time.Duration, error) {
	return l.store.CheckAndAdmit(ctx, sessionID, l.cooldown)
}
