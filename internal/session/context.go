package session

import (
	"context"

	"github.com/ovaphlow/pitchfork/service-task-go-stdlib/internal/session/entity"
)

type ctxKey struct{}

// WithContext returns a child context carrying the admitted session.
func WithContext(ctx context.Context, s *entity.Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext extracts the session the auth gate attached, or nil.
func FromContext(ctx context.Context) *entity.Session {
	if s, ok := ctx.Value(ctxKey{}).(*entity.Session); ok {
		return s
	}
	return nil
}
