package router

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-task-go-stdlib/internal/ratelimit"
	"github.com/ovaphlow/pitchfork/service-task-go-stdlib/internal/session"
	"github.com/ovaphlow/pitchfork/service-task-go-stdlib/internal/task"
	"github.com/ovaphlow/pitchfork/service-task-go-stdlib/internal/user"
)

// RegisterRoutes mounts HTTP handlers using the standard library's http.ServeMux.
// This layer only sequences calls into the core components; it owns no
// business rules.
func RegisterRoutes(
	logger *zap.SugaredLogger,
	userHandler *user.Handler,
	taskHandler *task.Handler,
	sessions *session.Manager,
	limiter *ratelimit.Limiter,
) http.Handler {
	mux := http.NewServeMux()

	gate := RequireSession(sessions, logger)
	cooldown := Cooldown(limiter, logger)

	// health
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// identity
	mux.HandleFunc("POST /register", userHandler.Register)
	mux.HandleFunc("GET /verifytoken/{token}", userHandler.VerifyEmail)
	mux.HandleFunc("POST /login", userHandler.Login)
	mux.Handle("POST /logout", gate(http.HandlerFunc(userHandler.Logout)))

	// tasks (session-gated; creation additionally behind the cooldown gate)
	mux.Handle("POST /create-item", gate(cooldown(http.HandlerFunc(taskHandler.CreateItem))))
	mux.Handle("GET /read-item", gate(http.HandlerFunc(taskHandler.ReadItems)))
	mux.Handle("POST /edit-item", gate(http.HandlerFunc(taskHandler.EditItem)))
	mux.Handle("POST /delete-item", gate(http.HandlerFunc(taskHandler.DeleteItem)))

	// wrap with security headers middleware then logging middleware
	handler := LoggingMiddleware(logger)(SecurityHeadersMiddleware()(mux))
	return handler
}
