package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	"github.com/ovaphlow/pitchfork/service-task-go-stdlib/internal/mail"
	"github.com/ovaphlow/pitchfork/service-task-go-stdlib/internal/ratelimit"
	ratelimitrepo "github.com/ovaphlow/pitchfork/service-task-go-stdlib/internal/ratelimit/repo"
	"github.com/ovaphlow/pitchfork/service-task-go-stdlib/internal/router"
	"github.com/ovaphlow/pitchfork/service-task-go-stdlib/internal/session"
	sessionrepo "github.com/ovaphlow/pitchfork/service-task-go-stdlib/internal/session/repo"
	"github.com/ovaphlow/pitchfork/service-task-go-stdlib/internal/task"
	taskrepo "github.com/ovaphlow/pitchfork/service-task-go-stdlib/internal/task/repo"
	"github.com/ovaphlow/pitchfork/service-task-go-stdlib/internal/token"
	"github.com/ovaphlow/pitchfork/service-task-go-stdlib/internal/user"
	userrepo "github.com/ovaphlow/pitchfork/service-task-go-stdlib/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-task-go-stdlib/pkg/database"
	"github.com/ovaphlow/pitchfork/service-task-go-stdlib/pkg/utilities"
)

func main() {
	// load .env file if present so os.Getenv picks values from it
	// this is best-effort: if no .env exists, continue (use defaults or real env)
	_ = godotenv.Load()

	// init logger
	lg, err := utilities.Init(utilities.ConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Info("starting service-task-go-stdlib")

	// init db
	cfg := database.ConfigFromEnv()
	sqlDB, err := database.Connect(cfg)
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	defer sqlDB.Close()

	// wrap with sqlx for convenience in repos/services
	sqlxDB := sqlx.NewDb(sqlDB, "postgres")
	defer sqlxDB.Close()

	// repositories
	users := userrepo.NewUserRepo(sqlxDB)
	sessions := sessionrepo.NewSessionRepo(sqlxDB)
	accesses := ratelimitrepo.NewAccessRepo(sqlxDB)
	tasks := taskrepo.NewTaskRepo(sqlxDB)

	ensureCtx, ensureCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer ensureCancel()
	for name, ensure := range map[string]func(context.Context) error{
		"users":          users.EnsureTable,
		"sessions":       sessions.EnsureTable,
		"access_records": accesses.EnsureTable,
		"tasks":          tasks.EnsureTable,
	} {
		if err := ensure(ensureCtx); err != nil {
			sugar.Fatalf("ensure table %s: %v", name, err)
		}
	}

	// core services
	tokenSvc, err := token.NewService(token.ConfigFromEnv())
	if err != nil {
		sugar.Fatalf("token service: %v", err)
	}
	userSvc := user.NewUserService(users, nil)
	sessionMgr := session.NewManager(sessions, session.ConfigFromEnv())
	limiter := ratelimit.NewLimiter(accesses, ratelimit.ConfigFromEnv())
	taskSvc := task.NewService(tasks)

	userHandler := user.NewHandler(userSvc, tokenSvc, mail.NewLogSender(sugar), sessionMgr, sugar)
	taskHandler := task.NewHandler(taskSvc, sugar)

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sugar.Info("service is running; press Ctrl+C to stop")

	// mount http server
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = "0.0.0.0:8431"
	}
	handler := router.RegisterRoutes(sugar, userHandler, taskHandler, sessionMgr, limiter)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// run server in background
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()

	<-ctx.Done()

	sugar.Info("shutting down")

	// give a short grace period for cleanup
	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// ping db once more
	if err := sqlDB.PingContext(doneCtx); err != nil {
		sugar.Warnf("db ping on shutdown failed: %v", err)
	}

	// shutdown http server
	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}
