// @title        Todo List API
// @version      1.0
// @description  Registration, login and per-user task lists.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	_ "github.com/yao-todolist/todo-api/docs"
	"github.com/yao-todolist/todo-api/internal/api"
	"github.com/yao-todolist/todo-api/internal/api/handler"
	"github.com/yao-todolist/todo-api/internal/core/ports"
	"github.com/yao-todolist/todo-api/internal/core/service"
	"github.com/yao-todolist/todo-api/internal/infrastructure/config"
	mongostore "github.com/yao-todolist/todo-api/internal/infrastructure/db/mongo"
	"github.com/yao-todolist/todo-api/internal/infrastructure/db/postgres"
	redisstore "github.com/yao-todolist/todo-api/internal/infrastructure/db/redis"
	"github.com/yao-todolist/todo-api/internal/infrastructure/queue"
	"github.com/yao-todolist/todo-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "todo-api",
	})

	// --- Relational store ---
	pool, err := postgres.Connect(ctx, postgres.Config{
		DSN:      cfg.Postgres.DSN(),
		MaxConns: cfg.Postgres.MaxConns,
	})
	if err != nil {
		return err
	}
	defer pool.Close()

	if cfg.Postgres.Migrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			return err
		}
		log.Info().Msg("migrations applied")
	}

	checks := map[string]handler.Pinger{"postgres": pool.Ping}

	// --- Audit trail (optional) ---
	var audit ports.AuditRecorder
	if cfg.Mongo.URI != "" {
		client, db, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			AppName:  "todo-api",
		})
		if err != nil {
			return err
		}
		defer func() {
			dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = client.Disconnect(dctx)
		}()

		repo := mongostore.NewAuditRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			log.Warn().Err(err).Msg("audit index creation failed")
		}

		dispatcher := queue.NewDispatcher(cfg.Mongo.Workers, service.NewAuditService(repo, log), log)
		dispatcher.Start(ctx)
		audit = dispatcher

		checks["mongodb"] = func(ctx context.Context) error { return client.Ping(ctx, nil) }
		log.Info().Int("workers", cfg.Mongo.Workers).Msg("audit trail enabled")
	}

	// --- Idempotency-Key replay (optional) ---
	var replay service.ReplayStore
	if cfg.Redis.Addr != "" {
		rdb, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()

		replay = redisstore.NewReplayStore(rdb)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		log.Info().Str("addr", cfg.Redis.Addr).Msg("idempotent create enabled")
	}

	// --- Services ---
	issuer, jwtSecret, err := tokenIssuer(cfg.Auth)
	if err != nil {
		return err
	}

	authService := service.NewAuthService(
		postgres.NewUserRepository(pool),
		issuer,
		service.AuthOptions{
			BcryptCost:    cfg.Auth.BcryptCost,
			UniformErrors: cfg.Auth.UniformErrors,
			Audit:         audit,
			Logger:        log,
		},
	)
	taskService := service.NewTaskService(postgres.NewTaskRepository(pool), replay, log)

	e := api.NewRouter(api.Dependencies{
		AuthService:    authService,
		TaskService:    taskService,
		Logger:         log,
		AllowedOrigins: cfg.AllowedOrigins,
		StaticDir:      cfg.StaticDir,
		JWTSecret:      jwtSecret,
		HealthChecks:   checks,
		EnableMetrics:  true,
		EnableSwagger:  true,
	})

	return serve(ctx, e, ":"+cfg.Port, log)
}

// tokenIssuer returns the issuer for the configured mode, and the secret the
// router must verify bearer tokens with (empty in placeholder mode).
func tokenIssuer(cfg config.AuthConfig) (ports.TokenIssuer, string, error) {
	if cfg.TokenMode != config.TokenModeJWT {
		return service.PlaceholderIssuer{}, "", nil
	}
	issuer, err := service.NewJWTIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return nil, "", err
	}
	return issuer, cfg.JWTSecret, nil
}

func serve(ctx context.Context, h http.Handler, addr string, log zerolog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info().Msg("server exited")
	return nil
}
