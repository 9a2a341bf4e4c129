// @title        Course Portal API
// @version      1.0
// @description  Course catalogue with role-gated management.
// @BasePath     /
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the token from /auth/token.
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/learnhub/course-portal/internal/api"
	"github.com/learnhub/course-portal/internal/core/domain"
	"github.com/learnhub/course-portal/internal/core/service"
	"github.com/learnhub/course-portal/internal/infrastructure/db/mongo"
	"github.com/learnhub/course-portal/internal/infrastructure/db/redis"
	"github.com/learnhub/course-portal/internal/infrastructure/http/handlers"
	"github.com/learnhub/course-portal/internal/infrastructure/queue"
	"github.com/learnhub/course-portal/internal/pkg/config"
	"github.com/learnhub/course-portal/internal/pkg/store"
	"github.com/learnhub/course-portal/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "course-portal",
	})

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if cfg.SecretKey == config.DevelopmentSecret {
		log.Warn().Msg("SECRET_KEY is the development placeholder; sessions can be forged")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	backend, err := store.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer backend.Close()

	rdb, err := redis.Connect(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	readiness := map[string]handlers.Pinger{
		cfg.Store.Driver: backend.Pinger,
		"redis":          redis.Pinger{Client: rdb},
	}

	opts := []service.CourseOption{service.WithIdempotency(redis.NewIdempotencyStore(rdb))}

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	var dispatcher *queue.Dispatcher
	if cfg.AuditEnabled() {
		db, release, err := store.AuditDatabase(ctx, cfg, backend)
		if err != nil {
			return err
		}
		defer release()

		dispatcher = queue.NewDispatcher(cfg.AuditWorkers, mongo.NewAuditRepository(db), log)
		dispatcher.Start(workerCtx)
		opts = append(opts, service.WithAudit(dispatcher))
		readiness["mongodb"] = mongo.Pinger{DB: db}
		log.Info().Int("workers", cfg.AuditWorkers).Msg("course audit trail enabled")
	}

	courses := service.NewCourseService(backend.Courses, cfg.EditPolicy, log, opts...)
	auth := service.NewAuthService(backend.Users, cfg.LoginMode, cfg.JWTSecret, cfg.TokenTTL, log)
	if cfg.LoginMode == domain.LoginAssertion {
		log.Warn().Msg("LOGIN_MODE=assertion: users pick their own role at login")
	}

	e := api.NewRouter(cfg, api.Dependencies{
		Courses:   courses,
		Auth:      auth,
		Sessions:  redis.NewSessionStore(rdb, cfg.SessionTTL),
		Readiness: readiness,
		Log:       log,
	})

	srv := &http.Server{
		Addr:              net.JoinHostPort("0.0.0.0", cfg.Port),
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("store", cfg.Store.Driver).Msg("listening")
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

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}

	// Stop the audit workers once no request can publish more.
	cancelWorkers()
	if dispatcher != nil {
		dispatcher.Wait()
	}
	return nil
}
