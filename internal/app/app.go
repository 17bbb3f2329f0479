// Package app wires configuration, stores and the HTTP router into a
// runnable server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/employee-portal/employee-api/internal/api"
	"github.com/employee-portal/employee-api/internal/api/handler"
	"github.com/employee-portal/employee-api/internal/api/middleware"
	"github.com/employee-portal/employee-api/internal/core/ports"
	"github.com/employee-portal/employee-api/internal/core/service"
	"github.com/employee-portal/employee-api/internal/infrastructure/config"
	"github.com/employee-portal/employee-api/internal/infrastructure/db/memory"
	"github.com/employee-portal/employee-api/internal/infrastructure/db/mongo"
	"github.com/employee-portal/employee-api/internal/infrastructure/db/redis"
	"github.com/employee-portal/employee-api/internal/infrastructure/metrics"
	"github.com/employee-portal/employee-api/internal/infrastructure/queue"
	"github.com/employee-portal/employee-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// App is a fully wired server.
type App struct {
	cfg        *config.Config
	log        zerolog.Logger
	echo       *echo.Echo
	dispatcher *queue.Dispatcher
	closers    []func(context.Context) error
}

type stores struct {
	users     ports.UserRepository
	employees ports.EmployeeRepository
	audit     ports.AuditRepository
}

// New connects the configured backends and builds the router. Call Close
// when New succeeds and Run is not used.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log}
	checks := map[string]handler.DependencyCheck{}

	st, err := a.openStores(ctx, checks)
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}

	limiter, err := a.rateLimiter(ctx, checks)
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}

	a.dispatcher = queue.NewDispatcher(cfg.AuditWorkers, st.audit, logger.Component(log, "audit"))

	tokens := service.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	hasher := service.NewBcryptHasher(cfg.BcryptCost)
	authService := service.NewAuthService(st.users, st.employees, tokens, hasher, a.dispatcher, metrics.Recorder{}, log)
	employeeService := service.NewEmployeeService(st.employees, st.users, a.dispatcher, metrics.Recorder{}, log)

	a.echo = api.NewRouter(api.Deps{
		Log:          logger.Component(log, "http"),
		Auth:         authService,
		Employees:    employeeService,
		Tokens:       tokens,
		RateLimiter:  limiter,
		HealthChecks: checks,
		StaticDir:    cfg.StaticDir,
		CORSOrigins:  cfg.CORSOrigins,
	})
	return a, nil
}

func (a *App) openStores(ctx context.Context, checks map[string]handler.DependencyCheck) (stores, error) {
	if a.cfg.StoreDriver == config.StoreMemory {
		a.log.Warn().Msg("using in-memory store, data is lost on restart")
		return stores{
			users:     memory.NewUserRepository(),
			employees: memory.NewEmployeeRepository(),
			audit:     memory.NewAuditRepository(),
		}, nil
	}

	client, db, err := mongo.Connect(ctx, mongo.Config{URI: a.cfg.Mongo.URI, Database: a.cfg.Mongo.Database})
	if err != nil {
		return stores{}, err
	}
	a.closers = append(a.closers, func(ctx context.Context) error { return client.Disconnect(ctx) })

	if err := mongo.EnsureIndexes(ctx, db); err != nil {
		return stores{}, err
	}
	checks["mongodb"] = handler.MongoCheck(db)
	a.log.Info().Str("database", a.cfg.Mongo.Database).Msg("connected to mongodb")

	return stores{
		users:     mongo.NewUserRepository(db),
		employees: mongo.NewEmployeeRepository(db),
		audit:     mongo.NewAuditRepository(db),
	}, nil
}

func (a *App) rateLimiter(ctx context.Context, checks map[string]handler.DependencyCheck) (echomiddleware.RateLimiterStore, error) {
	rl := a.cfg.RateLimit
	if !a.cfg.UsesRedis() {
		return middleware.NewMemoryRateLimitStore(rl.Requests, rl.Window), nil
	}

	rdb, err := redis.Connect(ctx, redis.Config{Addr: a.cfg.Redis.Addr, Password: a.cfg.Redis.Password, DB: a.cfg.Redis.DB})
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func(context.Context) error { return rdb.Close() })
	checks["redis"] = handler.RedisCheck(rdb)
	a.log.Info().Str("addr", a.cfg.Redis.Addr).Msg("connected to redis")

	return redis.NewRateLimitStore(rdb, rl.Requests, rl.Window), nil
}

// Handler exposes the router, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.echo
}

// Run starts the audit workers and the HTTP server, and blocks until ctx is
// cancelled or the server fails. It shuts everything down before returning.
func (a *App) Run(ctx context.Context) error {
	workerCtx, stopWorkers := context.WithCancel(context.WithoutCancel(ctx))
	defer stopWorkers()
	a.dispatcher.Start(workerCtx)

	serverErr := make(chan error, 1)
	go func() {
		a.log.Info().Str("port", a.cfg.Port).Msg("http server listening")
		serverErr <- a.echo.Start(":" + a.cfg.Port)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.log.Info().Msg("shutting down")
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.echo.Shutdown(shutdownCtx); err != nil {
		a.log.Error().Err(err).Msg("graceful shutdown failed")
	}
	stopWorkers()
	a.dispatcher.Wait()
	if err := a.Close(shutdownCtx); err != nil {
		a.log.Error().Err(err).Msg("closing backends failed")
	}
	return runErr
}

// Close releases backend connections in reverse order of opening.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// StartWorkers runs the audit dispatcher without the HTTP server.
func (a *App) StartWorkers(ctx context.Context) {
	a.dispatcher.Start(ctx)
}
