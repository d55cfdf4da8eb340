// Package server wires configuration, storage backends and transports
// into the gridplanner server process and runs it until a signal arrives.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/gridplanner/internal/kv"
	"github.com/dmitrijs2005/gridplanner/internal/logging"
	"github.com/dmitrijs2005/gridplanner/internal/server/auth"
	"github.com/dmitrijs2005/gridplanner/internal/server/config"
	"github.com/dmitrijs2005/gridplanner/internal/server/push"
	"github.com/dmitrijs2005/gridplanner/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gridplanner/internal/server/services"
	"github.com/go-redis/redis/v8"

	gs "github.com/dmitrijs2005/gridplanner/internal/server/grpc"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	redis  *redis.Client

	userService *services.UserService
	hub         *push.Hub
	grpcDeps    gs.Services
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := newLogger(c)

	db, err := repomanager.OpenDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	applied, err := rm.RunMigrations(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}
	if len(applied) > 0 {
		logger.Info(ctx, "schema migrated", "versions", applied)
	}

	app := &App{config: c, logger: logger, db: db}

	var urlCache services.URLCache
	if c.RedisAddr != "" {
		client, err := kv.NewClient(ctx, c.RedisAddr)
		if err != nil {
			logger.Warn(ctx, "redis unavailable, signed urls will not be cached", "error", err)
		} else {
			app.redis = client
			urlCache = kv.NewURLCache(client)
		}
	}

	grids := services.NewGridService(db, rm, logger)
	secret := []byte(c.SecretKey)
	app.hub = push.NewHub(func(token string) (string, error) {
		return auth.GetUserIDFromToken(token, secret)
	}, grids, logger)

	app.userService = services.NewUserService(db, rm, c)
	app.grpcDeps = gs.Services{
		Users:    app.userService,
		Grids:    grids,
		Shares:   services.NewShareService(db, rm, grids),
		Comments: services.NewCommentService(db, rm, grids, app.hub, c.MaxCommentLength, logger),
	}

	if c.S3BaseEndpoint != "" {
		storage, err := services.NewStorageService(ctx, c, grids, urlCache, logger)
		if err != nil {
			logger.Warn(ctx, "object storage disabled", "error", err)
		} else {
			app.grpcDeps.Storage = storage
		}
	}

	return app, nil
}

func newLogger(c *config.Config) logging.Logger {
	level := slog.LevelInfo
	if c.Debug {
		level = slog.LevelDebug
	}
	return logging.New(os.Stdout, logging.Options{
		Format: c.LogFormat,
		Level:  level,
		Attrs:  []any{"service", "gridserver"},
	})
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s, err := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.grpcDeps, app.config.SecretKey)

	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	} else {

		if err := s.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}
}

func (app *App) startPushServer(ctx context.Context, cancelFunc context.CancelFunc) {
	mux := http.NewServeMux()
	mux.Handle(push.Path, app.hub)

	srv := &http.Server{Addr: app.config.EndpointAddrHTTP, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping push server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	app.logger.Info(ctx, "Starting push server", "address", app.config.EndpointAddrHTTP)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// purgeTokens removes expired refresh tokens on a fixed interval.
func (app *App) purgeTokens(ctx context.Context) {
	ticker := time.NewTicker(app.config.TokenPurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := app.userService.PurgeExpiredTokens(ctx)
			if err != nil {
				app.logger.Error(ctx, "token purge failed", "error", err)
				continue
			}
			app.logger.Debug(ctx, "expired tokens purged", "count", n)
		}
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startPushServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.purgeTokens(ctx)
	}()

	wg.Wait()

	if app.redis != nil {
		_ = app.redis.Close()
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(context.Background(), "db close", "error", err)
	}
	app.logger.Info(context.Background(), "App stopped")
}
