package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nkiryanov/blogapi/internal/db"
	"github.com/nkiryanov/blogapi/internal/handlers"
	"github.com/nkiryanov/blogapi/internal/logger"
	"github.com/nkiryanov/blogapi/internal/metrics"
	"github.com/nkiryanov/blogapi/internal/repository"
	"github.com/nkiryanov/blogapi/internal/repository/postgres"
	"github.com/nkiryanov/blogapi/internal/repository/sqlite"
	"github.com/nkiryanov/blogapi/internal/revocation"
	"github.com/nkiryanov/blogapi/internal/service/auth"
	"github.com/nkiryanov/blogapi/internal/service/auth/tokenmanager"
	"github.com/nkiryanov/blogapi/internal/service/blog"
	"github.com/nkiryanov/blogapi/internal/service/user"
)

const shutdownTimeout = 5 * time.Second

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler
	Logger     logger.Logger

	// Release connections, in reverse order of opening
	closers []func()
}

func NewServerApp(ctx context.Context, c *Config) (_ *ServerApp, err error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config. Err: %w", err)
	}

	// Initialize logger
	logger, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	app := &ServerApp{ListenAddr: c.ListenAddr, Logger: logger}
	defer func() {
		if err != nil {
			app.Close()
		}
	}()

	storage, ping, err := app.openStorage(ctx, c)
	if err != nil {
		return nil, err
	}

	revoked, err := app.openRevocationStore(ctx, c)
	if err != nil {
		return nil, err
	}

	// Initialize services
	tokenManager, err := tokenmanager.New(tokenmanager.Config{
		AccessSecret:  c.AccessSecret,
		RefreshSecret: c.RefreshSecret,
	})
	if err != nil {
		return nil, fmt.Errorf("error while creating token manager. Err: %w", err)
	}

	m := metrics.New()
	userService := user.NewService(user.DefaultHasher, storage.User())
	blogService := blog.NewService(storage.Post(), storage.Comment())
	authService, err := auth.NewService(
		auth.Config{Logger: logger.WithGroup("auth"), Recorder: m},
		tokenManager,
		userService,
		revoked,
	)
	if err != nil {
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}

	app.Handler = handlers.NewRouter(authService, userService, blogService, ping, m, logger)
	return app, nil
}

func (s *ServerApp) openStorage(ctx context.Context, c *Config) (repository.Storage, func(context.Context) error, error) {
	switch c.Storage {
	case StorageSQLite:
		storage, err := sqlite.New(ctx, c.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("error while opening sqlite. Err: %w", err)
		}
		s.closers = append(s.closers, func() { _ = storage.Close() })
		s.Logger.Info("storage ready", "storage", StorageSQLite, "path", c.SQLitePath)
		return storage, storage.Ping, nil

	default:
		// Connect to the database and run migrations
		pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("error while connecting to db. Err: %w", err)
		}
		s.closers = append(s.closers, pool.Close)
		s.Logger.Info("storage ready", "storage", StoragePostgres)
		return postgres.NewStorage(pool), pool.Ping, nil
	}
}

func (s *ServerApp) openRevocationStore(ctx context.Context, c *Config) (revocation.Store, error) {
	if c.RedisURL == "" {
		s.Logger.Warn("REDIS_URL is not set, revoked tokens are kept in memory of this instance only")
		return revocation.NewMemory(), nil
	}

	opts, err := redis.ParseURL(c.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url. Err: %w", err)
	}

	rdb := redis.NewClient(opts)
	s.closers = append(s.closers, func() { _ = rdb.Close() })

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis is not reachable. Err: %w", err)
	}

	return revocation.NewRedis(rdb), nil
}

// Close releases everything opened by NewServerApp
func (s *ServerApp) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.ListenAddr,
		Handler:           s.Handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); errors.Is(err, context.DeadlineExceeded) {
			s.Logger.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		s.Logger.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	s.Logger.Info("Starting server", "address", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}
