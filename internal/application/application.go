package application

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/eugenenazirov/platform-allocator/internal/allocator"
	"github.com/eugenenazirov/platform-allocator/internal/api"
	"github.com/eugenenazirov/platform-allocator/internal/config"
	"github.com/eugenenazirov/platform-allocator/internal/storage"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	storage   storage.Storage
	allocator allocator.Allocator
	handler   *api.Handler
	router    http.Handler
	logger    *zap.Logger
	server    *http.Server
}

// New initializes the application with all dependencies from the provided configuration.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	store := storage.NewMemoryStorage()
	if err := store.SetLimit(cfg.DefaultLimit); err != nil {
		return nil, fmt.Errorf("failed to apply default limit: %w", err)
	}

	alloc := allocator.New()
	handler := api.NewHandler(alloc, store, api.WithMaxItems(cfg.MaxItems))
	apiRouter := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	return &App{
		storage:   store,
		allocator: alloc,
		handler:   handler,
		router:    apiRouter,
		logger:    logger,
		server:    NewServer(cfg, BuildRootHandler(apiRouter)),
	}, nil
}

// BuildRootHandler mounts the API under /api/ and answers everything else with 404.
func BuildRootHandler(apiHandler http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/", apiHandler)
	mux.Handle("/", http.NotFoundHandler())
	return mux
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Shutdown drains in-flight requests until ctx expires, then closes the
// remaining connections.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	if err == nil {
		return nil
	}
	a.logger.Warn("graceful shutdown failed", zap.Error(err))
	if closeErr := a.server.Close(); closeErr != nil {
		return errors.Join(err, fmt.Errorf("forced close: %w", closeErr))
	}
	return err
}

// Server returns the HTTP server instance.
func (a *App) Server() *http.Server {
	return a.server
}
