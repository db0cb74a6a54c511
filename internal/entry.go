// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/mattn/go-isatty"
	"golang.org/x/sync/errgroup"

	"github.com/starford/folio/internal/catalog"
	"github.com/starford/folio/internal/library"
	"github.com/starford/folio/internal/shelf"
)

// Runtime holds the opened library and catalog behind a shelf service.
type Runtime struct {
	Config *Config
	Logger *slog.Logger
	Shelf  *shelf.Service

	lib *library.FS
	db  *catalog.DB
}

// Open builds the logger, ensures the library directory exists and opens
// the catalog. The caller must Close the returned Runtime.
func Open(opts ...Option) (*Runtime, error) {
	app := &application{logOutput: os.Stderr}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}

	cfg := app.config

	logger := newLogger(cfg.App, app.logOutput)
	slog.SetDefault(logger)

	logger.Debug("Configuration loaded",
		slog.String("library_path", cfg.Library.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()),
		slog.String("log_format", cfg.App.LogFormat))

	if err := os.MkdirAll(cfg.Library.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create library dir: %w", err)
	}

	lib, err := library.NewFS(cfg.Library.Path)
	if err != nil {
		return nil, fmt.Errorf("init library: %w", err)
	}

	db, err := catalog.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init catalog: %w", err)
	}

	return &Runtime{
		Config: cfg,
		Logger: logger,
		Shelf:  shelf.NewService(lib, db, logger),
		lib:    lib,
		db:     db,
	}, nil
}

// Sync reconciles the catalog with the library directory.
func (r *Runtime) Sync() error {
	return catalog.Sync(r.db, r.lib, r.Logger)
}

// Close releases the catalog.
func (r *Runtime) Close() error {
	return r.db.Close()
}

// Run syncs the catalog and then keeps it current until ctx is cancelled or
// the process receives SIGINT or SIGTERM. Only one Run may hold a catalog.
func Run(ctx context.Context, opts ...Option) error {
	rt, err := Open(opts...)
	if err != nil {
		return err
	}
	defer rt.Close()

	logger := rt.Logger

	lock := flock.New(rt.Config.SQLite.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another folio watcher is already running on this catalog")
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release catalog lock", slog.String("error", err.Error()))
		}
	}()

	if err := rt.Sync(); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return catalog.Watch(gCtx, rt.db, rt.lib, logger, func(kind, path string) {
			logger.Info("catalog changed", slog.String("kind", kind), slog.String("path", path))
		})
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
			cancel()
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Watcher stopped successfully")
	return nil
}

// newLogger picks a handler for cfg.LogFormat. In auto mode a terminal gets
// text and anything else JSON.
func newLogger(cfg ApplicationConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}

	format := cfg.LogFormat
	if format == "" || format == LogFormatAuto {
		format = LogFormatJSON
		if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
			format = LogFormatText
		}
	}

	if format == LogFormatText {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
