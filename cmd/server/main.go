/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the attendance closing server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load config (.env + environment), apply command-line overrides
  2. Build the structured logger
  3. Initialize SQLite store
  4. Create API handler, router and period scheduler
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS (override the environment):
  -addr      HTTP listen address (APP_ADDR, default :8080)
  -db        SQLite database path (DB_PATH, default punchclock.db)
             Use ":memory:" for in-memory database
  -scenario  Load a demo scenario on startup (resets the database)

ENVIRONMENT:
  APP_ADDR, DB_PATH, LOG_LEVEL, LOG_FORMAT, CORS_ALLOWED_ORIGINS,
  SCHEDULER_ENABLED, SCHEDULER_INTERVAL, READ_TIMEOUT, WRITE_TIMEOUT

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection

SEE ALSO:
  - config/config.go: Environment settings
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/go-chi/httplog/v3"
	"github.com/warp/punchclock/api"
	"github.com/warp/punchclock/config"
	"github.com/warp/punchclock/store/sqlite"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Flags
	addr := flag.String("addr", cfg.Addr, "HTTP listen address")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path")
	scenario := flag.String("scenario", "", "demo scenario to load on startup")
	flag.Parse()

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	handler := api.NewHandler(store, logger)
	if *scenario != "" {
		if err := handler.Load(context.Background(), *scenario); err != nil {
			return err
		}
	}

	scheduler := api.NewPeriodScheduler(handler.Service, logger)
	scheduler.Enabled = cfg.SchedulerEnabled
	scheduler.CheckInterval = cfg.SchedulerInterval
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr: *addr,
		Handler: api.NewRouter(handler, api.RouterOptions{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			Logger:         logger,
		}),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", slog.String("addr", *addr), slog.String("db", *dbPath))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for interrupt signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("server stopped")
	return nil
}

func newLogger(cfg *config.Config) (*slog.Logger, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}

	var h slog.Handler
	if cfg.LogFormat == "text" {
		h = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		h = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: httplog.SchemaECS.Concise(false).ReplaceAttr,
		})
	}
	return slog.New(h).With(
		slog.String("app", "punchclock"),
	), nil
}
