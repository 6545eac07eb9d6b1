// main is the entry point of the StudentDB API.
//
// STARTUP SEQUENCE:
//  1. Load configuration (YAML file if given, then environment, then defaults)
//  2. Initialise the logger
//  3. Connect to the document store; exit if it cannot be reached
//  4. Build the router (student routes, API docs, health)
//  5. Start the HTTP server in a separate goroutine
//  6. Block until an OS signal (Ctrl+C / kill) arrives
//  7. Gracefully shut down: finish in-flight requests, close the store, exit
//
// RUNNING THE SERVER:
//
//	go run ./cmd/studentdb-api
//	go run ./cmd/studentdb-api --config=config/local.yaml
//	STORAGE_DRIVER=sqlite PORT=8080 go run ./cmd/studentdb-api
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aanand-mishra/studentdb-api/internal/config"
	"github.com/aanand-mishra/studentdb-api/internal/http/router"
	"github.com/aanand-mishra/studentdb-api/internal/storage"
	"github.com/aanand-mishra/studentdb-api/internal/storage/memory"
	"github.com/aanand-mishra/studentdb-api/internal/storage/mongodb"
	"github.com/aanand-mishra/studentdb-api/internal/storage/sqlite"
)

const version = "1.0.0"

func main() {
	// ── 1. Load Config ────────────────────────────────────────────────────
	cfg := config.MustLoad()

	// ── 2. Initialise Logger ──────────────────────────────────────────────
	// Handlers log through the slog package functions, so this logger is
	// also installed as the default.
	log := setupLogger(cfg.Env)
	slog.SetDefault(log)

	log.Info("starting studentdb-api",
		slog.String("env", cfg.Env),
		slog.String("version", version),
	)

	// ── 3. Initialise Storage ─────────────────────────────────────────────
	// A store that cannot be reached is fatal: the service does not start.
	store, err := openStorage(context.Background(), cfg.Storage)
	if err != nil {
		log.Error("failed to initialise storage",
			slog.String("driver", cfg.Storage.Driver),
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("storage initialised", slog.String("driver", cfg.Storage.Driver))

	// ── 4. Build Router ───────────────────────────────────────────────────
	handler, err := router.New(store, router.Options{
		Logger:      log,
		CORSOrigins: cfg.CORSOrigins,
	})
	if err != nil {
		log.Error("failed to build router", slog.String("error", err.Error()))
		os.Exit(1)
	}

	server := &http.Server{
		Addr:    cfg.Addr(),
		Handler: handler,

		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ── 5. Start Server in a Goroutine ────────────────────────────────────
	go func() {
		log.Info("server started", slog.String("address", server.Addr))

		// ListenAndServe returns http.ErrServerClosed after Shutdown.
		if err := server.ListenAndServe(); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			log.Error("server encountered an error",
				slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// ── 6. Wait for Shutdown Signal ───────────────────────────────────────
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done

	log.Info("shutdown signal received, stopping server...")

	// ── 7. Graceful Shutdown ──────────────────────────────────────────────
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	exitCode := 0
	if err := server.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown server gracefully",
			slog.String("error", err.Error()))
		exitCode = 1
	}

	if err := store.Close(ctx); err != nil {
		log.Error("failed to close storage", slog.String("error", err.Error()))
		exitCode = 1
	}

	log.Info("server stopped")
	os.Exit(exitCode)
}

// openStorage constructs the backend named by cfg.Driver.
func openStorage(ctx context.Context, cfg config.Storage) (storage.Storage, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		return mongodb.New(ctx, cfg.Mongo)
	case config.DriverSQLite:
		return sqlite.New(ctx, cfg.SQLite)
	case config.DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// setupLogger returns a *slog.Logger configured for the given environment.
//
// Development (dev): human-readable text output at DEBUG level.
// Staging (staging): JSON output at DEBUG level.
// Production (prod): JSON output at INFO level.
func setupLogger(env string) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	case "staging":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	default:
		return slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	}
}
