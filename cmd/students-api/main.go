// main is the entry point of the tuition admin API.
//
// Startup sequence:
//  1. Load configuration (YAML + env, optional .env file)
//  2. Initialise the logger
//  3. Open the SQLite database and set up the schema
//  4. Register routes and middleware
//  5. Serve in a goroutine; block until SIGINT/SIGTERM
//  6. Graceful shutdown: finish in-flight requests, then exit
//
// Running locally:
//
//	go run ./cmd/students-api --config=config/local.yaml
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/priyanshgupta/tuition-admin-api/internal/config"
	"github.com/priyanshgupta/tuition-admin-api/internal/http/handlers/student"
	"github.com/priyanshgupta/tuition-admin-api/internal/http/middleware"
	"github.com/priyanshgupta/tuition-admin-api/internal/storage/sqlite"
)

func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)

	log.Info("starting tuition-admin-api",
		slog.String("env", cfg.Env),
		slog.String("version", "1.0.0"),
	)

	store, err := sqlite.New(cfg)
	if err != nil {
		log.Error("failed to initialise storage",
			slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	log.Info("storage initialised", slog.String("path", cfg.StoragePath))

	// Recover sits outermost so a panic in the logger wrapper or any
	// handler still produces a JSON 500.
	var handler http.Handler = student.Routes(store)
	handler = middleware.Logger(log, handler)
	handler = middleware.Recover(log, cfg.Env, handler)

	server := &http.Server{
		Addr:    cfg.HTTPServer.Addr,
		Handler: handler,

		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server started", slog.String("address", cfg.HTTPServer.Addr))

		if err := server.ListenAndServe(); err != nil &&
			err != http.ErrServerClosed {
			log.Error("server encountered an error",
				slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done

	log.Info("shutdown signal received, stopping server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown server gracefully",
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}

// setupLogger returns a *slog.Logger configured for the environment:
// human-readable text in dev, JSON for staging/prod aggregators.
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
	default: // "dev" and anything unrecognised
		return slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	}
}
