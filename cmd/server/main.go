package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/RadioRCA/internal/archive"
	"github.com/JonMunkholm/RadioRCA/internal/config"
	"github.com/JonMunkholm/RadioRCA/internal/history"
	"github.com/JonMunkholm/RadioRCA/internal/ingest"
	"github.com/JonMunkholm/RadioRCA/internal/logging"
	"github.com/JonMunkholm/RadioRCA/internal/rca"
	"github.com/JonMunkholm/RadioRCA/internal/web"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"data_root", cfg.Data.Root,
		"ingest_max_concurrent", cfg.Ingest.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	// Open the clean-file archive under the data root
	store := archive.NewStore(cfg.Data.Root)

	// Log what the archive already holds
	sums, err := store.Summary()
	if err != nil {
		slog.Error("failed to scan archive", "root", cfg.Data.Root, "error", err)
		os.Exit(1)
	}
	total := 0
	for _, sum := range sums {
		total += sum.Files
		slog.Debug("archive category",
			"category", sum.Category,
			"files", sum.Files,
			"latest", sum.Latest,
		)
	}
	slog.Info("archive opened",
		"root", cfg.Data.Root,
		"categories", len(sums),
		"clean_files", total,
	)

	// Analysis history journal lives next to the archive
	journal := history.NewStore(cfg.Data.Root)

	// Create domain services with config
	limiter := ingest.NewLimiter(cfg.Ingest.MaxConcurrent, cfg.Ingest.MaxWaitTime)
	svc := web.Services{
		Engine:  rca.NewEngine(store),
		Lookup:  rca.NewLookup(store),
		Ingest:  ingest.NewService(store, limiter),
		Archive: store,
		History: journal,
	}

	// Create server with config
	server := web.NewServer(cfg, svc)

	// Create cancellable context for background jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())

	// Start the retention sweeper that prunes old clean files per category
	store.StartSweeper(jobCtx, cfg.Data.SweepInterval, cfg.Data.RetentionPerCategory)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		// Stop background jobs
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Wait for active ingests to complete (with timeout)
		if active := limiter.ActiveCount(); active > 0 {
			slog.Info("waiting for ingests to complete", "active", active)
			if err := limiter.WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("ingests did not complete in time", "error", err)
			} else {
				slog.Info("all ingests completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	// Start server (uses addr from config internally)
	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}
