// Package main is the entry point for the study cards API server.
//
// main only reads configuration, builds the logger and the model backend,
// and hands everything to internal/server. All logic lives in internal/.
package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/study-cards/internal/config"
	"github.com/sakif/study-cards/internal/extractor"
	"github.com/sakif/study-cards/internal/server"
)

func main() {
	// === 1. READ CONFIGURATION ===
	// .env is optional; JWT_SECRET and GEMINI_API_KEY are not.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 2. SET UP LOGGING ===
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	// === 3. DATABASE DIRECTORY ===
	if cfg.DBPath != ":memory:" {
		dbDir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dbDir, 0o755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dbDir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	// === 4. MODEL BACKEND ===
	gen, err := extractor.NewGeminiGenerator(context.Background(), extractor.GeminiConfig{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		BaseURL: cfg.GeminiBaseURL,
	})
	if err != nil {
		logger.Error("failed to create Gemini client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("model backend ready", slog.String("model", gen.Model()))

	// === 5. CREATE AND START THE SERVER ===
	srv, err := server.New(cfg, logger, gen)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until SIGINT/SIGTERM.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
