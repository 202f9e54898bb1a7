// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/danielhkuo/persona-assess/analysis"
	"github.com/danielhkuo/persona-assess/backfill"
	"github.com/danielhkuo/persona-assess/cliparse"
	"github.com/danielhkuo/persona-assess/db"
	"github.com/danielhkuo/persona-assess/middleware"
	"github.com/danielhkuo/persona-assess/router"
	"github.com/danielhkuo/persona-assess/seed"
)

func main() {
	var err error

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}
	setupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to the database
	dbConn, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "type", cfg.DatabaseType, "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	gen, err := newGenerator(ctx, cfg)
	if err != nil {
		slog.Error("AI client setup failed", "provider", cfg.AIProvider, "error", err)
		os.Exit(1)
	}

	app := router.NewApp(dbConn, cfg, gen)

	if cfg.SeedDemo {
		personas, err := seed.Load(cfg.SeedFile)
		if err != nil {
			slog.Error("seed load failed", "file", cfg.SeedFile, "error", err)
			os.Exit(1)
		}
		n, err := seed.Apply(ctx, app.Stores.Personas, personas)
		if err != nil {
			slog.Error("seeding failed", "error", err)
			os.Exit(1)
		}
		if n > 0 {
			slog.Info("Seeded personas", "count", n)
		}
	}

	if cfg.RunBackfill {
		p, err := app.Backfill.Run(ctx, backfill.Options{}, func(p backfill.Progress) {
			slog.Info("backfill progress",
				"processed", p.Processed,
				"total", p.Total,
				"current", p.Current,
			)
		})
		if err != nil {
			slog.Error("backfill stopped", "error", err, "processed", p.Processed, "total", p.Total)
			os.Exit(1)
		}
		return
	}

	// Create server
	server := http.Server{
		Handler: middleware.CORS(router.NewAppRouter(app)),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	go func() {
		// Wait for Ctrl-C signal
		<-ctx.Done()
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port, "base_url", cfg.BaseURL)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}

func setupLogging(cfg cliparse.Config) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if strings.EqualFold(cfg.LogFormat, "json") {
		h = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		h = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}

func newGenerator(ctx context.Context, cfg cliparse.Config) (analysis.Generator, error) {
	if cfg.AIKey() == "" {
		slog.Warn("no AI API key configured, analysis will use the fallback", "provider", cfg.AIProvider)
	}

	if cfg.AIProvider == cliparse.ProviderOpenAI {
		return analysis.NewOpenAIGenerator(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.AIModel, nil), nil
	}
	g, err := analysis.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.AIModel)
	if err != nil {
		return nil, err
	}
	return g, nil
}
