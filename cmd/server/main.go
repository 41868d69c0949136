package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gyaneshwarpardhi/wtgraph/internal/api"
	"github.com/gyaneshwarpardhi/wtgraph/internal/config"
	"github.com/gyaneshwarpardhi/wtgraph/internal/engine"
	"github.com/gyaneshwarpardhi/wtgraph/internal/export"
	"github.com/gyaneshwarpardhi/wtgraph/internal/facts"
)

func main() {
	addr := flag.String("addr", "", "HTTP listen address (overrides WTG_SERVER_ADDR)")
	factsGlob := flag.String("facts", "", "Fact file or glob (overrides WTG_FACTS_FILES)")
	usage := flag.Bool("env", false, "Print the recognised environment variables and exit")
	flag.Parse()

	if *usage {
		if err := config.Usage(os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	// ── Load settings ────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load settings", "err", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *factsGlob != "" {
		cfg.Facts.Files = []string{*factsGlob}
	}

	opts := &slog.HandlerOptions{Level: cfg.LogLevel()}
	var logHandler slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if cfg.Log.Format == "json" {
		logHandler = slog.NewJSONHandler(os.Stdout, opts)
	}
	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	// ── Load facts ───────────────────────────────────────────────────────────
	paths, err := cfg.FactFiles()
	if err != nil {
		slog.Error("failed to resolve fact files", "err", err)
		os.Exit(1)
	}
	if len(paths) == 0 {
		slog.Error("no fact files found", "patterns", cfg.Facts.Files)
		os.Exit(1)
	}
	loader, err := facts.NewLoader(logger, paths...)
	if err != nil {
		slog.Error("failed to load facts", "err", err)
		os.Exit(1)
	}

	// ── Engine and initial graphs ────────────────────────────────────────────
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eng := engine.New(ctx, logger, cfg.Engine, cfg.BuildOptions())
	if err := eng.BuildAll(ctx, loader.Apps()); err != nil {
		slog.Error("failed to build graphs", "err", err)
		os.Exit(1)
	}
	for _, name := range eng.Apps() {
		s, _ := eng.Snapshot(name)
		slog.Info("graph ready", "app", name, "nodes", s.Graph.NodeCount(), "edges", s.Graph.EdgeCount())
	}

	// ── Hot-reload watcher ───────────────────────────────────────────────────
	loader.OnChange(func(app *facts.App) {
		if _, err := eng.Build(ctx, app); err != nil {
			slog.Warn("hot-reload skipped: graph build failed", "app", app.App, "err", err)
			return
		}
		slog.Info("graph hot-reloaded", "app", app.App)
	})
	if cfg.Facts.Watch {
		stopWatch, err := loader.Watch()
		if err != nil {
			slog.Warn("facts watcher unavailable (hot-reload disabled)", "err", err)
		} else {
			defer stopWatch()
		}
	}

	// ── HTTP server ──────────────────────────────────────────────────────────
	handler := api.New(logger, eng, loader, export.Default(), cfg.RateLimit)
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down…")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutCancel()
	_ = srv.Shutdown(shutCtx)
	eng.Shutdown()
	cancel()
	slog.Info("goodbye")
}
