package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/docoutline/internal/api"
	"github.com/dgallion1/docoutline/internal/cache"
	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/engine"
	"github.com/dgallion1/docoutline/internal/permalink"
	"github.com/dgallion1/docoutline/internal/pipeline"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize the cache backend.
	store, err := cache.Open(cache.OpenOptions{
		Backend:         cfg.CacheBackend,
		SQLitePath:      cfg.SQLitePath,
		PathstoreURL:    cfg.PathstoreURL,
		PathstoreAPIKey: cfg.PathstoreAPIKey,
	})
	if err != nil {
		log.Error("failed to open cache", "backend", cfg.CacheBackend, "error", err)
		os.Exit(1)
	}
	c := cache.New(store, cfg.CacheTTL, log)
	go sweepLoop(ctx, store, cfg.CacheCleanup, log)

	links, err := permalink.New(cfg.PermalinkStyle, cfg.PermalinkBase)
	if err != nil {
		log.Error("invalid permalink settings", "error", err)
		os.Exit(1)
	}

	// Initialize engine and pipeline.
	eng := engine.New(c, links, log)
	orch := pipeline.NewOrchestrator(cfg, eng, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(eng, orch, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		cancel()
		if err := c.Close(); err != nil {
			log.Warn("cache close failed", "error", err)
		}
	}()

	log.Info("starting outline service", "port", cfg.Port, "cache", cfg.CacheBackend)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

// sweepLoop periodically drops expired cache entries until ctx is done.
func sweepLoop(ctx context.Context, store cache.Store, every time.Duration, log *slog.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := cache.Sweep(ctx, store)
			if err != nil {
				log.Warn("cache sweep failed", "error", err)
				continue
			}
			if n > 0 {
				log.Info("cache sweep", "removed", n)
			}
		}
	}
}
