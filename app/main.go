package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Br0ck25/kynews-sub000/app/api"
	"github.com/Br0ck25/kynews-sub000/app/article"
	"github.com/Br0ck25/kynews-sub000/app/cache"
	"github.com/Br0ck25/kynews-sub000/app/cfg"
	"github.com/Br0ck25/kynews-sub000/app/database"
	"github.com/Br0ck25/kynews-sub000/app/feed"
	"github.com/Br0ck25/kynews-sub000/app/geo"
	"github.com/Br0ck25/kynews-sub000/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting KY News server", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "migration_version", version, "dirty", dirty)

	feedRepo := database.NewFeedRepository(db)
	itemRepo := database.NewItemRepository(db)
	runRepo := database.NewRunRepository(db)

	registerFeeds(appCfg.FeedsFile, feedRepo)

	gazetteer, err := geo.Load()
	if err != nil {
		slog.Error("Failed to load gazetteer", "error", err)
		os.Exit(1)
	}
	slog.Info("Gazetteer loaded", "state", gazetteer.State())

	httpClient := &http.Client{}
	fetchTimeout := time.Duration(appCfg.FetchTimeout) * time.Second

	poller := feed.NewPoller(httpClient, appCfg.UserAgent, fetchTimeout)
	parser := feed.NewParser()
	fetcher := article.NewFetcher(httpClient, appCfg.UserAgent, fetchTimeout)
	tagger := geo.NewTagger(gazetteer, itemRepo, fetcher)

	runner := tasks.NewRunner(feedRepo, itemRepo, runRepo, poller, parser, tagger)

	scheduler := tasks.NewScheduler(runner, time.Duration(appCfg.IngestInterval)*time.Minute)
	scheduler.Start()
	defer scheduler.Stop()
	slog.Info("Ingestion scheduler started", "interval_minutes", appCfg.IngestInterval)

	resultCache := cache.New(256, time.Duration(appCfg.ServingCacheTTL)*time.Second, time.Now)

	handler := api.NewHandler(feedRepo, itemRepo, runRepo, runner, resultCache,
		gazetteer.State(), appCfg.ServingPageSize)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Scheduler is stopped via defer
	slog.Info("Shutdown complete")
}

// registerFeeds seeds the feeds table from the feeds file. Missing or broken
// seed files are logged, not fatal; already-registered feeds keep running.
func registerFeeds(feedsFile string, feedRepo database.FeedRepository) {
	seeds, err := feed.LoadSeeds(feedsFile)
	if err != nil {
		slog.Warn("Failed to load feed seeds", "file", feedsFile, "error", err)
		return
	}

	registered := 0
	for _, seed := range seeds {
		id, changed, err := feedRepo.UpsertFeed(database.Feed{
			Name:          seed.Name,
			URL:           seed.URL,
			Scope:         seed.Scope,
			DefaultCounty: seed.DefaultCounty,
			Aggregator:    seed.Aggregator,
			Enabled:       feed.SeedEnabled(seed),
		})
		if err != nil {
			slog.Warn("Failed to register feed", "feed", seed.Name, "error", err)
			continue
		}

		if err := feedRepo.SetFeedEnabled(id, feed.SeedEnabled(seed)); err != nil {
			slog.Warn("Failed to set feed enabled state", "feed", seed.Name, "error", err)
		}

		if changed {
			slog.Info("Feed updated", "feed", seed.Name, "id", id)
		}
		registered++
	}

	slog.Info("Feeds registered", "count", registered, "total", len(seeds))
}
