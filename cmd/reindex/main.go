package main

import (
	"context"
	"flag"
	"log/slog"
	"time"

	"eventease/internal/config"
	"eventease/internal/database"
	"eventease/internal/logger"
	"eventease/internal/repository"
	"eventease/internal/search"
	"eventease/internal/service"
)

func main() {
	var timeout time.Duration
	flag.DurationVar(&timeout, "timeout", 5*time.Minute, "Abort the reindex after this long")
	flag.Parse()

	// Load configuration
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	slog.Info("Starting search reindex", "index", cfg.Search.Elasticsearch.Index)

	// Connect to database
	slog.Info("Connecting to database")
	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer db.Close()

	esClient, err := search.NewElasticsearchClient(cfg.Search.Elasticsearch)
	if err != nil {
		logger.Fatal("Failed to connect to Elasticsearch", "error", err)
	}

	repos := repository.NewRepositories(db)
	indexer := service.NewIndexerService(repos.Events, esClient, nil)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	count, err := indexer.ReindexAll(ctx)
	if err != nil {
		logger.Fatal("Search reindex failed", "error", err)
	}

	elapsed := time.Since(start)
	slog.Info("Search reindex completed",
		"events_indexed", count,
		"duration", elapsed.String(),
		"events_per_second", float64(count)/elapsed.Seconds())
}
