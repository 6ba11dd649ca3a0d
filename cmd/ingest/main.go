package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/vanshika/linktrace/backend/internal/app"
	"github.com/vanshika/linktrace/backend/internal/config"
	"github.com/vanshika/linktrace/backend/internal/generator"
	"github.com/vanshika/linktrace/backend/internal/logging"
	"github.com/vanshika/linktrace/backend/internal/repository"
	"github.com/vanshika/linktrace/backend/internal/service"
)

var errMissingDataset = errors.New("dataset not found")

func main() {
	var (
		configPath = flag.String("config", os.Getenv("LINKTRACE_CONFIG"), "path to an optional config file")
		datasetDir = flag.String("dataset-dir", "./data", "directory containing "+generator.PagesFile)
		pagesPath  = flag.String("pages", "", "path to "+generator.PagesFile+" (overrides dataset-dir)")
		workers    = flag.Int("workers", 4, "number of concurrent workers for ingestion")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging).With("component", "ingest")

	pagesFile, err := resolveDatasetPath(*datasetDir, *pagesPath)
	if err != nil {
		logger.Error("dataset resolution failed", "error", err)
		os.Exit(1)
	}

	dataset, err := generator.ReadDataset(pagesFile)
	if err != nil {
		logger.Error("failed to load pages", "error", err, "path", pagesFile)
		os.Exit(1)
	}
	if len(dataset.Pages) == 0 {
		logger.Error("pages dataset empty", "path", pagesFile)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client, err := app.NewGraphClient(ctx, cfg.Graph)
	if err != nil {
		logger.Error("failed to create graph client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := client.Close(context.Background()); err != nil {
			logger.Warn("closing graph client failed", "error", err)
		}
	}()
	if err := client.VerifyConnectivity(ctx); err != nil {
		logger.Error("graph unreachable", "error", err, "uri", cfg.Graph.URI)
		os.Exit(1)
	}
	logger.Info("connected to graph", "uri", cfg.Graph.URI, "database", cfg.Graph.Database)

	repo := repository.New(client)
	if err := repo.EnsureSchema(ctx); err != nil {
		logger.Error("schema setup failed", "error", err)
		os.Exit(1)
	}

	ingestor := service.NewBulkIngestor(repo, *workers)

	start := time.Now()
	logger.Info("ingesting pages", "count", len(dataset.Pages), "workers", *workers)
	if err := ingestor.IngestPages(ctx, dataset.Pages); err != nil {
		logger.Error("page ingestion failed", "error", err, "written", ingestor.Written())
		os.Exit(1)
	}

	total, err := repo.CountPages(ctx)
	if err != nil {
		logger.Warn("counting pages failed", "error", err)
	}
	logger.Info("ingestion complete",
		"duration", time.Since(start).String(),
		"written", ingestor.Written(),
		"pages_in_graph", total,
	)
}

func resolveDatasetPath(baseDir, explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("stat %s: %w", explicitPath, err)
		}
		return explicitPath, nil
	}
	path := filepath.Join(baseDir, generator.PagesFile)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %s", errMissingDataset, path)
	}
	return path, nil
}
