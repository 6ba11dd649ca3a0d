// Package app assembles the search stack from configuration.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vanshika/linktrace/backend/internal/cache"
	"github.com/vanshika/linktrace/backend/internal/config"
	"github.com/vanshika/linktrace/backend/internal/domain"
	"github.com/vanshika/linktrace/backend/internal/graph"
	"github.com/vanshika/linktrace/backend/internal/knowledge"
	"github.com/vanshika/linktrace/backend/internal/repository"
	"github.com/vanshika/linktrace/backend/internal/search"
	"github.com/vanshika/linktrace/backend/internal/service"
	"github.com/vanshika/linktrace/backend/internal/source"
)

// App holds the wired components shared by the binaries.
type App struct {
	Config  config.Config
	Logger  *slog.Logger
	Pages   *cache.Memo[domain.PageInfo]
	Source  *source.Source
	Engine  *search.Engine
	Service *service.ConnectionService

	// Graph and Repository are set for the neo4j backend only.
	Graph      graph.Client
	Repository *repository.Repository
}

// New builds the stack for the backend selected in cfg.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	switch cfg.Knowledge.Backend {
	case config.BackendNeo4j:
		client, err := NewGraphClient(ctx, cfg.Graph)
		if err != nil {
			return nil, err
		}
		repo := repository.New(client)
		a := NewWithUpstream(cfg, logger, repo)
		a.Graph = client
		a.Repository = repo
		logger.Info("using neo4j knowledge backend", "uri", cfg.Graph.URI, "database", cfg.Graph.Database)
		return a, nil

	case config.BackendWikipedia, "":
		fetcher := knowledge.NewFetcher(knowledge.FetcherOptions{
			BaseURL:           cfg.Knowledge.BaseURL,
			UserAgent:         cfg.Knowledge.UserAgent,
			RequestTimeout:    cfg.Knowledge.RequestTimeout,
			Retries:           cfg.Knowledge.Retries,
			RetryBaseDelay:    cfg.Knowledge.RetryBaseDelay,
			RequestsPerSecond: cfg.Knowledge.RequestsPerSecond,
			BreakerEnabled:    cfg.Knowledge.BreakerEnabled,
			Logger:            logger.With("component", "fetcher"),
		})
		client := knowledge.NewClient(fetcher, knowledge.ClientOptions{
			MaxLinks:     cfg.Knowledge.MaxLinks,
			MaxLinkPages: cfg.Knowledge.MaxLinkPages,
		})
		logger.Info("using wikipedia knowledge backend", "base_url", cfg.Knowledge.BaseURL)
		return NewWithUpstream(cfg, logger, client), nil

	default:
		return nil, fmt.Errorf("%w: unknown knowledge backend %q", config.ErrInvalidConfig, cfg.Knowledge.Backend)
	}
}

// NewWithUpstream builds the stack on top of an existing knowledge service.
func NewWithUpstream(cfg config.Config, logger *slog.Logger, upstream source.Upstream) *App {
	pages := cache.New[domain.PageInfo]("pages")
	src := source.New(upstream, pages, source.Options{
		MaxLinks: cfg.Knowledge.MaxLinks,
		Logger:   logger.With("component", "source"),
	})
	engine := search.NewEngine(src, logger.With("component", "search"))
	svc := service.NewConnectionService(src, engine, service.Options{
		Defaults:      SearchOptions(cfg.Search),
		MaxDepthLimit: cfg.Search.MaxDepthLimit,
		TimeoutLimit:  cfg.Search.TimeoutLimit,
		Logger:        logger.With("component", "service"),
	})

	return &App{
		Config:  cfg,
		Logger:  logger,
		Pages:   pages,
		Source:  src,
		Engine:  engine,
		Service: svc,
	}
}

// SearchOptions converts the search config into engine options. A zero
// pacing in config disables pacing.
func SearchOptions(cfg config.SearchConfig) search.Options {
	pacing := cfg.Pacing
	if pacing == 0 {
		pacing = -1
	}
	return search.Options{
		MaxDepth: cfg.MaxDepth,
		Timeout:  cfg.Timeout,
		Pacing:   pacing,
		Strict:   cfg.Strict,
	}
}

// NewGraphClient connects to the configured Neo4j database.
func NewGraphClient(ctx context.Context, cfg config.GraphConfig) (graph.Client, error) {
	if cfg.URI == "" {
		return nil, graph.ErrMissingURI
	}
	return graph.NewNeo4jClient(ctx, graph.Options{
		URI:            cfg.URI,
		Database:       cfg.Database,
		Username:       cfg.Username,
		Password:       cfg.Password,
		MaxConnections: cfg.MaxConnections,
	})
}

// Close releases the graph connection when one is open.
func (a *App) Close(ctx context.Context) error {
	if a.Graph == nil {
		return nil
	}
	return a.Graph.Close(ctx)
}
