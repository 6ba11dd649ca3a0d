package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/vanshika/linktrace/backend/internal/app"
	"github.com/vanshika/linktrace/backend/internal/config"
	"github.com/vanshika/linktrace/backend/internal/logging"
	"github.com/vanshika/linktrace/backend/internal/server"
)

func main() {
	configPath := flag.String("config", os.Getenv("LINKTRACE_CONFIG"), "path to an optional config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build application", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := a.Close(context.Background()); err != nil {
			logger.Warn("closing graph client failed", "error", err)
		}
	}()

	origins := cfg.HTTP.AllowedOrigins()
	router := server.NewRouter(logger, server.RouterDependencies{
		Health:           server.GraphHealthService{Client: a.Graph},
		API:              server.NewAPIHandlers(logger, a.Service),
		AllowedOrigins:   origins,
		AllowCredentials: !containsWildcard(origins),
		MetricsEnabled:   cfg.HTTP.MetricsEnabled,
	})

	srv := server.New(logger, cfg.HTTP, router)
	if err := srv.Run(ctx); err != nil {
		logger.Error("server stopped unexpectedly", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func containsWildcard(origins []string) bool {
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}
