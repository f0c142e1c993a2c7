package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/launchkit/saas-console/internal/config"
	"github.com/launchkit/saas-console/internal/edge"
	"github.com/launchkit/saas-console/internal/guard"
	"github.com/launchkit/saas-console/internal/logging"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	// Load configuration
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := logging.NewLogger(cfg.Edge.IsDevelopment())
	logger.Info("starting edge gateway",
		"env", cfg.Edge.Env,
		"port", cfg.Edge.Port,
		"upstream", cfg.Edge.UpstreamURL,
	)

	// Initialize route guard and upstream proxy
	routeGuard := guard.New(cfg.Routes, cfg.Client.SessionCookieName)
	proxy, err := edge.NewProxy(cfg.Edge.UpstreamURL, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize proxy: %w", err)
	}

	// Initialize router
	router := edge.NewRouter(cfg, routeGuard, proxy, logger)

	// Initialize HTTP server
	server := edge.NewServer(
		cfg.Edge.Address(),
		router,
		cfg.Edge.ReadTimeout,
		cfg.Edge.WriteTimeout,
		logger,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	// Wait for interrupt signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logger.Info("received shutdown signal", "signal", sig.String())

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Edge.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}
