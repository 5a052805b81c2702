// Package main implements the invoicedash server: it resolves the backend
// endpoint from the deployment environment, serves the dashboard page, and
// exposes the action API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"invoicedash/cmd/invoicedash-server/cli"
	"invoicedash/internal/config"
	"invoicedash/internal/endpoint"
	"invoicedash/internal/logger"
	"invoicedash/internal/runtimecfg"
	"invoicedash/internal/storage"
	"invoicedash/internal/webserver"
)

const gracefulShutdownTimeout = 5 * time.Second

func main() {
	// Check for CLI database commands
	if len(os.Args) > 1 && os.Args[1] == "db" {
		if err := cli.Run(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "CLI error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	var (
		configPath = flag.String("config", "", "Path to YAML configuration file")
		host       = flag.String("host", "", "Listen host (overrides config)")
		port       = flag.Int("port", 0, "Listen port (overrides config)")
	)
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
	}
	if *host != "" {
		cfg.Server.Host = *host
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	logger.Init(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
	})
	defer logger.Sync()

	// Environment injection happens exactly once, before any reader exists
	rt := runtimecfg.FromEnv()
	resolver := endpoint.NewResolver(rt, endpoint.Location{
		Scheme:   cfg.Server.PublicScheme,
		Hostname: cfg.Server.PublicHostname,
	})

	// 1. Optional history storage
	var store *storage.Store
	if cfg.History.Enabled {
		var err error
		store, err = storage.NewStore(cfg.History.Path)
		if err != nil {
			logger.Fatal("failed to initialize history store", zap.Error(err))
		}
		if err := store.InitDB(); err != nil {
			logger.Fatal("failed to initialize history schema", zap.Error(err))
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.Warn("history store did not close cleanly", zap.Error(err))
			}
		}()
		logger.Info("action history enabled", zap.String("path", cfg.History.Path))
	} else {
		logger.Info("action history disabled")
	}

	// 2. Web server
	srv := webserver.New(resolver, store)
	app := srv.App()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)

	go func() {
		logger.Info("invoicedash server starting",
			zap.String("listen", addr),
			zap.String("backend", resolver.BaseURL()),
			zap.Bool("backendUrlInjected", rt.HasURL()),
			zap.Bool("backendPortInjected", rt.HasPort()),
		)
		if err := app.Listen(addr); err != nil {
			logger.Error("server listen error", zap.Error(err))
		}
	}()

	// Wait for an interrupt signal to gracefully shut down
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Warn("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}
