// cmd/macro-log/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"macro-log/internal/config"
	"macro-log/internal/engine"
	"macro-log/internal/estimation"
	"macro-log/internal/logger"
	"macro-log/internal/server"
	"macro-log/internal/storage"
)

var (
	port    = flag.Int("port", 0, "Port for SSE transport (overrides MACROLOG_PORT)")
	host    = flag.String("host", "", "Host address (overrides MACROLOG_HOST)")
	dbPath  = flag.String("db-path", "", "Database path (overrides MACROLOG_DB_PATH)")
	version = flag.Bool("version", false, "Show version")
)

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("macro-log version %s\n", server.Version)
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "macro-log: %v\n", err)
		os.Exit(1)
	}
}

// run returns instead of exiting so deferred closes always happen.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *host != "" {
		cfg.Host = *host
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log, err := logger.New(cfg.Environment)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer log.Sync()

	stor, err := storage.NewSQLiteStorage(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize storage at %s: %w", cfg.DBPath, err)
	}
	defer stor.Close()

	gateway := estimation.NewGatewayClient(estimation.Config{
		URL:     cfg.GatewayURL,
		APIKey:  cfg.GatewayAPIKey,
		Model:   cfg.Model,
		Timeout: cfg.GatewayTimeout,
	}, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := engine.Open(ctx, engine.Options{
		Persister: stor,
		Estimator: gateway,
		Logger:    log,
	})
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	srv, err := server.NewMacroLogServer(&server.Config{Host: cfg.Host, Port: cfg.Port}, store, log)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	var serveErr error
	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig.String())
	case serveErr = <-errCh:
		if serveErr != nil {
			log.Error("server error", "error", serveErr)
		}
	}

	log.Info("shutting down")
	cancel()
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Stop(shutdownCtx); err != nil {
		return errors.Join(serveErr, fmt.Errorf("error during shutdown: %w", err))
	}
	return serveErr
}
