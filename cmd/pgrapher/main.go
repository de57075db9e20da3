// Package main wires together the pgrapher service binary.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/pgrapher/internal/api"
	"github.com/JakeFAU/pgrapher/internal/config"
	"github.com/JakeFAU/pgrapher/internal/logging"
	"github.com/JakeFAU/pgrapher/internal/storage/memory"
	"github.com/JakeFAU/pgrapher/internal/storage/postgres"
	"github.com/JakeFAU/pgrapher/internal/store"
)

// resultStore is a session source that can also prepare and tear down its backing storage.
type resultStore interface {
	store.Sessions
	EnsureSchema(ctx context.Context) error
	Close()
}

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	results, err := openStore(ctx, cfg.DB)
	if err != nil {
		logger.Fatal("open result store failed", zap.Error(err))
	}
	defer results.Close()

	// Traffic is only served once the tests table exists; there is no retry.
	if err := results.EnsureSchema(ctx); err != nil {
		results.Close()
		logger.Fatal("schema initialization failed", zap.Error(err))
	}
	logger.Info("schema ready", zap.String("driver", cfg.DB.Driver))

	apiServer := api.NewServer(results, cfg, logger.Named("api"))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server started", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

func openStore(ctx context.Context, db config.DBConfig) (resultStore, error) {
	switch db.Driver {
	case config.DriverMemory:
		return memory.NewResultStore(), nil
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, postgres.PoolConfig{
			DSN:             db.ConnString(),
			MaxConns:        db.MaxConns,
			MinConns:        db.MinConns,
			MaxConnLifetime: db.MaxConnLifetime,
		})
		if err != nil {
			return nil, fmt.Errorf("open postgres pool: %w", err)
		}
		return pool, nil
	default:
		return nil, fmt.Errorf("unknown db driver %q", db.Driver)
	}
}
