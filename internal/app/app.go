// Package app wires configuration, data loading, and controllers into
// the running dashboard service.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/cmelendez/airdash/internal/controllers/openweather"
	"github.com/cmelendez/airdash/internal/controllers/restserver"
	"github.com/cmelendez/airdash/internal/database"
	"github.com/cmelendez/airdash/internal/loader"
	"github.com/cmelendez/airdash/internal/log"
	"github.com/cmelendez/airdash/pkg/config"
)

// App represents the main application
type App struct {
	configProvider config.ConfigProvider
	logger         *zap.SugaredLogger
}

// New creates a new application instance
func New(configProvider config.ConfigProvider, logger *zap.SugaredLogger) *App {
	return &App{
		configProvider: configProvider,
		logger:         logger,
	}
}

// Run starts the application and blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg, err := a.configProvider.LoadConfig()
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}
	if len(cfg.Stations) == 0 {
		return fmt.Errorf("no stations configured - at least one station with a data file is required")
	}

	// Load all historical station data up front. The loader skips
	// malformed rows, so a station only fails hard when its file is
	// unreadable.
	series, err := loader.LoadAll(cfg.Stations)
	if err != nil {
		return fmt.Errorf("error loading station data: %w", err)
	}
	for name, s := range series {
		log.Infof("loaded %d readings for station %s (%v)", len(s.Readings), name, s.Pollutants)
	}

	// The Postgres response cache is optional. Without it the
	// worldwide endpoints still work, they just refetch on every
	// request.
	var dbClient *database.Client
	if cfg.Storage.Postgres != nil && cfg.Storage.Postgres.ConnectionString != "" {
		dbClient = database.NewClient(cfg.Storage.Postgres.ConnectionString, a.logger)
		if err := dbClient.Connect(); err != nil {
			return fmt.Errorf("error connecting to response cache: %w", err)
		}
		if err := dbClient.CreateTables(); err != nil {
			return fmt.Errorf("error migrating response cache: %w", err)
		}
	}

	ow := openweather.NewController(ctx, &wg, cfg.OpenWeather, dbClient, a.logger)
	if err := ow.StartController(); err != nil {
		return err
	}

	rest, err := restserver.NewController(ctx, &wg, a.configProvider, series, ow, a.logger)
	if err != nil {
		return err
	}
	if err := rest.StartController(); err != nil {
		return err
	}

	log.Info("Application started successfully")

	// Set up signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	// Wait for shutdown signal
	select {
	case <-sigs:
		log.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		log.Info("context cancelled, shutting down...")
	}

	// Cancel context to signal all goroutines to stop
	cancel()

	// Wait for all workers to terminate
	log.Info("waiting for all workers to terminate...")
	wg.Wait()
	log.Info("shutdown complete")

	return nil
}
