package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/belphemur/storefront/internal/config"
	"github.com/belphemur/storefront/internal/database"
	"github.com/belphemur/storefront/internal/logging"
)

// app holds the components shared by every command
type app struct {
	cfg         *config.Config
	db          *database.DB
	shops       *database.ShopStore
	configStore *database.ConfigStore
	runtimeCfg  *config.RuntimeConfig
}

// bootstrap loads the configuration, prepares the database and merges the runtime settings.
// The caller owns the returned database and must close it.
func bootstrap(ctx context.Context, configPath string) (*app, error) {
	logger := logging.GetLogger("main")

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		// Log error before returning, as the command error won't have config context
		logger.Error().Err(err).Str("config_path", configPath).Msg("Failed to load configuration")
		return nil, err
	}

	// Set log level from configuration
	logging.SetLogLevel(cfg.Service.LogLevel)
	logger.Debug().Str("log_level", cfg.Service.LogLevel).Msg("Log level set")

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(cfg.Service.StateFile), 0755); err != nil {
		logger.Error().Err(err).Str("path", filepath.Dir(cfg.Service.StateFile)).Msg("Failed to create data directory")
		return nil, err
	}

	db, err := database.New(database.NewDefaultOptions(cfg.Service.StateFile))
	if err != nil {
		wrappedErr := fmt.Errorf("failed to initialize database: %w", err)
		logger.Error().Err(wrappedErr).Str("db_path", cfg.Service.StateFile).Msg("Database initialization failed")
		return nil, wrappedErr
	}

	a, err := prepare(ctx, cfg, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

func prepare(ctx context.Context, cfg *config.Config, db *database.DB) (*app, error) {
	logger := logging.GetLogger("main")

	// Initialize database schema
	if err := db.MigrateDatabase(); err != nil {
		wrappedErr := fmt.Errorf("failed to initialize database schema: %w", err)
		logger.Error().Err(wrappedErr).Msg("Database schema initialization failed")
		return nil, wrappedErr
	}

	configStore, err := database.NewConfigStore(db)
	if err != nil {
		wrappedErr := fmt.Errorf("failed to initialize config store: %w", err)
		logger.Error().Err(wrappedErr).Msg("Config store initialization failed")
		return nil, wrappedErr
	}

	shopStore, err := database.NewShopStore(db)
	if err != nil {
		wrappedErr := fmt.Errorf("failed to initialize shop store: %w", err)
		logger.Error().Err(wrappedErr).Msg("Shop store initialization failed")
		return nil, wrappedErr
	}

	// Seed configuration from TOML file to database (runs only once on initial setup)
	configSeeder := database.NewConfigSeeder(configStore, shopStore)
	if err := configSeeder.SeedFromConfig(ctx, cfg); err != nil {
		wrappedErr := fmt.Errorf("failed to seed configuration: %w", err)
		logger.Error().Err(wrappedErr).Msg("Configuration seeding failed")
		return nil, wrappedErr
	}

	// Load runtime configuration from database (merges file config with DB config)
	runtimeCfg, err := database.LoadRuntimeConfig(cfg, configStore)
	if err != nil {
		wrappedErr := fmt.Errorf("failed to load runtime configuration: %w", err)
		logger.Error().Err(wrappedErr).Msg("Runtime configuration loading failed")
		return nil, wrappedErr
	}
	logger.Info().
		Bool("search_after_close", runtimeCfg.SearchAfterClose()).
		Str("timezone", runtimeCfg.Location().String()).
		Msg("Runtime configuration loaded from database")

	return &app{
		cfg:         cfg,
		db:          db,
		shops:       shopStore,
		configStore: configStore,
		runtimeCfg:  runtimeCfg,
	}, nil
}
