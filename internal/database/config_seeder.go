package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/belphemur/storefront/internal/config"
	"github.com/belphemur/storefront/internal/logging"
)

// ConfigSeeder handles seeding configuration from TOML to database
type ConfigSeeder struct {
	store  *ConfigStore
	shops  *ShopStore
	logger zerolog.Logger
}

// NewConfigSeeder creates a new config seeder
func NewConfigSeeder(store *ConfigStore, shops *ShopStore) *ConfigSeeder {
	return &ConfigSeeder{
		store:  store,
		shops:  shops,
		logger: logging.GetLogger("config-seeder"),
	}
}

// SeedFromConfig seeds the database with configuration from the TOML file.
// It runs on every startup and does nothing once settings exist in the database,
// so dashboard edits are never overwritten by the file.
func (s *ConfigSeeder) SeedFromConfig(ctx context.Context, cfg *config.Config) error {
	s.logger.Info().Msg("Checking if configuration needs seeding")

	hasConfig, err := s.store.HasConfiguration()
	if err != nil {
		return fmt.Errorf("failed to check existing configuration: %w", err)
	}

	if hasConfig {
		s.logger.Info().Msg("Configuration already exists in database, skipping seeding")
		return nil
	}

	s.logger.Info().Msg("No configuration found in database, seeding from TOML config file")

	if err := s.seedShop(ctx, cfg); err != nil {
		return fmt.Errorf("failed to seed shop: %w", err)
	}

	// Settings go last: their presence marks the seeding as done
	if err := s.seedSettings(cfg); err != nil {
		return fmt.Errorf("failed to seed settings: %w", err)
	}

	s.logger.Info().Msg("Configuration seeding from TOML completed successfully")
	return nil
}

// seedSettings seeds resolver settings from config
func (s *ConfigSeeder) seedSettings(cfg *config.Config) error {
	s.logger.Debug().
		Bool("search_after_close", cfg.Hours.SearchAfterClose).
		Str("timezone", cfg.Service.Timezone).
		Msg("Seeding settings")

	timezone := cfg.Service.Timezone
	if timezone == "" {
		timezone = "Local"
	}
	if err := s.store.SaveSettings(cfg.Hours.SearchAfterClose, timezone); err != nil {
		return err
	}

	s.logger.Info().Msg("Settings seeded successfully")
	return nil
}

// seedShop creates the configured storefront and its hours, if one is configured
func (s *ConfigSeeder) seedShop(ctx context.Context, cfg *config.Config) error {
	if cfg.Shop.Name == "" {
		s.logger.Debug().Msg("No shop configured, skipping shop seeding")
		return nil
	}

	shop := &Shop{
		ID:       cfg.Shop.ID,
		Name:     cfg.Shop.Name,
		Alias:    cfg.Shop.Alias,
		WhatsApp: cfg.Shop.WhatsApp,
	}
	if err := s.shops.CreateShop(ctx, shop); err != nil {
		if errors.Is(err, ErrAliasTaken) {
			s.logger.Warn().Str("alias", shop.Alias).Msg("Shop alias already exists, keeping the stored shop")
			return nil
		}
		return err
	}

	schedule := cfg.Shop.Schedule()
	if err := s.shops.SaveBusinessHours(ctx, shop.ID, schedule); err != nil {
		return err
	}

	s.logger.Info().
		Str("shop_id", shop.ID).
		Str("alias", shop.Alias).
		Int("entries", len(schedule)).
		Msg("Shop seeded successfully")
	return nil
}
