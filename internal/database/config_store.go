package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/belphemur/storefront/internal/logging"
)

// ConfigSettings represents the dashboard-editable settings row
type ConfigSettings struct {
	ID               int64
	SearchAfterClose bool
	Timezone         string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ConfigStore handles configuration storage in SQLite
type ConfigStore struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewConfigStore creates a new config store
func NewConfigStore(db *DB) (*ConfigStore, error) {
	logger := logging.GetLogger("config-store")
	return &ConfigStore{db: db.Conn(), logger: logger}, nil
}

// GetSettings retrieves the resolver settings
func (s *ConfigStore) GetSettings() (searchAfterClose bool, timezone string, err error) {
	s.logger.Debug().Msg("Retrieving settings")
	err = s.db.QueryRow(`
		SELECT search_after_close, timezone
		FROM config_settings
		WHERE id = 1
	`).Scan(&searchAfterClose, &timezone)

	if errors.Is(err, sql.ErrNoRows) {
		s.logger.Debug().Msg("No settings found in database")
		return false, "", fmt.Errorf("no settings found")
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to retrieve settings")
		return false, "", fmt.Errorf("failed to retrieve settings: %w", err)
	}

	s.logger.Debug().Bool("search_after_close", searchAfterClose).Str("timezone", timezone).Msg("Settings retrieved")
	return searchAfterClose, timezone, nil
}

// GetSettingsFull retrieves the settings row with metadata, or nil when none exists
func (s *ConfigStore) GetSettingsFull() (*ConfigSettings, error) {
	s.logger.Debug().Msg("Retrieving full settings")
	var settings ConfigSettings
	err := s.db.QueryRow(`
		SELECT id, search_after_close, timezone, created_at, updated_at
		FROM config_settings
		WHERE id = 1
	`).Scan(&settings.ID, &settings.SearchAfterClose, &settings.Timezone, &settings.CreatedAt, &settings.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		s.logger.Debug().Msg("No settings found in database")
		return nil, nil
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to retrieve settings")
		return nil, fmt.Errorf("failed to retrieve settings: %w", err)
	}

	return &settings, nil
}

// SaveSettings saves or updates the resolver settings
func (s *ConfigStore) SaveSettings(searchAfterClose bool, timezone string) error {
	if timezone == "" {
		return fmt.Errorf("timezone cannot be empty")
	}
	if timezone != "Local" {
		if _, err := time.LoadLocation(timezone); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", timezone, err)
		}
	}

	s.logger.Debug().Bool("search_after_close", searchAfterClose).Str("timezone", timezone).Msg("Saving settings")
	_, err := s.db.Exec(`
		INSERT INTO config_settings (id, search_after_close, timezone, updated_at)
		VALUES (1, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			search_after_close = excluded.search_after_close,
			timezone = excluded.timezone,
			updated_at = CURRENT_TIMESTAMP
	`, searchAfterClose, timezone)

	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to save settings")
		return fmt.Errorf("failed to save settings: %w", err)
	}

	s.logger.Info().Msg("Settings saved successfully")
	return nil
}

// HasConfiguration checks if any configuration exists in the database
func (s *ConfigStore) HasConfiguration() (bool, error) {
	s.logger.Debug().Msg("Checking if configuration exists")
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM config_settings WHERE id = 1`).Scan(&count)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to check configuration existence")
		return false, fmt.Errorf("failed to check configuration: %w", err)
	}

	exists := count > 0
	s.logger.Debug().Bool("exists", exists).Msg("Configuration existence checked")
	return exists, nil
}
