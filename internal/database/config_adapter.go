package database

import (
	"github.com/belphemur/storefront/internal/config"
)

// ConfigAdapter adapts ConfigStore to the ConfigStoreInterface for runtime config
type ConfigAdapter struct {
	store *ConfigStore
}

// NewConfigAdapter creates a new config adapter
func NewConfigAdapter(store *ConfigStore) *ConfigAdapter {
	return &ConfigAdapter{store: store}
}

// GetSettings implements ConfigStoreInterface
func (a *ConfigAdapter) GetSettings() (searchAfterClose bool, timezone string, err error) {
	return a.store.GetSettings()
}

// LoadRuntimeConfig is a convenience function that loads runtime config using a ConfigStore
func LoadRuntimeConfig(fileConfig *config.Config, store *ConfigStore) (*config.RuntimeConfig, error) {
	adapter := NewConfigAdapter(store)
	loader := config.NewDatabaseConfigLoader(adapter)
	return config.LoadRuntimeConfig(fileConfig, loader)
}
