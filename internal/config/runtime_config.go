package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/belphemur/storefront/internal/hours"
)

// RuntimeConfig holds configuration loaded from database at runtime
// This allows dashboard-configurable settings to be updated without restarting the app
type RuntimeConfig struct {
	mu       sync.RWMutex
	config   *Config
	location *time.Location
}

// ConfigLoader interface for loading configuration from database
type ConfigLoader interface {
	GetSettings() (searchAfterClose bool, timezone string, err error)
}

// NewRuntimeConfig wraps a configuration whose timezone is already validated
func NewRuntimeConfig(cfg *Config) (*RuntimeConfig, error) {
	loc, err := cfg.Service.Location()
	if err != nil {
		return nil, err
	}
	return &RuntimeConfig{config: cfg, location: loc}, nil
}

// LoadRuntimeConfig loads runtime configuration from database
// This merges file-based config (app and service settings) with database config (dashboard settings)
func LoadRuntimeConfig(fileConfig *Config, loader ConfigLoader) (*RuntimeConfig, error) {
	mergedConfig := &Config{
		App:     fileConfig.App,
		Service: fileConfig.Service,
		Hours:   fileConfig.Hours,
		Shop:    fileConfig.Shop,
	}

	searchAfterClose, timezone, err := loader.GetSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	mergedConfig.Hours.SearchAfterClose = searchAfterClose
	if timezone != "" {
		mergedConfig.Service.Timezone = timezone
	}

	return NewRuntimeConfig(mergedConfig)
}

// Config returns a copy of the merged configuration
func (r *RuntimeConfig) Config() Config {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return *r.config
}

// Location returns the timezone storefront schedules are read in
func (r *RuntimeConfig) Location() *time.Location {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.location
}

// SearchAfterClose reports the current resolver policy
func (r *RuntimeConfig) SearchAfterClose() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.config.Hours.SearchAfterClose
}

// Resolver builds a resolver for the current policy
func (r *RuntimeConfig) Resolver() *hours.Resolver {
	return hours.NewResolver(hours.WithSearchAfterClose(r.SearchAfterClose()))
}

// Now returns t converted into the storefront timezone
func (r *RuntimeConfig) Now(t time.Time) time.Time {
	return t.In(r.Location())
}

// Update applies dashboard settings in place
func (r *RuntimeConfig) Update(searchAfterClose bool, timezone string) error {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	updated := *r.config
	updated.Hours.SearchAfterClose = searchAfterClose
	updated.Service.Timezone = timezone
	r.config = &updated
	r.location = loc
	return nil
}

// DatabaseConfigLoader adapts ConfigStore to ConfigLoader interface
type DatabaseConfigLoader struct {
	store ConfigStoreInterface
}

// ConfigStoreInterface defines the interface for configuration storage
type ConfigStoreInterface interface {
	GetSettings() (searchAfterClose bool, timezone string, err error)
}

// NewDatabaseConfigLoader creates a new database config loader
func NewDatabaseConfigLoader(store ConfigStoreInterface) *DatabaseConfigLoader {
	return &DatabaseConfigLoader{store: store}
}

// GetSettings loads dashboard settings
func (l *DatabaseConfigLoader) GetSettings() (searchAfterClose bool, timezone string, err error) {
	return l.store.GetSettings()
}
