package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/belphemur/storefront/internal/constants"
	"github.com/belphemur/storefront/internal/hours"
)

// Config holds the application configuration
type Config struct {
	App     AppConfig     `koanf:"app"`
	Service ServiceConfig `koanf:"service"`
	Hours   HoursConfig   `koanf:"hours"`
	Shop    ShopConfig    `koanf:"shop"`
}

// AppConfig holds the HTTP surface configuration
type AppConfig struct {
	Port       int    `koanf:"port"`
	PublicURL  string `koanf:"public_url"`
	AdminToken string `koanf:"admin_token"`
}

// ServiceConfig holds the service configuration
type ServiceConfig struct {
	StateFile string `koanf:"state_file"`
	LogLevel  string `koanf:"log_level"`
	Timezone  string `koanf:"timezone"`
}

// HoursConfig holds availability resolution settings
type HoursConfig struct {
	// SearchAfterClose looks for the next open day once today's closing time has passed
	SearchAfterClose bool          `koanf:"search_after_close"`
	RefreshInterval  time.Duration `koanf:"refresh_interval"`
}

// ShopConfig describes the storefront seeded into an empty database
type ShopConfig struct {
	ID       string           `koanf:"id"`
	Name     string           `koanf:"name"`
	Alias    string           `koanf:"alias"`
	WhatsApp string           `koanf:"whatsapp"`
	Hours    []DayHoursConfig `koanf:"hours"`
}

// DayHoursConfig is one [[shop.hours]] table
type DayHoursConfig struct {
	Day       string `koanf:"day"`
	IsOpen    bool   `koanf:"is_open"`
	OpenTime  string `koanf:"open_time"`
	CloseTime string `koanf:"close_time"`
}

// Schedule returns the configured seed hours, or the default schedule when none are set
func (s ShopConfig) Schedule() hours.WeeklySchedule {
	if len(s.Hours) == 0 {
		return hours.DefaultSchedule()
	}
	schedule := make(hours.WeeklySchedule, 0, len(s.Hours))
	for _, d := range s.Hours {
		schedule = append(schedule, hours.DaySchedule{
			Day:       d.Day,
			IsOpen:    d.IsOpen,
			OpenTime:  d.OpenTime,
			CloseTime: d.CloseTime,
		})
	}
	return schedule
}

// Location loads the configured timezone; "Local" and empty mean the host zone
func (s ServiceConfig) Location() (*time.Location, error) {
	return LoadLocation(s.Timezone)
}

// LoadLocation resolves an IANA timezone name
func LoadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", name, err)
	}
	return loc, nil
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"app.port":                 8080,
		"app.public_url":           "http://localhost:8080",
		"service.state_file":       "data/storefront.db",
		"service.log_level":        "info",
		"service.timezone":         "Local",
		"hours.search_after_close": false,
		"hours.refresh_interval":   "1m",
	}
}

// envKey maps STOREFRONT_SERVICE__LOG_LEVEL to service.log_level
func envKey(key string) string {
	key = strings.TrimPrefix(key, constants.EnvPrefix)
	return strings.ReplaceAll(strings.ToLower(key), "__", ".")
}

// Load reads defaults, the TOML configuration file and STOREFRONT_ environment overrides
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load default configuration: %w", err)
	}

	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
	}

	envProvider := env.Provider(".", env.Opt{
		Prefix: constants.EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			return envKey(key), value
		},
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment overrides: %w", err)
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			WeaklyTypedInput: true,
			Result:           &cfg,
			TagName:          "koanf",
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	// Ensure the state file path is absolute
	if cfg.Service.StateFile != ":memory:" && !filepath.IsAbs(cfg.Service.StateFile) {
		configDir := filepath.Dir(path)
		absConfigDir, err := filepath.Abs(configDir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve config directory: %w", err)
		}
		cfg.Service.StateFile = filepath.Join(absConfigDir, "..", cfg.Service.StateFile)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.App.Port < 1 || cfg.App.Port > 65535 {
		return fmt.Errorf("invalid port: %d", cfg.App.Port)
	}

	if _, err := cfg.Service.Location(); err != nil {
		return err
	}

	if cfg.Hours.RefreshInterval <= 0 {
		return fmt.Errorf("hours refresh interval must be positive")
	}

	if cfg.Shop.Alias != "" && !constants.IsValidAlias(cfg.Shop.Alias) {
		return fmt.Errorf("invalid shop alias: %s", cfg.Shop.Alias)
	}

	if cfg.Shop.WhatsApp != "" && !constants.IsValidWhatsApp(cfg.Shop.WhatsApp) {
		return fmt.Errorf("invalid shop whatsapp number: %s", cfg.Shop.WhatsApp)
	}

	if err := hours.Validate(cfg.Shop.Schedule()); err != nil {
		return fmt.Errorf("invalid shop hours: %w", err)
	}

	return nil
}
