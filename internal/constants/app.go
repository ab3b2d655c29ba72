// Package constants provides shared constants for the storefront application
package constants

const (
	// AppName is used in logs and the CLI banner
	AppName = "Storefront"

	// EnvPrefix prefixes every environment variable override of the file configuration
	EnvPrefix = "STOREFRONT_"

	// DefaultConfigPath is used when neither --config nor CONFIG_FILE is given
	DefaultConfigPath = "configs/storefront.toml"
)
