package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/belphemur/storefront/internal/constants"
)

// defaultConfigPath prefers CONFIG_FILE over the bundled path
func defaultConfigPath() string {
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		return path
	}
	return constants.DefaultConfigPath
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Publishes storefront business hours and live open/closed status",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "path to the TOML configuration file")

	root.AddCommand(newServeCmd(&configPath))
	root.AddCommand(newStatusCmd(&configPath))
	root.AddCommand(newVersionCmd())

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("%s %s (commit=%s, built=%s)\n", constants.AppName, version, commit, date)
		},
	}
}
