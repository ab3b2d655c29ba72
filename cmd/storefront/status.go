package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/belphemur/storefront/internal/database"
)

func newStatusCmd(configPath *string) *cobra.Command {
	var alias string
	var at string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print the current availability of a shop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			if at != "" {
				parsed, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("invalid --at value %q: %w", at, err)
				}
				now = parsed
			}

			ctx := cmd.Context()
			a, err := bootstrap(ctx, *configPath)
			if err != nil {
				return err
			}
			defer a.db.Close()

			if alias == "" {
				alias = a.cfg.Shop.Alias
			}
			shop, err := a.shops.GetShopByAlias(ctx, alias)
			if errors.Is(err, database.ErrShopNotFound) {
				return fmt.Errorf("no shop with alias %q", alias)
			}
			if err != nil {
				return err
			}

			schedule, err := a.shops.GetBusinessHours(ctx, shop.ID)
			if err != nil {
				return err
			}

			status := a.runtimeCfg.Resolver().Resolve(schedule, a.runtimeCfg.Now(now))
			cmd.Printf("%s: %s\n", shop.Name, status.Text())
			return nil
		},
	}

	cmd.Flags().StringVar(&alias, "shop", "", "alias of the shop (defaults to the configured shop)")
	cmd.Flags().StringVar(&at, "at", "", "RFC 3339 instant to resolve instead of now")
	return cmd
}
