package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/belphemur/storefront/internal/constants"
	"github.com/belphemur/storefront/internal/handlers"
	"github.com/belphemur/storefront/internal/logging"
	"github.com/belphemur/storefront/internal/monitor"
	appSignals "github.com/belphemur/storefront/internal/signals"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the storefront web server and status monitor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger("main")
			logger.Info().
				Str("version", version).
				Str("commit", commit).
				Str("build_date", date).
				Msgf("Starting %s", constants.AppName)

			// Create context that's canceled on SIGINT/SIGTERM
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			return serve(ctx, *configPath)
		},
	}
}

func serve(ctx context.Context, configPath string) error {
	logger := logging.GetLogger("main")

	a, err := bootstrap(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.db.Close()

	statusMonitor := monitor.New(a.shops, a.runtimeCfg, a.cfg.Hours.RefreshInterval)

	// Initialize static file handler
	staticHandler, err := handlers.NewStaticHandler()
	if err != nil {
		wrappedErr := fmt.Errorf("failed to initialize static handler: %w", err)
		logger.Error().Err(wrappedErr).Msg("Static handler initialization failed")
		return wrappedErr
	}

	// Initialize base handler first, as other handlers depend on it
	baseHandler, err := handlers.NewBaseHandler(a.runtimeCfg, a.shops, staticHandler.CSSETag())
	if err != nil {
		wrappedErr := fmt.Errorf("failed to initialize base handler: %w", err)
		logger.Error().Err(wrappedErr).Msg("Base handler initialization failed")
		return wrappedErr
	}

	// Register routes
	mux := http.NewServeMux()
	staticHandler.RegisterRoutes(mux)
	handlers.NewShopHandler(baseHandler, statusMonitor).RegisterRoutes(mux)
	handlers.NewHoursHandler(baseHandler).RegisterRoutes(mux)
	handlers.NewSettingsHandler(baseHandler, a.configStore).RegisterRoutes(mux)
	handlers.NewStorefrontHandler(baseHandler).RegisterRoutes(mux)
	handlers.NewHealthHandler(baseHandler, a.db.Conn(), statusMonitor).RegisterRoutes(mux)

	// The monitor must stop before the deferred db.Close runs
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	registerSignalHandlers(ctx, statusMonitor)

	// Start the status monitor
	monitorDone := make(chan struct{})
	go func() {
		defer close(monitorDone)
		if err := statusMonitor.Run(ctx); err != nil {
			logger.Error().Err(err).Msg("Status monitor stopped with error")
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.App.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Int("port", a.cfg.App.Port).Str("public_url", a.cfg.App.PublicURL).Msg("Starting web server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	return awaitShutdown(ctx, cancel, srv, serverErr, monitorDone)
}

// awaitShutdown blocks until ctx is done or the server fails, then stops the
// server and waits for the monitor goroutine to exit on both paths.
func awaitShutdown(ctx context.Context, cancel context.CancelFunc, srv *http.Server, serverErr <-chan error, monitorDone <-chan struct{}) error {
	logger := logging.GetLogger("main")

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info().Msg("Context cancelled, initiating shutdown sequence")
	case err := <-serverErr:
		logger.Error().Err(err).Msg("HTTP server error")
		runErr = fmt.Errorf("http server failed: %w", err)
	}

	// Shutdown HTTP server
	logger.Info().Msg("Shutting down HTTP server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	} else {
		logger.Info().Msg("HTTP server shut down gracefully")
	}

	cancel()
	<-monitorDone
	if runErr != nil {
		return runErr
	}
	logger.Info().Msg("Shutdown complete")
	return nil
}

// registerSignalHandlers keeps the monitor cache in step with dashboard writes
func registerSignalHandlers(ctx context.Context, statusMonitor *monitor.Monitor) {
	appSignals.OnHoursUpdated(func(_ context.Context, data appSignals.HoursUpdatedData) {
		signalLogger := logging.GetLogger("signal-hours-updated")
		signalLogger.Debug().Str("shop_id", data.ShopID).Msg("Hours changed - refreshing shop status")
		// The request context may already be done, so refresh under the server context
		if err := statusMonitor.CheckShop(ctx, data.ShopID); err != nil {
			signalLogger.Debug().Err(err).Str("shop_id", data.ShopID).Msg("Shop status not refreshed")
		}
	}, "main-hours-updated-handler")

	appSignals.OnSettingsUpdated(func(_ context.Context, data appSignals.SettingsUpdatedData) {
		signalLogger := logging.GetLogger("signal-settings-updated")
		signalLogger.Info().
			Bool("search_after_close", data.SearchAfterClose).
			Str("timezone", data.Timezone).
			Msg("Settings changed - re-checking all shops")
		if err := statusMonitor.Check(ctx); err != nil {
			signalLogger.Error().Err(err).Msg("Status check after settings change failed")
		}
	}, "main-settings-updated-handler")

	appSignals.OnStatusChanged(func(_ context.Context, data appSignals.StatusChangedData) {
		signalLogger := logging.GetLogger("signal-status-changed")
		signalLogger.Info().
			Str("shop_id", data.ShopID).
			Str("previous", data.Previous.Text()).
			Str("current", data.Current.Text()).
			Msg("Shop availability changed")
	}, "main-status-changed-handler")
}
