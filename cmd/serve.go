package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/khanhnv2901/insec/internal/api"
	"github.com/khanhnv2901/insec/internal/application"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scanner as a JSON HTTP API",
	Long: `Serve exposes POST /api/v1/scan, GET /api/v1/health and
DELETE /api/v1/cache/{host}. The PORT environment variable, when set,
overrides the listen address.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := zapLogger()
		serveCfg := cliConfig.Serve

		container, err := application.NewContainer(cliConfig.Scan.containerConfig(), logger)
		if err != nil {
			return err
		}

		server := api.NewServer(api.Config{
			Scanner:     container.ScanService,
			Cache:       container.ReportCache,
			Logger:      logger,
			CORSOrigins: serveCfg.CORSOrigins,
			RateLimit:   serveCfg.RateLimit,
			RateBurst:   serveCfg.RateBurst,
			TrustProxy:  serveCfg.TrustProxy,
			ScanTimeout: serveCfg.ScanTimeout,
		})
		defer server.Close()

		httpServer := &http.Server{
			Addr:              serveCfg.Addr,
			Handler:           server,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      serveCfg.ScanTimeout + 15*time.Second,
			IdleTimeout:       120 * time.Second,
		}

		// Channel to listen for errors from the server
		serverErrors := make(chan error, 1)

		go func() {
			logger.Info("api server listening",
				zap.String("addr", serveCfg.Addr),
				zap.Bool("reputation_enabled", container.SafeBrowsing.Configured()),
				zap.Duration("cache_ttl", cliConfig.Scan.CacheTTL),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "%s insec API listening on %s\n", colorInfo("→"), serveCfg.Addr)
			fmt.Fprintf(cmd.OutOrStdout(), "%s Press Ctrl+C to gracefully shutdown\n", colorInfo("→"))
			serverErrors <- httpServer.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(shutdown)

		select {
		case err := <-serverErrors:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
		case sig := <-shutdown:
			fmt.Fprintf(cmd.OutOrStdout(), "\n%s Received signal %v, initiating graceful shutdown...\n", colorInfo("→"), sig)

			ctx, cancel := context.WithTimeout(context.Background(), serveCfg.ShutdownTimeout)
			defer cancel()

			if err := httpServer.Shutdown(ctx); err != nil {
				// Force close if graceful shutdown fails
				if closeErr := httpServer.Close(); closeErr != nil {
					return fmt.Errorf("failed to gracefully shutdown server: %w (close error: %v)", err, closeErr)
				}
				return fmt.Errorf("failed to gracefully shutdown server: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Server shutdown complete\n", colorSuccess("✓"))
		}

		return nil
	},
}

func init() {
	flags := serveCmd.Flags()
	flags.StringVar(&cliConfig.Serve.Addr, "addr", cliConfig.Serve.Addr, "Address for the API server")
	flags.StringSliceVar(&cliConfig.Serve.CORSOrigins, "cors-origins", cliConfig.Serve.CORSOrigins, "Allowed CORS origins (empty = allow all)")
	flags.IntVar(&cliConfig.Serve.RateLimit, "rate-limit", cliConfig.Serve.RateLimit, "Rate limit per IP (requests/second, 0 = disabled)")
	flags.IntVar(&cliConfig.Serve.RateBurst, "rate-burst", cliConfig.Serve.RateBurst, "Rate limit burst size")
	flags.BoolVar(&cliConfig.Serve.TrustProxy, "trust-proxy", cliConfig.Serve.TrustProxy, "Rate limit by X-Forwarded-For (only behind a trusted reverse proxy)")
	flags.DurationVar(&cliConfig.Serve.ShutdownTimeout, "shutdown-timeout", cliConfig.Serve.ShutdownTimeout, "Graceful shutdown timeout")
	flags.DurationVar(&cliConfig.Serve.ScanTimeout, "scan-timeout", cliConfig.Serve.ScanTimeout, "Upper bound for one scan request (0 = none)")
	flags.DurationVar(&cliConfig.Scan.CacheTTL, "cache-ttl", cliConfig.Scan.CacheTTL, "Reuse reports for this long (0 = disabled)")
}
