package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"yeectl/internal/bridge"
	"yeectl/internal/device"
	"yeectl/internal/logger"
	"yeectl/internal/yeelight"
)

var (
	serveListen string
	serveDebug  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP bridge",
	Long: `Serve configured and discovered lights over HTTP.
Routes: GET /api/v1/health, GET /api/v1/lights, POST /api/v1/lights/{id}/action,
POST /api/v1/discover, GET /api/v1/discovered and GET /metrics.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// The bridge is a daemon, so it always logs
		logger.SetSilentMode(false)

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if serveDebug {
			logger.SetLevel("debug")
		}
		log := logger.Component("serve")

		listen := cfg.Bridge.Listen
		if cmd.Flags().Changed("listen") {
			listen = serveListen
		}

		clientOpts := []yeelight.Option{
			yeelight.WithTimeout(cfg.Defaults.Timeout),
			yeelight.WithLogger(logger.Component("light")),
		}
		lights := make([]device.Device, 0, len(cfg.Lights))
		for _, lc := range cfg.Lights {
			client := yeelight.NewClientForEndpoint(lc.Endpoint(), clientOpts...)
			lights = append(lights, yeelight.NewLight(lc.ID, client,
				yeelight.WithName(lc.Name),
				yeelight.WithTransition(yeelight.Effect(cfg.Defaults.Effect), cfg.Defaults.Duration)))
		}

		registry, err := bridge.NewRegistry(cfg.Bridge.CacheSize)
		if err != nil {
			return err
		}

		server := bridge.NewServer(lights, registry,
			bridge.WithClientOptions(clientOpts...),
			bridge.WithDiscoverOptions(
				yeelight.WithWindow(cfg.Defaults.DiscoveryWindow),
				yeelight.WithDiscoveryLogger(logger.Component("discovery")),
			))

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Start(listen)
		}()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		select {
		case err := <-errCh:
			return err
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received shutdown signal")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Stop(ctx); err != nil {
			return fmt.Errorf("failed to stop bridge: %w", err)
		}
		log.Info().Msg("Bridge stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serveListen, "listen", "L", "127.0.0.1:8080", "Address to listen on (default from configuration)")
	serveCmd.Flags().BoolVarP(&serveDebug, "debug", "d", false, "Enable debug logging")
}
