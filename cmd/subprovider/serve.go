package main

import (
	"context"
	"net"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"subprovider/internal/api"
	"subprovider/internal/config"
	"subprovider/internal/logger"
	"subprovider/internal/metrics"
)

var serveNoDB bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve provider documents over HTTP",
	Long:  `Serves /clash, /clash-meta and /xray under the configured path prefix. The config file is re-read on every request.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		opts, cleanup, err := builderOptions(cfg, !serveNoDB)
		if err != nil {
			return err
		}
		defer cleanup()

		path := config.Path(cfgFile)
		server := api.NewServer(cfg.Server.PathPrefix, func() (*config.Config, error) {
			return config.Load(path)
		}, metrics.NewDecodeStats(), opts...)

		l, err := net.Listen("tcp", cfg.Server.Addr())
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		go func() {
			<-ctx.Done()
			logger.Log.Info("Shutting down...")
			if err := server.Close(); err != nil {
				logger.Log.Errorf("Shutdown failed: %v", err)
			}
		}()

		return server.Serve(l)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveNoDB, "no-db", false, "Serve only the groups in the config file")
	rootCmd.AddCommand(serveCmd)
}
