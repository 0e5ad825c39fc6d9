package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"subprovider/internal/logger"
	"subprovider/internal/publishers"
	"subprovider/internal/service"
)

var publishParams map[string]string

var publishCmd = &cobra.Command{
	Use:   "publish [publisher_names...]",
	Short: "Render provider documents and publish them",
	Long:  `Run all publishers or specific ones. Use --param to override publisher configuration.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		cfg.FilterPublishers(args)
		if len(cfg.Publishers) == 0 {
			logger.Log.Warn("No publishers matched.")
			return nil
		}

		opts, cleanup, err := builderOptions(cfg, true)
		if err != nil {
			return err
		}
		defer cleanup()

		for _, pubCfg := range cfg.Publishers {
			logger.Log.Infof("📨 Running Publisher: %s (%s)...", pubCfg.Name, pubCfg.Type)

			plugin, err := publishers.Get(pubCfg.Type)
			if err != nil {
				logger.Log.Warnf("Plugin not found: %v", err)
				continue
			}

			params := make(map[string]interface{}, len(pubCfg.Params)+len(publishParams)+3)
			for k, v := range pubCfg.Params {
				params[k] = v
			}
			for k, v := range publishParams {
				if intVal, err := strconv.Atoi(v); err == nil {
					params[k] = intVal
				} else if boolVal, err := strconv.ParseBool(v); err == nil {
					params[k] = boolVal
				} else {
					params[k] = v
				}
			}
			params[publishers.ParamTimeout] = cfg.Fetch.TimeoutDuration()
			params[publishers.ParamRetries] = cfg.Fetch.Retries
			if cfg.Fetch.Proxy != "" {
				params[publishers.ParamProxyURL] = cfg.Fetch.Proxy
			}

			name := pubCfg.Provider
			if name == "" {
				name = "clash"
			}
			doc, err := service.NewBuilder(cfg, opts...).Build(cmd.Context(), name, pubCfg.Groups)
			if err != nil {
				logger.Log.Errorf("Render failed: %v", err)
				continue
			}

			err = plugin.Publish(cmd.Context(), publishers.Document{
				Provider:    doc.Provider,
				ContentType: doc.ContentType,
				Body:        doc.Body,
			}, params)
			if err != nil {
				logger.Log.Errorf("Publish failed: %v", err)
			} else {
				logger.Log.Info("✅ Published successfully.")
			}
		}
		return nil
	},
}

func init() {
	publishCmd.Flags().StringToStringVarP(&publishParams, "param", "p", nil, "Override publisher params (e.g. -p path=clash.yaml)")
	rootCmd.AddCommand(publishCmd)
}
