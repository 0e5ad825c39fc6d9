package main

import (
	"os"

	"github.com/spf13/cobra"

	"subprovider/internal/logger"
	"subprovider/internal/metrics"
	"subprovider/internal/provider"
	"subprovider/internal/service"
)

var (
	renderGroups []string
	renderOutput string
	renderNoDB   bool
)

var renderCmd = &cobra.Command{
	Use:       "render [provider]",
	Short:     "Render one provider document to stdout or a file",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: provider.Names(),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := "clash"
		if len(args) > 0 {
			name = args[0]
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		opts, cleanup, err := builderOptions(cfg, !renderNoDB)
		if err != nil {
			return err
		}
		defer cleanup()

		stats := metrics.NewDecodeStats()
		opts = append(opts, service.WithStats(stats))

		doc, err := service.NewBuilder(cfg, opts...).Build(cmd.Context(), name, renderGroups)
		if err != nil {
			return err
		}

		snap := stats.Snapshot()
		logger.Log.Infof("Rendered %s: %d proxies, %d dropped", name, snap.Decoded, snap.Dropped)

		if renderOutput == "" || renderOutput == "-" {
			_, err = os.Stdout.Write(doc.Body)
			return err
		}
		return os.WriteFile(renderOutput, doc.Body, 0o644)
	},
}

func init() {
	renderCmd.Flags().StringSliceVarP(&renderGroups, "groups", "g", nil, "Only render these groups")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "Write to file instead of stdout")
	renderCmd.Flags().BoolVar(&renderNoDB, "no-db", false, "Render only the groups in the config file")
	rootCmd.AddCommand(renderCmd)
}
