package main

import (
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"subprovider/internal/collectors"
	"subprovider/internal/db"
	"subprovider/internal/logger"
	"subprovider/internal/model"
)

var collectPrune bool

var collectCmd = &cobra.Command{
	Use:   "collect [subscription_names...]",
	Short: "Fetch subscriptions and store their links",
	Long:  `Run every subscription defined in config, or only the named ones. Links are stored under the subscription's group and deduplicated.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		cfg.FilterSubscriptions(args)
		if len(cfg.Subscriptions) == 0 {
			logger.Log.Warn("No subscriptions matched the provided names.")
			return nil
		}

		database, err := openDB(cfg)
		if err != nil {
			return err
		}
		defer db.Close(database)

		if collectPrune {
			pruned := make(map[string]bool)
			for _, sub := range cfg.Subscriptions {
				if pruned[sub.Group] {
					continue
				}
				pruned[sub.Group] = true
				n, err := db.DeleteGroup(database, sub.Group)
				if err != nil {
					return err
				}
				logger.Log.Infof("Pruned %d links from group %s", n, sub.Group)
			}
		}

		bar := progressbar.NewOptions(len(cfg.Subscriptions),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(15),
			progressbar.OptionSetDescription("[cyan]Collecting...[reset]"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetVisibility(!verbose),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
		)

		var total int64
		for _, sub := range cfg.Subscriptions {
			logger.Log.Debugf("Running subscription: %s (%s)", sub.Name, sub.Type)

			collector, err := collectors.Get(sub.Type)
			if err != nil {
				logger.Log.Warnf("Skipping %s: %v", sub.Name, err)
				_ = bar.Add(1)
				continue
			}

			raw, err := collector.Collect(cmd.Context(), collectors.Source{
				Name:    sub.Name,
				URL:     sub.URL,
				Proxy:   cfg.Fetch.Proxy,
				Timeout: cfg.Fetch.TimeoutDuration(),
				Retries: cfg.Fetch.Retries,
			})
			if err != nil {
				logger.Log.Errorf("Error collecting %s: %v", sub.Name, err)
				_ = bar.Add(1)
				continue
			}

			links := make([]model.Link, 0, len(raw))
			for _, l := range raw {
				links = append(links, model.NewLink(sub.Group, "", l, sub.Name))
			}

			n, err := db.SaveLinks(database, links)
			if err != nil {
				logger.Log.Errorf("Error storing links from %s: %v", sub.Name, err)
			}
			total += n
			logger.Log.Debugf("Subscription %s: %d links, %d new", sub.Name, len(raw), n)
			_ = bar.Add(1)
		}
		_ = bar.Finish()

		logger.Log.Infof("Collected %d new links from %d subscriptions.", total, len(cfg.Subscriptions))
		return nil
	},
}

func init() {
	collectCmd.Flags().BoolVar(&collectPrune, "prune", false, "Delete stored links of the affected groups before collecting")
	rootCmd.AddCommand(collectCmd)
}
