package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"subprovider/internal/config"
	"subprovider/internal/db"
	"subprovider/internal/metrics"
	"subprovider/internal/service"
)

// decodeReport decodes static and stored links the way a served document
// does, so DIRECT and REJECT entries are not counted as failures.
func decodeReport(ctx context.Context, cfg *config.Config, database *gorm.DB) (*metrics.DecodeStats, error) {
	stats := metrics.NewDecodeStats()
	b := service.NewBuilder(cfg, service.WithDB(database), service.WithStats(stats))
	if _, err := b.Groups(ctx, nil); err != nil {
		return nil, err
	}
	return stats, nil
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show stored links and how well they decode",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		database, err := openDB(cfg)
		if err != nil {
			return err
		}
		defer db.Close(database)

		groupStats, err := db.CountByGroup(database)
		if err != nil {
			return err
		}
		schemeStats, err := db.CountByScheme(database)
		if err != nil {
			return err
		}

		stats, err := decodeReport(cmd.Context(), cfg, database)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

		fmt.Println("\n📊 \033[1mSUBPROVIDER STATUS\033[0m")
		fmt.Println("────────────────────────────────────────")

		fmt.Fprintln(w, "\033[1;36m[ SYSTEM ]\033[0m\t")
		fmt.Fprintf(w, "  Database Path:\t%s\n", cfg.Database.Path)
		fmt.Fprintf(w, "  DB Size:\t%s\n", formatBytes(fileSize(cfg.Database.Path)))
		fmt.Fprintf(w, "  Static Groups:\t%d\n", len(cfg.Groups))
		fmt.Fprintf(w, "  Subscriptions:\t%d\n", len(cfg.Subscriptions))
		fmt.Fprintln(w, "\t")

		fmt.Fprintln(w, "\033[1;36m[ STORED GROUPS ]\033[0m\t")
		if len(groupStats) == 0 {
			fmt.Fprintln(w, "  (No links collected)")
		}
		for _, g := range groupStats {
			fmt.Fprintf(w, "  %s:\t%d\n", g.Group, g.Count)
		}
		fmt.Fprintln(w, "\t")

		fmt.Fprintln(w, "\033[1;36m[ PROTOCOLS ]\033[0m\t")
		for _, s := range schemeStats {
			fmt.Fprintf(w, "  %s:\t%d\n", s.Scheme, s.Count)
		}
		fmt.Fprintln(w, "\t")
		w.Flush()

		stats.WriteReport(os.Stdout)
		fmt.Println("")
		return nil
	},
}

func fileSize(path string) int64 {
	fi, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return fi.Size()
}

func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
