package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/foliosync/internal/history"
)

// newHistoryCmd creates the history command
func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent sync runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			store, err := history.Open(cfg.History.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("No runs recorded yet.")
				return nil
			}

			fmt.Printf("%-4s %-20s %-8s %8s %8s %10s %10s  %s\n",
				"ID", "STARTED", "TOOK", "CREATED", "UPDATED", "UNCHANGED", "PUBLISHED", "STATUS")
			for _, r := range runs {
				status := "ok"
				if r.DryRun {
					status = "dry-run"
				}
				if r.Error != "" {
					status = "failed: " + r.Error
				}
				fmt.Printf("%-4d %-20s %-8s %8d %8d %10d %10d  %s\n",
					r.ID,
					r.StartedAt.Local().Format("2006-01-02 15:04:05"),
					r.Duration.Round(time.Millisecond),
					r.Created, r.Updated, r.Noops, r.Published,
					status)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of runs to show")
	return cmd
}
