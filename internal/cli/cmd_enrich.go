package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/foliosync/internal/project"

	// Register stats providers.
	_ "github.com/randalmurphal/foliosync/internal/hosting/github"
	_ "github.com/randalmurphal/foliosync/internal/hosting/gitlab"
)

// newEnrichCmd creates the enrich command
func newEnrichCmd() *cobra.Command {
	var noWrite bool

	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Refresh repository statistics in the project source file",
		Long: `Enrich fetches current stars, forks, primary language, and last-commit
timestamps for every project with a parseable repository URL, then rewrites
the source file in place with the refreshed values. Record order and all
non-stats fields are preserved.

No Webflow credentials are needed; nothing touches the remote collection.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.ValidateSource(); err != nil {
				return err
			}

			logger := slog.Default()

			records, err := project.Load(cfg.Source.Path)
			if err != nil {
				return err
			}

			enricher, err := buildEnricher(cfg, logger)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			enriched, stats := enricher.Enrich(ctx, records)
			fmt.Printf("Enriched %d of %d projects (skipped %d, failed %d)\n",
				stats.Enriched, len(records), stats.Skipped, stats.Failed)

			if noWrite {
				return nil
			}
			if err := project.Save(cfg.Source.Path, enriched); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", cfg.Source.Path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noWrite, "no-write", false, "fetch and report without rewriting the source file")
	return cmd
}
