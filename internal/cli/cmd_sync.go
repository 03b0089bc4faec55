package cli

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/foliosync/internal/config"
	"github.com/randalmurphal/foliosync/internal/enrich"
	"github.com/randalmurphal/foliosync/internal/errors"
	"github.com/randalmurphal/foliosync/internal/history"
	"github.com/randalmurphal/foliosync/internal/project"
	"github.com/randalmurphal/foliosync/internal/syncer"
	"github.com/randalmurphal/foliosync/internal/webflow"

	// Register stats providers.
	_ "github.com/randalmurphal/foliosync/internal/hosting/github"
	_ "github.com/randalmurphal/foliosync/internal/hosting/gitlab"
)

// newSyncCmd creates the sync command
func newSyncCmd() *cobra.Command {
	var (
		dryRun   bool
		noEnrich bool
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Reconcile the project listing against the Webflow collection",
		Long: `Sync loads the project source file, refreshes repository statistics,
lists the remote collection, and creates or updates items so the collection
matches the listing. Changed items are published in the same run.

Remote items with no matching local record are left untouched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := slog.Default()

			records, err := project.Load(cfg.Source.Path)
			if err != nil {
				return err
			}
			logger.Debug("loaded project source", "path", cfg.Source.Path, "records", len(records))

			var enricher *enrich.Enricher
			if !noEnrich {
				enricher, err = buildEnricher(cfg, logger)
				if err != nil {
					return err
				}
			}

			client, err := webflow.NewClient(webflow.ClientConfig{
				Token:        cfg.Webflow.Token,
				CollectionID: cfg.Webflow.CollectionID,
				PageSize:     cfg.Webflow.PageSize,
			})
			if err != nil {
				return errors.ErrConfigInvalid("webflow", err.Error())
			}

			fields := webflow.NewFieldMap(cfg.Webflow.Schema)
			s := syncer.New(client, enricher, fields, cfg.Webflow.CollectionID, logger)

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			started := time.Now()
			result, runErr := s.Run(ctx, records, syncer.Options{
				DryRun:     dryRun,
				SkipEnrich: noEnrich,
			})

			if cfg.History.Enabled {
				recordHistory(logger, cfg, started, result, dryRun, runErr)
			}

			if runErr != nil {
				return runErr
			}

			printSyncResult(result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report the plan without writing or publishing")
	cmd.Flags().BoolVar(&noEnrich, "no-enrich", false, "sync source records as-is, without stats fetches")
	return cmd
}

// recordHistory appends the run to the local log. History is advisory, so a
// failure here is logged and swallowed rather than failing the sync.
func recordHistory(logger *slog.Logger, cfg *config.Config, started time.Time, result *syncer.Result, dryRun bool, runErr error) {
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		logger.Warn("history disabled for this run", "error", err)
		return
	}
	defer store.Close()

	run := history.Run{
		StartedAt: started,
		Duration:  time.Since(started),
		DryRun:    dryRun,
		Schema:    string(cfg.Webflow.Schema),
	}
	if result != nil {
		run.Created = result.Created
		run.Updated = result.Updated
		run.Noops = result.Noops
		run.Published = result.Published
		run.Enriched = result.Enrich.Enriched
		run.EnrichFailed = result.Enrich.Failed
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}

	if _, err := store.RecordRun(run); err != nil {
		logger.Warn("failed to record run history", "error", err)
	}
}
