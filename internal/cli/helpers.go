package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/viper"

	"github.com/randalmurphal/foliosync/internal/config"
	"github.com/randalmurphal/foliosync/internal/enrich"
	"github.com/randalmurphal/foliosync/internal/hosting"
	"github.com/randalmurphal/foliosync/internal/syncer"
)

// loadConfig resolves the effective configuration: flags override environment
// variables, which override the config file, which overrides defaults.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		path = config.ConfigFileName
	}

	cfg, err := config.LoadFrom(path)
	if err != nil {
		return nil, err
	}

	// Flag overrides arrive through viper so FOLIOSYNC_SOURCE and friends
	// work for settings beyond the credential variables too.
	if v := viper.GetString("source"); v != "" {
		cfg.Source.Path = v
	}
	if v := viper.GetString("collection"); v != "" {
		cfg.Webflow.CollectionID = v
	}
	if v := viper.GetString("schema"); v != "" {
		cfg.Webflow.Schema = config.SchemaVariant(v)
	}

	return cfg, nil
}

// buildEnricher assembles the stats providers for every host with a
// registered factory. Providers are built unconditionally; a missing token
// only tightens the host's rate limits.
func buildEnricher(cfg *config.Config, logger *slog.Logger) (*enrich.Enricher, error) {
	tokens := map[hosting.Host]string{
		hosting.HostGitHub: cfg.Hosting.GitHubToken,
		hosting.HostGitLab: cfg.Hosting.GitLabToken,
	}

	providers := make(map[hosting.Host]hosting.StatsProvider, len(tokens))
	for host, token := range tokens {
		p, err := hosting.NewProvider(host, hosting.Config{Token: token, Timeout: cfg.Timeout})
		if err != nil {
			return nil, fmt.Errorf("build %s provider: %w", host, err)
		}
		providers[host] = p
	}

	return enrich.New(providers, cfg.EnrichConcurrency, logger), nil
}

// printSyncResult writes the run summary to stdout. On a terminal the
// headline gets a checkmark; redirected output stays plain.
func printSyncResult(result *syncer.Result) {
	headline := "Sync complete"
	if result.DryRun {
		headline = "Dry run (no changes applied)"
	}
	if isatty.IsTerminal(os.Stdout.Fd()) {
		headline = "✓ " + headline
	}

	fmt.Println(headline)
	fmt.Printf("  created:   %d\n", result.Created)
	fmt.Printf("  updated:   %d\n", result.Updated)
	fmt.Printf("  unchanged: %d\n", result.Noops)
	if !result.DryRun {
		fmt.Printf("  published: %d\n", result.Published)
	}

	e := result.Enrich
	if e.Enriched+e.Skipped+e.Failed > 0 {
		fmt.Printf("  enriched:  %d (skipped %d, failed %d)\n", e.Enriched, e.Skipped, e.Failed)
	}
}
