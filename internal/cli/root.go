// Package cli implements the foliosync command-line interface.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/randalmurphal/foliosync/internal/config"
)

var (
	cfgFile string
	verbose bool
	quiet   bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "foliosync",
	Short: "Sync a project portfolio into a Webflow CMS collection",
	Long: `foliosync keeps a Webflow CMS collection in step with a local JSON
project listing, enriched with live repository statistics.

Each run fetches stars, forks, language, and last-commit data for every
project with a GitHub or GitLab repository URL, compares the result against
the remote collection, and creates or updates items as needed. Items are
joined by slug; nothing is ever deleted.

Quick start:
  export FOLIOSYNC_WEBFLOW_TOKEN=...
  export FOLIOSYNC_WEBFLOW_COLLECTION=...
  foliosync validate              Check the local project listing
  foliosync sync --dry-run        Preview the reconciliation plan
  foliosync sync                  Apply and publish`,
	SilenceUsage: true,
	// main prints structured errors with their fix hints; cobra stays quiet.
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig, initLogging)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .foliosync.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")
	rootCmd.PersistentFlags().String("source", "", "project source file (default projects.json)")
	rootCmd.PersistentFlags().String("collection", "", "Webflow collection ID")
	rootCmd.PersistentFlags().String("schema", "", "remote schema variant: slug or snake")

	viper.BindPFlag("source", rootCmd.PersistentFlags().Lookup("source"))
	viper.BindPFlag("collection", rootCmd.PersistentFlags().Lookup("collection"))
	viper.BindPFlag("schema", rootCmd.PersistentFlags().Lookup("schema"))

	// Add subcommands
	rootCmd.AddCommand(newSyncCmd())
	rootCmd.AddCommand(newEnrichCmd())
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newVersionCmd())
}

// initConfig wires viper for flag and ENV resolution.
func initConfig() {
	viper.SetEnvPrefix(config.EnvPrefix)
	viper.AutomaticEnv()
}

// initLogging installs the process-wide logger. Structured output goes to
// stderr so stdout stays clean for command results.
func initLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	if quiet {
		level = slog.LevelError
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
