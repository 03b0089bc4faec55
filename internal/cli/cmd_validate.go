package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/foliosync/internal/hosting"
	"github.com/randalmurphal/foliosync/internal/project"
)

// newValidateCmd creates the validate command
func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the project source file without touching the network",
		Long: `Validate parses the project source file and checks its structural
invariants: valid JSON, a slug on every record, no duplicate slugs. It also
reports which records have a recognizable repository URL for enrichment.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.ValidateSource(); err != nil {
				return err
			}

			records, err := project.Load(cfg.Source.Path)
			if err != nil {
				return err
			}

			enrichable := 0
			for _, r := range records {
				if _, ok := hosting.ParseRepoRef(r.RepoURL); ok {
					enrichable++
				}
			}

			fmt.Printf("%s: %d records, all slugs unique\n", cfg.Source.Path, len(records))
			fmt.Printf("  enrichable: %d (github.com or gitlab.com repository URL)\n", enrichable)
			fmt.Printf("  static:     %d\n", len(records)-enrichable)
			return nil
		},
	}
}
