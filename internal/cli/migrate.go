package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/queuebot/internal/db"
	"github.com/example/queuebot/internal/wire"
)

// MigrateCmd returns the migrate command.
func MigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the record store schema",
		Long: `Create the record store if it does not exist, or bring an existing store
(including one written by the previous deployment) up to the latest schema.

Examples:
  queuebot migrate
  DATABASE_URL=sqlite:///var/lib/queuebot/runs.db queuebot migrate`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := wire.Database()
			if err != nil {
				return fmt.Errorf("failed to open record store: %w", err)
			}

			current, err := db.CurrentVersion(database)
			if err != nil {
				return fmt.Errorf("failed to read schema version: %w", err)
			}

			out := cmd.OutOrStdout()
			if current == db.LatestVersion() {
				fmt.Fprintf(out, "%s schema at version %d (%s)\n",
					color.New(color.FgGreen).Sprint("✓"), current, wire.Config().DatabaseURL)
				return nil
			}
			fmt.Fprintf(out, "%s schema at version %d, expected %d\n",
				color.New(color.FgRed).Sprint("✗"), current, db.LatestVersion())
			return fmt.Errorf("schema is not up to date")
		},
	}
}
