// Package cli provides CLI commands for queuebot.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/queuebot/internal/config"
	"github.com/example/queuebot/internal/logging"
	"github.com/example/queuebot/internal/version"
	"github.com/example/queuebot/internal/wire"
)

// RootCmd returns the queuebot command tree.
// Configuration is loaded and logging initialised before any subcommand runs.
func RootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:     "queuebot",
		Short:   "Mirror a speedrun.com verification queue into Discord threads",
		Version: version.String(),
		Long: `queuebot polls the speedrun.com verification queue of one game and keeps a
Discord forum in step with it: one thread per submitted run, renamed with the
verdict and archived once the run is verified, rejected or removed.

Configuration is read from queuebot.yaml (or --config) and the environment
(BOT_TOKEN, CHANNEL_ID, DATABASE_URL, ...).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			level, err := logging.ParseLevel(cfg.Log.Level)
			if err != nil {
				return err
			}
			logging.Init(level, cfg.Log.Format, cmd.ErrOrStderr())
			wire.Configure(cfg)
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: "+config.DefaultPath+" if present)")

	cmd.AddCommand(RunCmd())
	cmd.AddCommand(OnceCmd())
	cmd.AddCommand(MigrateCmd())
	cmd.AddCommand(RunsCmd())
	cmd.AddCommand(AliasCmd())

	return cmd
}
