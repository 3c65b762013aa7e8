package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/queuebot/internal/wire"
)

// AliasCmd returns the alias command for category display aliases.
func AliasCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alias",
		Short: "Manage category display aliases",
		Long: `Aliases replace a category's name in new thread titles, for example to
shorten "No Major Glitches" to "NMG". Aliases apply to the configured game.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List aliases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			adapter, err := wire.AliasAdapter()
			if err != nil {
				return err
			}
			return adapter.List(cmd.Context())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set [category-id] [alias]",
		Short: "Create or replace an alias",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			adapter, err := wire.AliasAdapter()
			if err != nil {
				return err
			}
			return adapter.Set(cmd.Context(), args[0], args[1])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "rm [category-id]",
		Aliases: []string{"remove"},
		Short:   "Remove an alias",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			adapter, err := wire.AliasAdapter()
			if err != nil {
				return err
			}
			return adapter.Remove(cmd.Context(), args[0])
		},
	})

	return cmd
}
