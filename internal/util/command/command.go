package command

import (
	"github.com/spf13/cobra"
)

// NewSubcommandGroup returns a parent command that only exists to group the
// given subcommands. Calling it without a subcommand prints usage.
func NewSubcommandGroup(name string, subcommands ...*cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use: name,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	cmd.AddCommand(subcommands...)

	return cmd
}
