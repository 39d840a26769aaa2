package cmd

import (
	"github.com/spf13/cobra"

	"github.com/eykd/pagemark-go/internal/doc/ops"
)

// NewRenumberCmd creates the renumber subcommand.
func NewRenumberCmd(io DocumentIO) *cobra.Command {
	var f mutateFlags

	cmd := &cobra.Command{
		Use:          "renumber <document>",
		Short:        "Rewrite page indices to follow document order",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			summary := "Renumbered pages in " + sanitizePath(path)
			return runMutation(cmd, io, path, f, summary, func(s *session) error {
				_, err := ops.RenumberPages(s.doc)
				return err
			})
		},
	}

	f.register(cmd)
	return cmd
}
