package cmd

import (
	"github.com/spf13/cobra"

	"github.com/eykd/pagemark-go/internal/page"
)

// NewMarginCmd creates the margin subcommand.
func NewMarginCmd(io DocumentIO) *cobra.Command {
	var f mutateFlags

	cmd := &cobra.Command{
		Use:          "margin <top|right|bottom|left> <inches> <document>",
		Short:        "Set one page margin on every page",
		Args:         cobra.ExactArgs(3),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			edge, err := page.ParseEdge(args[0])
			if err != nil {
				return emitPGE002AndError(cmd, f.jsonMode, err)
			}
			inches, err := page.ParseInches(args[1])
			if err != nil {
				return emitPGE002AndError(cmd, f.jsonMode, err)
			}
			path := args[2]
			summary := "Set " + string(edge) + " margin in " + sanitizePath(path)
			return runMutation(cmd, io, path, f, summary, func(s *session) error {
				return s.ctl.ChangeMargin(s.doc, edge, inches)
			})
		},
	}

	f.register(cmd)
	return cmd
}
