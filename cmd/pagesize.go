package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eykd/pagemark-go/internal/page"
)

// NewPageSizeCmd creates the page-size subcommand.
func NewPageSizeCmd(io DocumentIO) *cobra.Command {
	var f mutateFlags

	cmd := &cobra.Command{
		Use:          "page-size <A4|Letter|Legal> <document>",
		Short:        "Resize every page and reset its margins",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, path := page.SizeID(args[0]), args[1]
			if _, ok := page.Lookup(id); !ok {
				return emitPGE002AndError(cmd, f.jsonMode, fmt.Errorf("unknown page size %q", args[0]))
			}
			summary := "Set page size " + string(id) + " in " + sanitizePath(path)
			return runMutation(cmd, io, path, f, summary, func(s *session) error {
				return s.ctl.SetPageSize(s.doc, id)
			})
		},
	}

	f.register(cmd)
	return cmd
}
