package cmd

import (
	"github.com/spf13/cobra"
)

// NewBreakCmd creates the break subcommand.
func NewBreakCmd(io DocumentIO) *cobra.Command {
	var (
		f  mutateFlags
		at int
	)

	cmd := &cobra.Command{
		Use:          "break <document>",
		Short:        "Insert a new page after the page containing a position",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			summary := "Inserted page break in " + sanitizePath(path)
			return runMutation(cmd, io, path, f, summary, func(s *session) error {
				pos := at
				if pos < 0 {
					// Just inside the closing token of the last page.
					pos = s.doc.ContentSize() - 1
				}
				s.doc.SetSelection(pos, pos)
				return s.ctl.InsertPageBreak(s.doc)
			})
		},
	}

	f.register(cmd)
	cmd.Flags().IntVar(&at, "at", -1, "document position inside the page to break after (default: last page)")
	return cmd
}
