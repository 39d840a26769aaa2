package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// toggleTargets maps the toggle argument to the controller action.
var toggleTargets = map[string]func(s *session) error{
	"header-footer": func(s *session) error { return s.ctl.ToggleHeaderFooter(s.doc) },
	"watermark":     func(s *session) error { return s.ctl.ToggleWatermark(s.doc) },
	"margins":       func(s *session) error { return s.ctl.ToggleMargins(s.doc) },
}

// NewToggleCmd creates the toggle subcommand.
func NewToggleCmd(io DocumentIO) *cobra.Command {
	var f mutateFlags

	cmd := &cobra.Command{
		Use:          "toggle <header-footer|watermark|margins> <document>",
		Short:        "Toggle headers and footers, the watermark or the page margins",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, path := args[0], args[1]
			toggle, ok := toggleTargets[target]
			if !ok {
				return emitPGE002AndError(cmd, f.jsonMode,
					fmt.Errorf("unknown toggle %q: want header-footer, watermark or margins", target))
			}
			summary := "Toggled " + target + " in " + sanitizePath(path)
			return runMutation(cmd, io, path, f, summary, toggle)
		},
	}

	f.register(cmd)
	return cmd
}
