package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eykd/pagemark-go/internal/page"
	"github.com/eykd/pagemark-go/internal/ruler"
	"github.com/eykd/pagemark-go/internal/tui"
)

// NewRulerCmd creates the ruler subcommand.
func NewRulerCmd(io DocumentIO) *cobra.Command {
	var (
		jsonMode bool
		zoom     int
	)

	cmd := &cobra.Command{
		Use:          "ruler <document>",
		Short:        "Show the horizontal ruler and margin markers of the first page",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, io, args[0])
			if err != nil {
				return emitPGE001AndError(cmd, jsonMode, err)
			}
			if !cmd.Flags().Changed("zoom") {
				zoom = s.cfg.Zoom
			}
			if err := s.ctl.SetZoom(zoom); err != nil {
				return emitPGE002AndError(cmd, jsonMode, err)
			}

			st := s.ctl.State()
			r := ruler.Compute(ruler.NewLayout(st.Size(), st.Zoom, st.Margins))
			if jsonMode {
				if err := json.NewEncoder(cmd.OutOrStdout()).Encode(r); err != nil {
					return fmt.Errorf("encoding output: %w", err)
				}
				return nil
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s at %d%%\n", st.PageSize, st.Zoom)
			fmt.Fprintln(w, tui.RenderRuler(r))
			var parts []string
			for _, e := range page.Edges {
				parts = append(parts, string(e)+" "+page.FormatInches(st.Margins.Get(e)))
			}
			fmt.Fprintln(w, "Margins: "+strings.Join(parts, ", "))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonMode, "json", false, "Output result as JSON")
	cmd.Flags().IntVar(&zoom, "zoom", page.DefaultZoom, "zoom percentage (default: from configuration)")
	return cmd
}
