package cmd

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/eykd/pagemark-go/internal/doc"
	"github.com/eykd/pagemark-go/internal/pagination"
)

// statsOutput is the JSON output schema for the stats command.
type statsOutput struct {
	Version         string       `json:"version"`
	TotalPages      int          `json:"totalPages"`
	TotalCharacters int          `json:"totalCharacters"`
	PageCharacters  []int        `json:"pageCharacters"`
	Diagnostics     []Diagnostic `json:"diagnostics"`
}

// NewStatsCmd creates the stats subcommand.
func NewStatsCmd(io DocumentIO) *cobra.Command {
	var jsonMode bool

	cmd := &cobra.Command{
		Use:          "stats <document>",
		Short:        "Report page and character counts",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, io, args[0])
			if err != nil {
				return emitPGE001AndError(cmd, jsonMode, err)
			}

			st := pagination.Compute(s.doc)
			out := statsOutput{
				Version:         "1",
				TotalPages:      st.TotalPages,
				TotalCharacters: st.TotalCharacters,
				PageCharacters:  pageCharacters(st),
				Diagnostics:     []Diagnostic{},
			}
			if jsonMode {
				if err := json.NewEncoder(cmd.OutOrStdout()).Encode(out); err != nil {
					return fmt.Errorf("encoding output: %w", err)
				}
				return nil
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Pages: %d\n", out.TotalPages)
			fmt.Fprintf(w, "Characters: %d\n", out.TotalCharacters)
			for i, n := range out.PageCharacters {
				fmt.Fprintf(w, "  page %d: %d\n", i+1, n)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonMode, "json", false, "Output result as JSON")
	return cmd
}

// pageCharacters counts the text of each page group.
func pageCharacters(st pagination.Stats) []int {
	counts := make([]int, len(st.Pages))
	for i, group := range st.Pages {
		for _, n := range group {
			if n.Type() == doc.TypeText {
				counts[i] += utf8.RuneCountInString(n.Text())
			}
		}
	}
	return counts
}
