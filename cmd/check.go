package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eykd/pagemark-go/internal/doc"
	"github.com/eykd/pagemark-go/internal/doc/ops"
	"github.com/eykd/pagemark-go/internal/extension"
	"github.com/eykd/pagemark-go/internal/page"
)

// checkOutput is the JSON output schema for the check command.
type checkOutput struct {
	Version     string       `json:"version"`
	Pages       int          `json:"pages"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// NewCheckCmd creates the check subcommand.
func NewCheckCmd(io DocumentIO) *cobra.Command {
	var jsonMode bool

	cmd := &cobra.Command{
		Use:          "check <document>",
		Short:        "Validate the page structure of a document",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, io, args[0])
			if err != nil {
				return emitPGE001AndError(cmd, jsonMode, err)
			}

			pages := ops.Find(s.doc, doc.TypePage, nil)
			diags := checkPages(pages)

			if jsonMode {
				out := checkOutput{Version: "1", Pages: len(pages), Diagnostics: diags}
				if err := json.NewEncoder(cmd.OutOrStdout()).Encode(out); err != nil {
					return fmt.Errorf("encoding output: %w", err)
				}
			} else {
				printDiagnostics(cmd, diags)
				if len(diags) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %d pages, no problems found\n", sanitizePath(args[0]), len(pages))
				}
			}
			if hasDiagnosticError(diags) {
				return fmt.Errorf("check found errors")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonMode, "json", false, "Output result as JSON")
	return cmd
}

// checkPages reports structural problems: duplicated page bands, margins
// that do not fit the paper, page indices out of sequence and paper sizes
// outside the catalogue.
func checkPages(pages []doc.Range) []Diagnostic {
	diags := []Diagnostic{}
	for i, r := range pages {
		n := i + 1
		counts := map[doc.NodeType]int{}
		for _, ch := range r.Node.Children() {
			counts[ch.Type()]++
		}
		for _, t := range []doc.NodeType{doc.TypeHeader, doc.TypeFooter, doc.TypeWatermark} {
			if counts[t] > 1 {
				diags = append(diags, Diagnostic{
					Severity: SeverityError,
					Code:     CodeInvalidStructure,
					Message:  fmt.Sprintf("page %d has %d %s nodes", n, counts[t], t),
				})
			}
		}

		w, h := extension.DimensionsOf(r.Node)
		m := extension.MarginsOf(r.Node)
		if m.Left+m.Right >= w || m.Top+m.Bottom >= h {
			diags = append(diags, Diagnostic{
				Severity: SeverityError,
				Code:     CodeInvalidStructure,
				Message:  fmt.Sprintf("page %d margins leave no room for content", n),
			})
		}

		if got := r.Node.Attrs().Int(extension.AttrPageIndex); got != n {
			diags = append(diags, Diagnostic{
				Severity: SeverityWarning,
				Code:     CodePageIndex,
				Message:  fmt.Sprintf("page %d has pageIndex %d; run renumber", n, got),
			})
		}
		if _, ok := page.Match(w, h); !ok {
			diags = append(diags, Diagnostic{
				Severity: SeverityWarning,
				Code:     CodeUnknownPageSize,
				Message:  fmt.Sprintf("page %d is %sx%s, not a known paper size", n, page.FormatInches(w), page.FormatInches(h)),
			})
		}
	}
	return diags
}
