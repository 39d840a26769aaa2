package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eykd/pagemark-go/internal/tui"
)

// mutateFlags are the output flags shared by every mutating command.
type mutateFlags struct {
	jsonMode bool
	diff     bool
}

func (f *mutateFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.jsonMode, "json", false, "Output result as JSON")
	cmd.Flags().BoolVar(&f.diff, "diff", false, "Show the change without writing it")
}

// mutation is one edit applied to an open document. A returned error is
// reported as a diagnostic, not as a failure of the command.
type mutation func(s *session) error

// runMutation opens the document at path, applies edit and writes the
// result back when it changed. summary is printed on success.
func runMutation(cmd *cobra.Command, io DocumentIO, path string, f mutateFlags, summary string, edit mutation) error {
	s, err := openSession(cmd, io, path)
	if err != nil {
		return emitPGE001AndError(cmd, f.jsonMode, err)
	}

	base, err := s.render()
	if err != nil {
		return emitPGE001AndError(cmd, f.jsonMode, err)
	}

	diags := []Diagnostic{}
	if err := edit(s); err != nil {
		diags = append(diags, diagnose(err))
	}
	changed := s.changes > 0
	if !changed && len(diags) == 0 {
		diags = append(diags, Diagnostic{Severity: SeverityWarning, Code: CodeUnchanged, Message: sanitizePath(path) + " unchanged"})
	}

	after := base
	if changed {
		if after, err = s.render(); err != nil {
			return emitPGE001AndError(cmd, f.jsonMode, err)
		}
	}

	if f.jsonMode {
		out := OpResult{Version: "1", Changed: changed, Diagnostics: diags}
		if err := json.NewEncoder(cmd.OutOrStdout()).Encode(out); err != nil {
			return fmt.Errorf("encoding output: %w", err)
		}
	} else {
		printDiagnostics(cmd, diags)
	}

	if hasDiagnosticError(diags) {
		return fmt.Errorf("%s has errors", cmd.Name())
	}

	if f.diff {
		if !f.jsonMode {
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderDiff(string(base), string(after)))
		}
		return nil
	}

	if changed {
		if err := io.WriteDocumentAtomic(cmd.Context(), path, after); err != nil {
			return fmt.Errorf("writing document: %w", err)
		}
		s.logger.Debug("document written", "path", path, "changes", s.changes)
	}

	if changed && !f.jsonMode {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), summary); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
	}
	return nil
}
