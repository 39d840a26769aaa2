// Package cmd implements the pagemark CLI commands.
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/eykd/pagemark-go/internal/config"
)

// NewRootCmd creates the root pagemark command with all subcommands registered.
func NewRootCmd() *cobra.Command {
	return newRootCmdWithIO(newDefaultDocumentIO(), newDefaultInitIO())
}

func newRootCmdWithIO(docIO DocumentIO, initIO InitIO) *cobra.Command {
	root := &cobra.Command{
		Use:           "pagemark",
		Short:         "pagemark - paged document editor",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		RunE:          rootRunE,
	}
	root.PersistentFlags().Bool("verbose", false, "log developer diagnostics to stderr")
	root.PersistentFlags().String("config", "", "configuration file (default: .pagemark.yml next to the document)")

	root.AddCommand(NewInitCmd(initIO))
	root.AddCommand(NewStatsCmd(docIO))
	root.AddCommand(NewCheckCmd(docIO))
	root.AddCommand(NewRulerCmd(docIO))
	root.AddCommand(NewToggleCmd(docIO))
	root.AddCommand(NewPageSizeCmd(docIO))
	root.AddCommand(NewMarginCmd(docIO))
	root.AddCommand(NewBreakCmd(docIO))
	root.AddCommand(NewRenumberCmd(docIO))
	root.AddCommand(NewFormatCmd(docIO))
	root.AddCommand(NewImportCmd(docIO))
	root.AddCommand(NewViewCmd(docIO))
	return root
}

func rootRunE(_ *cobra.Command, _ []string) error {
	return nil
}

// loggerFor returns a debug logger on stderr when --verbose is set and a
// discarding logger otherwise.
func loggerFor(cmd *cobra.Command) *slog.Logger {
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// configPathFor returns --config, or the configuration file next to docPath.
func configPathFor(cmd *cobra.Command, docPath string) string {
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		return p
	}
	return filepath.Join(filepath.Dir(docPath), config.FileName)
}

// emitPGE001AndError writes a PGE001 error diagnostic and returns a non-nil
// error so the caller exits with non-zero code. When jsonMode is true the
// diagnostic is written as an OpResult JSON object to stdout; otherwise it
// is written as a human-readable message to stderr.
func emitPGE001AndError(cmd *cobra.Command, jsonMode bool, origErr error) error {
	if jsonMode {
		diags := []Diagnostic{{Severity: SeverityError, Code: CodeReadFailure, Message: origErr.Error()}}
		out := OpResult{Version: "1", Changed: false, Diagnostics: diags}
		_ = json.NewEncoder(cmd.OutOrStdout()).Encode(out)
	} else {
		fmt.Fprintf(cmd.ErrOrStderr(), "error: I/O or parse failure: %v (%s)\n", origErr, CodeReadFailure)
	}
	return fmt.Errorf("operation failed: %w", origErr)
}

// emitPGE002AndError reports an invalid command argument the same way.
func emitPGE002AndError(cmd *cobra.Command, jsonMode bool, origErr error) error {
	if jsonMode {
		diags := []Diagnostic{{Severity: SeverityError, Code: CodeInvalidArgument, Message: origErr.Error()}}
		out := OpResult{Version: "1", Changed: false, Diagnostics: diags}
		_ = json.NewEncoder(cmd.OutOrStdout()).Encode(out)
	} else {
		fmt.Fprintf(cmd.ErrOrStderr(), "error: %v (%s)\n", origErr, CodeInvalidArgument)
	}
	return fmt.Errorf("invalid argument: %w", origErr)
}

// printDiagnostics writes each diagnostic to stderr in human-readable form.
func printDiagnostics(cmd *cobra.Command, diags []Diagnostic) {
	for _, d := range diags {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s (%s)\n", d.Severity, d.Message, d.Code)
	}
}
