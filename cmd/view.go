package cmd

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/eykd/pagemark-go/internal/doc"
	"github.com/eykd/pagemark-go/internal/tui"
)

// runViewFn is replaced in tests so the editor never takes the terminal.
var runViewFn = tui.Run

// NewViewCmd creates the view subcommand.
func NewViewCmd(io DocumentIO) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "view <document>",
		Short:        "Open a document in the terminal editor",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			s, err := openSession(cmd, io, path)
			if err != nil {
				return emitPGE001AndError(cmd, false, err)
			}

			save := func(d *doc.Document) error {
				var buf bytes.Buffer
				if err := s.codec.RenderHTML(&buf, d); err != nil {
					return fmt.Errorf("rendering %s: %w", path, err)
				}
				if err := io.WriteDocumentAtomic(cmd.Context(), path, buf.Bytes()); err != nil {
					return fmt.Errorf("writing document: %w", err)
				}
				s.logger.Debug("document saved", "path", path)
				return nil
			}

			return runViewFn(tui.Options{
				Document:   s.doc,
				Controller: s.ctl,
				Text:       s.text,
				Codec:      s.codec,
				Logger:     s.logger,
				Save:       save,
				Title:      filepath.Base(path),
			})
		},
	}
	return cmd
}
