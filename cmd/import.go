package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/eykd/pagemark-go/internal/codec"
	"github.com/eykd/pagemark-go/internal/config"
	"github.com/eykd/pagemark-go/internal/pagination"
	"github.com/eykd/pagemark-go/internal/toolbar"
)

// NewImportCmd creates the import subcommand.
func NewImportCmd(io DocumentIO) *cobra.Command {
	var (
		jsonMode bool
		force    bool
	)

	cmd := &cobra.Command{
		Use:          "import <markdown> <document>",
		Short:        "Create a paged document from Markdown; --- starts a new page",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, dst := args[0], args[1]
			ctx := cmd.Context()

			if _, err := io.ReadDocument(ctx, dst); err == nil && !force {
				return emitPGE002AndError(cmd, jsonMode, fmt.Errorf("%s already exists; use --force to overwrite", sanitizePath(dst)))
			}
			cfg, err := io.LoadConfig(ctx, configPathFor(cmd, dst))
			if err != nil {
				return emitPGE001AndError(cmd, jsonMode, fmt.Errorf("loading config: %w", err))
			}
			md, err := io.ReadDocument(ctx, src)
			if err != nil {
				return emitPGE001AndError(cmd, jsonMode, fmt.Errorf("reading markdown: %w", err))
			}

			data, pages, err := buildDocument(cfg, loggerFor(cmd), md)
			if err != nil {
				return emitPGE001AndError(cmd, jsonMode, err)
			}
			if err := io.WriteDocumentAtomic(ctx, dst, data); err != nil {
				return fmt.Errorf("writing document: %w", err)
			}

			if jsonMode {
				out := OpResult{Version: "1", Changed: true, Diagnostics: []Diagnostic{}}
				if err := json.NewEncoder(cmd.OutOrStdout()).Encode(out); err != nil {
					return fmt.Errorf("encoding output: %w", err)
				}
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s into %s (%d pages)\n", sanitizePath(src), sanitizePath(dst), pages)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonMode, "json", false, "Output result as JSON")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing document")
	return cmd
}

// buildDocument turns Markdown into a rendered paged document laid out by
// cfg, returning the HTML and its page count.
func buildDocument(cfg config.Config, logger *slog.Logger, markdown []byte) ([]byte, int, error) {
	ctl := toolbar.New(append(cfg.ControllerOptions(), toolbar.WithLogger(logger))...)
	st := ctl.State()

	c := codec.Default()
	d, err := c.ImportMarkdown(bytes.NewReader(markdown), codec.ImportOptions{Size: st.Size(), Margins: st.Margins})
	if err != nil {
		return nil, 0, err
	}
	if err := ctl.Init(d); err != nil {
		return nil, 0, fmt.Errorf("laying out pages: %w", err)
	}

	var buf bytes.Buffer
	if err := c.RenderHTML(&buf, d); err != nil {
		return nil, 0, fmt.Errorf("rendering document: %w", err)
	}
	return buf.Bytes(), pagination.Compute(d).TotalPages, nil
}
