package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/eykd/pagemark-go/internal/config"
)

// DefaultDocumentName is the document init creates.
const DefaultDocumentName = "document.html"

// InitIO handles I/O for the init command.
type InitIO interface {
	StatFile(path string) (bool, error)
	WriteFileAtomic(path, content string) error
}

// NewInitCmd creates the init subcommand.
func NewInitCmd(io InitIO) *cobra.Command {
	return newInitCmdWithGetCWD(io, os.Getwd)
}

func newInitCmdWithGetCWD(io InitIO, getwd func() (string, error)) *cobra.Command {
	var (
		force    bool
		document string
	)

	cmd := &cobra.Command{
		Use:          "init [directory]",
		Short:        "Create a configuration file and a blank document",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			if dir == "" {
				cwd, err := getwd()
				if err != nil {
					return fmt.Errorf("getting working directory: %w", err)
				}
				dir = cwd
			}

			docPath := filepath.Join(dir, document)
			configPath := filepath.Join(dir, config.FileName)

			docExists, err := io.StatFile(docPath)
			if err != nil {
				return fmt.Errorf("checking %s: %w", docPath, err)
			}
			if docExists && !force {
				return fmt.Errorf("%s already exists in %s; use --force to overwrite", document, dir)
			}
			configExists, err := io.StatFile(configPath)
			if err != nil {
				return fmt.Errorf("checking %s: %w", configPath, err)
			}
			needsWarning := force && (docExists || configExists)

			cfg := config.Default()
			data, _, err := buildDocument(cfg, loggerFor(cmd), nil)
			if err != nil {
				return err
			}
			if err := io.WriteFileAtomic(docPath, string(data)); err != nil {
				return fmt.Errorf("writing %s: %w", document, err)
			}

			if !configExists || force {
				content, err := cfg.Marshal()
				if err != nil {
					return err
				}
				if err := io.WriteFileAtomic(configPath, string(content)); err != nil {
					return fmt.Errorf(
						"writing %s (partial init; re-run with --force to recover): %w", config.FileName, err)
				}
			}

			if needsWarning {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: overwriting existing files")
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Initialized "+dir)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing files")
	cmd.Flags().StringVar(&document, "document", DefaultDocumentName, "name of the document to create")

	return cmd
}

// fileInitIO implements InitIO using OS file I/O.
type fileInitIO struct{}

func newDefaultInitIO() *fileInitIO {
	return &fileInitIO{}
}

// StatFile returns true if the file at path exists, false if it does not.
// Returns an error only for unexpected OS errors.
func (f *fileInitIO) StatFile(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// WriteFileAtomic writes content to path atomically via a temp file.
func (f *fileInitIO) WriteFileAtomic(path, content string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".init-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err = tmp.Write([]byte(content)); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err = os.Chmod(tmpName, 0644); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
