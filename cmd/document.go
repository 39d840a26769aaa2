package cmd

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/eykd/pagemark-go/internal/codec"
	"github.com/eykd/pagemark-go/internal/config"
	"github.com/eykd/pagemark-go/internal/doc"
	"github.com/eykd/pagemark-go/internal/toolbar"
)

// DocumentIO handles I/O for the document commands.
type DocumentIO interface {
	ReadDocument(ctx context.Context, path string) ([]byte, error)
	WriteDocumentAtomic(ctx context.Context, path string, data []byte) error
	LoadConfig(ctx context.Context, path string) (config.Config, error)
}

// session is a document opened for one command, with the toolbar state
// restored from it.
type session struct {
	path    string
	before  []byte
	cfg     config.Config
	codec   *codec.Codec
	doc     *doc.Document
	ctl     *toolbar.Controller
	text    *toolbar.TextToolbar
	logger  *slog.Logger
	changes int
}

// openSession loads the configuration and parses the document at path.
func openSession(cmd *cobra.Command, io DocumentIO, path string) (*session, error) {
	ctx := cmd.Context()
	logger := loggerFor(cmd)

	cfg, err := io.LoadConfig(ctx, configPathFor(cmd, path))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	data, err := io.ReadDocument(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	c := codec.Default()
	d, err := c.ParseHTML(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	opts := append(cfg.ControllerOptions(), toolbar.WithLogger(logger))
	ctl := toolbar.New(opts...)
	ctl.Restore(d)

	s := &session{
		path:   path,
		before: data,
		cfg:    cfg,
		codec:  c,
		doc:    d,
		ctl:    ctl,
		text:   toolbar.NewTextToolbar(logger),
		logger: logger,
	}
	d.OnChange(func(*doc.Document) { s.changes++ })
	logger.Debug("document opened", "path", path, "bytes", len(data))
	return s, nil
}

// render serialises the document.
func (s *session) render() ([]byte, error) {
	var buf bytes.Buffer
	if err := s.codec.RenderHTML(&buf, s.doc); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", s.path, err)
	}
	return buf.Bytes(), nil
}

// fileDocumentIO implements DocumentIO using OS file I/O.
type fileDocumentIO struct{}

func newDefaultDocumentIO() *fileDocumentIO {
	return &fileDocumentIO{}
}

// ReadDocument reads the document file at path.
func (w *fileDocumentIO) ReadDocument(_ context.Context, path string) ([]byte, error) {
	return os.ReadFile(path)
}

// LoadConfig reads the configuration file at path; a missing file yields
// the defaults.
func (w *fileDocumentIO) LoadConfig(_ context.Context, path string) (config.Config, error) {
	return config.Load(path)
}

// WriteDocumentAtomic writes data to path atomically via a temp file.
func (w *fileDocumentIO) WriteDocumentAtomic(ctx context.Context, path string, data []byte) error {
	return w.WriteDocumentAtomicImpl(ctx, path, data)
}

// WriteDocumentAtomicImpl performs the atomic write via OS temp file rename.
func (w *fileDocumentIO) WriteDocumentAtomicImpl(_ context.Context, path string, data []byte) error {
	if fi, statErr := os.Stat(path); statErr == nil {
		if fi.Mode().Perm()&0200 == 0 {
			return fmt.Errorf("document file is read-only")
		}
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".pagemark-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err = tmp.Write(data); err != nil {
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
