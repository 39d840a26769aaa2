package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"testing"

	"github.com/spf13/cobra"

	"github.com/eykd/pagemark-go/internal/codec"
	"github.com/eykd/pagemark-go/internal/config"
	"github.com/eykd/pagemark-go/internal/doc"
)

// mockDocumentIO is a test double for DocumentIO.
type mockDocumentIO struct {
	files    map[string][]byte
	readErr  error
	writeErr error
	cfg      config.Config
	cfgErr   error
	cfgPath  string
	written  map[string][]byte
}

func newMockDocumentIO() *mockDocumentIO {
	return &mockDocumentIO{
		files:   make(map[string][]byte),
		cfg:     config.Default(),
		written: make(map[string][]byte),
	}
}

func (m *mockDocumentIO) ReadDocument(_ context.Context, path string) ([]byte, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	data, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", path, fs.ErrNotExist)
	}
	return data, nil
}

func (m *mockDocumentIO) WriteDocumentAtomic(_ context.Context, path string, data []byte) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.written[path] = data
	return nil
}

func (m *mockDocumentIO) LoadConfig(_ context.Context, path string) (config.Config, error) {
	m.cfgPath = path
	return m.cfg, m.cfgErr
}

// ────────────────────────────────────────────────────────────────────────────
// Helpers
// ────────────────────────────────────────────────────────────────────────────

// fixture renders markdown as a paged document laid out by the default
// configuration.
func fixture(t *testing.T, markdown string) []byte {
	t.Helper()
	data, _, err := buildDocument(config.Default(), slog.New(slog.NewTextHandler(io.Discard, nil)), []byte(markdown))
	if err != nil {
		t.Fatalf("building fixture: %v", err)
	}
	return data
}

// withDocument returns a mock holding one document at path.
func withDocument(t *testing.T, path, markdown string) *mockDocumentIO {
	t.Helper()
	m := newMockDocumentIO()
	m.files[path] = fixture(t, markdown)
	return m
}

// execute runs c with args and returns its stdout, stderr and error.
func execute(c *cobra.Command, args ...string) (string, string, error) {
	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	c.SetOut(out)
	c.SetErr(errOut)
	c.SetArgs(args)
	err := c.Execute()
	return out.String(), errOut.String(), err
}

// parseWritten parses the document the mock received for path.
func parseWritten(t *testing.T, m *mockDocumentIO, path string) *doc.Document {
	t.Helper()
	data, ok := m.written[path]
	if !ok {
		t.Fatalf("expected %s to be written", path)
	}
	d, err := codec.Default().ParseHTML(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("parsing written document: %v", err)
	}
	return d
}

// decodeResult decodes an OpResult from JSON output.
func decodeResult(t *testing.T, out string) OpResult {
	t.Helper()
	var r OpResult
	if err := json.Unmarshal([]byte(out), &r); err != nil {
		t.Fatalf("decoding %q: %v", out, err)
	}
	return r
}

// countNodes counts nodes of type typ in d.
func countNodes(d *doc.Document, typ doc.NodeType) int {
	n := 0
	d.Descendants(func(node *doc.Node, _ int) bool {
		if node.Type() == typ {
			n++
		}
		return true
	})
	return n
}

// hasCode reports whether diags holds code.
func hasCode(diags []Diagnostic, code string) bool {
	for _, d := range diags {
		if d.Code == code {
			return true
		}
	}
	return false
}
