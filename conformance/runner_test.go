// Package conformance_test runs the pagemark CLI against the fixtures in
// fixtures/. Every fixture imports input.md into a fresh document, runs one
// command against it as a subprocess and compares the JSON result and the
// written document with expected.json.
//
// TestMain builds the pagemark binary once into a temporary directory before
// any test runs, then removes the directory on exit.
package conformance_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// pagemarkBinary is the absolute path to the compiled binary, set by TestMain.
var pagemarkBinary string

// fixturesRoot holds one directory per command, each with one directory per case.
const fixturesRoot = "fixtures"

// TestMain builds the pagemark binary to a temporary directory (avoiding
// binary path races between parallel test processes) and runs all tests. It
// removes the temporary directory on exit regardless of test outcome.
func TestMain(m *testing.M) {
	repoRoot, err := filepath.Abs("..")
	if err != nil {
		fmt.Fprintf(os.Stderr, "filepath.Abs: %v\n", err)
		os.Exit(1)
	}

	tmpDir, err := os.MkdirTemp("", "conformance-pagemark-*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "os.MkdirTemp: %v\n", err)
		os.Exit(1)
	}

	pagemarkBinary = filepath.Join(tmpDir, "pagemark")
	build := exec.Command("go", "build", "-o", pagemarkBinary, ".")
	build.Dir = repoRoot
	if out, err := build.CombinedOutput(); err != nil {
		fmt.Fprintf(os.Stderr, "go build failed: %v\n%s\n", err, out)
		os.RemoveAll(tmpDir)
		os.Exit(1)
	}

	code := m.Run()
	os.RemoveAll(tmpDir)
	os.Exit(code)
}

// ---------------------------------------------------------------------------
// Fixture schema
// ---------------------------------------------------------------------------

// opSpec is op.json: the arguments placed before the document path and the
// flags placed after it.
type opSpec struct {
	Args  []string `json:"args"`
	Flags []string `json:"flags"`
}

// expectation is expected.json.
type expectation struct {
	Changed     bool             `json:"changed"`
	Pages       int              `json:"pages"`
	Contains    []string         `json:"contains"`
	Absent      []string         `json:"absent"`
	Diagnostics []diagnosticItem `json:"diagnostics"`
}

// opsJSONOutput is the shape emitted by `pagemark <command> --json`.
type opsJSONOutput struct {
	Version     string           `json:"version"`
	Changed     bool             `json:"changed"`
	Diagnostics []diagnosticItem `json:"diagnostics"`
}

type diagnosticItem struct {
	Severity string `json:"severity"`
	Code     string `json:"code"`
	Message  string `json:"message,omitempty"`
}

// ---------------------------------------------------------------------------
// Command fixtures
// ---------------------------------------------------------------------------

// TestConformance_CommandFixtures walks fixtures/<command>/<case>/ and runs
// each case against the binary.
func TestConformance_CommandFixtures(t *testing.T) {
	commands, err := os.ReadDir(fixturesRoot)
	if err != nil {
		t.Fatalf("os.ReadDir(%s): %v", fixturesRoot, err)
	}
	ran := 0
	for _, c := range commands {
		if !c.IsDir() {
			continue
		}
		cases, err := os.ReadDir(filepath.Join(fixturesRoot, c.Name()))
		if err != nil {
			t.Fatalf("os.ReadDir: %v", err)
		}
		for _, tc := range cases {
			if !tc.IsDir() {
				continue
			}
			command, fixturePath := c.Name(), filepath.Join(fixturesRoot, c.Name(), tc.Name())
			t.Run(command+"/"+tc.Name(), func(t *testing.T) {
				runCommandFixture(t, command, fixturePath)
			})
			ran++
		}
	}
	if ran == 0 {
		t.Fatal("no command fixtures found")
	}
}

// runCommandFixture imports input.md, runs the command and checks the result.
// An error diagnostic must come with a non-zero exit and an untouched
// document; a successful run must leave a document that check accepts.
func runCommandFixture(t *testing.T, command, fixturePath string) {
	t.Helper()

	skipIfMissingFiles(t, fixturePath, []string{"input.md", "op.json", "expected.json"})

	var spec opSpec
	readJSON(t, filepath.Join(fixturePath, "op.json"), &spec)
	var want expectation
	readJSON(t, filepath.Join(fixturePath, "expected.json"), &want)

	tmpDir := t.TempDir()
	mdPath := filepath.Join(tmpDir, "input.md")
	docPath := filepath.Join(tmpDir, "document.html")
	if err := copyFile(filepath.Join(fixturePath, "input.md"), mdPath); err != nil {
		t.Fatalf("copyFile input.md: %v", err)
	}
	if out, err := exec.Command(pagemarkBinary, "import", mdPath, docPath).CombinedOutput(); err != nil {
		t.Fatalf("pagemark import: %v\n%s", err, out)
	}
	before, err := os.ReadFile(docPath)
	if err != nil {
		t.Fatalf("read document: %v", err)
	}

	args := append([]string{command}, spec.Args...)
	args = append(args, docPath, "--json")
	args = append(args, spec.Flags...)
	stdout, runErr := exec.Command(pagemarkBinary, args...).Output()
	var exitErr *exec.ExitError
	isErrorExit := runErr != nil && errors.As(runErr, &exitErr)
	if runErr != nil && !isErrorExit {
		t.Fatalf("pagemark %s: %v", command, runErr)
	}

	var actual opsJSONOutput
	if err := json.Unmarshal(stdout, &actual); err != nil {
		t.Fatalf("unmarshal pagemark %s stdout: %v\nstdout: %s", command, err, stdout)
	}
	checkDiagnosticsSubset(t, want.Diagnostics, actual.Diagnostics)

	expectsError := false
	for _, d := range want.Diagnostics {
		if d.Severity == "error" {
			expectsError = true
		}
	}
	if expectsError != isErrorExit {
		t.Errorf("exit error = %v, want error exit %v", runErr, expectsError)
	}
	if actual.Changed != want.Changed {
		t.Errorf("changed = %v, want %v", actual.Changed, want.Changed)
	}

	after, err := os.ReadFile(docPath)
	if err != nil {
		t.Fatalf("read document after %s: %v", command, err)
	}
	if !want.Changed && !bytes.Equal(before, after) {
		t.Errorf("document was modified although nothing should change")
	}
	for _, s := range want.Contains {
		if !bytes.Contains(after, []byte(s)) {
			t.Errorf("document does not contain %q", s)
		}
	}
	for _, s := range want.Absent {
		if bytes.Contains(after, []byte(s)) {
			t.Errorf("document still contains %q", s)
		}
	}
	if want.Pages > 0 {
		if got := pageCount(t, docPath); got != want.Pages {
			t.Errorf("pages = %d, want %d", got, want.Pages)
		}
	}
	if !expectsError {
		checkClean(t, docPath)
	}
}

// ---------------------------------------------------------------------------
// init and import
// ---------------------------------------------------------------------------

func TestConformance_InitCreatesCleanDocument(t *testing.T) {
	dir := t.TempDir()
	if out, err := exec.Command(pagemarkBinary, "init", dir).CombinedOutput(); err != nil {
		t.Fatalf("pagemark init: %v\n%s", err, out)
	}
	for _, name := range []string{"document.html", ".pagemark.yml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s not created: %v", name, err)
		}
	}
	docPath := filepath.Join(dir, "document.html")
	checkClean(t, docPath)
	if got := pageCount(t, docPath); got != 1 {
		t.Errorf("pages = %d, want 1", got)
	}

	if err := exec.Command(pagemarkBinary, "init", dir).Run(); err == nil {
		t.Error("second init without --force should fail")
	}
}

func TestConformance_ConfigNextToDocument(t *testing.T) {
	dir := t.TempDir()
	cfg := "pageSize: Legal\nwatermark: true\nwatermarkText: DRAFT\n"
	if err := os.WriteFile(filepath.Join(dir, ".pagemark.yml"), []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}
	md := filepath.Join(dir, "notes.md")
	if err := os.WriteFile(md, []byte("One\n\n---\n\nTwo\n"), 0644); err != nil {
		t.Fatal(err)
	}
	docPath := filepath.Join(dir, "notes.html")
	if out, err := exec.Command(pagemarkBinary, "import", md, docPath).CombinedOutput(); err != nil {
		t.Fatalf("pagemark import: %v\n%s", err, out)
	}

	data, err := os.ReadFile(docPath)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(string(data), `data-page-height="14in"`); got != 2 {
		t.Errorf("legal pages = %d, want 2", got)
	}
	if got := strings.Count(string(data), ">DRAFT<"); got != 2 {
		t.Errorf("watermarks = %d, want 2", got)
	}
}

func TestConformance_RejectsUnknownConfigKeys(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".pagemark.yml"), []byte("paperSize: A5\n"), 0644); err != nil {
		t.Fatal(err)
	}
	md := filepath.Join(dir, "notes.md")
	if err := os.WriteFile(md, []byte("One\n"), 0644); err != nil {
		t.Fatal(err)
	}
	out, err := exec.Command(pagemarkBinary, "import", "--json", md, filepath.Join(dir, "notes.html")).Output()
	if err == nil {
		t.Fatal("expected non-zero exit")
	}
	var actual opsJSONOutput
	if err := json.Unmarshal(out, &actual); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, out)
	}
	checkDiagnosticsSubset(t, []diagnosticItem{{Severity: "error", Code: "PGE001"}}, actual.Diagnostics)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// pageCount asks `pagemark stats --json` for the number of pages.
func pageCount(t *testing.T, docPath string) int {
	t.Helper()
	out, err := exec.Command(pagemarkBinary, "stats", "--json", docPath).Output()
	if err != nil {
		t.Fatalf("pagemark stats: %v", err)
	}
	var stats struct {
		TotalPages int `json:"totalPages"`
	}
	if err := json.Unmarshal(out, &stats); err != nil {
		t.Fatalf("unmarshal stats: %v\n%s", err, out)
	}
	return stats.TotalPages
}

// checkClean asserts that `pagemark check` finds no errors in docPath.
func checkClean(t *testing.T, docPath string) {
	t.Helper()
	out, err := exec.Command(pagemarkBinary, "check", "--json", docPath).Output()
	if err != nil {
		t.Errorf("pagemark check: %v\n%s", err, out)
		return
	}
	var result struct {
		Diagnostics []diagnosticItem `json:"diagnostics"`
	}
	if err := json.Unmarshal(out, &result); err != nil {
		t.Fatalf("unmarshal check: %v\n%s", err, out)
	}
	checkDiagnosticsSubset(t, nil, result.Diagnostics)
}

func readJSON(t *testing.T, path string, v any) {
	t.Helper()
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", filepath.Base(path), err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		t.Fatalf("parse %s: %v", filepath.Base(path), err)
	}
}

// skipIfMissingFiles skips the test if any of the named files are absent from dir.
func skipIfMissingFiles(t *testing.T, dir string, files []string) {
	t.Helper()
	for _, f := range files {
		if _, err := os.Stat(filepath.Join(dir, f)); err != nil {
			t.Skipf("required file %q missing; skipping", f)
		}
	}
}

// checkDiagnosticsSubset requires every expected {severity, code} pair in
// actual. Unexpected errors fail; unexpected warnings are permitted.
func checkDiagnosticsSubset(t *testing.T, expected, actual []diagnosticItem) {
	t.Helper()

	for _, exp := range expected {
		if !findDiagnostic(exp, actual) {
			t.Errorf("expected diagnostic {severity: %q, code: %q} not found in actual",
				exp.Severity, exp.Code)
		}
	}
	for _, act := range actual {
		if act.Severity == "error" && !findDiagnostic(act, expected) {
			t.Errorf("unexpected error diagnostic {code: %q, message: %q}",
				act.Code, act.Message)
		}
	}
}

// findDiagnostic reports whether diag appears in list, matching severity and code.
func findDiagnostic(diag diagnosticItem, list []diagnosticItem) bool {
	for _, item := range list {
		if item.Severity == diag.Severity && item.Code == diag.Code {
			return true
		}
	}
	return false
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0644)
}
