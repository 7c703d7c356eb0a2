package domain

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"autoconf.dev/pkg/autoconf/internal/adapter"
	m "autoconf.dev/pkg/autoconf/internal/model"
)

// recordingFinder remembers the last search and returns canned results.
type recordingFinder struct {
	mu      sync.Mutex
	root    m.Path
	include string
	exclude string
	limit   int
	matches []string
	err     error
}

func (f *recordingFinder) FindFiles(_ context.Context, root m.Path, include, exclude string, limit int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.root, f.include, f.exclude, f.limit = root, include, exclude, limit

	return f.matches, f.err
}

// failingFS fails every read-side operation with err.
type failingFS struct {
	*adapter.LocalWorkspaceFS
	err error
}

func (f *failingFS) Exists(m.Path) (bool, error) { return false, f.err }
func (f *failingFS) Lstat(m.Path) (os.FileInfo, error) { return nil, f.err }
func (f *failingFS) ReadFile(m.Path) ([]byte, error) { return nil, f.err }
func (f *failingFS) Stat(m.Path) (os.FileInfo, error) { return nil, f.err }
func (f *failingFS) WriteFile(m.Path, []byte) error { return f.err }
func (f *failingFS) AppendFile(m.Path, []byte) error { return f.err }
func (f *failingFS) MkdirAll(m.Path) error { return f.err }

// writeFailingFS reads from disk but refuses to write to the listed paths.
type writeFailingFS struct {
	*adapter.LocalWorkspaceFS
	deny map[m.Path]error
}

func (f *writeFailingFS) WriteFile(path m.Path, content []byte) error {
	if err, ok := f.deny[path]; ok {
		return err
	}

	return f.LocalWorkspaceFS.WriteFile(path, content)
}

func (f *writeFailingFS) AppendFile(path m.Path, content []byte) error {
	if err, ok := f.deny[path]; ok {
		return err
	}

	return f.LocalWorkspaceFS.AppendFile(path, content)
}

type panickingSettings struct{}

func (panickingSettings) Get(string) any {
	panic("settings backend exploded")
}

// fixedEvaluator returns preset verdicts and counts calls.
type fixedEvaluator struct {
	mu      sync.Mutex
	results map[m.RuleType]bool
	calls   int
}

func (f *fixedEvaluator) Evaluate(_ context.Context, rule m.Rule) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++

	return f.results[rule.Type]
}

func (f *fixedEvaluator) EvaluateAll(ctx context.Context, rules []m.Rule) []m.Verdict {
	verdicts := make([]m.Verdict, len(rules))
	for i, rule := range rules {
		verdicts[i] = m.Verdict{Rule: rule, Result: f.Evaluate(ctx, rule)}
	}

	return verdicts
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}

	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}

	return string(data)
}
