package domain

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autoconf.dev/pkg/autoconf/internal/adapter"
	m "autoconf.dev/pkg/autoconf/internal/model"
)

func newTestEvaluator(root string, opts ...func(*EvaluatorDeps)) Evaluator {
	deps := EvaluatorDeps{
		Workspace: m.Workspace{Root: m.Path(root), Name: filepath.Base(root)},
		FS:        adapter.NewLocalWorkspaceFS(),
		Env:       adapter.MapEnv{},
		Settings:  adapter.MapSettings{},
		Finder:    adapter.NewLocalFileFinder(),
	}

	for _, opt := range opts {
		opt(&deps)
	}

	return NewEvaluator(deps)
}

func TestEvaluator_FileNotExists(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "present.txt"), "x")

	eval := newTestEvaluator(root)
	ctx := context.Background()

	assert.True(t, eval.Evaluate(ctx, m.Rule{Type: m.RuleFileNotExists, Value: "absent.txt"}))
	assert.False(t, eval.Evaluate(ctx, m.Rule{Type: m.RuleFileNotExists, Value: "present.txt"}))
}

func TestEvaluator_FolderExists(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src", "main.go"), "package main\n")

	eval := newTestEvaluator(root)
	ctx := context.Background()

	assert.True(t, eval.Evaluate(ctx, m.Rule{Type: m.RuleFolderExists, Value: "src"}))
	assert.False(t, eval.Evaluate(ctx, m.Rule{Type: m.RuleFolderExists, Value: "missing"}))
	assert.False(t, eval.Evaluate(ctx, m.Rule{Type: m.RuleFolderExists, Value: "src/main.go"}))

	t.Run("symlinked directory is not a folder", func(t *testing.T) {
		if err := os.Symlink(filepath.Join(root, "src"), filepath.Join(root, "link")); err != nil {
			t.Skipf("symlinks unsupported: %v", err)
		}

		assert.False(t, eval.Evaluate(ctx, m.Rule{Type: m.RuleFolderExists, Value: "link"}))
	})
}

func TestEvaluator_RegularFileIsNeitherAbsentNorFolder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "f"), "content")

	eval := newTestEvaluator(root)
	ctx := context.Background()

	assert.False(t, eval.Evaluate(ctx, m.Rule{Type: m.RuleFileNotExists, Value: "f"}))
	assert.False(t, eval.Evaluate(ctx, m.Rule{Type: m.RuleFolderExists, Value: "f"}))
}

func TestEvaluator_EnvVarSet(t *testing.T) {
	eval := newTestEvaluator(t.TempDir(), func(d *EvaluatorDeps) {
		d.Env = adapter.MapEnv{"CI": "true", "EMPTY": ""}
	})
	ctx := context.Background()

	assert.True(t, eval.Evaluate(ctx, m.Rule{Type: m.RuleEnvVarSet, Value: "CI"}))
	assert.False(t, eval.Evaluate(ctx, m.Rule{Type: m.RuleEnvVarSet, Value: "EMPTY"}))
	assert.False(t, eval.Evaluate(ctx, m.Rule{Type: m.RuleEnvVarSet, Value: "UNSET"}))
}

func TestEvaluator_FileExistsGlob(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "pkg", "a.go"), "package pkg\n")
	writeFile(t, filepath.Join(root, "node_modules", "dep", "index.js"), "")

	eval := newTestEvaluator(root)
	ctx := context.Background()

	assert.True(t, eval.Evaluate(ctx, m.Rule{Type: m.RuleFileExistsGlob, Value: "**/*.go"}))
	assert.False(t, eval.Evaluate(ctx, m.Rule{Type: m.RuleFileExistsGlob, Value: "**/*.py"}))
	assert.False(t, eval.Evaluate(ctx, m.Rule{Type: m.RuleFileExistsGlob, Value: "**/*.js"}))
	assert.False(t, eval.Evaluate(ctx, m.Rule{Type: m.RuleFileExistsGlob, Value: "[bad"}))
}

func TestEvaluator_FileExistsGlobSearchesOnce(t *testing.T) {
	finder := &recordingFinder{matches: []string{"a.go"}}
	eval := newTestEvaluator("/ws", func(d *EvaluatorDeps) { d.Finder = finder })

	assert.True(t, eval.Evaluate(context.Background(), m.Rule{Type: m.RuleFileExistsGlob, Value: "**/*.go"}))
	assert.Equal(t, m.Path("/ws"), finder.root)
	assert.Equal(t, "**/*.go", finder.include)
	assert.Equal(t, "**/node_modules/**", finder.exclude)
	assert.Equal(t, 1, finder.limit)
}

func TestEvaluator_SettingEquals(t *testing.T) {
	eval := newTestEvaluator(t.TempDir(), func(d *EvaluatorDeps) {
		d.Settings = adapter.MapSettings{
			"editor.tabSize":      float64(4),
			"editor.formatOnSave": true,
			"python.linter":       "ruff",
			"editor.rulers":       []any{80, 120},
		}
	})
	ctx := context.Background()

	tests := []struct {
		value string
		want  bool
	}{
		{"editor.tabSize=4", true},
		{"editor.tabSize=4.0", false},
		{"editor.formatOnSave=true", true},
		{"python.linter=ruff", true},
		{"python.linter=black", false},
		{"editor.rulers=80,120", true},
		{"foo.bar=baz", false},
		{"foo.bar=undefined", true},
		{"python.linter", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, eval.Evaluate(ctx, m.Rule{Type: m.RuleSettingEquals, Value: tt.value}))
		})
	}
}

func TestEvaluator_FileContains(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "go.mod"), "module example.com/x\n\ngo 1.25\n")

	eval := newTestEvaluator(root)
	ctx := context.Background()

	assert.True(t, eval.Evaluate(ctx, m.Rule{Type: m.RuleFileContains, Value: "go.mod|go 1.25"}))
	assert.True(t, eval.Evaluate(ctx, m.Rule{Type: m.RuleFileContains, Value: "go.mod|"}))
	assert.False(t, eval.Evaluate(ctx, m.Rule{Type: m.RuleFileContains, Value: "go.mod|go 1.18"}))
	assert.False(t, eval.Evaluate(ctx, m.Rule{Type: m.RuleFileContains, Value: "missing.txt|x"}))
	assert.False(t, eval.Evaluate(ctx, m.Rule{Type: m.RuleFileContains, Value: "go.mod"}))
	assert.True(t, eval.Evaluate(ctx, m.Rule{Type: m.RuleFileContains, Path: "go.mod", Substring: "example.com"}))
}

func TestEvaluator_WorkspaceName(t *testing.T) {
	ctx := context.Background()

	eval := NewEvaluator(EvaluatorDeps{
		Workspace: m.Workspace{Root: "/ws/demo", Name: "demo"},
		FS:        adapter.NewLocalWorkspaceFS(),
	})
	assert.True(t, eval.Evaluate(ctx, m.Rule{Type: m.RuleWorkspaceName, Value: "demo"}))
	assert.False(t, eval.Evaluate(ctx, m.Rule{Type: m.RuleWorkspaceName, Value: "Demo"}))

	closed := NewEvaluator(EvaluatorDeps{FS: adapter.NewLocalWorkspaceFS()})
	assert.False(t, closed.Evaluate(ctx, m.Rule{Type: m.RuleWorkspaceName, Value: ""}))
}

func TestEvaluator_UnknownAndMalformed(t *testing.T) {
	eval := newTestEvaluator(t.TempDir())
	ctx := context.Background()

	rules := []m.Rule{
		{Type: "fileIsHappy", Value: "x"},
		{Type: "", Value: ""},
		{Type: m.RuleSettingEquals, Value: "no-delimiter"},
		{Type: m.RuleFileContains, Value: "no-delimiter"},
	}

	for _, rule := range rules {
		assert.NotPanics(t, func() {
			assert.False(t, eval.Evaluate(ctx, rule), rule.String())
		})
	}

	verdicts := eval.EvaluateAll(ctx, rules)
	require.Len(t, verdicts, len(rules))

	for _, v := range verdicts {
		assert.False(t, v.Result)
		assert.NotEmpty(t, v.Reason)
	}
}

func TestEvaluator_FailuresResolveFalse(t *testing.T) {
	ctx := context.Background()
	eval := newTestEvaluator("/ws", func(d *EvaluatorDeps) {
		d.FS = &failingFS{LocalWorkspaceFS: adapter.NewLocalWorkspaceFS(), err: errors.New("permission denied")}
		d.Finder = &recordingFinder{err: errors.New("walk failed")}
		d.Settings = panickingSettings{}
	})

	assert.False(t, eval.Evaluate(ctx, m.Rule{Type: m.RuleFileNotExists, Value: "a"}))
	assert.False(t, eval.Evaluate(ctx, m.Rule{Type: m.RuleFolderExists, Value: "a"}))
	assert.False(t, eval.Evaluate(ctx, m.Rule{Type: m.RuleFileContains, Value: "a|b"}))
	assert.False(t, eval.Evaluate(ctx, m.Rule{Type: m.RuleFileExistsGlob, Value: "*"}))
	assert.NotPanics(t, func() {
		assert.False(t, eval.Evaluate(ctx, m.Rule{Type: m.RuleSettingEquals, Value: "a=b"}))
	})
}

func TestEvaluator_RelativeWithoutWorkspace(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, filepath.Join(dir, "local.txt"), "x")

	eval := NewEvaluator(EvaluatorDeps{FS: adapter.NewLocalWorkspaceFS()})

	assert.False(t, eval.Evaluate(context.Background(), m.Rule{Type: m.RuleFileNotExists, Value: "local.txt"}))
	assert.True(t, eval.Evaluate(context.Background(), m.Rule{Type: m.RuleFileNotExists, Value: "other.txt"}))
}

func TestEvaluator_EvaluateAllKeepsOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "x")

	eval := newTestEvaluator(root, func(d *EvaluatorDeps) { d.Env = adapter.MapEnv{"SET": "1"} })

	rules := []m.Rule{
		{Type: m.RuleFileNotExists, Value: "a.txt"},
		{Type: m.RuleEnvVarSet, Value: "SET"},
		{Type: m.RuleFileNotExists, Value: "b.txt"},
		{Type: m.RuleEnvVarSet, Value: "UNSET"},
	}

	verdicts := eval.EvaluateAll(context.Background(), rules)
	require.Len(t, verdicts, 4)

	want := []bool{false, true, true, false}
	for i, v := range verdicts {
		assert.Equal(t, rules[i], v.Rule)
		assert.Equal(t, want[i], v.Result, "rule %d", i)
	}
}
