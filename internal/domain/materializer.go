package domain

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"autoconf.dev/pkg/autoconf/internal/adapter"
	m "autoconf.dev/pkg/autoconf/internal/model"
)

// Materializer ensures the configured files exist in the workspace.
type Materializer interface {
	// Materialize processes specs in order and reports what happened to each.
	// Failures are per file: the whole list is always processed.
	Materialize(ctx context.Context, specs []m.FileSpec, workspace m.Workspace) []m.Outcome
}

// MaterializeOption configures a Materializer.
type MaterializeOption func(*materializer)

// WithDryRun makes the materializer decide without writing anything.
func WithDryRun(dryRun bool) MaterializeOption {
	return func(mat *materializer) {
		mat.dryRun = dryRun
	}
}

type materializer struct {
	fs        adapter.WorkspaceFS
	evaluator Evaluator
	dryRun    bool
}

// NewMaterializer constructs a Materializer that gates files with evaluator.
func NewMaterializer(fs adapter.WorkspaceFS, evaluator Evaluator, opts ...MaterializeOption) Materializer {
	mat := &materializer{
		fs:        fs,
		evaluator: evaluator,
	}

	for _, opt := range opts {
		opt(mat)
	}

	return mat
}

func (mat *materializer) Materialize(ctx context.Context, specs []m.FileSpec, workspace m.Workspace) []m.Outcome {
	if !workspace.IsOpen() || len(specs) == 0 {
		slog.Info("No files to ensure or workspace root not found", "root", workspace.Root, "files", len(specs))
		return nil
	}

	slog.Info("Ensuring files as per configuration", "root", workspace.Root, "files", len(specs), "dryRun", mat.dryRun)

	outcomes := make([]m.Outcome, 0, len(specs))
	for _, spec := range specs {
		outcomes = append(outcomes, mat.materializeOne(ctx, spec, workspace))
	}

	return outcomes
}

func (mat *materializer) materializeOne(ctx context.Context, spec m.FileSpec, workspace m.Workspace) (outcome m.Outcome) {
	outcome = m.Outcome{
		Spec:   spec,
		Path:   spec.Path,
		Target: mat.fs.JoinPath(string(workspace.Root), spec.Path),
	}

	defer func() {
		if r := recover(); r != nil {
			outcome.Action = m.ActionFailed
			outcome.Err = fmt.Sprintf("%v", r)
			slog.Error("Materializing file panicked", "path", spec.Path, "panic", r)
		}
	}()

	shouldCreate := true

	if spec.HasRules() {
		slog.Debug("Checking rules", "path", spec.Path, "rules", len(spec.Rules))

		outcome.Verdicts = mat.evaluator.EvaluateAll(ctx, spec.Rules)
		for _, verdict := range outcome.Verdicts {
			shouldCreate = shouldCreate && verdict.Result
		}

		slog.Info("Rule results", "path", spec.Path, "results", verdictResults(outcome.Verdicts), "shouldCreate", shouldCreate)
	}

	if !shouldCreate {
		outcome.Action = m.ActionSkippedRules
		slog.Info("Skipped file (rules not met)", "path", spec.Path)

		return outcome
	}

	var err error

	outcome.Action, err = mat.ensure(&outcome, spec)
	if err != nil {
		outcome.Action = m.ActionFailed
		outcome.Err = err.Error()
		slog.Error("Failed to ensure file", "target", outcome.Target, "error", err)
	}

	return outcome
}

func (mat *materializer) ensure(outcome *m.Outcome, spec m.FileSpec) (m.Action, error) {
	target := outcome.Target

	exists, err := mat.fs.Exists(target)
	if err != nil {
		return m.ActionFailed, fmt.Errorf("stat %s: %w", target, err)
	}

	if !exists {
		return mat.create(outcome, spec)
	}

	if !spec.Append {
		slog.Info("File already exists", "path", spec.Path)
		return m.ActionExists, nil
	}

	return mat.appendContent(outcome, spec)
}

func (mat *materializer) create(outcome *m.Outcome, spec m.FileSpec) (m.Action, error) {
	target := outcome.Target
	dir := m.Path(filepath.Dir(string(target)))

	if !mat.dryRun {
		dirExists, err := mat.fs.Exists(dir)
		if err != nil {
			return m.ActionFailed, fmt.Errorf("stat %s: %w", dir, err)
		}

		if !dirExists {
			if err := mat.fs.MkdirAll(dir); err != nil {
				return m.ActionFailed, fmt.Errorf("create directory %s: %w", dir, err)
			}

			slog.Info("Created directory", "dir", dir)
		}
	}

	if spec.Append && !spec.CreateIfNotExist {
		slog.Info("Skipped append: file does not exist and createIfNotExist is false", "target", target)
		return m.ActionSkippedAppendMissing, nil
	}

	outcome.After = spec.Content

	if !mat.dryRun {
		if err := mat.fs.WriteFile(target, []byte(spec.Content)); err != nil {
			return m.ActionFailed, fmt.Errorf("write %s: %w", target, err)
		}
	}

	slog.Info("Created file", "target", target, "append", spec.Append, "dryRun", mat.dryRun)

	return m.ActionCreated, nil
}

func (mat *materializer) appendContent(outcome *m.Outcome, spec m.FileSpec) (m.Action, error) {
	target := outcome.Target

	existing, err := mat.fs.ReadFile(target)
	if err != nil {
		return m.ActionFailed, fmt.Errorf("read %s: %w", target, err)
	}

	if spec.Content != "" && strings.Contains(string(existing), spec.Content) {
		slog.Info("Content already present in file", "target", target)
		return m.ActionSkippedDuplicate, nil
	}

	outcome.Before = string(existing)
	outcome.After = string(existing) + spec.Content

	if !mat.dryRun {
		if err := mat.fs.AppendFile(target, []byte(spec.Content)); err != nil {
			return m.ActionFailed, fmt.Errorf("append %s: %w", target, err)
		}
	}

	slog.Info("Appended to existing file", "target", target, "dryRun", mat.dryRun)

	return m.ActionAppended, nil
}

func verdictResults(verdicts []m.Verdict) []bool {
	results := make([]bool, len(verdicts))
	for i, v := range verdicts {
		results[i] = v.Result
	}

	return results
}
