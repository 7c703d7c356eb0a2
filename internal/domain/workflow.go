// Package domain holds the rule evaluation and file materialization logic.
package domain

import (
	"context"
	"fmt"
	"log/slog"

	"autoconf.dev/pkg/autoconf/internal/adapter"
	"autoconf.dev/pkg/autoconf/internal/controller"
	m "autoconf.dev/pkg/autoconf/internal/model"
)

// RunArgs describes the workspace and configuration of one pass.
type RunArgs struct {
	Specs     []m.FileSpec
	Workspace m.Workspace
	Settings  adapter.SettingsReader
}

// ApplyArgs contains the arguments for a provisioning pass.
type ApplyArgs struct {
	RunArgs
	DryRun bool
	// Report is where a YAML summary is written; empty disables it.
	Report m.Path
}

// CheckArgs contains the arguments for evaluating rules only.
type CheckArgs struct {
	RunArgs
}

// Workflow ties the evaluator and materializer to the CLI.
type Workflow interface {
	Apply(ctx context.Context, args ApplyArgs) error
	Check(ctx context.Context, args CheckArgs) error
}

type workflow struct {
	adapter.WorkspaceFS
	adapter.EnvReader
	adapter.FileFinder
	adapter.ReportStore
	controller.UI
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
func NewWorkflow(
	fsAdapter adapter.WorkspaceFS,
	env adapter.EnvReader,
	finder adapter.FileFinder,
	reportStore adapter.ReportStore,
	ui controller.UI,
) Workflow {
	return &workflow{
		WorkspaceFS: fsAdapter,
		EnvReader:   env,
		FileFinder:  finder,
		ReportStore: reportStore,
		UI:          ui,
	}
}

func (w *workflow) evaluator(args RunArgs) Evaluator {
	return NewEvaluator(EvaluatorDeps{
		Workspace: args.Workspace,
		FS:        w.WorkspaceFS,
		Env:       w.EnvReader,
		Settings:  args.Settings,
		Finder:    w.FileFinder,
	})
}

// Apply materializes the configured files and displays the outcomes.
func (w *workflow) Apply(ctx context.Context, args ApplyArgs) error {
	mat := NewMaterializer(w.WorkspaceFS, w.evaluator(args.RunArgs), WithDryRun(args.DryRun))
	outcomes := mat.Materialize(ctx, args.Specs, args.Workspace)

	if err := w.DisplayOutcomes(ctx, args.Workspace, outcomes, args.DryRun); err != nil {
		slog.Error("Failed to display outcomes", "error", err)
		return fmt.Errorf("display outcomes: %w", err)
	}

	if args.Report == "" {
		return nil
	}

	report := m.Report{
		Workspace: args.Workspace,
		DryRun:    args.DryRun,
		Outcomes:  outcomes,
	}

	if err := w.SaveReport(args.Report, report); err != nil {
		slog.Error("Failed to save report", "path", args.Report, "error", err)
		return fmt.Errorf("save report: %w", err)
	}

	slog.Info("Saved report", "path", args.Report)

	return nil
}

// Check evaluates the rules of every file and displays the verdicts. It never
// writes to the workspace.
func (w *workflow) Check(ctx context.Context, args CheckArgs) error {
	eval := w.evaluator(args.RunArgs)

	checks := make([]m.RuleCheck, 0, len(args.Specs))
	for _, spec := range args.Specs {
		check := m.RuleCheck{Path: spec.Path, Pass: true}
		if spec.HasRules() {
			check.Verdicts = eval.EvaluateAll(ctx, spec.Rules)
		}

		for _, verdict := range check.Verdicts {
			check.Pass = check.Pass && verdict.Result
		}

		checks = append(checks, check)
	}

	if err := w.DisplayChecks(ctx, args.Workspace, checks); err != nil {
		slog.Error("Failed to display checks", "error", err)
		return fmt.Errorf("display checks: %w", err)
	}

	return nil
}
