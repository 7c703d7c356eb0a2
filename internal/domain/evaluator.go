package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"autoconf.dev/pkg/autoconf/internal/adapter"
	m "autoconf.dev/pkg/autoconf/internal/model"
)

const (
	// globExclude keeps dependency trees out of fileExistsGlob searches.
	globExclude = "**/node_modules/**"
	// globLimit stops the search at the first match.
	globLimit = 1
)

// Evaluator decides whether a rule holds for the current workspace.
// Evaluate never fails: any problem resolves to false and is logged.
type Evaluator interface {
	Evaluate(ctx context.Context, rule m.Rule) bool
	EvaluateAll(ctx context.Context, rules []m.Rule) []m.Verdict
}

// EvaluatorDeps are the read-only collaborators rules are checked against.
type EvaluatorDeps struct {
	Workspace m.Workspace
	FS        adapter.WorkspaceFS
	Env       adapter.EnvReader
	Settings  adapter.SettingsReader
	Finder    adapter.FileFinder
}

type evaluator struct {
	EvaluatorDeps
}

// NewEvaluator constructs an Evaluator over the provided collaborators.
func NewEvaluator(deps EvaluatorDeps) Evaluator {
	return &evaluator{EvaluatorDeps: deps}
}

func (e *evaluator) Evaluate(ctx context.Context, rule m.Rule) bool {
	return e.verdict(ctx, rule).Result
}

// EvaluateAll checks every rule concurrently and returns the verdicts in rule
// order. All rules are evaluated even when an earlier one is false.
func (e *evaluator) EvaluateAll(ctx context.Context, rules []m.Rule) []m.Verdict {
	verdicts := make([]m.Verdict, len(rules))

	var group errgroup.Group

	for i, rule := range rules {
		group.Go(func() error {
			verdicts[i] = e.verdict(ctx, rule)
			return nil
		})
	}

	_ = group.Wait()

	return verdicts
}

func (e *evaluator) verdict(ctx context.Context, rule m.Rule) (v m.Verdict) {
	v.Rule = rule

	defer func() {
		if r := recover(); r != nil {
			v.Result = false
			v.Reason = fmt.Sprintf("error checking rule: %v", r)
			slog.Error("Rule evaluation panicked", "rule", rule.String(), "panic", r)
		}
	}()

	slog.Debug("Checking rule", "type", rule.Type, "value", rule.Value)

	predicate, err := m.ParseRule(rule)
	if err != nil {
		v.Reason = err.Error()

		if errors.Is(err, m.ErrUnknownRuleKind) {
			slog.Warn("Unknown rule type", "type", rule.Type)
		} else {
			slog.Warn("Malformed rule value", "type", rule.Type, "value", rule.Value, "error", err)
		}

		return v
	}

	v.Result, v.Reason = e.check(ctx, predicate)
	slog.Info("Rule evaluated", "type", rule.Type, "value", rule.Value, "result", v.Result, "reason", v.Reason)

	return v
}

func (e *evaluator) check(ctx context.Context, predicate m.Predicate) (bool, string) {
	switch p := predicate.(type) {
	case m.FileNotExists:
		return e.fileNotExists(p)
	case m.EnvVarSet:
		return e.envVarSet(p)
	case m.FileExistsGlob:
		return e.fileExistsGlob(ctx, p)
	case m.FolderExists:
		return e.folderExists(p)
	case m.SettingEquals:
		return e.settingEquals(p)
	case m.FileContains:
		return e.fileContains(p)
	case m.WorkspaceName:
		return e.workspaceName(p)
	}

	return false, fmt.Sprintf("unsupported predicate %T", predicate)
}

// resolve joins a relative payload onto the workspace root when one is open.
func (e *evaluator) resolve(path string) m.Path {
	if !e.Workspace.IsOpen() {
		return m.Path(path)
	}

	return e.FS.JoinPath(string(e.Workspace.Root), path)
}

func (e *evaluator) fileNotExists(p m.FileNotExists) (bool, string) {
	abs := e.resolve(p.Path)

	exists, err := e.FS.Exists(abs)
	if err != nil {
		return false, fmt.Sprintf("stat %s: %v", abs, err)
	}

	return !exists, fmt.Sprintf("%s exists=%t", abs, exists)
}

func (e *evaluator) envVarSet(p m.EnvVarSet) (bool, string) {
	if e.Env == nil {
		return false, "no environment"
	}

	value, ok := e.Env.LookupEnv(p.Name)

	return ok && value != "", fmt.Sprintf("%s set=%t", p.Name, ok && value != "")
}

func (e *evaluator) fileExistsGlob(ctx context.Context, p m.FileExistsGlob) (bool, string) {
	if e.Finder == nil {
		return false, "no file finder"
	}

	files, err := e.Finder.FindFiles(ctx, e.Workspace.Root, p.Pattern, globExclude, globLimit)
	if err != nil {
		return false, fmt.Sprintf("find %s: %v", p.Pattern, err)
	}

	if len(files) == 0 {
		return false, fmt.Sprintf("no match for %s", p.Pattern)
	}

	return true, fmt.Sprintf("%s matched %s", p.Pattern, files[0])
}

func (e *evaluator) folderExists(p m.FolderExists) (bool, string) {
	abs := e.resolve(p.Path)

	exists, err := e.FS.Exists(abs)
	if err != nil {
		return false, fmt.Sprintf("stat %s: %v", abs, err)
	}

	if !exists {
		return false, fmt.Sprintf("%s does not exist", abs)
	}

	info, err := e.FS.Lstat(abs)
	if err != nil {
		return false, fmt.Sprintf("lstat %s: %v", abs, err)
	}

	return info.IsDir(), fmt.Sprintf("%s dir=%t", abs, info.IsDir())
}

func (e *evaluator) settingEquals(p m.SettingEquals) (bool, string) {
	var raw any
	if e.Settings != nil {
		raw = e.Settings.Get(p.Key)
	}

	actual := adapter.StringifySetting(raw)

	return actual == p.Expected, fmt.Sprintf("%s == %s (actual: %s)", p.Key, p.Expected, actual)
}

func (e *evaluator) fileContains(p m.FileContains) (bool, string) {
	abs := e.resolve(p.Path)

	exists, err := e.FS.Exists(abs)
	if err != nil {
		return false, fmt.Sprintf("stat %s: %v", abs, err)
	}

	if !exists {
		return false, fmt.Sprintf("file does not exist: %s", abs)
	}

	content, err := e.FS.ReadFile(abs)
	if err != nil {
		return false, fmt.Sprintf("read %s: %v", abs, err)
	}

	found := strings.Contains(string(content), p.Substring)

	return found, fmt.Sprintf("%s contains %q => %t", abs, p.Substring, found)
}

func (e *evaluator) workspaceName(p m.WorkspaceName) (bool, string) {
	if !e.Workspace.IsOpen() {
		return false, "no workspace folders"
	}

	return e.Workspace.Name == p.Name, fmt.Sprintf("%s == %s", e.Workspace.Name, p.Name)
}
