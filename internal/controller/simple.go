package controller

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	m "autoconf.dev/pkg/autoconf/internal/model"
)

const (
	noFilesMessage = "No files to ensure or workspace root not found."
	dryRunBanner   = "Dry run: no files were written."
	diffContext    = 3
)

var (
	changedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	skippedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Faint(true)
)

// SimpleUIOption configures a SimpleUI.
type SimpleUIOption func(*SimpleUI)

// WithStyles enables colored status labels.
func WithStyles(enabled bool) SimpleUIOption {
	return func(s *SimpleUI) {
		s.styled = enabled
	}
}

// SimpleUI implements UI using cobra Command's output stream.
type SimpleUI struct {
	cmd    *cobra.Command
	styled bool
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command, opts ...SimpleUIOption) *SimpleUI {
	s := &SimpleUI{cmd: cmd}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// DisplayOutcomes prints one row per materialized file and, for dry runs, the
// diff each change would produce.
func (s *SimpleUI) DisplayOutcomes(ctx context.Context, workspace m.Workspace, outcomes []m.Outcome, dryRun bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(outcomes) == 0 {
		s.printf("%s\n", noFilesMessage)
		return nil
	}

	if dryRun {
		s.printf("%s\n", dryRunBanner)
	}

	s.printf("Workspace: %s (%s)\n\n", workspace.Name, workspace.Root)
	s.printf("%s", s.renderOutcomeTable(outcomes))

	if !dryRun {
		return nil
	}

	for _, outcome := range outcomes {
		if !outcome.Action.Changed() {
			continue
		}

		diff, err := renderDiff(outcome)
		if err != nil {
			return fmt.Errorf("diff %s: %w", outcome.Path, err)
		}

		s.printf("\n%s", diff)
	}

	return nil
}

func (s *SimpleUI) renderOutcomeTable(outcomes []m.Outcome) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Path", "Action", "Rules"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT})

	changed := 0

	for _, outcome := range outcomes {
		if outcome.Action.Changed() {
			changed++
		}

		action := s.styleAction(outcome.Action)
		if outcome.Err != "" {
			action = fmt.Sprintf("%s: %s", action, outcome.Err)
		}

		table.Append([]string{outcome.Path, action, formatResults(outcome.Verdicts)})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Files %d", len(outcomes)),
		fmt.Sprintf("Changed %d", changed),
		"",
	})

	table.Render()

	return tableBuffer.String()
}

// DisplayChecks prints each rule verdict grouped by file.
func (s *SimpleUI) DisplayChecks(ctx context.Context, workspace m.Workspace, checks []m.RuleCheck) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(checks) == 0 {
		s.printf("No files configured.\n")
		return nil
	}

	if !workspace.IsOpen() {
		s.printf("No workspace open: paths resolve against the working directory.\n")
	} else {
		s.printf("Workspace: %s (%s)\n", workspace.Name, workspace.Root)
	}

	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Path", "Rule", "Result", "Reason"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)

	passing := 0

	for _, check := range checks {
		if check.Pass {
			passing++
		}

		if len(check.Verdicts) == 0 {
			table.Append([]string{check.Path, "(none)", s.styleResult(true), ""})
			continue
		}

		for i, verdict := range check.Verdicts {
			path := ""
			if i == 0 {
				path = check.Path
			}

			table.Append([]string{path, verdict.Rule.String(), s.styleResult(verdict.Result), verdict.Reason})
		}
	}

	table.SetFooter([]string{fmt.Sprintf("Total Files %d", len(checks)), fmt.Sprintf("Passing %d", passing), "", ""})
	table.Render()

	s.printf("\n%s", tableBuffer.String())

	return nil
}

func renderDiff(outcome m.Outcome) (string, error) {
	from := string(outcome.Target)
	if outcome.Action == m.ActionCreated {
		from = "/dev/null"
	}

	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(outcome.Before),
		B:        difflib.SplitLines(outcome.After),
		FromFile: from,
		ToFile:   string(outcome.Target),
		Context:  diffContext,
	})
}

func formatResults(verdicts []m.Verdict) string {
	if len(verdicts) == 0 {
		return "-"
	}

	parts := make([]string, len(verdicts))
	for i, v := range verdicts {
		parts[i] = fmt.Sprintf("%t", v.Result)
	}

	return strings.Join(parts, ", ")
}

func (s *SimpleUI) styleAction(action m.Action) string {
	label := action.String()
	if !s.styled {
		return label
	}

	switch action {
	case m.ActionCreated, m.ActionAppended:
		return changedStyle.Render(label)
	case m.ActionFailed:
		return failedStyle.Render(label)
	case m.ActionExists:
		return mutedStyle.Render(label)
	default:
		return skippedStyle.Render(label)
	}
}

func (s *SimpleUI) styleResult(result bool) string {
	label := fmt.Sprintf("%t", result)
	if !s.styled {
		return label
	}

	if result {
		return changedStyle.Render(label)
	}

	return failedStyle.Render(label)
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
