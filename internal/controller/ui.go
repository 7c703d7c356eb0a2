// Package controller provides output adapters for displaying provisioning results.
package controller

import (
	"context"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	m "autoconf.dev/pkg/autoconf/internal/model"
)

// UI defines how provisioning results are presented.
// Implementations can use different output methods (plain text, styled, etc).
type UI interface {
	DisplayOutcomes(ctx context.Context, workspace m.Workspace, outcomes []m.Outcome, dryRun bool) error
	DisplayChecks(ctx context.Context, workspace m.Workspace, checks []m.RuleCheck) error
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// NewUI returns the UI for cmd. Styling is only applied on terminals.
func NewUI(cmd *cobra.Command, tty bool) UI {
	return NewSimpleUI(cmd, WithStyles(tty))
}
