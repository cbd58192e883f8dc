// Package controller provides output adapters for displaying apply run results.
package controller

import (
	"context"
	"os"

	m "codeapply.dev/pkg/codeapply/internal/model"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// StartMode defines the mode of operation for the UI.
type StartMode int

// Available StartMode values.
const (
	ModeApply StartMode = iota
	ModeCopy
	ModeReport
)

// StartOption is a functional option for the Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	mode    StartMode
	dryRun  bool
	verbose bool
}

// WithApplyMode sets the UI to snippet apply mode.
func WithApplyMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeApply
	}
}

// WithCopyMode sets the UI to verbatim copy mode.
func WithCopyMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeCopy
	}
}

// WithReportMode sets the UI to report browsing mode.
func WithReportMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeReport
	}
}

// WithDryRun tells the UI to narrate planned changes instead of applied ones.
func WithDryRun(dryRun bool) StartOption {
	return func(c *StartConfig) {
		c.dryRun = dryRun
	}
}

// WithVerbose enables per-file narration beyond skips and dry-run notices.
func WithVerbose(verbose bool) StartOption {
	return func(c *StartConfig) {
		c.verbose = verbose
	}
}

// UI defines the interface for displaying apply runs as they happen.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	Start(ctx context.Context, options ...StartOption) error
	Close(ctx context.Context)
	Wait(ctx context.Context) // Wait for UI to finish (user closes it)
	DisplayParsedCount(ctx context.Context, count int) error
	DisplayDecision(ctx context.Context, decision m.Decision) error
	DisplayDiff(ctx context.Context, path m.Path, diff string) error
	DisplayCopyOp(ctx context.Context, op m.CopyOp) error
	DisplaySummary(ctx context.Context, report m.RunReport) error
	DisplayReport(ctx context.Context, report m.RunReport) error
	DisplayReports(ctx context.Context, reports []m.RunReport) error
}

// NewUI picks the interactive UI when the output is a terminal and the
// plain printer otherwise.
func NewUI(cmd *cobra.Command, interactive bool) UI {
	if interactive {
		return NewTUI(cmd.OutOrStdout())
	}

	return NewSimpleUI(cmd)
}

// IsTTY reports whether the given file is attached to a terminal.
func IsTTY(output *os.File) bool {
	return term.IsTerminal(int(output.Fd()))
}
