package controller

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	m "codeapply.dev/pkg/codeapply/internal/model"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// SimpleUI implements UI using cobra Command's output stream.
type SimpleUI struct {
	cmd    *cobra.Command
	config StartConfig
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start configures the UI for the coming run.
func (s *SimpleUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	config := StartConfig{}
	for _, option := range options {
		option(&config)
	}

	s.config = config

	return nil
}

// Close finalizes the UI.
func (s *SimpleUI) Close(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
}

// Wait blocks until the UI is closed (no-op for SimpleUI).
func (s *SimpleUI) Wait(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
	// SimpleUI doesn't block - it just prints and continues
}

// DisplayParsedCount reports how many file blocks the input contained.
func (s *SimpleUI) DisplayParsedCount(ctx context.Context, count int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("Parsed %d files from prompt output\n", count)

	return nil
}

// DisplayDecision narrates one snippet outcome. Skips always print, dry runs
// announce what would happen, everything else appears only in verbose mode.
func (s *SimpleUI) DisplayDecision(ctx context.Context, decision m.Decision) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, line := range narrateDecision(decision, s.config) {
		s.printf("%s\n", line)
	}

	return nil
}

// DisplayDiff prints the unified diff an update introduces.
func (s *SimpleUI) DisplayDiff(ctx context.Context, _ m.Path, diff string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("%s", diff)

	return nil
}

// DisplayCopyOp narrates a single file copy.
func (s *SimpleUI) DisplayCopyOp(ctx context.Context, op m.CopyOp) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if line, ok := narrateCopyOp(op, s.config); ok {
		s.printf("%s\n", line)
	}

	return nil
}

// DisplaySummary prints the run's outcome table.
func (s *SimpleUI) DisplaySummary(ctx context.Context, report m.RunReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(report.Outcomes) == 0 {
		return nil
	}

	s.printf("\n%s", renderOutcomeTable(report))

	return nil
}

// DisplayReport prints a saved run report with its outcome table.
func (s *SimpleUI) DisplayReport(ctx context.Context, report m.RunReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("Report %s\n", report.ID)
	s.printf("Mode: %s  Target: %s\n", report.Mode, report.Target)

	if report.Mode == m.ModePrompt {
		s.printf("Threshold: %v  Force: %v  Dry run: %v\n", report.Threshold, report.Force, report.DryRun)
	}

	s.printf("Started: %s  Duration: %s\n", report.StartedAt.Format(time.RFC3339), report.Duration)

	if len(report.Outcomes) > 0 {
		s.printf("\n%s", renderOutcomeTable(report))
	}

	return nil
}

// DisplayReports prints one line per saved run, most recent first.
func (s *SimpleUI) DisplayReports(ctx context.Context, reports []m.RunReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(reports) == 0 {
		s.printf("No reports found\n")
		return nil
	}

	s.printf("\n%s", renderReportListTable(reports))

	return nil
}

// narrateDecision turns a decision into its narration lines. Skips always
// produce a line, dry runs announce the planned change, and the rest only
// shows up in verbose mode.
func narrateDecision(decision m.Decision, config StartConfig) []string {
	lines := make([]string, 0, 2)

	switch decision.Action {
	case m.ActionCreate:
		if config.verbose {
			if decision.Candidates == 0 {
				lines = append(lines, fmt.Sprintf("No matching files found, creating new file: %s", decision.Snippet.Path))
			} else {
				lines = append(lines, fmt.Sprintf("Force mode enabled, creating new file: %s", decision.Snippet.Path))
			}
		}

		if config.dryRun {
			lines = append(lines, fmt.Sprintf("Would create %s", decision.Target))
		} else if config.verbose {
			lines = append(lines, fmt.Sprintf("Created %s", decision.Target))
		}
	case m.ActionUpdate:
		if config.verbose {
			lines = append(lines, fmt.Sprintf("Found matching file: %s (similarity: %.2f)", decision.Target, decision.Score))
		}

		if config.dryRun {
			lines = append(lines, fmt.Sprintf("Would update %s", decision.Target))
		} else if config.verbose {
			lines = append(lines, fmt.Sprintf("Updated %s", decision.Target))
		}
	case m.ActionSkip:
		if decision.Candidates == 0 {
			lines = append(lines, fmt.Sprintf("Skipping %s: path is outside the target directory", decision.Snippet.Path))
		} else {
			lines = append(lines, fmt.Sprintf("No suitable match found for %s (best similarity: %.2f)", decision.Snippet.Path, decision.Score))
		}
	case m.ActionCopy:
	}

	return lines
}

func narrateCopyOp(op m.CopyOp, config StartConfig) (string, bool) {
	if config.dryRun {
		return fmt.Sprintf("Would copy %s to %s", op.Source, op.Target), true
	}

	if config.verbose {
		return fmt.Sprintf("Copied %s to %s", op.Source, op.Target), true
	}

	return "", false
}

func renderOutcomeTable(report m.RunReport) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Path", "Action", "Score"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_CENTER})

	for _, outcome := range report.Outcomes {
		table.Append([]string{outcome.Path, formatAction(outcome.Action, report.DryRun), formatScore(outcome)})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Files %d", len(report.Outcomes)),
		summarizeTally(report.Tally()),
		"",
	})

	table.Render()

	return tableBuffer.String()
}

func renderReportListTable(reports []m.RunReport) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"ID", "Mode", "Target", "Started", "Files"})
	table.SetBorder(false)
	table.SetCenterSeparator("")

	for _, report := range reports {
		table.Append([]string{
			shortID(report.ID),
			string(report.Mode),
			report.Target,
			report.StartedAt.Format("2006-01-02 15:04:05"),
			fmt.Sprintf("%d", len(report.Outcomes)),
		})
	}

	table.Render()

	return tableBuffer.String()
}

func formatAction(action m.Action, dryRun bool) string {
	if dryRun {
		return "would " + string(action)
	}

	return string(action)
}

// formatScore leaves the score column empty for actions where similarity
// plays no part.
func formatScore(outcome m.Outcome) string {
	if outcome.Action == m.ActionCreate || outcome.Action == m.ActionCopy {
		return "-"
	}

	return fmt.Sprintf("%.2f", outcome.Score)
}

func summarizeTally(tally m.Tally) string {
	parts := make([]string, 0, 4)

	if tally.Created > 0 {
		parts = append(parts, fmt.Sprintf("%d created", tally.Created))
	}

	if tally.Updated > 0 {
		parts = append(parts, fmt.Sprintf("%d updated", tally.Updated))
	}

	if tally.Skipped > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", tally.Skipped))
	}

	if tally.Copied > 0 {
		parts = append(parts, fmt.Sprintf("%d copied", tally.Copied))
	}

	if len(parts) == 0 {
		return "no changes"
	}

	return strings.Join(parts, ", ")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}

	return id
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
