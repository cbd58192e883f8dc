package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"codeapply.dev/pkg/codeapply/internal/adapter"
	"codeapply.dev/pkg/codeapply/internal/controller"
	m "codeapply.dev/pkg/codeapply/internal/model"
	"github.com/google/uuid"
)

// PromptArgs contains the arguments for applying prompt output to a target
// tree.
type PromptArgs struct {
	Content   string
	Target    m.Path
	Threshold float64
	Force     bool
	DryRun    bool
	Verbose   bool
	Exclude   []string
	Reports   m.Path
	NoReport  bool
}

// CopyArgs contains the arguments for mirroring a source path into a target.
type CopyArgs struct {
	Source   m.Path
	Target   m.Path
	DryRun   bool
	Verbose  bool
	Reports  m.Path
	NoReport bool
}

// ViewArgs contains the arguments for viewing a saved run report.
type ViewArgs struct {
	Reports m.Path
	ID      string
}

// ListArgs contains the arguments for listing saved run reports.
type ListArgs struct {
	Reports m.Path
}

// Workflow ties parsing, matching and application together into the
// operations exposed by the CLI. Snippets are processed one at a time, in
// input order, so every run is reproducible.
type Workflow interface {
	// Prompt parses args.Content and applies each snippet to the target
	// tree. With DryRun set it narrates the same decisions without writing.
	Prompt(ctx context.Context, args PromptArgs) error

	// Copy mirrors args.Source into args.Target without content matching.
	Copy(ctx context.Context, args CopyArgs) error

	// View displays one saved run report, the latest when args.ID is empty.
	View(ctx context.Context, args ViewArgs) error

	// List displays the saved run reports, most recent first.
	List(ctx context.Context, args ListArgs) error
}

type workflow struct {
	adapter.TargetFSAdapter
	controller.UI
	Parser
	Matcher

	reports adapter.ReportStore
	applier Applier
	copier  Copier
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
func NewWorkflow(
	fsAdapter adapter.TargetFSAdapter,
	reportStore adapter.ReportStore,
	ui controller.UI,
	parser Parser,
	matcher Matcher,
	applier Applier,
	copier Copier,
) Workflow {
	return &workflow{
		TargetFSAdapter: fsAdapter,
		UI:              ui,
		Parser:          parser,
		Matcher:         matcher,
		reports:         reportStore,
		applier:         applier,
		copier:          copier,
	}
}

func (w *workflow) Prompt(ctx context.Context, args PromptArgs) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	startedAt := time.Now().UTC()

	err := w.Start(ctx,
		controller.WithApplyMode(),
		controller.WithDryRun(args.DryRun),
		controller.WithVerbose(args.Verbose),
	)
	if err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}
	defer w.Close(ctx)

	if err := w.ensureTargetRoot(args.Target, args.DryRun); err != nil {
		return err
	}

	snippets := w.Parse(args.Content)

	if err := w.DisplayParsedCount(ctx, len(snippets)); err != nil {
		return fmt.Errorf("display: %w", err)
	}

	opts := ApplyOptions{
		Target:    args.Target,
		Threshold: args.Threshold,
		Force:     args.Force,
		Exclude:   args.Exclude,
	}

	outcomes := make([]m.Outcome, 0, len(snippets))

	for _, snippet := range snippets {
		if err := ctx.Err(); err != nil {
			return err
		}

		outcome, err := w.applySnippet(ctx, snippet, opts, args)
		if err != nil {
			return err
		}

		outcomes = append(outcomes, outcome)
	}

	report := m.RunReport{
		ID:        uuid.NewString(),
		Mode:      m.ModePrompt,
		Target:    string(args.Target),
		Threshold: args.Threshold,
		Force:     args.Force,
		DryRun:    args.DryRun,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Outcomes:  outcomes,
	}

	w.saveReport(args.Reports, args.DryRun || args.NoReport, report)

	if err := w.DisplaySummary(ctx, report); err != nil {
		return fmt.Errorf("display: %w", err)
	}

	w.Wait(ctx)

	return nil
}

// applySnippet plans, performs and narrates the change for one snippet.
func (w *workflow) applySnippet(ctx context.Context, snippet m.Snippet, opts ApplyOptions, args PromptArgs) (m.Outcome, error) {
	decision, err := w.applier.Decide(snippet, opts)
	if err != nil {
		slog.Error("Failed to plan snippet", "path", snippet.Path, "error", err)
		return m.Outcome{}, fmt.Errorf("plan %s: %w", snippet.Path, err)
	}

	var diff string

	if args.Verbose && decision.Action == m.ActionUpdate {
		diff, err = w.updateDiff(decision)
		if err != nil {
			slog.Debug("Failed to render diff", "path", decision.Target, "error", err)
		}
	}

	if !args.DryRun {
		if err := w.applier.Execute(decision); err != nil {
			slog.Error("Failed to apply snippet", "path", snippet.Path, "error", err)
			return m.Outcome{}, fmt.Errorf("apply %s: %w", snippet.Path, err)
		}
	}

	if err := w.DisplayDecision(ctx, decision); err != nil {
		return m.Outcome{}, fmt.Errorf("display: %w", err)
	}

	if diff != "" {
		if err := w.DisplayDiff(ctx, decision.Target, diff); err != nil {
			return m.Outcome{}, fmt.Errorf("display: %w", err)
		}
	}

	return w.outcomeFor(decision, args.DryRun), nil
}

// updateDiff renders the unified diff an update will introduce. It reads the
// matched file before anything is written to it.
func (w *workflow) updateDiff(decision m.Decision) (string, error) {
	before, err := w.ReadFile(decision.Target)
	if err != nil {
		return "", err
	}

	return w.UnifiedDiff(decision.Target, string(before), decision.Snippet.Content)
}

func (w *workflow) Copy(ctx context.Context, args CopyArgs) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	startedAt := time.Now().UTC()

	err := w.Start(ctx,
		controller.WithCopyMode(),
		controller.WithDryRun(args.DryRun),
		controller.WithVerbose(args.Verbose),
	)
	if err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}
	defer w.Close(ctx)

	ops, err := w.copier.Plan(args.Source, args.Target)
	if err != nil {
		slog.Error("Failed to plan copy", "source", args.Source, "error", err)
		return fmt.Errorf("plan copy: %w", err)
	}

	if err := w.ensureCopyTarget(args); err != nil {
		return err
	}

	outcomes := make([]m.Outcome, 0, len(ops))

	for _, op := range ops {
		if err := ctx.Err(); err != nil {
			return err
		}

		if !args.DryRun {
			if err := w.copier.Execute(op); err != nil {
				slog.Error("Failed to copy file", "source", op.Source, "error", err)
				return fmt.Errorf("copy %s: %w", op.Source, err)
			}
		}

		if err := w.DisplayCopyOp(ctx, op); err != nil {
			return fmt.Errorf("display: %w", err)
		}

		outcomes = append(outcomes, w.copyOutcomeFor(op, args.DryRun))
	}

	report := m.RunReport{
		ID:        uuid.NewString(),
		Mode:      m.ModeCopy,
		Target:    string(args.Target),
		DryRun:    args.DryRun,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Outcomes:  outcomes,
	}

	w.saveReport(args.Reports, args.DryRun || args.NoReport, report)

	if err := w.DisplaySummary(ctx, report); err != nil {
		return fmt.Errorf("display: %w", err)
	}

	w.Wait(ctx)

	return nil
}

func (w *workflow) View(ctx context.Context, args ViewArgs) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := w.Start(ctx, controller.WithReportMode()); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}
	defer w.Close(ctx)

	var (
		report m.RunReport
		err    error
	)

	if args.ID == "" {
		report, err = w.reports.LoadLatest(args.Reports)
	} else {
		report, err = w.reports.Load(args.Reports, args.ID)
	}

	if err != nil {
		slog.Error("Failed to load run report", "error", err)
		return fmt.Errorf("load report: %w", err)
	}

	if err := w.DisplayReport(ctx, report); err != nil {
		return fmt.Errorf("display: %w", err)
	}

	w.Wait(ctx)

	return nil
}

func (w *workflow) List(ctx context.Context, args ListArgs) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := w.Start(ctx, controller.WithReportMode()); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}
	defer w.Close(ctx)

	reports, err := w.reports.List(args.Reports)
	if err != nil && !errors.Is(err, adapter.ErrNoReports) {
		slog.Error("Failed to list run reports", "error", err)
		return fmt.Errorf("list reports: %w", err)
	}

	if err := w.DisplayReports(ctx, reports); err != nil {
		return fmt.Errorf("display: %w", err)
	}

	w.Wait(ctx)

	return nil
}

// ensureTargetRoot creates the target directory on real runs. Dry runs must
// not leave a directory behind.
func (w *workflow) ensureTargetRoot(target m.Path, dryRun bool) error {
	if _, err := w.Stat(target); err == nil {
		return nil
	}

	if dryRun {
		return nil
	}

	if err := w.MkdirAll(target, os.FileMode(0o750)); err != nil {
		return fmt.Errorf("create target directory %s: %w", target, err)
	}

	return nil
}

// ensureCopyTarget pre-creates the target directory for directory sources so
// copying an empty directory still produces one.
func (w *workflow) ensureCopyTarget(args CopyArgs) error {
	if args.DryRun {
		return nil
	}

	info, err := w.Stat(args.Source)
	if err != nil || !info.IsDir() {
		return nil
	}

	if err := w.MkdirAll(args.Target, os.FileMode(0o750)); err != nil {
		return fmt.Errorf("create target directory %s: %w", args.Target, err)
	}

	return nil
}

// outcomeFor converts a decision into its report row. Written files are
// fingerprinted so later runs can tell whether they changed since.
func (w *workflow) outcomeFor(decision m.Decision, dryRun bool) m.Outcome {
	outcome := m.Outcome{
		Path:   string(decision.Snippet.Path),
		Action: decision.Action,
		Score:  decision.Score,
	}

	if decision.Action == m.ActionSkip {
		return outcome
	}

	outcome.Target = string(decision.Target)

	if !dryRun {
		outcome.Hash = w.hashWritten(decision.Target)
	}

	return outcome
}

func (w *workflow) copyOutcomeFor(op m.CopyOp, dryRun bool) m.Outcome {
	outcome := m.Outcome{
		Path:   string(op.Source),
		Action: m.ActionCopy,
		Target: string(op.Target),
	}

	if !dryRun {
		outcome.Hash = w.hashWritten(op.Target)
	}

	return outcome
}

func (w *workflow) hashWritten(path m.Path) string {
	hash, err := w.HashFile(path)
	if err != nil {
		slog.Debug("Failed to hash written file", "path", path, "error", err)
		return ""
	}

	return hash
}

// saveReport persists the run report unless the run asked not to. A failed
// save is logged rather than failing a run whose changes already landed.
func (w *workflow) saveReport(dir m.Path, skip bool, report m.RunReport) {
	if skip || dir == "" {
		return
	}

	path, err := w.reports.Save(dir, report)
	if err != nil {
		slog.Error("Failed to save run report", "error", err)
		return
	}

	slog.Debug("Saved run report", "path", path)
}
