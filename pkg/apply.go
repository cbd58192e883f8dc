// Package pkg is a package that provides utilities for codeapply.
package pkg

import (
	"context"
	"fmt"

	"codeapply.dev/pkg/codeapply/internal/adapter"
	"codeapply.dev/pkg/codeapply/internal/domain"
	m "codeapply.dev/pkg/codeapply/internal/model"
)

// DefaultThreshold is the similarity ratio used when Options leaves
// Threshold unset.
const DefaultThreshold = 0.7

// Options tunes a library-driven apply run.
type Options struct {
	// Threshold is the minimum similarity for updating an existing file.
	// Values at or below zero fall back to DefaultThreshold.
	Threshold float64

	// Force creates a file at its literal path when no candidate scores at
	// or above Threshold.
	Force bool

	// DryRun plans every change without writing to the target tree.
	DryRun bool

	// Exclude holds glob patterns for target-relative paths that must never
	// be considered as update candidates.
	Exclude []string
}

// Result tallies what one run did per action.
type Result struct {
	Created int
	Updated int
	Skipped int
	Copied  int
}

// ApplyFromPrompt parses prompt output and applies every file block found in
// it under targetDir. It returns the tally of planned or performed changes
// together with the error that stopped the run, if any.
func ApplyFromPrompt(ctx context.Context, content, targetDir string, opts Options) (Result, error) {
	fsAdapter, err := newTargetFS()
	if err != nil {
		return Result{}, err
	}

	return applyFromPrompt(ctx, fsAdapter, content, targetDir, opts)
}

// ApplyTree mirrors the file or directory at source into targetDir without
// any content matching. Only the DryRun option applies.
func ApplyTree(ctx context.Context, source, targetDir string, opts Options) (Result, error) {
	fsAdapter, err := newTargetFS()
	if err != nil {
		return Result{}, err
	}

	return applyTree(ctx, fsAdapter, source, targetDir, opts)
}

func newTargetFS() (adapter.TargetFSAdapter, error) {
	fsAdapter, err := adapter.NewCachingTargetFS(adapter.NewLocalTargetFS(), adapter.DefaultCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to set up filesystem access: %w", err)
	}

	return fsAdapter, nil
}

func applyFromPrompt(ctx context.Context, fsAdapter adapter.TargetFSAdapter, content, targetDir string, opts Options) (Result, error) {
	matcher := domain.NewMatcher(fsAdapter)
	applier := domain.NewApplier(fsAdapter, matcher)

	applyOpts := domain.ApplyOptions{
		Target:    m.Path(targetDir),
		Threshold: opts.Threshold,
		Force:     opts.Force,
		Exclude:   opts.Exclude,
	}
	if applyOpts.Threshold <= 0 {
		applyOpts.Threshold = DefaultThreshold
	}

	result := Result{}

	for _, snippet := range domain.NewParser().Parse(content) {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		decision, err := applier.Decide(snippet, applyOpts)
		if err != nil {
			return result, err
		}

		if !opts.DryRun {
			if err := applier.Execute(decision); err != nil {
				return result, err
			}
		}

		result.record(decision.Action)
	}

	return result, nil
}

func applyTree(ctx context.Context, fsAdapter adapter.TargetFSAdapter, source, targetDir string, opts Options) (Result, error) {
	copier := domain.NewCopier(fsAdapter)

	ops, err := copier.Plan(m.Path(source), m.Path(targetDir))
	if err != nil {
		return Result{}, err
	}

	result := Result{}

	for _, op := range ops {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if !opts.DryRun {
			if err := copier.Execute(op); err != nil {
				return result, err
			}
		}

		result.record(m.ActionCopy)
	}

	return result, nil
}

func (r *Result) record(action m.Action) {
	switch action {
	case m.ActionCreate:
		r.Created++
	case m.ActionUpdate:
		r.Updated++
	case m.ActionSkip:
		r.Skipped++
	case m.ActionCopy:
		r.Copied++
	}
}
