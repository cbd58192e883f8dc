package domain

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"codeapply.dev/pkg/codeapply/internal/adapter"
	m "codeapply.dev/pkg/codeapply/internal/model"
)

// ApplyOptions carries the settings for one apply run.
type ApplyOptions struct {
	// Target is the root directory snippets are applied under.
	Target m.Path
	// Threshold is the minimum similarity for updating an existing file.
	Threshold float64
	// Force creates the file at its literal path when no candidate scores
	// at or above Threshold.
	Force bool
	// Exclude holds glob patterns for target-relative paths that must never
	// be considered as update candidates.
	Exclude []string
}

// Applier plans and performs the change for a single snippet.
type Applier interface {
	// Decide determines what would happen to the snippet without touching
	// the target tree: create when nothing matches, update when a candidate
	// scores at or above the threshold, create at the literal path under
	// force, and skip otherwise.
	Decide(snippet m.Snippet, opts ApplyOptions) (m.Decision, error)

	// Execute carries out a create or update decision. Skips are a no-op.
	Execute(decision m.Decision) error
}

type applier struct {
	adapter.TargetFSAdapter
	Matcher
}

// NewApplier creates an Applier using the given filesystem adapter and
// matcher.
func NewApplier(fsAdapter adapter.TargetFSAdapter, matcher Matcher) Applier {
	return &applier{
		TargetFSAdapter: fsAdapter,
		Matcher:         matcher,
	}
}

func (a *applier) Decide(snippet m.Snippet, opts ApplyOptions) (m.Decision, error) {
	if err := validateSnippet(snippet); err != nil {
		return m.Decision{}, err
	}

	rel := filepath.FromSlash(string(snippet.Path))
	if !filepath.IsLocal(rel) {
		slog.Warn("Refusing snippet path outside the target root", "path", snippet.Path)

		return m.Decision{Snippet: snippet, Action: m.ActionSkip}, nil
	}

	decision := m.Decision{
		Snippet: snippet,
		Target:  a.JoinPath(string(opts.Target), rel),
	}

	candidates, err := a.FindMatchingFiles(opts.Target, filepath.Base(rel), opts.Exclude)
	if err != nil {
		return m.Decision{}, fmt.Errorf("failed to scan %s for candidates: %w", opts.Target, err)
	}

	decision.Candidates = len(candidates)

	if len(candidates) == 0 {
		decision.Action = m.ActionCreate

		return decision, nil
	}

	best, found := a.BestMatch(snippet, candidates)
	if found {
		decision.Score = best.Score
	}

	switch {
	case found && best.Score >= opts.Threshold:
		decision.Action = m.ActionUpdate
		decision.Target = best.Path
	case opts.Force:
		decision.Action = m.ActionCreate
	default:
		decision.Action = m.ActionSkip
	}

	return decision, nil
}

func (a *applier) Execute(decision m.Decision) error {
	if decision.Action == m.ActionSkip {
		return nil
	}

	dir := filepath.Dir(string(decision.Target))
	if err := a.MkdirAll(m.Path(dir), 0o750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := a.WriteFile(decision.Target, []byte(decision.Snippet.Content), os.FileMode(0o644)); err != nil {
		return fmt.Errorf("failed to write %s: %w", decision.Target, err)
	}

	return nil
}

func validateSnippet(snippet m.Snippet) error {
	if snippet.Path == "" {
		return fmt.Errorf("missing snippet path")
	}

	return nil
}
