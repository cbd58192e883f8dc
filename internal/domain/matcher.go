package domain

import (
	"log/slog"
	"os"
	"path/filepath"
	"unicode/utf8"

	"codeapply.dev/pkg/codeapply/internal/adapter"
	m "codeapply.dev/pkg/codeapply/internal/model"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/pmezard/go-difflib/difflib"
)

// Matcher locates existing files a snippet may correspond to and scores
// how similar their contents are.
type Matcher interface {
	// FindMatchingFiles walks root and returns every file whose base name
	// equals baseName, in lexical walk order. Files whose root-relative path
	// matches one of the exclude glob patterns are dropped. A missing root
	// yields no candidates and no error.
	FindMatchingFiles(root m.Path, baseName string, exclude []string) ([]m.Path, error)

	// BestMatch reads each candidate and returns the one most similar to the
	// snippet content. Unreadable and non-text candidates are skipped. The
	// boolean is false when no candidate could be scored.
	BestMatch(snippet m.Snippet, candidates []m.Path) (m.Candidate, bool)

	// Similarity returns a ratio in [0, 1] comparing two texts rune by rune.
	// Identical texts score 1 regardless of length.
	Similarity(a, b string) float64

	// UnifiedDiff renders a unified diff between two versions of the file at
	// path, with three lines of context.
	UnifiedDiff(path m.Path, before, after string) (string, error)
}

type matcher struct {
	adapter.TargetFSAdapter
}

// NewMatcher creates a Matcher backed by the given filesystem adapter.
func NewMatcher(fsAdapter adapter.TargetFSAdapter) Matcher {
	return &matcher{TargetFSAdapter: fsAdapter}
}

func (mt *matcher) FindMatchingFiles(root m.Path, baseName string, exclude []string) ([]m.Path, error) {
	if _, err := mt.Stat(root); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, err
	}

	matches := make([]m.Path, 0)

	err := mt.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			slog.Debug("Skipping unreadable path", "path", path, "error", err)
			return nil
		}

		if info.IsDir() || filepath.Base(path) != baseName {
			return nil
		}

		rel, relErr := mt.RelPath(root, m.Path(path))
		if relErr != nil {
			return relErr
		}

		if isExcluded(string(rel), exclude) {
			return nil
		}

		matches = append(matches, m.Path(path))

		return nil
	})
	if err != nil {
		return nil, err
	}

	return matches, nil
}

func (mt *matcher) BestMatch(snippet m.Snippet, candidates []m.Path) (m.Candidate, bool) {
	var best m.Candidate

	found := false

	for _, candidate := range candidates {
		content, err := mt.ReadFile(candidate)
		if err != nil {
			slog.Debug("Skipping unreadable candidate", "path", candidate, "error", err)
			continue
		}

		if !utf8.Valid(content) {
			slog.Debug("Skipping non-text candidate", "path", candidate)
			continue
		}

		score := mt.Similarity(string(content), snippet.Content)
		if !found || score > best.Score {
			best = m.Candidate{Path: candidate, Score: score}
			found = true
		}
	}

	return best, found
}

func (mt *matcher) Similarity(a, b string) float64 {
	sm := difflib.NewMatcherWithJunk(splitRunes(a), splitRunes(b), false, nil)

	return sm.Ratio()
}

func (mt *matcher) UnifiedDiff(path m.Path, before, after string) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: string(path),
		ToFile:   string(path),
		Context:  3,
	})
}

// isExcluded reports whether the slash-separated relative path matches any
// of the glob patterns.
func isExcluded(rel string, exclude []string) bool {
	rel = filepath.ToSlash(rel)

	for _, pattern := range exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}

	return false
}

// splitRunes breaks a string into single-rune elements so sequences are
// compared character by character rather than line by line.
func splitRunes(s string) []string {
	runes := make([]string, 0, len(s))
	for _, r := range s {
		runes = append(runes, string(r))
	}

	return runes
}
