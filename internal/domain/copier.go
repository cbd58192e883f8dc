package domain

import (
	"fmt"
	"os"
	"path/filepath"

	"codeapply.dev/pkg/codeapply/internal/adapter"
	m "codeapply.dev/pkg/codeapply/internal/model"
)

// Copier mirrors files from a source path into the target tree without any
// matching or content inspection.
type Copier interface {
	// Plan lists the copies a run would perform, in lexical walk order,
	// without touching the target. A file source yields a single op; when
	// target is an existing directory the file lands inside it under its
	// own base name. A directory source yields one op per file underneath
	// it, empty subdirectories are not recreated.
	Plan(source, target m.Path) ([]m.CopyOp, error)

	// Execute performs one planned copy, preserving the source file's mode
	// and modification time.
	Execute(op m.CopyOp) error
}

type copier struct {
	adapter.TargetFSAdapter
}

// NewCopier creates a Copier backed by the given filesystem adapter.
func NewCopier(fsAdapter adapter.TargetFSAdapter) Copier {
	return &copier{TargetFSAdapter: fsAdapter}
}

func (c *copier) Plan(source, target m.Path) ([]m.CopyOp, error) {
	info, err := c.Stat(source)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("source path %s does not exist", source)
		}

		return nil, fmt.Errorf("failed to inspect source path %s: %w", source, err)
	}

	if !info.IsDir() {
		return []m.CopyOp{{Source: source, Target: c.fileTarget(source, target)}}, nil
	}

	ops := make([]m.CopyOp, 0)

	err = c.Walk(source, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			return nil
		}

		rel, relErr := c.RelPath(source, m.Path(path))
		if relErr != nil {
			return relErr
		}

		ops = append(ops, m.CopyOp{Source: m.Path(path), Target: c.JoinPath(string(target), string(rel))})

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan source path %s: %w", source, err)
	}

	return ops, nil
}

func (c *copier) Execute(op m.CopyOp) error {
	if err := c.CopyFile(op.Source, op.Target); err != nil {
		return fmt.Errorf("failed to copy %s to %s: %w", op.Source, op.Target, err)
	}

	return nil
}

// fileTarget resolves where a single-file copy lands. Copying into an
// existing directory places the file inside it, anything else is taken as
// the destination file path itself.
func (c *copier) fileTarget(source, target m.Path) m.Path {
	if info, err := c.Stat(target); err == nil && info.IsDir() {
		return c.JoinPath(string(target), filepath.Base(string(source)))
	}

	return target
}
