// Package adapter contains infrastructure adapters for the codeapply CLI.
package adapter

import (
	"crypto/sha256"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	m "codeapply.dev/pkg/codeapply/internal/model"
	"github.com/spf13/afero"
)

// TargetFSAdapter abstracts filesystem-specific operations that the domain
// layer relies on when scanning and modifying the target tree. It hides
// direct `os` access so matcher and applier logic can be tested without
// touching the disk.
type TargetFSAdapter interface {
	// Walk recursively traverses the provided root path, calling fn for
	// every directory and file it visits.
	Walk(root m.Path, fn FilepathWalkFunc) error

	// ReadFile loads a file from disk and returns its contents.
	ReadFile(path m.Path) ([]byte, error)

	// WriteFile writes content to a file with the given permissions.
	WriteFile(path m.Path, content []byte, perm os.FileMode) error

	// MkdirAll creates a directory along with any missing parents.
	MkdirAll(path m.Path, perm os.FileMode) error

	// Stat returns metadata for a path so callers can check existence or
	// distinguish between files and directories.
	Stat(path m.Path) (os.FileInfo, error)

	// HashFile returns a stable fingerprint (SHA-256) for the file at path.
	HashFile(path m.Path) (string, error)

	// CopyFile copies a single file, creating parent directories as needed
	// and preserving the source's mode and modification time.
	CopyFile(src, dst m.Path) error

	// RelPath returns the relative path from base to target.
	RelPath(base, target m.Path) (m.Path, error)

	// JoinPath joins path elements into a single path.
	JoinPath(elem ...string) m.Path
}

// FilepathWalkFunc mirrors the callback shape used by filepath.Walk. It is
// defined here to avoid leaking the standard-library type directly into the
// domain layer.
type FilepathWalkFunc func(path string, info os.FileInfo, err error) error

// AferoTargetFS is the concrete implementation backing TargetFSAdapter. It
// wraps an afero.Fs so production code runs against the OS filesystem while
// tests run against an in-memory one.
type AferoTargetFS struct {
	fs afero.Fs
}

// NewAferoTargetFS wraps the provided afero filesystem.
func NewAferoTargetFS(fsys afero.Fs) *AferoTargetFS {
	return &AferoTargetFS{fs: fsys}
}

// NewLocalTargetFS constructs an adapter over the real OS filesystem, ready
// to be wired into the workflow.
func NewLocalTargetFS() *AferoTargetFS {
	return NewAferoTargetFS(afero.NewOsFs())
}

// Walk iterates over every entry under root, descending into subdirectories.
func (a *AferoTargetFS) Walk(root m.Path, fn FilepathWalkFunc) error {
	return afero.Walk(a.fs, string(root), filepath.WalkFunc(fn))
}

// ReadFile loads file contents from disk. Directories are rejected rather
// than read, which keeps in-memory backends consistent with the OS one.
func (a *AferoTargetFS) ReadFile(path m.Path) ([]byte, error) {
	info, err := a.fs.Stat(string(path))
	if err != nil {
		return nil, err
	}

	if info.IsDir() {
		return nil, &fs.PathError{Op: "read", Path: string(path), Err: fs.ErrInvalid}
	}

	return afero.ReadFile(a.fs, string(path))
}

// WriteFile writes content to a file with the given permissions.
func (a *AferoTargetFS) WriteFile(path m.Path, content []byte, perm os.FileMode) error {
	return afero.WriteFile(a.fs, string(path), content, perm)
}

// MkdirAll creates a directory along with any missing parents.
func (a *AferoTargetFS) MkdirAll(path m.Path, perm os.FileMode) error {
	return a.fs.MkdirAll(string(path), perm)
}

// Stat returns os.FileInfo metadata for the given path.
func (a *AferoTargetFS) Stat(path m.Path) (os.FileInfo, error) {
	return a.fs.Stat(string(path))
}

// HashFile returns the SHA-256 hash of the file at the provided path.
func (a *AferoTargetFS) HashFile(path m.Path) (string, error) {
	f, err := a.fs.Open(string(path))
	if err != nil {
		return "", err
	}

	defer func() {
		_ = f.Close()
	}()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// CopyFile copies a single file, preserving its mode and modification time.
func (a *AferoTargetFS) CopyFile(src, dst m.Path) error {
	info, err := a.fs.Stat(string(src))
	if err != nil {
		return err
	}

	sourceFile, err := a.fs.Open(string(src))
	if err != nil {
		return err
	}

	defer func() { _ = sourceFile.Close() }()

	if err := a.fs.MkdirAll(filepath.Dir(string(dst)), 0o750); err != nil {
		return err
	}

	destFile, err := a.fs.Create(string(dst))
	if err != nil {
		return err
	}

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		_ = destFile.Close()

		return err
	}

	if err := destFile.Close(); err != nil {
		return err
	}

	if err := a.fs.Chmod(string(dst), info.Mode()); err != nil {
		return err
	}

	return a.fs.Chtimes(string(dst), info.ModTime(), info.ModTime())
}

// RelPath returns the relative path from base to target.
func (a *AferoTargetFS) RelPath(base, target m.Path) (m.Path, error) {
	rel, err := filepath.Rel(string(base), string(target))
	if err != nil {
		return "", err
	}

	return m.Path(rel), nil
}

// JoinPath joins path elements into a single path.
func (a *AferoTargetFS) JoinPath(elem ...string) m.Path {
	return m.Path(filepath.Join(elem...))
}
