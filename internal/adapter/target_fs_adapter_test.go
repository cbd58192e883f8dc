package adapter

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	m "codeapply.dev/pkg/codeapply/internal/model"
	"github.com/spf13/afero"
)

func TestAferoTargetFS_Walk(t *testing.T) {
	fsys := afero.NewMemMapFs()
	adapter := NewAferoTargetFS(fsys)

	writeTestFile(t, fsys, "root/main.txt", "top\n")
	writeTestFile(t, fsys, "root/nested/child.txt", "nested\n")

	var visited []string
	err := adapter.Walk(m.Path("root"), func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			visited = append(visited, path)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}

	for _, want := range []string{filepath.Join("root", "main.txt"), filepath.Join("root", "nested", "child.txt")} {
		if !containsPath(visited, want) {
			t.Fatalf("Walk() did not visit %s, visited %v", want, visited)
		}
	}
}

func TestAferoTargetFS_ReadFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	adapter := NewAferoTargetFS(fsys)

	content := "line one\nline two\n"
	writeTestFile(t, fsys, "root/main.txt", content)

	got, err := adapter.ReadFile(m.Path("root/main.txt"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	if string(got) != content {
		t.Fatalf("ReadFile() = %q, want %q", string(got), content)
	}

	t.Run("rejects directories", func(t *testing.T) {
		if _, err := adapter.ReadFile(m.Path("root")); err == nil {
			t.Fatalf("ReadFile() on a directory succeeded, want error")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := adapter.ReadFile(m.Path("root/absent.txt")); err == nil {
			t.Fatalf("ReadFile() on missing file succeeded, want error")
		}
	})
}

func TestAferoTargetFS_WriteFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	adapter := NewAferoTargetFS(fsys)

	if err := adapter.MkdirAll(m.Path("root/sub"), 0o750); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	if err := adapter.WriteFile(m.Path("root/sub/out.txt"), []byte("written\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	got, err := afero.ReadFile(fsys, "root/sub/out.txt")
	if err != nil {
		t.Fatalf("reading written file: %v", err)
	}

	if string(got) != "written\n" {
		t.Fatalf("WriteFile() stored %q, want %q", string(got), "written\n")
	}
}

func TestAferoTargetFS_Stat(t *testing.T) {
	fsys := afero.NewMemMapFs()
	adapter := NewAferoTargetFS(fsys)

	writeTestFile(t, fsys, "root/main.txt", "top\n")

	info, err := adapter.Stat(m.Path("root/main.txt"))
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}

	if info.IsDir() {
		t.Fatalf("Stat() reported file as directory")
	}

	dirInfo, err := adapter.Stat(m.Path("root"))
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}

	if !dirInfo.IsDir() {
		t.Fatalf("Stat() reported directory as file")
	}
}

func TestAferoTargetFS_HashFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	adapter := NewAferoTargetFS(fsys)

	content := []byte("hash me\n")
	writeTestFile(t, fsys, "root/main.txt", string(content))

	expected := fmt.Sprintf("%x", sha256.Sum256(content))

	hash, err := adapter.HashFile(m.Path("root/main.txt"))
	if err != nil {
		t.Fatalf("HashFile() error = %v", err)
	}

	if hash != expected {
		t.Fatalf("HashFile() = %s, want %s", hash, expected)
	}
}

func TestAferoTargetFS_CopyFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	adapter := NewAferoTargetFS(fsys)

	writeTestFile(t, fsys, "src/script.sh", "#!/bin/sh\n")

	if err := fsys.Chmod("src/script.sh", 0o755); err != nil {
		t.Fatalf("Chmod() error = %v", err)
	}

	stamp := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := fsys.Chtimes("src/script.sh", stamp, stamp); err != nil {
		t.Fatalf("Chtimes() error = %v", err)
	}

	if err := adapter.CopyFile(m.Path("src/script.sh"), m.Path("dst/deep/script.sh")); err != nil {
		t.Fatalf("CopyFile() error = %v", err)
	}

	got, err := afero.ReadFile(fsys, "dst/deep/script.sh")
	if err != nil {
		t.Fatalf("reading copied file: %v", err)
	}

	if string(got) != "#!/bin/sh\n" {
		t.Fatalf("CopyFile() content = %q, want %q", string(got), "#!/bin/sh\n")
	}

	srcInfo, err := fsys.Stat("src/script.sh")
	if err != nil {
		t.Fatalf("Stat(src) error = %v", err)
	}

	dstInfo, err := fsys.Stat("dst/deep/script.sh")
	if err != nil {
		t.Fatalf("Stat(dst) error = %v", err)
	}

	if dstInfo.Mode() != srcInfo.Mode() {
		t.Fatalf("CopyFile() mode = %v, want %v", dstInfo.Mode(), srcInfo.Mode())
	}

	if !dstInfo.ModTime().Equal(srcInfo.ModTime()) {
		t.Fatalf("CopyFile() mtime = %v, want %v", dstInfo.ModTime(), srcInfo.ModTime())
	}

	t.Run("missing source", func(t *testing.T) {
		if err := adapter.CopyFile(m.Path("src/absent.sh"), m.Path("dst/absent.sh")); err == nil {
			t.Fatalf("CopyFile() with missing source succeeded, want error")
		}
	})
}

func TestAferoTargetFS_PathHelpers(t *testing.T) {
	adapter := NewLocalTargetFS()

	base := m.Path("/tmp/project")
	target := m.Path("/tmp/project/sub/dir/file.txt")

	rel, err := adapter.RelPath(base, target)
	if err != nil {
		t.Fatalf("RelPath() error = %v", err)
	}

	if string(rel) != filepath.Join("sub", "dir", "file.txt") {
		t.Fatalf("RelPath() = %s, want %s", rel, filepath.Join("sub", "dir", "file.txt"))
	}

	joined := adapter.JoinPath("/tmp", "project", "sub", "file.txt")
	if string(joined) != filepath.Join("/tmp", "project", "sub", "file.txt") {
		t.Fatalf("JoinPath() = %s, want %s", joined, filepath.Join("/tmp", "project", "sub", "file.txt"))
	}
}

func writeTestFile(t *testing.T, fsys afero.Fs, path, contents string) {
	t.Helper()
	if err := afero.WriteFile(fsys, path, []byte(contents), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func containsPath(paths []string, target string) bool {
	for _, p := range paths {
		if p == target {
			return true
		}
	}

	return false
}
