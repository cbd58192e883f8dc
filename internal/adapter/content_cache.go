package adapter

import (
	"os"

	m "codeapply.dev/pkg/codeapply/internal/model"
	"github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the number of file contents kept by the caching
// adapter. Matching runs read the same candidates repeatedly when several
// snippets share a base name, so a small cache covers the common case.
const DefaultCacheSize = 128

// CachingTargetFS decorates a TargetFSAdapter with a read-through LRU cache
// of file contents. Writes and copies invalidate the affected entry so a
// later read always observes the updated file. The apply pipeline is
// sequential, so no locking is needed beyond what the cache provides.
type CachingTargetFS struct {
	TargetFSAdapter

	cache *lru.Cache[string, []byte]
}

// NewCachingTargetFS wraps inner with a content cache holding up to size
// entries.
func NewCachingTargetFS(inner TargetFSAdapter, size int) (*CachingTargetFS, error) {
	cache, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, err
	}

	return &CachingTargetFS{TargetFSAdapter: inner, cache: cache}, nil
}

// ReadFile returns the cached contents for path, reading through to the
// underlying adapter on a miss.
func (c *CachingTargetFS) ReadFile(path m.Path) ([]byte, error) {
	if content, ok := c.cache.Get(string(path)); ok {
		return content, nil
	}

	content, err := c.TargetFSAdapter.ReadFile(path)
	if err != nil {
		return nil, err
	}

	c.cache.Add(string(path), content)

	return content, nil
}

// WriteFile writes through to the underlying adapter and drops the stale
// cache entry for path.
func (c *CachingTargetFS) WriteFile(path m.Path, content []byte, perm os.FileMode) error {
	if err := c.TargetFSAdapter.WriteFile(path, content, perm); err != nil {
		return err
	}

	c.cache.Remove(string(path))

	return nil
}

// CopyFile copies through to the underlying adapter and drops the stale
// cache entry for the destination.
func (c *CachingTargetFS) CopyFile(src, dst m.Path) error {
	if err := c.TargetFSAdapter.CopyFile(src, dst); err != nil {
		return err
	}

	c.cache.Remove(string(dst))

	return nil
}
