// Package model defines the data structures for code application.
package model

// Path represents a file system path.
type Path string

// Snippet is one (relative path, content) pair extracted from a prompt
// output block. Snippets are ephemeral: they are produced by the parser and
// consumed immediately by the applier, in input order.
type Snippet struct {
	Path    Path
	Content string
}
