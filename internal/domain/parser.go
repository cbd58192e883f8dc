// Package domain contains the core code apply workflow and logic.
package domain

import (
	"strings"

	m "codeapply.dev/pkg/codeapply/internal/model"
)

// Markers delimiting one file block in prompt output.
const (
	filePathMarker = "---FILE_PATH:"
	endFileMarker  = "---END_FILE"
	fenceMarker    = "```"
)

// Parser extracts file snippets from prompt output text.
//
// The expected format per block is:
//
//	---FILE_PATH: path/to/file.ext
//	```language
//	file content
//	```
//	---END_FILE
type Parser interface {
	// Parse scans content for file blocks and returns the snippets in input
	// order. Malformed blocks are dropped; parsing itself never fails.
	Parse(content string) []m.Snippet
}

type parser struct{}

// NewParser creates a prompt output Parser.
func NewParser() Parser {
	return &parser{}
}

// Parse walks the input line by line. Blocks that do not follow the marker,
// fence, fence, end-marker sequence yield nothing; scanning then resumes on
// the line after the failed block's path marker so a valid block inside a
// broken region is still found.
func (p *parser) Parse(content string) []m.Snippet {
	lines := strings.Split(content, "\n")
	snippets := make([]m.Snippet, 0)

	i := 0
	for i < len(lines) {
		if !strings.HasPrefix(trimEOL(lines[i]), filePathMarker) {
			i++
			continue
		}

		snippet, next, ok := scanBlock(lines, i)
		if !ok {
			i++
			continue
		}

		snippets = append(snippets, snippet)
		i = next
	}

	return snippets
}

// scanBlock parses one block starting at the marker line. It returns the
// snippet and the index of the first line after the block, or ok=false when
// the block is malformed or unterminated.
func scanBlock(lines []string, start int) (m.Snippet, int, bool) {
	path := strings.TrimSpace(strings.TrimPrefix(trimEOL(lines[start]), filePathMarker))
	if path == "" {
		return m.Snippet{}, 0, false
	}

	i := skipBlank(lines, start+1)
	if i >= len(lines) || !isOpeningFence(lines[i]) {
		return m.Snippet{}, 0, false
	}

	contentStart := i + 1

	end := -1
	for j := contentStart; j < len(lines); j++ {
		if isClosingFence(lines[j]) {
			end = j
			break
		}
	}

	if end == -1 {
		return m.Snippet{}, 0, false
	}

	i = skipBlank(lines, end+1)
	if i >= len(lines) || strings.TrimRight(trimEOL(lines[i]), " \t") != endFileMarker {
		return m.Snippet{}, 0, false
	}

	return m.Snippet{Path: m.Path(path), Content: joinContent(lines[contentStart:end])}, i + 1, true
}

// trimEOL strips a trailing carriage return so CRLF input scans like LF.
func trimEOL(line string) string {
	return strings.TrimSuffix(line, "\r")
}

// skipBlank advances past whitespace-only lines starting at i.
func skipBlank(lines []string, i int) int {
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}

	return i
}

// isOpeningFence accepts a fence line with an optional language tag, such as
// ``` or ```go.
func isOpeningFence(line string) bool {
	line = strings.TrimRight(trimEOL(line), " \t")
	if !strings.HasPrefix(line, fenceMarker) {
		return false
	}

	tag := strings.TrimPrefix(line, fenceMarker)
	for _, r := range tag {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_':
		default:
			return false
		}
	}

	return true
}

// isClosingFence accepts only a line-isolated bare fence. Fenced lines with
// a language tag inside the content, such as ```go, stay in the content.
func isClosingFence(line string) bool {
	return strings.TrimRight(trimEOL(line), " \t") == fenceMarker
}

// joinContent reassembles content lines, each keeping its newline. The
// newline before the closing fence belongs to the content.
func joinContent(lines []string) string {
	if len(lines) == 0 {
		return ""
	}

	return strings.Join(lines, "\n") + "\n"
}
