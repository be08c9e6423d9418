// Package encoding normalises text input for the line-oriented scene and material parsers.
package encoding

import (
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// NewTextReader wraps r so that a leading UTF-8 byte order mark is dropped.
// UTF-16 input carrying a BOM is transcoded to UTF-8.
func NewTextReader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

// NormalizePath converts backslash separators to forward slashes.
// Files exported on Windows often reference material and texture paths this way.
func NormalizePath(path string) string {
	return strings.ReplaceAll(path, "\\", "/")
}
