// Package texture finds the image files that materials refer to.
// Decoding them is left to the renderer.
package texture

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/Faultbox/meshkit/pkg/encoding"
)

// DefaultExtensions are probed when a texture path does not exist as written.
var DefaultExtensions = []string{".tga", ".png", ".jpg", ".jpeg", ".bmp"}

// Resolver turns a material's texture path into a file on disk.
type Resolver struct {
	Extensions []string
}

// NewResolver creates a resolver probing exts. An empty list uses DefaultExtensions.
func NewResolver(exts []string) *Resolver {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	return &Resolver{Extensions: append([]string(nil), exts...)}
}

// Candidates lists the paths Resolve tries for name, in order. Relative names
// are taken relative to dir, the directory of the material library.
func (r *Resolver) Candidates(dir, name string) []string {
	name = encoding.NormalizePath(strings.TrimSpace(name))
	if name == "" {
		return nil
	}

	base := filepath.FromSlash(name)
	if !filepath.IsAbs(base) {
		base = filepath.Join(dir, base)
	}

	out := []string{base}
	lower := strings.ToLower(base)
	for _, ext := range r.Extensions {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			continue
		}
		out = append(out, base+ext)
	}
	return out
}

// Resolve returns the first candidate that exists as a regular file.
func (r *Resolver) Resolve(dir, name string) (string, bool) {
	for _, path := range r.Candidates(dir, name) {
		info, err := os.Stat(path)
		if err == nil && info.Mode().IsRegular() {
			return path, true
		}
	}
	return "", false
}
