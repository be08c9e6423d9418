// Package assets locates scene files on disk.
package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Faultbox/meshkit/pkg/encoding"
)

// ErrNotFound is returned when no search path holds the requested file.
var ErrNotFound = errors.New("asset not found")

// Locator finds scene files across a list of search directories.
type Locator struct {
	searchPaths []string
	cache       *Cache
}

// NewLocator creates a locator over the given directories.
// Directories are searched in reverse order (last listed = highest priority).
func NewLocator(searchPaths ...string) *Locator {
	return &Locator{
		searchPaths: append([]string(nil), searchPaths...),
		cache:       NewCache(),
	}
}

// SearchPaths returns the directories in search order.
func (l *Locator) SearchPaths() []string {
	out := make([]string, 0, len(l.searchPaths))
	for i := len(l.searchPaths) - 1; i >= 0; i-- {
		out = append(out, l.searchPaths[i])
	}
	return out
}

// Find returns the path of name. Absolute names and names that exist relative
// to the working directory are returned as-is; anything else is looked up in
// the search paths.
func (l *Locator) Find(name string) (string, error) {
	name = encoding.NormalizePath(name)
	if name == "" {
		return "", fmt.Errorf("%w: empty name", ErrNotFound)
	}

	// Check cache first; a cached file that has since vanished is searched again
	if path, ok := l.cache.Get(name); ok {
		if isFile(path) {
			return path, nil
		}
		l.cache.Delete(name)
	}

	if isFile(name) {
		l.cache.Set(name, name)
		return name, nil
	}
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	for _, dir := range l.SearchPaths() {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if isFile(path) {
			l.cache.Set(name, path)
			return path, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Stats returns cache statistics.
func (l *Locator) Stats() (hits, misses int) {
	return l.cache.Stats()
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Cache maps requested names to resolved paths.
type Cache struct {
	data map[string]string
	mu   sync.RWMutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string]string),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	path, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return path, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key, path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = path
}

// Delete removes an item from cache.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
