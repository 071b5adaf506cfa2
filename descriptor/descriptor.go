// Package descriptor reads and caches package descriptor files (the
// specification's "package.json"-shaped metadata) by path, and exposes
// dotted-name field lookup for the plugins that consult main fields,
// exports/imports trees, alias fields, and browser remaps.
//
// Grounded on esbuild's internal/resolver/package_json.go, which parses
// descriptor files with esbuild's own embedded JS-compatible parser. That
// parser is bundler-internal machinery with no place in a standalone
// resolver, so this reader is rebuilt on github.com/tidwall/gjson (used by
// grafana-k6 for JSON field access): gjson.Result.ForEach walks object
// members in source order, which the conditional exports/imports
// interpreter depends on for its ordered condition-key iteration.
package descriptor

import (
	"fmt"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
)

// FileReader is the minimal capability the cache needs: read a file's
// bytes, or report that it is absent/unreadable.
type FileReader interface {
	ReadFile(path string) ([]byte, error)
}

// Descriptor is the parsed content of one descriptor file.
type Descriptor struct {
	// Path is the absolute path of the descriptor file itself.
	Path string
	// Root is the directory containing Path.
	Root string

	raw gjson.Result
}

// Field looks up a dotted field path (e.g. "publishConfig.main") within the
// descriptor. The second return value is false if any segment of the path
// is absent.
func (d *Descriptor) Field(dottedName string) (gjson.Result, bool) {
	result := d.raw.Get(gjsonPath(dottedName))
	if !result.Exists() {
		return gjson.Result{}, false
	}
	return result, true
}

// String looks up a dotted field path and requires it to hold a JSON
// string; ok is false if the field is absent or not a string.
func (d *Descriptor) String(dottedName string) (string, bool) {
	v, ok := d.Field(dottedName)
	if !ok || v.Type != gjson.String {
		return "", false
	}
	return v.String(), true
}

// Name returns the descriptor's "name" field, used by the self-reference
// plugin.
func (d *Descriptor) Name() (string, bool) {
	return d.String("name")
}

// gjsonPath turns a dotted descriptor field name into gjson's own path
// syntax. "." is kept as gjson's nesting separator, so "publishConfig.main"
// addresses the "main" member of "publishConfig"; the wildcard and modifier
// characters "*", "?", "|" and "@" are escaped so they match literally.
func gjsonPath(name string) string {
	if !strings.ContainsAny(name, "*?|@") {
		return name
	}
	var b strings.Builder
	for _, r := range name {
		if r == '*' || r == '?' || r == '|' || r == '@' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Cache parses and memoizes descriptor files by absolute path. Safe for
// concurrent use.
type Cache struct {
	fs FileReader

	mu      sync.RWMutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	descriptor *Descriptor
	err        error
}

// NewCache builds a descriptor cache reading through fs.
func NewCache(fs FileReader) *Cache {
	return &Cache{fs: fs, entries: map[string]*cacheEntry{}}
}

// Parse returns the cached Descriptor for the descriptor file at path,
// parsing and caching it on first access. A parse failure is cached too,
// so a malformed descriptor is not re-parsed on every probe.
func (c *Cache) Parse(path string) (*Descriptor, error) {
	c.mu.RLock()
	entry, ok := c.entries[path]
	c.mu.RUnlock()
	if ok {
		return entry.descriptor, entry.err
	}

	d, err := c.parse(path)

	c.mu.Lock()
	c.entries[path] = &cacheEntry{descriptor: d, err: err}
	c.mu.Unlock()

	return d, err
}

func (c *Cache) parse(path string) (*Descriptor, error) {
	contents, err := c.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("descriptor: cannot read %q: %w", path, err)
	}
	if !gjson.ValidBytes(contents) {
		return nil, fmt.Errorf("descriptor: %q is not valid JSON", path)
	}

	root := path
	if idx := strings.LastIndexByte(path, '/'); idx >= 0 {
		root = path[:idx]
	}

	return &Descriptor{
		Path: path,
		Root: root,
		raw:  gjson.ParseBytes(contents),
	}, nil
}

// Purge drops every cached descriptor, forcing the next Parse to re-read
// from the filesystem.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string]*cacheEntry{}
}

// PurgePath drops the cached descriptor at exactly path, if any, so a
// targeted resolver.Purge(path) also invalidates a descriptor that lives
// at that path rather than only the filesystem probe cache.
func (c *Cache) PurgePath(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, path)
}
