package fsx

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cached wraps an FS with time-bounded memoization of stat/readdir/
// readlink/readFile probes, per the specification's §4.5 contract:
//
//   - repeated probes within the TTL window return identical results
//     without touching the underlying filesystem,
//   - errors are cached just as positively as successes (negative caching),
//   - concurrent identical probes collapse into a single underlying call.
//
// Grounded on esbuild's internal/cache.FSCache (mod-key based positive/
// negative caching of file contents), generalized to all four probe kinds
// and given an explicit TTL plus single-flight collapsing, which esbuild's
// cache does not need because esbuild never runs concurrent builds against
// one FSCache instance.
type Cached struct {
	fs  FS
	ttl time.Duration

	mu      sync.RWMutex
	stat    map[string]cacheEntry[Info]
	readdir map[string]cacheEntry[[]string]
	readlnk map[string]cacheEntry[string]
	read    map[string]cacheEntry[[]byte]

	group singleflight.Group
}

type cacheEntry[T any] struct {
	value   T
	err     error
	expires time.Time
}

const DefaultTTL = 4 * time.Second

// NewCached wraps fs with a TTL-bounded cache. A zero or negative ttl
// disables expiry (entries live until purged).
func NewCached(fs FS, ttl time.Duration) *Cached {
	return &Cached{
		fs:      fs,
		ttl:     ttl,
		stat:    map[string]cacheEntry[Info]{},
		readdir: map[string]cacheEntry[[]string]{},
		readlnk: map[string]cacheEntry[string]{},
		read:    map[string]cacheEntry[[]byte]{},
	}
}

func expired(exp time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	return time.Now().After(exp)
}

func (c *Cached) Stat(path string) (Info, error) {
	c.mu.RLock()
	e, ok := c.stat[path]
	c.mu.RUnlock()
	if ok && !expired(e.expires, c.ttl) {
		return e.value, e.err
	}

	v, err, _ := c.group.Do("stat:"+path, func() (interface{}, error) {
		info, err := c.fs.Stat(path)
		c.mu.Lock()
		c.stat[path] = cacheEntry[Info]{value: info, err: err, expires: time.Now().Add(c.ttl)}
		c.mu.Unlock()
		return info, err
	})
	if v == nil {
		return Info{}, err
	}
	return v.(Info), err
}

func (c *Cached) Readdir(path string) ([]string, error) {
	c.mu.RLock()
	e, ok := c.readdir[path]
	c.mu.RUnlock()
	if ok && !expired(e.expires, c.ttl) {
		return e.value, e.err
	}

	v, err, _ := c.group.Do("readdir:"+path, func() (interface{}, error) {
		names, err := c.fs.Readdir(path)
		c.mu.Lock()
		c.readdir[path] = cacheEntry[[]string]{value: names, err: err, expires: time.Now().Add(c.ttl)}
		c.mu.Unlock()
		return names, err
	})
	if v == nil {
		return nil, err
	}
	return v.([]string), err
}

func (c *Cached) Readlink(path string) (string, error) {
	c.mu.RLock()
	e, ok := c.readlnk[path]
	c.mu.RUnlock()
	if ok && !expired(e.expires, c.ttl) {
		return e.value, e.err
	}

	v, err, _ := c.group.Do("readlink:"+path, func() (interface{}, error) {
		target, err := c.fs.Readlink(path)
		c.mu.Lock()
		c.readlnk[path] = cacheEntry[string]{value: target, err: err, expires: time.Now().Add(c.ttl)}
		c.mu.Unlock()
		return target, err
	})
	if v == nil {
		return "", err
	}
	return v.(string), err
}

func (c *Cached) ReadFile(path string) ([]byte, error) {
	c.mu.RLock()
	e, ok := c.read[path]
	c.mu.RUnlock()
	if ok && !expired(e.expires, c.ttl) {
		return e.value, e.err
	}

	v, err, _ := c.group.Do("read:"+path, func() (interface{}, error) {
		contents, err := c.fs.ReadFile(path)
		c.mu.Lock()
		c.read[path] = cacheEntry[[]byte]{value: contents, err: err, expires: time.Now().Add(c.ttl)}
		c.mu.Unlock()
		return contents, err
	})
	if v == nil {
		return nil, err
	}
	return v.([]byte), err
}

func (c *Cached) Join(parts ...string) string { return c.fs.Join(parts...) }
func (c *Cached) Dir(p string) string         { return c.fs.Dir(p) }
func (c *Cached) Base(p string) string        { return c.fs.Base(p) }
func (c *Cached) IsAbs(p string) bool         { return c.fs.IsAbs(p) }

// Purge invalidates cache entries. With no arguments it clears everything.
// With paths given, it invalidates each path together with every ancestor
// directory (whose readdir results may now be stale), matching the
// specification's §4.5 purge contract.
func (c *Cached) Purge(paths ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(paths) == 0 {
		c.stat = map[string]cacheEntry[Info]{}
		c.readdir = map[string]cacheEntry[[]string]{}
		c.readlnk = map[string]cacheEntry[string]{}
		c.read = map[string]cacheEntry[[]byte]{}
		return
	}

	for _, p := range paths {
		for dir := p; ; {
			delete(c.stat, dir)
			delete(c.readdir, dir)
			delete(c.readlnk, dir)
			delete(c.read, dir)

			parent := c.fs.Dir(dir)
			if parent == dir || !strings.HasPrefix(dir, "/") {
				break
			}
			dir = parent
		}
	}
}

var _ FS = (*Cached)(nil)
