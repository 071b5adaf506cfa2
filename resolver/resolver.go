package resolver

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/pathresolve/pathresolve/descriptor"
	"github.com/pathresolve/pathresolve/fsx"
)

// Resolver is the public entry point: a configured, reusable resolution
// pipeline. Safe for concurrent use across goroutines, matching the
// specification's §6.1 "sync/async/create" API surface.
type Resolver struct {
	options     Options
	fs          *fsx.Cached
	descriptors *descriptor.Cache
	registry    *Registry

	unsafeMu    sync.RWMutex
	unsafeCache map[string]Result
}

// New builds a Resolver from options. FileSystem is the only required
// field; every other field falls back to the defaults specification §6.2
// documents.
func New(options Options) (*Resolver, error) {
	if options.FileSystem == nil {
		return nil, errors.New("resolver: Options.FileSystem is required")
	}

	o := options.withDefaults()

	res := &Resolver{
		options:     o,
		fs:          fsx.NewCached(o.FileSystem, o.CacheTTL),
		registry:    NewRegistry(),
	}
	res.descriptors = descriptor.NewCache(res.fs)
	if o.UnsafeCache {
		res.unsafeCache = map[string]Result{}
	}

	registerBuiltinPlugins(res.registry, o)

	return res, nil
}

// ResolveSync resolves request relative to lookupPath. rctx may be nil, in
// which case a fresh Context is used; pass a shared Context across calls
// from the same build step to accumulate its dependency sets.
func (res *Resolver) ResolveSync(rctx *Context, lookupPath, request string) (Result, error) {
	if rctx == nil {
		rctx = NewContext()
	}
	rctx.log = res.options.Logger

	if cached, ok := res.unsafeLookup(rctx, lookupPath, request); ok {
		return cached, nil
	}

	result, err := res.resolve(rctx, lookupPath, request)
	if err != nil {
		return Result{}, err
	}

	res.unsafeStore(rctx, lookupPath, request, result)
	return result, nil
}

// asyncResult bundles ResolveAsync's outcome for delivery over a channel.
type asyncResult struct {
	Result Result
	Err    error
}

// ResolveAsync runs ResolveSync on its own goroutine and delivers the
// outcome over the returned channel, which is then closed. ctx does not
// interrupt the resolve itself; if ctx is already done when the resolve
// finishes, the outcome may be dropped and the channel closed without a
// value.
func (res *Resolver) ResolveAsync(ctx context.Context, rctx *Context, lookupPath, request string) <-chan asyncResult {
	out := make(chan asyncResult, 1)
	go func() {
		defer close(out)
		result, err := res.ResolveSync(rctx, lookupPath, request)
		select {
		case out <- asyncResult{Result: result, Err: err}:
		case <-ctx.Done():
		}
	}()
	return out
}

// Purge invalidates every cached filesystem probe and descriptor file for
// the given paths (or everything, with no arguments), along with any
// unsafe-cache entries. Call this after the underlying filesystem changes
// underneath a long-lived Resolver (specification §4.5).
func (res *Resolver) Purge(paths ...string) {
	res.fs.Purge(paths...)
	if len(paths) == 0 {
		res.descriptors.Purge()
	} else {
		for _, p := range paths {
			res.descriptors.PurgePath(p)
		}
	}

	res.unsafeMu.Lock()
	defer res.unsafeMu.Unlock()
	if len(paths) == 0 {
		res.unsafeCache = map[string]Result{}
		return
	}
	for key := range res.unsafeCache {
		for _, p := range paths {
			if strings.Contains(key, p) {
				delete(res.unsafeCache, key)
				break
			}
		}
	}
}

func (res *Resolver) unsafeCacheKey(rctx *Context, lookupPath, request string) (string, bool) {
	if !res.options.UnsafeCache {
		return "", false
	}
	if res.options.CachePredicate != nil && !res.options.CachePredicate(lookupPath, request) {
		return "", false
	}
	key := lookupPath + "\x00" + request
	if res.options.cacheWithContext() {
		key += "\x00" + callerContextKey(rctx)
	}
	return key, true
}

func callerContextKey(rctx *Context) string {
	if rctx == nil || len(rctx.CallerContext) == 0 {
		return ""
	}
	var b strings.Builder
	for k, v := range rctx.CallerContext {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(v)
		b.WriteByte(';')
	}
	return b.String()
}

func (res *Resolver) unsafeLookup(rctx *Context, lookupPath, request string) (Result, bool) {
	key, ok := res.unsafeCacheKey(rctx, lookupPath, request)
	if !ok {
		return Result{}, false
	}
	res.unsafeMu.RLock()
	defer res.unsafeMu.RUnlock()
	result, found := res.unsafeCache[key]
	return result, found
}

func (res *Resolver) unsafeStore(rctx *Context, lookupPath, request string, result Result) {
	key, ok := res.unsafeCacheKey(rctx, lookupPath, request)
	if !ok {
		return
	}
	res.unsafeMu.Lock()
	defer res.unsafeMu.Unlock()
	res.unsafeCache[key] = result
}
