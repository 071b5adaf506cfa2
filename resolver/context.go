package resolver

import "go.uber.org/zap"

// Context is the mutable per-call sidecar described in specification §3:
// observability sets of touched/missed paths, a loop-detection stack, and
// an optional structured logger that receives one debug entry per hop
// (AMBIENT-LOG in SPEC_FULL.md).
type Context struct {
	// FileDependencies and ContextDependencies record files and directories
	// actually read during resolution; MissingDependencies records paths
	// that were probed but did not exist. Their union is a superset of
	// every filesystem path probed, per the testable property in §8.
	FileDependencies    map[string]bool
	ContextDependencies map[string]bool
	MissingDependencies map[string]bool

	// CallerContext is opaque key/value data supplied by the caller (e.g.
	// an issuer path) and copied onto the initial Request.
	CallerContext map[string]string

	stack    []string
	attempts AttemptLog
	log      *zap.Logger
}

// NewContext builds a ResolveContext ready for one resolve call.
func NewContext() *Context {
	return &Context{
		FileDependencies:    map[string]bool{},
		ContextDependencies: map[string]bool{},
		MissingDependencies: map[string]bool{},
	}
}

func (c *Context) touchFile(path string) {
	if c != nil && c.FileDependencies != nil {
		c.FileDependencies[path] = true
	}
}

func (c *Context) touchDir(path string) {
	if c != nil && c.ContextDependencies != nil {
		c.ContextDependencies[path] = true
	}
}

func (c *Context) touchMissing(path string) {
	if c != nil && c.MissingDependencies != nil {
		c.MissingDependencies[path] = true
	}
}

// push appends a "(hook, request)" marker to the loop-detection stack. It
// reports whether that exact marker was already present — the pipeline
// driver's recursion guard (specification §4.1 step 4).
func (c *Context) push(hook string, req Request) (marker string, alreadyVisited bool) {
	marker = hook + "|" + stringifyRequest(req)
	for _, m := range c.stack {
		if m == marker {
			return marker, true
		}
	}
	c.stack = append(c.stack, marker)
	return marker, false
}

func (c *Context) pop() {
	if len(c.stack) > 0 {
		c.stack = c.stack[:len(c.stack)-1]
	}
}

func stringifyRequest(r Request) string {
	return r.Path + "\x00" + r.RequestPath + "\x00" + r.Query + "\x00" + r.Fragment
}

func (c *Context) logger() *zap.Logger {
	if c == nil || c.log == nil {
		return zap.NewNop()
	}
	return c.log
}
