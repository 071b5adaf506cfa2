package resolver

// Handler implements one resolution step. It either rewrites the request
// and forwards to a downstream hook (returning whatever that hook
// produces), probes the filesystem and returns a terminal Result, or
// declines by returning (nil, nil) so the next handler on the same hook
// gets a turn. Returning a non-nil error aborts the entire pipeline
// (specification §4.6).
type Handler func(q *Query, req Request) (*Result, error)

type namedHandler struct {
	plugin string
	fn     Handler
}

// Hook is a named extensibility point holding an ordered handler list.
type Hook struct {
	Name     string
	handlers []namedHandler
}

// Use registers a handler under pluginName, appended after any existing
// handlers on this hook.
func (h *Hook) Use(pluginName string, fn Handler) {
	h.handlers = append(h.handlers, namedHandler{plugin: pluginName, fn: fn})
}

// Registry is the hook registry: hooks are created on demand and
// referenced by name thereafter (specification §4.6).
type Registry struct {
	hooks []*Hook
	byName map[string]*Hook
}

// NewRegistry builds an empty hook registry.
func NewRegistry() *Registry {
	return &Registry{byName: map[string]*Hook{}}
}

// EnsureHook returns the named hook, creating it if this is the first
// reference. Idempotent.
func (r *Registry) EnsureHook(name string) *Hook {
	if h, ok := r.byName[name]; ok {
		return h
	}
	h := &Hook{Name: name}
	r.byName[name] = h
	r.hooks = append(r.hooks, h)
	return h
}

// GetHook returns the named hook, failing with KindUnknownHook if it was
// never created via EnsureHook.
func (r *Registry) GetHook(name string) (*Hook, error) {
	if h, ok := r.byName[name]; ok {
		return h, nil
	}
	return nil, &Error{Kind: KindUnknownHook, Message: "unknown hook: " + name}
}

// Canonical hook names, per specification §4.2. Plugins attach to a source
// hook and forward to a target hook; the names below are the stage
// backbone that built-in plugins wire themselves into. Sub-hooks used
// between stages (here only "modulesInRootPath") are created on demand by
// the plugins that need them.
const (
	HookResolve             = "resolve"
	HookParsedResolve        = "parsedResolve"
	HookDescribedResolve     = "describedResolve"
	HookRawResolve           = "rawResolve"
	HookNormalResolve        = "normalResolve"
	HookInternal             = "internal"
	HookModule               = "module"
	HookResolveAsModule      = "resolveAsModule"
	// HookModulesInRootPath is a sub-hook created on demand between the
	// hierarchical node_modules walk and the root-anchored one, per §4.2's
	// note that sub-hooks live between the canonical stages.
	HookModulesInRootPath    = "modulesInRootPath"
	HookUndescribedRawFile   = "undescribedRawFile"
	HookRawFile              = "rawFile"
	HookFile                 = "file"
	HookFinalFile            = "finalFile"
	HookExistingFile         = "existingFile"
	HookResolved             = "resolved"
)

// canonicalHookOrder lists every built-in stage hook in the order
// specification §4.2 defines, used only to pre-create them (via
// EnsureHook) so the registry's iteration order matches the canonical
// stage order even before any plugin attaches.
var canonicalHookOrder = []string{
	HookResolve,
	HookParsedResolve,
	HookDescribedResolve,
	HookRawResolve,
	HookNormalResolve,
	HookInternal,
	HookModule,
	HookResolveAsModule,
	HookUndescribedRawFile,
	HookRawFile,
	HookFile,
	HookFinalFile,
	HookExistingFile,
	HookResolved,
}
