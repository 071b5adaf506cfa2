package resolver

// newInternalPlugin implements the HookInternal stage specification
// §4.2 names ahead of "module"/"resolveAsModule" for "bare-module
// handling": the point where a bare-module request's lookup base must be
// a real, concrete directory before the module-directory walk runs.
//
// Ordinarily req.Path already is concrete — the caller's lookupPath, or
// whatever directory routed here via HookNormalResolve — and this
// handler is a pass-through. The one case that needs work is a Path an
// Alias or Imports-field restart marked indeterminate
// (request.go's WithIndeterminatePath): this handler re-establishes Path
// from the issuer directory stashed in req.Context, so the module walk
// in plugin_modules.go never sees an empty lookup base (which would
// otherwise make every node_modules candidate a CWD-relative path on the
// OS-backed filesystem, or recurse forever probing the mock one).
func newInternalPlugin() Plugin {
	return PluginFunc{
		PluginName: "Internal",
		ApplyFunc: func(registry *Registry) {
			registry.EnsureHook(HookInternal).Use("Internal", func(q *Query, req Request) (*Result, error) {
				if req.PathIndeterminate {
					issuer := ""
					if req.Context != nil {
						issuer = req.Context[restartIssuerKey]
					}
					req = req.WithPath(issuer)
				}
				return q.doResolve(HookModule, req, "established lookup base for bare module request")
			})
		},
	}
}
