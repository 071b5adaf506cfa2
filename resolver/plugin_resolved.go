package resolver

// newResolvedPlugin implements the terminal "Result" plugin: it builds the
// Found Result from the fully-canonicalized Request. This is the only
// built-in handler registered on HookResolved. User plugins are applied
// after the built-ins, so a handler they add to HookResolved sits behind
// this one; since this handler always completes, such a handler never
// runs, and user plugins cannot veto or rewrite a final candidate here.
func newResolvedPlugin() Plugin {
	return PluginFunc{
		PluginName: "Result",
		ApplyFunc: func(registry *Registry) {
			registry.EnsureHook(HookResolved).Use("Result", func(q *Query, req Request) (*Result, error) {
				return &Result{
					Status:   StatusFound,
					Path:     req.Path,
					Query:    req.Query,
					Fragment: req.Fragment,
					Context:  req.Context,
				}, nil
			})
		},
	}
}
