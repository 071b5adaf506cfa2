package resolver

import "strings"

// newRelativePlugin implements the routing step at HookNormalResolve:
// relative/absolute requests go straight to file candidate resolution
// (after the Root plugin rewrites "/"-prefixed requests against
// Options.Roots, if configured); bare module requests go to HookInternal,
// the canonical entry point specification §4.2 names ahead of the
// bare-module handling stages ("internal, module, resolveAsModule").
// When Options.PreferRelative is set, a bare-looking request is first
// tried as if it were relative to the current directory before falling
// through to the module walk (Open Question #2 in SPEC_FULL.md). When
// Options.PreferAbsolute is set, a bare module request is also tried
// against each configured root before the node_modules walk.
func newRelativePlugin() Plugin {
	return PluginFunc{
		PluginName: "Root",
		ApplyFunc: func(registry *Registry) {
			registry.EnsureHook(HookNormalResolve).Use("Root", func(q *Query, req Request) (*Result, error) {
				if strings.HasPrefix(req.RequestPath, "/") {
					if roots := q.Options().Roots; len(roots) > 0 {
						for _, root := range roots {
							next := req
							next.Path = root
							res, err := q.doResolve(HookUndescribedRawFile, next, "trying root "+root)
							if err != nil {
								return nil, err
							}
							if res != nil {
								return res, nil
							}
						}
					}
					// Fall back to the OS-absolute interpretation.
					next := req
					next.Path = "/"
					next = next.WithRequestPath(strings.TrimPrefix(req.RequestPath, "/"))
					return q.doResolve(HookUndescribedRawFile, next, "absolute path")
				}

				if !req.Module {
					return q.doResolve(HookUndescribedRawFile, req, "relative path")
				}

				if q.Options().PreferRelative {
					next := req
					res, err := q.doResolve(HookUndescribedRawFile, next, "preferRelative: trying "+req.Path+" first")
					if err != nil {
						return nil, err
					}
					if res != nil {
						return res, nil
					}
				}

				if q.Options().PreferAbsolute {
					for _, root := range q.Options().Roots {
						next := req
						next.Path = root
						res, err := q.doResolve(HookUndescribedRawFile, next, "preferAbsolute: trying root "+root+" first")
						if err != nil {
							return nil, err
						}
						if res != nil {
							return res, nil
						}
					}
				}

				return q.doResolve(HookInternal, req, "bare module request")
			})
		},
	}
}
