package resolver

import "strings"

// newExtensionAliasPlugin implements the ExtensionAlias plugin at
// HookUndescribedRawFile: if the literal request suffix ends with a
// configured extension-alias key, each replacement is tried in priority
// order in place of the original extension. The original extension is
// tried only if it is itself listed among the replacements; if none of
// them resolves, the request fails (specification §4.3).
func newExtensionAliasPlugin() Plugin {
	return PluginFunc{
		PluginName: "ExtensionAlias",
		ApplyFunc: func(registry *Registry) {
			registry.EnsureHook(HookUndescribedRawFile).Use("ExtensionAlias", func(q *Query, req Request) (*Result, error) {
				aliases := q.Options().ExtensionAlias
				if len(aliases) == 0 {
					return q.doResolve(HookRawFile, req, "no extension aliases configured")
				}

				for ext, replacements := range aliases {
					if !strings.HasSuffix(req.RequestPath, ext) {
						continue
					}
					base := strings.TrimSuffix(req.RequestPath, ext)
					for _, replacement := range replacements {
						next := req.WithRequestPath(base + replacement)
						res, err := q.doResolve(HookRawFile, next, "extensionAlias "+ext+" -> "+replacement)
						if err != nil {
							return nil, err
						}
						if res != nil {
							return res, nil
						}
					}
					// A matching alias key was found but none of its replacements
					// resolved: the original extension is not tried either.
					return nil, nil
				}

				return q.doResolve(HookRawFile, req, "request extension has no alias")
			})
		},
	}
}
