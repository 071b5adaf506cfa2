package resolver

// newResolveAsModulePlugin implements the HookResolveAsModule stage:
// given a candidate package directory (req.Path) and the remaining
// subpath (req.RequestPath, possibly empty), it locates that package's
// own descriptor file, prefers its "exports" field when present, and
// otherwise falls through to the ordinary file/directory candidate
// pipeline (main fields, index files, extensions).
func newResolveAsModulePlugin() Plugin {
	return PluginFunc{
		PluginName: "ResolveAsModule",
		ApplyFunc: func(registry *Registry) {
			registry.EnsureHook(HookResolveAsModule).Use("ResolveAsModule", func(q *Query, req Request) (*Result, error) {
				path, root, ok := findDescriptionFile(q, req.Path)
				if ok {
					req = req.WithDescriptionFile(path, root, subpathOf(req.RequestPath))
				}

				if req.DescriptionFilePath != "" {
					d, err := q.Descriptors().Parse(req.DescriptionFilePath)
					if err == nil && d != nil {
						subpath := "."
						if req.RequestPath != "" {
							subpath = "./" + req.RequestPath
						}
						resolved, err := resolveFromExportsFields(q, d, subpath, '.')
						if err != nil {
							return nil, wrapAbsorbed(err)
						}
						if resolved != "" {
							next := req.WithRequestPath(resolved)
							next.Path = d.Root
							return q.doResolve(HookUndescribedRawFile, next, "package exports "+subpath+" -> "+resolved)
						}
					}
				}

				return q.doResolve(HookUndescribedRawFile, req, "module package main/index lookup")
			})
		},
	}
}

func subpathOf(request string) string {
	if request == "" {
		return "."
	}
	return "./" + request
}
