package resolver

import "github.com/pathresolve/pathresolve/fsx"

// newMainFieldPlugin implements MainField/UseFile at HookFile: req.Path is
// a directory. It looks for a descriptor file directly inside that
// directory (not an upward walk — this is Node's own directory-index
// rule, distinct from the enclosing-package walk the DescriptionFile
// plugin performs for exports/alias-field lookups) and tries the first
// configured main field that is present and non-empty; absent that, it
// falls back to the configured index file names.
func newMainFieldPlugin() Plugin {
	return PluginFunc{
		PluginName: "MainField",
		ApplyFunc: func(registry *Registry) {
			registry.EnsureHook(HookFile).Use("MainField", func(q *Query, req Request) (*Result, error) {
				dir := req.Path

				if descPath, ok := descriptorDirectlyIn(q, dir); ok {
					d, err := q.Descriptors().Parse(descPath)
					if err == nil && d != nil {
						for _, field := range q.Options().MainFields {
							main, ok := d.String(field)
							if !ok || main == "" {
								continue
							}
							next := req.WithRequestPath(main)
							next.Path = dir
							res, err := q.doResolve(HookRawFile, next, "using main field "+field+": "+main)
							if err != nil {
								return nil, err
							}
							if res != nil {
								return res, nil
							}
						}
					}
				}

				for _, indexName := range q.Options().MainFiles {
					next := req.WithRequestPath(indexName)
					next.Path = dir
					res, err := q.doResolve(HookRawFile, next, "using index file "+indexName)
					if err != nil {
						return nil, err
					}
					if res != nil {
						return res, nil
					}
				}

				return nil, nil
			})
		},
	}
}

func descriptorDirectlyIn(q *Query, dir string) (string, bool) {
	for _, name := range q.Options().DescriptionFiles {
		candidate := q.FS().Join(dir, name)
		if q.stat(candidate).Kind == fsx.FileEntry {
			return candidate, true
		}
	}
	return "", false
}
