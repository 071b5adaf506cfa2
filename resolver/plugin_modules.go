package resolver

import (
	"strings"

	"github.com/pathresolve/pathresolve/fsx"
)

// newModuleDirectoryPlugin implements ModulesInHierarchicalDirectories:
// starting at the request's current directory and walking up through
// every ancestor, it looks for each configured module-root name (e.g.
// "node_modules") and, if present, forwards a package-directory candidate
// to HookResolveAsModule.
func newModuleDirectoryPlugin() Plugin {
	return PluginFunc{
		PluginName: "ModulesInHierarchicalDirectories",
		ApplyFunc: func(registry *Registry) {
			registry.EnsureHook(HookModule).Use("ModulesInHierarchicalDirectories", func(q *Query, req Request) (*Result, error) {
				packageName, remainder := splitPackageRequest(req.RequestPath)

				for _, dir := range ancestors(q.FS(), req.Path) {
					for _, modulesDir := range q.Options().Modules {
						base := q.FS().Join(dir, modulesDir)
						if q.stat(base).Kind != fsx.DirEntry {
							continue
						}
						packageDir := q.FS().Join(base, packageName)
						if q.stat(packageDir).Kind != fsx.DirEntry {
							continue
						}

						next := req.WithRequestPath(remainder)
						next.Path = packageDir
						res, err := q.doResolve(HookResolveAsModule, next, "looking for modules in "+base)
						if err != nil {
							return nil, err
						}
						if res != nil {
							return res, nil
						}
					}
				}

				return q.doResolve(HookModulesInRootPath, req, "no hierarchical module directory matched")
			})
		},
	}
}

// newModulesInRootPathPlugin implements ModulesInRootPath: in addition to
// the hierarchical walk, each configured root is tried as a fixed
// location for a module directory (useful for monorepos with a single
// top-level node_modules outside the hierarchical chain).
func newModulesInRootPathPlugin() Plugin {
	return PluginFunc{
		PluginName: "ModulesInRootPath",
		ApplyFunc: func(registry *Registry) {
			registry.EnsureHook(HookModulesInRootPath).Use("ModulesInRootPath", func(q *Query, req Request) (*Result, error) {
				packageName, remainder := splitPackageRequest(req.RequestPath)

				for _, root := range q.Options().Roots {
					for _, modulesDir := range q.Options().Modules {
						base := q.FS().Join(root, modulesDir)
						packageDir := q.FS().Join(base, packageName)
						if q.stat(packageDir).Kind != fsx.DirEntry {
							continue
						}
						next := req.WithRequestPath(remainder)
						next.Path = packageDir
						res, err := q.doResolve(HookResolveAsModule, next, "looking for modules under root "+base)
						if err != nil {
							return nil, err
						}
						if res != nil {
							return res, nil
						}
					}
				}

				return nil, nil
			})
		},
	}
}

// splitPackageRequest splits a bare module request into its package name
// (including a leading "@scope/name" for scoped packages) and the
// remaining subpath, if any.
func splitPackageRequest(request string) (packageName, remainder string) {
	if strings.HasPrefix(request, "@") {
		if idx := nthSlash(request, 2); idx >= 0 {
			return request[:idx], request[idx+1:]
		}
		return request, ""
	}
	if idx := strings.IndexByte(request, '/'); idx >= 0 {
		return request[:idx], request[idx+1:]
	}
	return request, ""
}

func nthSlash(s string, n int) int {
	count := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '/' {
			count++
			if count == n {
				return i
			}
		}
	}
	return -1
}
