package resolver

import "github.com/pathresolve/pathresolve/fsx"

// parsePlugin is the spec's "Parse" plugin: the query/fragment split and
// the module/directory classification already happened when the Request
// was constructed (request.go), so this handler's only job is to advance
// the pipeline to the next canonical stage.
func newParsePlugin() Plugin {
	return PluginFunc{
		PluginName: "Parse",
		ApplyFunc: func(registry *Registry) {
			registry.EnsureHook(HookResolve).Use("Parse", func(q *Query, req Request) (*Result, error) {
				return q.doResolve(HookParsedResolve, req, "parsed request")
			})
		},
	}
}

// descriptionFilePlugin walks upward from the request's current Path to
// find the nearest descriptor file among the configured DescriptionFiles
// names, populating the three descriptor fields together
// (specification §3's invariant). Ties between candidate names in the
// same directory are broken by configuration order.
func newDescriptionFilePlugin() Plugin {
	return PluginFunc{
		PluginName: "DescriptionFile",
		ApplyFunc: func(registry *Registry) {
			registry.EnsureHook(HookParsedResolve).Use("DescriptionFile", func(q *Query, req Request) (*Result, error) {
				if req.PathIndeterminate || req.Path == "" {
					return q.doResolve(HookDescribedResolve, req, "path indeterminate; no description file lookup")
				}

				path, root, ok := findDescriptionFile(q, req.Path)
				if !ok {
					return q.doResolve(HookDescribedResolve, req, "no description file found above "+req.Path)
				}

				relPath := relativeDescriptorPath(q.FS(), root, req.Path, req.RequestPath)
				next := req.WithDescriptionFile(path, root, relPath)
				return q.doResolve(HookDescribedResolve, next, "using description file: "+path)
			})
		},
	}
}

func findDescriptionFile(q *Query, startDir string) (path, root string, ok bool) {
	names := q.Options().DescriptionFiles
	for _, dir := range ancestors(q.FS(), startDir) {
		for _, name := range names {
			candidate := q.FS().Join(dir, name)
			if info := q.stat(candidate); info.Kind == fsx.FileEntry {
				return candidate, dir, true
			}
		}
	}
	return "", "", false
}

func relativeDescriptorPath(fs fsx.FS, root, currentDir, requestPath string) string {
	target := joinRequest(fs, currentDir, requestPath)
	rel := trimCommonPrefix(root, target)
	if rel == "" {
		return "."
	}
	return "./" + rel
}

func trimCommonPrefix(root, target string) string {
	if len(target) > len(root) && target[:len(root)] == root && target[len(root)] == '/' {
		return target[len(root)+1:]
	}
	if target == root {
		return ""
	}
	return target
}
