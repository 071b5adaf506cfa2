package resolver

import "github.com/pathresolve/pathresolve/fsx"

// newExtensionPlugin implements the Extension plugin at HookRawFile: it
// builds the literal candidate path, tries it as-is (unless
// EnforceExtension forbids a bare candidate with no configured
// extension), then tries each configured extension in order. A directory
// hit forwards to HookFile for main-field/index resolution, unless
// Options.ResolveToContext is set, in which case the directory itself is
// the terminal candidate (specification §6.2's "resolve to a directory,
// not a file").
func newExtensionPlugin() Plugin {
	return PluginFunc{
		PluginName: "Extension",
		ApplyFunc: func(registry *Registry) {
			registry.EnsureHook(HookRawFile).Use("Extension", func(q *Query, req Request) (*Result, error) {
				target := joinRequest(q.FS(), req.Path, req.RequestPath)

				info := q.stat(target)
				switch info.Kind {
				case fsx.FileEntry:
					if q.Options().ResolveToContext {
						break
					}
					if !q.Options().EnforceExtension || hasKnownExtension(target, q.Options().Extensions) {
						next := req
						next.Path = target
						next = next.WithRequestPath("")
						return q.doResolve(HookFinalFile, next, "found file "+target)
					}
					// EnforceExtension rejects the bare candidate; fall through to
					// try appending a configured extension instead.

				case fsx.DirEntry:
					next := req
					next.Path = target
					next = next.WithRequestPath("")
					if q.Options().ResolveToContext {
						return q.doResolve(HookFinalFile, next, "resolved to context directory "+target)
					}
					return q.doResolve(HookFile, next, "found directory "+target)
				}

				if q.Options().ResolveToContext {
					return nil, nil
				}

				for _, ext := range q.Options().Extensions {
					candidate := target + ext
					if q.stat(candidate).Kind == fsx.FileEntry {
						next := req
						next.Path = candidate
						next = next.WithRequestPath("")
						return q.doResolve(HookFinalFile, next, "found file "+candidate)
					}
				}

				return nil, nil
			})
		},
	}
}

func hasKnownExtension(path string, extensions []string) bool {
	for _, ext := range extensions {
		if len(path) >= len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}
