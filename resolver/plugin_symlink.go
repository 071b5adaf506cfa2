package resolver

import "strings"

// newSymlinkPlugin implements the Symlink plugin at HookFinalFile:
// canonicalizes the resolved file by resolving every path segment that is
// itself a symbolic link, unless Options.Symlinks disables it.
// Grounded on esbuild's fs.FS.EvalSymlinks, generalized to the fsx
// capability's per-segment Readlink probe.
func newSymlinkPlugin() Plugin {
	return PluginFunc{
		PluginName: "Symlink",
		ApplyFunc: func(registry *Registry) {
			registry.EnsureHook(HookFinalFile).Use("Symlink", func(q *Query, req Request) (*Result, error) {
				path := req.Path
				if q.Options().symlinksEnabled() {
					path = evalSymlinks(q, path)
				}
				next := req
				next.Path = path
				return q.doResolve(HookExistingFile, next, "canonicalized to "+path)
			})
		},
	}
}

// evalSymlinks walks path segment by segment, following any symlink it
// finds, the same way realpath(3) does. It bounds the number of follows
// to guard against symlink cycles.
func evalSymlinks(q *Query, path string) string {
	const maxFollows = 40
	follows := 0

	segments := strings.Split(strings.TrimPrefix(path, "/"), "/")
	resolved := ""

	for i := 0; i < len(segments); i++ {
		if segments[i] == "" {
			continue
		}
		candidate := resolved + "/" + segments[i]

		for follows < maxFollows {
			target, err := q.FS().Readlink(candidate)
			if err != nil || target == "" {
				break
			}
			follows++
			if q.FS().IsAbs(target) {
				candidate = target
			} else {
				candidate = q.FS().Join(q.FS().Dir(candidate), target)
			}
		}

		resolved = candidate
	}

	if resolved == "" {
		return "/"
	}
	return resolved
}
