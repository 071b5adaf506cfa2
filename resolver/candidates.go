package resolver

import (
	"strings"

	"github.com/pathresolve/pathresolve/fsx"
)

// ancestors yields dir and each of its parent directories up to and
// including "/", used by the descriptor walk and the hierarchical
// node_modules walk.
func ancestors(fs fsx.FS, dir string) []string {
	var out []string
	seen := map[string]bool{}
	for {
		if seen[dir] {
			break
		}
		seen[dir] = true
		out = append(out, dir)
		parent := fs.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return out
}

// stat probes a path through the query's cached filesystem, recording the
// dependency in the resolve context the way specification §8's superset
// property requires.
func (q *Query) stat(path string) fsx.Info {
	info, err := q.FS().Stat(path)
	if err != nil || info.Kind == fsx.NoEntry {
		q.rctx.touchMissing(path)
		return fsx.Info{Kind: fsx.NoEntry}
	}
	if info.Kind == fsx.FileEntry {
		q.rctx.touchFile(path)
	} else {
		q.rctx.touchDir(path)
	}
	return info
}

func joinRequest(fs fsx.FS, dir, suffix string) string {
	if suffix == "" {
		return dir
	}
	return fs.Join(dir, suffix)
}

func trimTrailingSlash(s string) string {
	return strings.TrimSuffix(s, "/")
}
