package resolver

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pathresolve/pathresolve/fsx"
)

func newTestResolver(t *testing.T, files map[string]string, opts func(*Options)) *Resolver {
	t.Helper()
	o := Options{FileSystem: fsx.NewMock(files)}
	if opts != nil {
		opts(&o)
	}
	r, err := New(o)
	require.NoError(t, err)
	return r
}

func TestResolveExtensionProbing(t *testing.T) {
	r := newTestResolver(t, map[string]string{
		"/proj/foo.js": "",
	}, nil)
	res, err := r.ResolveSync(nil, "/proj", "./foo")
	require.NoError(t, err)
	require.True(t, res.IsFound())
	require.Equal(t, "/proj/foo.js", res.Path)
}

func TestResolveDirectoryMainField(t *testing.T) {
	r := newTestResolver(t, map[string]string{
		"/proj/node_modules/pkg/package.json": `{"main":"./lib/entry.js"}`,
		"/proj/node_modules/pkg/lib/entry.js": "",
	}, nil)
	res, err := r.ResolveSync(nil, "/proj", "pkg")
	require.NoError(t, err)
	require.True(t, res.IsFound())
	require.Equal(t, "/proj/node_modules/pkg/lib/entry.js", res.Path)
}

func TestResolveIndexFileFallback(t *testing.T) {
	r := newTestResolver(t, map[string]string{
		"/proj/node_modules/pkg/index.js": "",
	}, nil)
	res, err := r.ResolveSync(nil, "/proj", "pkg")
	require.NoError(t, err)
	require.True(t, res.IsFound())
	require.Equal(t, "/proj/node_modules/pkg/index.js", res.Path)
}

func TestResolveAliasToFalseIsIgnored(t *testing.T) {
	r := newTestResolver(t, map[string]string{
		"/proj/foo.js": "",
	}, func(o *Options) {
		o.Alias = []AliasEntry{{Name: "blocked-module", Value: Ignore()}}
	})
	res, err := r.ResolveSync(nil, "/proj", "blocked-module")
	require.NoError(t, err)
	require.True(t, res.IsIgnored())
}

func TestResolveAliasRewritesRequest(t *testing.T) {
	r := newTestResolver(t, map[string]string{
		"/proj/shim.js": "",
	}, func(o *Options) {
		o.Alias = []AliasEntry{{Name: "real-module", Value: Alias("./shim")}}
	})
	res, err := r.ResolveSync(nil, "/proj", "real-module")
	require.NoError(t, err)
	require.True(t, res.IsFound())
	require.Equal(t, "/proj/shim.js", res.Path)
}

func TestResolveAliasToBareModuleNameRestartsLookup(t *testing.T) {
	r := newTestResolver(t, map[string]string{
		"/proj/node_modules/other-module/index.js": "",
	}, func(o *Options) {
		o.Alias = []AliasEntry{{Name: "blocked-name", Value: Alias("other-module")}}
	})
	res, err := r.ResolveSync(nil, "/proj", "blocked-name")
	require.NoError(t, err)
	require.True(t, res.IsFound())
	require.Equal(t, "/proj/node_modules/other-module/index.js", res.Path)
}

func TestResolveImportsFieldExternalTargetRestartsLookup(t *testing.T) {
	r := newTestResolver(t, map[string]string{
		"/proj/package.json":                   `{"imports":{"#dep":"some-pkg"}}`,
		"/proj/node_modules/some-pkg/index.js": "",
	}, nil)
	res, err := r.ResolveSync(nil, "/proj", "#dep")
	require.NoError(t, err)
	require.True(t, res.IsFound())
	require.Equal(t, "/proj/node_modules/some-pkg/index.js", res.Path)
}

func TestResolveExportsFieldWithConditions(t *testing.T) {
	r := newTestResolver(t, map[string]string{
		"/proj/node_modules/pkg/package.json": `{
			"exports": {
				".": {"import": "./esm.js", "default": "./cjs.js"}
			}
		}`,
		"/proj/node_modules/pkg/esm.js": "",
		"/proj/node_modules/pkg/cjs.js": "",
	}, func(o *Options) {
		o.ConditionNames = []string{"import"}
	})
	res, err := r.ResolveSync(nil, "/proj", "pkg")
	require.NoError(t, err)
	require.True(t, res.IsFound())
	require.Equal(t, "/proj/node_modules/pkg/esm.js", res.Path)
}

func TestResolveExportsWildcardSubpath(t *testing.T) {
	r := newTestResolver(t, map[string]string{
		"/proj/node_modules/pkg/package.json": `{"exports":{"./*":"./src/*.js"}}`,
		"/proj/node_modules/pkg/src/util/a.js": "",
	}, nil)
	res, err := r.ResolveSync(nil, "/proj", "pkg/util/a")
	require.NoError(t, err)
	require.True(t, res.IsFound())
	require.Equal(t, "/proj/node_modules/pkg/src/util/a.js", res.Path)
}

func TestResolveExportsBlocksPathsOutsideMap(t *testing.T) {
	r := newTestResolver(t, map[string]string{
		"/proj/node_modules/pkg/package.json": `{"exports":{".":"./index.js"}}`,
		"/proj/node_modules/pkg/index.js":     "",
		"/proj/node_modules/pkg/secret.js":    "",
	}, nil)
	res, err := r.ResolveSync(nil, "/proj", "pkg/secret")
	require.NoError(t, err)
	require.True(t, res.IsNotFound())
}

func TestResolveSymlinkCanonicalization(t *testing.T) {
	files := map[string]string{"/real/target.js": ""}
	symlinks := map[string]string{"/proj/link": "/real"}
	fs := fsx.NewMockWithSymlinks(files, symlinks)
	r, err := New(Options{FileSystem: fs})
	require.NoError(t, err)

	res, err := r.ResolveSync(nil, "/proj", "./link/target")
	require.NoError(t, err)
	require.True(t, res.IsFound())
	require.Equal(t, "/real/target.js", res.Path)
}

func TestResolveSymlinkDisabledKeepsLinkSegment(t *testing.T) {
	files := map[string]string{"/real/target.js": ""}
	symlinks := map[string]string{"/proj/link": "/real"}
	fs := fsx.NewMockWithSymlinks(files, symlinks)
	disabled := false
	r, err := New(Options{FileSystem: fs, Symlinks: &disabled})
	require.NoError(t, err)

	res, err := r.ResolveSync(nil, "/proj", "./link/target")
	require.NoError(t, err)
	require.True(t, res.IsFound())
	require.Equal(t, "/proj/link/target.js", res.Path)
}

func TestResolveRestrictionViolationIsNotFound(t *testing.T) {
	r := newTestResolver(t, map[string]string{
		"/proj/private/secret.js": "",
	}, func(o *Options) {
		o.Restrictions = []Restriction{{Predicate: func(path string) bool {
			return path != "/proj/private/secret.js"
		}}}
	})
	res, err := r.ResolveSync(nil, "/proj", "./private/secret")
	require.NoError(t, err)
	require.True(t, res.IsNotFound())
}

func TestResolveQueryAndFragmentPreserved(t *testing.T) {
	r := newTestResolver(t, map[string]string{"/proj/foo.js": ""}, nil)
	res, err := r.ResolveSync(nil, "/proj", "./foo?raw#frag")
	require.NoError(t, err)
	require.True(t, res.IsFound())
	require.Equal(t, "/proj/foo.js", res.Path)
	require.Equal(t, "?raw", res.Query)
	require.Equal(t, "#frag", res.Fragment)
}

func TestResolveIsDeterministicAcrossRepeatedCalls(t *testing.T) {
	r := newTestResolver(t, map[string]string{"/proj/foo.js": ""}, nil)
	first, err := r.ResolveSync(nil, "/proj", "./foo")
	require.NoError(t, err)
	second, err := r.ResolveSync(nil, "/proj", "./foo")
	require.NoError(t, err)
	require.Equal(t, first.Path, second.Path)
}

func TestResolveNotFoundCarriesAttemptLog(t *testing.T) {
	r := newTestResolver(t, map[string]string{}, nil)
	res, err := r.ResolveSync(nil, "/proj", "./missing")
	require.NoError(t, err)
	require.True(t, res.IsNotFound())
	require.NotEmpty(t, res.Attempts)
}

func TestResolveDependencySetsSupersetProbedPaths(t *testing.T) {
	r := newTestResolver(t, map[string]string{"/proj/foo.js": ""}, nil)
	rctx := NewContext()
	res, err := r.ResolveSync(rctx, "/proj", "./foo")
	require.NoError(t, err)
	require.True(t, res.IsFound())
	require.True(t, rctx.FileDependencies["/proj/foo.js"])
	require.True(t, rctx.MissingDependencies["/proj/foo"])
}

func TestResolveAsyncDeliversResult(t *testing.T) {
	r := newTestResolver(t, map[string]string{"/proj/foo.js": ""}, nil)
	ch := r.ResolveAsync(context.Background(), nil, "/proj", "./foo")
	out := <-ch
	require.NoError(t, out.Err)
	require.True(t, out.Result.IsFound())
	require.Equal(t, "/proj/foo.js", out.Result.Path)
}

func TestResolveUnsafeCacheReturnsSameResult(t *testing.T) {
	r := newTestResolver(t, map[string]string{"/proj/foo.js": ""}, func(o *Options) {
		o.UnsafeCache = true
	})
	first, err := r.ResolveSync(nil, "/proj", "./foo")
	require.NoError(t, err)
	second, err := r.ResolveSync(nil, "/proj", "./foo")
	require.NoError(t, err)
	require.Equal(t, first, second)

	_, ok := r.unsafeLookup(nil, "/proj", "./foo")
	require.True(t, ok, "second call must have been served from the unsafe cache")

	r.Purge()
	_, ok = r.unsafeLookup(nil, "/proj", "./foo")
	require.False(t, ok, "Purge with no arguments must also drop unsafe-cache entries")
}

func TestResolveSelfReferenceUsesOwnExports(t *testing.T) {
	r := newTestResolver(t, map[string]string{
		"/proj/package.json":  `{"name":"my-pkg","exports":{".":"./index.js","./feature":"./feature.js"}}`,
		"/proj/index.js":      "",
		"/proj/feature.js":    "",
		"/proj/src/inner.js":  "",
	}, nil)
	res, err := r.ResolveSync(nil, "/proj/src", "my-pkg/feature")
	require.NoError(t, err)
	require.True(t, res.IsFound())
	require.Equal(t, "/proj/feature.js", res.Path)
}

func TestResolveToContextReturnsDirectory(t *testing.T) {
	r := newTestResolver(t, map[string]string{
		"/proj/node_modules/pkg/index.js": "",
	}, func(o *Options) {
		o.ResolveToContext = true
	})
	res, err := r.ResolveSync(nil, "/proj", "pkg")
	require.NoError(t, err)
	require.True(t, res.IsFound())
	require.Equal(t, "/proj/node_modules/pkg", res.Path)
}

func TestResolvePreferAbsoluteTriesRootsBeforeModules(t *testing.T) {
	r := newTestResolver(t, map[string]string{
		"/root-dir/pkg.js":                   "",
		"/proj/node_modules/pkg.js/index.js": "",
	}, func(o *Options) {
		o.Roots = []string{"/root-dir"}
		o.PreferAbsolute = true
	})
	res, err := r.ResolveSync(nil, "/proj", "pkg.js")
	require.NoError(t, err)
	require.True(t, res.IsFound())
	require.Equal(t, "/root-dir/pkg.js", res.Path)
}

func TestResolveExtensionAliasTriesReplacementsInOrder(t *testing.T) {
	r := newTestResolver(t, map[string]string{
		"/proj/foo.ts": "",
		"/proj/foo.js": "",
	}, func(o *Options) {
		o.ExtensionAlias = map[string][]string{".js": {".ts", ".js"}}
	})
	res, err := r.ResolveSync(nil, "/proj", "./foo.js")
	require.NoError(t, err)
	require.True(t, res.IsFound())
	require.Equal(t, "/proj/foo.ts", res.Path)
}

func TestResolveExtensionAliasFailsWhenNoReplacementMatches(t *testing.T) {
	r := newTestResolver(t, map[string]string{
		"/proj/foo.js": "",
	}, func(o *Options) {
		o.ExtensionAlias = map[string][]string{".js": {".ts"}}
	})
	res, err := r.ResolveSync(nil, "/proj", "./foo.js")
	require.NoError(t, err)
	require.True(t, res.IsNotFound())
}

func TestResolveRestrictionRegexpRejectsPath(t *testing.T) {
	r := newTestResolver(t, map[string]string{
		"/proj/private/secret.js": "",
	}, func(o *Options) {
		o.Restrictions = []Restriction{{Regexp: regexp.MustCompile(`^/proj/public/`)}}
	})
	res, err := r.ResolveSync(nil, "/proj", "./private/secret")
	require.NoError(t, err)
	require.True(t, res.IsNotFound())
}

func TestResolveModulesInRootPath(t *testing.T) {
	r := newTestResolver(t, map[string]string{
		"/workspace/node_modules/pkg/index.js": "",
	}, func(o *Options) {
		o.Roots = []string{"/workspace"}
	})
	res, err := r.ResolveSync(nil, "/proj/src", "pkg")
	require.NoError(t, err)
	require.True(t, res.IsFound())
	require.Equal(t, "/workspace/node_modules/pkg/index.js", res.Path)
}

func TestResolveEnforceExtensionRejectsBareFile(t *testing.T) {
	r := newTestResolver(t, map[string]string{
		"/proj/foo":    "",
		"/proj/foo.js": "",
	}, func(o *Options) {
		o.EnforceExtension = true
	})
	res, err := r.ResolveSync(nil, "/proj", "./foo")
	require.NoError(t, err)
	require.True(t, res.IsFound())
	require.Equal(t, "/proj/foo.js", res.Path)
}

func TestResolveImportsFieldInternalMapping(t *testing.T) {
	r := newTestResolver(t, map[string]string{
		"/proj/package.json": `{"imports":{"#dep":"./vendor/dep.js"}}`,
		"/proj/vendor/dep.js": "",
	}, nil)
	res, err := r.ResolveSync(nil, "/proj", "#dep")
	require.NoError(t, err)
	require.True(t, res.IsFound())
	require.Equal(t, "/proj/vendor/dep.js", res.Path)
}
