package resolver

import (
	"strings"

	"github.com/pathresolve/pathresolve/descriptor"
)

// newSelfReferencePlugin implements the spec's Self-reference plugin:
// inside a package whose descriptor declares a "name", a request
// beginning with that name resolves through the package's own "exports"
// field instead of walking node_modules.
func newSelfReferencePlugin() Plugin {
	return PluginFunc{
		PluginName: "SelfReference",
		ApplyFunc: func(registry *Registry) {
			registry.EnsureHook(HookRawResolve).Use("SelfReference", func(q *Query, req Request) (*Result, error) {
				if req.DescriptionFilePath == "" || !req.Module {
					return nil, nil
				}

				d, err := q.Descriptors().Parse(req.DescriptionFilePath)
				if err != nil || d == nil {
					return nil, nil
				}
				name, ok := d.Name()
				if !ok {
					return nil, nil
				}

				subpath, matched := packageSubpath(name, req.RequestPath)
				if !matched {
					return nil, nil
				}

				resolved, err := resolveFromExportsFields(q, d, subpath, '.')
				if err != nil {
					return nil, wrapAbsorbed(err)
				}
				if resolved == "" {
					return nil, nil
				}

				next := req.WithRequestPath(resolved)
				next.Path = d.Root
				return q.doResolve(HookUndescribedRawFile, next, "self-reference "+name+subpath[1:]+" -> "+resolved)
			})
		},
	}
}

// newImportsPlugin implements the Imports-field half of §4.4: a request
// beginning with "#" resolves through the nearest descriptor's "imports"
// field. The result may be a relative in-package path or, for an external
// target, a bare specifier that re-enters normal resolution.
func newImportsPlugin() Plugin {
	return PluginFunc{
		PluginName: "Imports",
		ApplyFunc: func(registry *Registry) {
			registry.EnsureHook(HookRawResolve).Use("Imports", func(q *Query, req Request) (*Result, error) {
				if req.DescriptionFilePath == "" || !strings.HasPrefix(req.RequestPath, "#") {
					return nil, nil
				}

				d, err := q.Descriptors().Parse(req.DescriptionFilePath)
				if err != nil || d == nil {
					return nil, nil
				}

				resolved, err := resolveFromExportsFields(q, d, req.RequestPath, '#')
				if err != nil {
					return nil, wrapAbsorbed(err)
				}
				if resolved == "" {
					return nil, nil
				}

				if strings.HasPrefix(resolved, "./") || strings.HasPrefix(resolved, "../") {
					next := req.WithRequestPath(resolved)
					next.Path = d.Root
					return q.doResolve(HookUndescribedRawFile, next, "imports "+req.RequestPath+" -> "+resolved)
				}

				// External target: re-enter normal resolution as a bare module
				// request, restarting the lookup the way an alias whose target is
				// a bare module name does. req.Path is the issuer HookInternal
				// re-establishes Path from.
				next := req.WithRequestPath(resolved).WithIndeterminatePath(req.Path)
				return q.doResolve(HookResolve, next, "imports "+req.RequestPath+" -> external "+resolved)
			})
		},
	}
}

// resolveFromExportsFields evaluates the first configured exports field
// (specification §6.2's ExportsFields list) that is present on d; for an
// imports lookup (keyPrefix '#') the field is always "imports". Returns ("", nil) when no configured field exists on the descriptor at
// all — not to be confused with a field existing but the subpath not
// being exported, which is an error.
func resolveFromExportsFields(q *Query, d *descriptor.Descriptor, subpath string, keyPrefix byte) (string, error) {
	fieldName := "exports"
	if keyPrefix == '#' {
		fieldName = "imports"
	}
	fields := q.Options().ExportsFields
	if keyPrefix == '#' {
		fields = []string{"imports"}
	}
	if len(fields) == 0 {
		fields = []string{fieldName}
	}

	for _, field := range fields {
		tree, ok := d.Field(field)
		if !ok {
			continue
		}
		target, err := evaluateExportsLike(tree, subpath, NewConditions(q.Options().ConditionNames...), keyPrefix)
		if err != nil {
			return "", err
		}
		if keyPrefix == '.' {
			if verr := validateInPackage(target); verr != nil {
				return "", verr
			}
		}
		return target, nil
	}
	return "", nil
}

// packageSubpath reports whether request references packageName (exactly,
// or as "packageName/sub..."), returning the "."-rooted subpath exports
// expects.
func packageSubpath(packageName, request string) (subpath string, matched bool) {
	if request == packageName {
		return ".", true
	}
	if strings.HasPrefix(request, packageName+"/") {
		return "." + request[len(packageName):], true
	}
	return "", false
}

// wrapAbsorbed turns an ExportsBlocked/InvalidExportsTarget error into a
// pipeline decline rather than a fatal PluginError: per specification §7,
// candidate-level failures are absorbed, not propagated. The error itself
// is discarded; it is not recorded in the attempt log.
func wrapAbsorbed(err error) error {
	if rerr, ok := err.(*Error); ok {
		switch rerr.Kind {
		case KindExportsBlocked, KindInvalidExportsTarget:
			return nil
		}
	}
	return err
}
