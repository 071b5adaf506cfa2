package resolver

import (
	"strings"

	"github.com/tidwall/gjson"
)

// newAliasPlugin implements the spec's Alias plugin: exact match, or
// prefix match when the remainder of the request starts with "/". A
// match whose value is the "ignored" sentinel short-circuits the whole
// pipeline with an Ignored result. A re-entry guard (carried in
// req.Context) prevents an alias from being applied twice to the same
// request, since a rewritten request re-enters HookDescribedResolve.
func newAliasPlugin() Plugin {
	return PluginFunc{
		PluginName: "Alias",
		ApplyFunc: func(registry *Registry) {
			registry.EnsureHook(HookDescribedResolve).Use("Alias", func(q *Query, req Request) (*Result, error) {
				entries := q.Options().Alias
				if len(entries) == 0 || aliasVisited(req) {
					return nil, nil
				}

				for _, entry := range entries {
					if entry.OnlyModule && !req.Module {
						continue
					}
					remainder, matched := matchAlias(entry.Name, req.RequestPath)
					if !matched {
						continue
					}
					if entry.Value.Ignored {
						return &Result{Status: StatusIgnored}, nil
					}

					for _, target := range entry.Value.Targets {
						rewritten := target + remainder
						next := markAliasVisited(req).WithRequestPath(rewritten)

						var res *Result
						var err error
						if classifyModule(rewritten) {
							// Alias resolved to a bare module name: lookup must restart
							// from scratch, per specification §3's `path = false` case.
							// req.Path (not yet overwritten) is the issuer HookInternal
							// re-establishes Path from.
							next = next.WithIndeterminatePath(req.Path)
							res, err = q.doResolve(HookResolve, next, "aliased "+entry.Name+" -> "+rewritten+" (restart)")
						} else {
							res, err = q.doResolve(HookRawResolve, next, "aliased "+entry.Name+" -> "+rewritten)
						}
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

// matchAlias reports whether name matches request exactly, or as a
// package-path prefix (name followed by "/"), returning the unmatched
// remainder.
func matchAlias(name, request string) (remainder string, matched bool) {
	if request == name {
		return "", true
	}
	if strings.HasPrefix(request, name+"/") {
		return request[len(name):], true
	}
	return "", false
}

const aliasVisitedKey = "__alias_visited__"

func aliasVisited(req Request) bool {
	return req.Context != nil && req.Context[aliasVisitedKey] == "1"
}

func markAliasVisited(req Request) Request {
	ctx := make(map[string]string, len(req.Context)+1)
	for k, v := range req.Context {
		ctx[k] = v
	}
	ctx[aliasVisitedKey] = "1"
	req.Context = ctx
	return req
}

// newAliasFieldPlugin implements the AliasField plugin: consults the
// descriptor fields named in Options.AliasFields (e.g. "browser") for a
// mapping from request string to replacement, the same shape as the
// Alias plugin's table but sourced from the nearest descriptor file.
func newAliasFieldPlugin() Plugin {
	return PluginFunc{
		PluginName: "AliasField",
		ApplyFunc: func(registry *Registry) {
			registry.EnsureHook(HookDescribedResolve).Use("AliasField", func(q *Query, req Request) (*Result, error) {
				fields := q.Options().AliasFields
				if len(fields) == 0 || req.DescriptionFilePath == "" {
					return nil, nil
				}

				d, err := q.Descriptors().Parse(req.DescriptionFilePath)
				if err != nil || d == nil {
					return nil, nil
				}

				for _, field := range fields {
					value, ok := d.Field(field)
					if !ok || !value.IsObject() {
						continue
					}
					for _, kv := range orderedFields(value) {
						remainder, matched := matchAlias(kv.key, req.RequestPath)
						if !matched {
							continue
						}
						if kv.value.Type == gjson.False {
							return &Result{Status: StatusIgnored}, nil
						}
						if kv.value.Type != gjson.String {
							continue
						}
						next := req.WithRequestPath(kv.value.String() + remainder)
						return q.doResolve(HookRawResolve, next, "aliasField "+field+": "+kv.key+" -> "+kv.value.String())
					}
				}

				return nil, nil
			})
		},
	}
}
