package resolver

// newRestrictionsPlugin implements the Restrictions post-resolution
// filter at HookExistingFile: a terminal path that fails any configured
// restriction is treated as absent for this candidate (specification §7:
// candidate-level failures are absorbed, not propagated), per
// SPEC_FULL.md's Open Question #3 decision that restrictions are checked
// after symlink canonicalization.
func newRestrictionsPlugin() Plugin {
	return PluginFunc{
		PluginName: "Restrictions",
		ApplyFunc: func(registry *Registry) {
			registry.EnsureHook(HookExistingFile).Use("Restrictions", func(q *Query, req Request) (*Result, error) {
				for _, restriction := range q.Options().Restrictions {
					if !restriction.allows(req.Path) {
						return nil, nil
					}
				}
				return q.doResolve(HookResolved, req, "passed restrictions")
			})
		},
	}
}
