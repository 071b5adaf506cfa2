package resolver

// newForwardPlugin builds the spec's "NextPlugin" catalog entry: a terminal
// handler that unconditionally forwards to the next canonical hook once
// every more specific handler ahead of it on the same hook has declined.
// Registered last on a hook, per the ordering contract in hooks.go's Use
// doc comment.
func newForwardPlugin(name, from, to string) Plugin {
	return PluginFunc{
		PluginName: name,
		ApplyFunc: func(registry *Registry) {
			registry.EnsureHook(from).Use(name, func(q *Query, req Request) (*Result, error) {
				return q.doResolve(to, req, "no more specific handler on "+from)
			})
		},
	}
}

// registerBuiltinPlugins attaches the full built-in plugin catalog
// (specification §4.3) to registry in canonical order, then applies any
// user-supplied plugins from options.Plugins so they can extend built-in
// behavior (they attach after, so on a shared hook they run only when every
// built-in handler there has declined, or they can EnsureHook a new
// sub-hook of their own).
func registerBuiltinPlugins(registry *Registry, options Options) {
	for _, name := range canonicalHookOrder {
		registry.EnsureHook(name)
	}

	builtins := []Plugin{
		newParsePlugin(),
		newDescriptionFilePlugin(),

		// HookDescribedResolve: Alias, then AliasField, then an unconditional
		// forward to HookRawResolve when neither matched.
		newAliasPlugin(),
		newAliasFieldPlugin(),
		newForwardPlugin("NextPlugin", HookDescribedResolve, HookRawResolve),

		// HookRawResolve: SelfReference, then Imports, then forward to
		// HookNormalResolve.
		newSelfReferencePlugin(),
		newImportsPlugin(),
		newForwardPlugin("NextPlugin", HookRawResolve, HookNormalResolve),

		newRelativePlugin(),
		newInternalPlugin(),
		newModuleDirectoryPlugin(),
		newModulesInRootPathPlugin(),
		newResolveAsModulePlugin(),
		newExtensionAliasPlugin(),
		newExtensionPlugin(),
		newMainFieldPlugin(),
		newSymlinkPlugin(),
		newRestrictionsPlugin(),
		newResolvedPlugin(),
	}

	for _, p := range builtins {
		p.Apply(registry)
	}
	for _, p := range options.Plugins {
		p.Apply(registry)
	}
}
