package main

import (
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/pathresolve/pathresolve/resolver"
)

// fileConfig is the YAML-facing shape of resolver.Options, named and typed
// so restrictions (regexps) and alias entries (string | []string | false)
// can round-trip through a document instead of Go struct literals. Covers
// the YAML-expressible subset of resolver/options.go, grafana-k6 and
// kraklabs-cie style; ExtensionAlias, CachePredicate, CacheWithContext,
// CacheTTL, Plugins and Logger are not configurable from the file.
type fileConfig struct {
	Alias            map[string]yaml.Node `yaml:"alias"`
	AliasFields      []string             `yaml:"aliasFields"`
	ConditionNames   []string             `yaml:"conditionNames"`
	DescriptionFiles []string             `yaml:"descriptionFiles"`
	EnforceExtension bool                 `yaml:"enforceExtension"`
	Extensions       []string             `yaml:"extensions"`
	ExportsFields    []string             `yaml:"exportsFields"`
	MainFields       []string             `yaml:"mainFields"`
	MainFiles        []string             `yaml:"mainFiles"`
	Modules          []string             `yaml:"modules"`
	Symlinks         *bool                `yaml:"symlinks"`
	ResolveToContext bool                 `yaml:"resolveToContext"`
	UnsafeCache      bool                 `yaml:"unsafeCache"`
	Roots            []string             `yaml:"roots"`
	PreferRelative   bool                 `yaml:"preferRelative"`
	PreferAbsolute   bool                 `yaml:"preferAbsolute"`
	Restrictions     []string             `yaml:"restrictions"`
}

// loadConfig reads a YAML config file at path and merges it onto base.
// A missing path is not an error: the CLI runs against resolver defaults.
func loadConfig(path string, base resolver.Options) (resolver.Options, error) {
	if path == "" {
		return base, nil
	}

	contents, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return base, nil
	}
	if err != nil {
		return base, err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(contents, &fc); err != nil {
		return base, err
	}

	return applyFileConfig(base, fc)
}

func applyFileConfig(o resolver.Options, fc fileConfig) (resolver.Options, error) {
	for name, node := range fc.Alias {
		entry := resolver.AliasEntry{Name: name}
		switch node.Kind {
		case yaml.ScalarNode:
			var asBool bool
			if err := node.Decode(&asBool); err == nil {
				if !asBool {
					return o, &yaml.TypeError{Errors: []string{"alias " + name + ": only false is a valid boolean value, got true"}}
				}
				entry.Value = resolver.Ignore()
			} else {
				var target string
				if err := node.Decode(&target); err != nil {
					return o, err
				}
				entry.Value = resolver.Alias(target)
			}
		case yaml.SequenceNode:
			var targets []string
			if err := node.Decode(&targets); err != nil {
				return o, err
			}
			entry.Value = resolver.AliasList(targets...)
		}
		o.Alias = append(o.Alias, entry)
	}

	if len(fc.AliasFields) > 0 {
		o.AliasFields = fc.AliasFields
	}
	if len(fc.ConditionNames) > 0 {
		o.ConditionNames = fc.ConditionNames
	}
	if len(fc.DescriptionFiles) > 0 {
		o.DescriptionFiles = fc.DescriptionFiles
	}
	if len(fc.Extensions) > 0 {
		o.Extensions = fc.Extensions
	}
	if len(fc.ExportsFields) > 0 {
		o.ExportsFields = fc.ExportsFields
	}
	if len(fc.MainFields) > 0 {
		o.MainFields = fc.MainFields
	}
	if len(fc.MainFiles) > 0 {
		o.MainFiles = fc.MainFiles
	}
	if len(fc.Modules) > 0 {
		o.Modules = fc.Modules
	}
	if len(fc.Roots) > 0 {
		o.Roots = fc.Roots
	}
	o.EnforceExtension = fc.EnforceExtension || o.EnforceExtension
	o.ResolveToContext = fc.ResolveToContext || o.ResolveToContext
	o.UnsafeCache = fc.UnsafeCache || o.UnsafeCache
	o.PreferRelative = fc.PreferRelative || o.PreferRelative
	o.PreferAbsolute = fc.PreferAbsolute || o.PreferAbsolute
	if fc.Symlinks != nil {
		o.Symlinks = fc.Symlinks
	}

	for _, pattern := range fc.Restrictions {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return o, err
		}
		o.Restrictions = append(o.Restrictions, resolver.Restriction{Regexp: re})
	}

	return o, nil
}
