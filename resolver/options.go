package resolver

import (
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/pathresolve/pathresolve/fsx"
)

// AliasValue is a string, a list of strings (tried in order), or the
// sentinel "ignored" value (specification §3, "Alias entry").
type AliasValue struct {
	Targets []string
	Ignored bool
}

// Alias returns a plain string alias target.
func Alias(target string) AliasValue { return AliasValue{Targets: []string{target}} }

// AliasList returns an alias target tried as a priority list.
func AliasList(targets ...string) AliasValue { return AliasValue{Targets: targets} }

// Ignore returns the "this module is deliberately absent" alias sentinel.
func Ignore() AliasValue { return AliasValue{Ignored: true} }

// AliasEntry is one row of the alias table: name, optional onlyModule
// restriction, and its value.
type AliasEntry struct {
	Name       string
	OnlyModule bool
	Value      AliasValue
}

// Restriction is a post-resolution filter; a terminal path that does not
// match Regexp (if set) or fails Predicate (if set) is rejected, and the
// pipeline treats that candidate as absent.
type Restriction struct {
	Regexp    *regexp.Regexp
	Predicate func(path string) bool
}

func (r Restriction) allows(path string) bool {
	if r.Regexp != nil && !r.Regexp.MatchString(path) {
		return false
	}
	if r.Predicate != nil && !r.Predicate(path) {
		return false
	}
	return true
}

// Plugin is the user-extensibility surface: Apply is called once during
// resolver construction with the hook registry, so the plugin can attach
// handlers to whichever hooks it cares about.
type Plugin interface {
	Name() string
	Apply(registry *Registry)
}

// PluginFunc adapts a plain function to the Plugin interface.
type PluginFunc struct {
	PluginName string
	ApplyFunc  func(registry *Registry)
}

func (p PluginFunc) Name() string             { return p.PluginName }
func (p PluginFunc) Apply(registry *Registry) { p.ApplyFunc(registry) }

// Options configures a Resolver. Field names and defaults mirror
// specification §6.2.
type Options struct {
	// FileSystem is the read-only filesystem capability. Required.
	FileSystem fsx.FS

	Alias            []AliasEntry
	AliasFields      []string
	ConditionNames   []string
	DescriptionFiles []string
	EnforceExtension bool
	Extensions       []string
	// ExtensionAlias maps one extension to a priority-ordered list of
	// replacements (e.g. ".js" -> [".ts", ".js"]); if any replacement
	// resolves, the original is not tried (specification §4.3).
	ExtensionAlias   map[string][]string
	ExportsFields    []string
	MainFields       []string
	MainFiles        []string
	Modules          []string
	Symlinks         *bool // nil means default (true)
	ResolveToContext bool

	UnsafeCache      bool
	CachePredicate   func(path, request string) bool
	// CacheWithContext defaults to true (specification §6.2); nil means
	// "unset", matching the Symlinks pointer-bool convention above.
	CacheWithContext *bool

	Plugins []Plugin

	Roots           []string
	PreferRelative  bool
	PreferAbsolute  bool
	Restrictions    []Restriction

	// CacheTTL bounds the filesystem probe cache (specification §4.5).
	// Zero uses fsx.DefaultTTL.
	CacheTTL time.Duration

	// Logger receives one debug entry per pipeline hop and a warning on
	// NotFound (SPEC_FULL.md AMBIENT-LOG). Defaults to a no-op logger.
	Logger *zap.Logger
}

func (o *Options) withDefaults() Options {
	out := *o
	if len(out.DescriptionFiles) == 0 {
		out.DescriptionFiles = []string{"package.json"}
	}
	if len(out.Extensions) == 0 {
		out.Extensions = []string{".js", ".json", ".node"}
	}
	if len(out.ExportsFields) == 0 {
		out.ExportsFields = []string{"exports"}
	}
	if len(out.MainFields) == 0 {
		out.MainFields = []string{"main"}
	}
	if len(out.MainFiles) == 0 {
		out.MainFiles = []string{"index"}
	}
	if len(out.Modules) == 0 {
		out.Modules = []string{"node_modules"}
	}
	if out.Symlinks == nil {
		t := true
		out.Symlinks = &t
	}
	if out.CacheTTL <= 0 {
		out.CacheTTL = fsx.DefaultTTL
	}
	if out.Logger == nil {
		out.Logger = zap.NewNop()
	}
	if out.CacheWithContext == nil {
		t := true
		out.CacheWithContext = &t
	}
	return out
}

func (o Options) symlinksEnabled() bool {
	return o.Symlinks == nil || *o.Symlinks
}

func (o Options) cacheWithContext() bool {
	return o.CacheWithContext == nil || *o.CacheWithContext
}
