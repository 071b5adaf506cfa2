package resolver

import "strings"

// Request is the immutable, copy-on-modify record threaded through the
// resolution pipeline (specification §3). Plugins never mutate a Request
// in place; "modifying" a request means constructing a new value, so
// concurrent sub-resolves never alias each other's state.
type Request struct {
	// Path is the absolute directory serving as the current lookup base.
	// PathIndeterminate being true means "path is indeterminate" (an alias
	// rewrote the request to a bare module name that must restart lookup
	// from scratch) — the Go equivalent of the spec's sentinel false path.
	Path              string
	PathIndeterminate bool

	// Request is the remaining unresolved suffix.
	RequestPath string

	// Query and Fragment are the "?..." and "#..." suffixes, preserved
	// verbatim.
	Query    string
	Fragment string

	// Directory is true when the request explicitly denotes a directory
	// (trailing slash).
	Directory bool

	// Module is true while this is still a bare module request (no leading
	// "./", "../", "/").
	Module bool

	// DescriptionFilePath/Root/RelativePath are populated once the enclosing
	// descriptor file has been located. All three are set together.
	DescriptionFilePath string
	DescriptionFileRoot string
	RelativePath        string

	// Context carries opaque caller-supplied key/value data (e.g. an issuer
	// path) through to plugins that consult it.
	Context map[string]string
}

// WithPath returns a copy of r with Path replaced and PathIndeterminate
// cleared.
func (r Request) WithPath(path string) Request {
	r.Path = path
	r.PathIndeterminate = false
	return r
}

// restartIssuerKey carries the directory resolution was proceeding from
// at the moment a plugin marked Path indeterminate, so HookInternal (the
// canonical stage specification §4.2 names for "bare-module handling" —
// "internal, module, resolveAsModule") can re-establish a real lookup
// base before the module-directory walk runs.
const restartIssuerKey = "__restart_issuer__"

// WithIndeterminatePath returns a copy of r whose Path is indeterminate —
// used when an alias or imports-field target resolves to a bare module
// name that must restart lookup (specification §3's sentinel false
// path). issuer is the directory lookup was proceeding from when the
// restart was triggered; HookInternal reads it back to re-establish a
// concrete Path. The descriptor fields are cleared too: they describe
// the directory being abandoned, not whatever directory HookInternal
// settles on, and must not leak into the Alias/AliasField/SelfReference
// handlers that run on the indeterminate request before HookInternal is
// reached.
func (r Request) WithIndeterminatePath(issuer string) Request {
	ctx := make(map[string]string, len(r.Context)+1)
	for k, v := range r.Context {
		ctx[k] = v
	}
	ctx[restartIssuerKey] = issuer
	r.Context = ctx

	r.Path = ""
	r.PathIndeterminate = true
	r.DescriptionFilePath = ""
	r.DescriptionFileRoot = ""
	r.RelativePath = ""
	return r
}

// WithRequestPath returns a copy of r with RequestPath (and its derived
// Module/Directory flags) replaced.
func (r Request) WithRequestPath(requestPath string) Request {
	r.RequestPath = requestPath
	r.Module = classifyModule(requestPath)
	r.Directory = requestPath == "" || hasTrailingSlash(requestPath)
	return r
}

// WithDescriptionFile returns a copy of r with all three descriptor fields
// set together, per the invariant in specification §3.
func (r Request) WithDescriptionFile(path, root, relativePath string) Request {
	r.DescriptionFilePath = path
	r.DescriptionFileRoot = root
	r.RelativePath = relativePath
	return r
}

func classifyModule(requestPath string) bool {
	if requestPath == "" {
		return false
	}
	if requestPath[0] == '.' || requestPath[0] == '/' {
		return false
	}
	return true
}

func hasTrailingSlash(s string) bool {
	return len(s) > 0 && s[len(s)-1] == '/'
}

// parseRequest splits a raw request string into (path-ish request, query,
// fragment) using the first unescaped '?' and '#'; a backslash escapes
// either character, matching specification §4.1 step 1.
func parseRequest(raw string) (request, query, fragment string) {
	var b strings.Builder
	i := 0
	for i < len(raw) {
		c := raw[i]
		if c == '\\' && i+1 < len(raw) && (raw[i+1] == '?' || raw[i+1] == '#' || raw[i+1] == '\\') {
			b.WriteByte(raw[i+1])
			i += 2
			continue
		}
		if c == '?' || c == '#' {
			break
		}
		b.WriteByte(c)
		i++
	}
	request = b.String()

	if i < len(raw) && raw[i] == '?' {
		j := i
		for j < len(raw) && raw[j] != '#' {
			j++
		}
		query = raw[i:j]
		i = j
	}
	if i < len(raw) && raw[i] == '#' {
		fragment = raw[i:]
	}
	return
}
