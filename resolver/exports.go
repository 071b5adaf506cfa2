package resolver

import (
	"sort"
	"strings"

	"github.com/tidwall/gjson"
)

// Conditions is the active condition set used while evaluating a
// conditional exports/imports tree.
type Conditions map[string]bool

// NewConditions builds a Conditions set from an ordered preference list.
func NewConditions(names ...string) Conditions {
	c := make(Conditions, len(names))
	for _, n := range names {
		c[n] = true
	}
	return c
}

type orderedField struct {
	key   string
	value gjson.Result
}

// orderedFields walks an object or array in source order. Grounded on
// esbuild's own peMapEntry slice (which exists only to preserve object
// property order through its hand-rolled JSON parser); here the ordering
// comes for free from gjson.Result.ForEach, which visits object members
// in document order.
func orderedFields(r gjson.Result) []orderedField {
	var out []orderedField
	r.ForEach(func(key, value gjson.Result) bool {
		out = append(out, orderedField{key: key.String(), value: value})
		return true
	})
	return out
}

// evaluateExportsLike implements specification §4.4: given the raw
// "exports" or "imports" subtree, the requested sub-path (e.g. "./sub" or,
// for imports, "#name"), and the active condition set, it returns the
// resolved in-package relative path or external request.
//
// keyPrefix is "." for exports trees and "#" for imports trees — it picks
// which leading character distinguishes a sub-path/import key from a
// condition name (specification §4.4 rule 2).
func evaluateExportsLike(tree gjson.Result, subpath string, conditions Conditions, keyPrefix byte) (string, error) {
	entry, capture, err := matchSubpath(tree, subpath, keyPrefix)
	if err != nil {
		return "", err
	}
	return resolveConditionValue(entry, conditions, capture)
}

func matchSubpath(tree gjson.Result, subpath string, keyPrefix byte) (gjson.Result, string, error) {
	switch {
	case tree.Type == gjson.String || tree.IsArray():
		if subpath != "." {
			return gjson.Result{}, "", newError(KindInvalidExportsTarget, "package does not export "+subpath)
		}
		return tree, "", nil

	case tree.Type == gjson.JSON && tree.IsObject():
		fields := orderedFields(tree)

		if !allKeysStartWith(fields, keyPrefix) {
			// Rule: a mapping with no sub-path keys is "conditional sugar" for
			// the package root — the whole object is itself a condition map.
			if subpath != "." {
				return gjson.Result{}, "", newError(KindInvalidExportsTarget, "package does not export "+subpath)
			}
			return tree, "", nil
		}

		// Exact match wins over any pattern match.
		for _, f := range fields {
			if f.key == subpath {
				return f.value, "", nil
			}
		}

		// Among pattern keys, the longest prefix before "*" wins; ties break
		// on the longest suffix after "*".
		type candidate struct {
			prefix, suffix string
			value          gjson.Result
		}
		var candidates []candidate
		for _, f := range fields {
			star := strings.IndexByte(f.key, '*')
			if star < 0 {
				continue
			}
			prefix, suffix := f.key[:star], f.key[star+1:]
			if len(subpath) < len(prefix)+len(suffix) {
				continue
			}
			if strings.HasPrefix(subpath, prefix) && strings.HasSuffix(subpath, suffix) {
				candidates = append(candidates, candidate{prefix: prefix, suffix: suffix, value: f.value})
			}
		}
		if len(candidates) == 0 {
			return gjson.Result{}, "", newError(KindInvalidExportsTarget, "package does not export "+subpath)
		}
		sort.SliceStable(candidates, func(i, j int) bool {
			if len(candidates[i].prefix) != len(candidates[j].prefix) {
				return len(candidates[i].prefix) > len(candidates[j].prefix)
			}
			return len(candidates[i].suffix) > len(candidates[j].suffix)
		})
		best := candidates[0]
		capture := subpath[len(best.prefix) : len(subpath)-len(best.suffix)]
		return best.value, capture, nil

	default:
		return gjson.Result{}, "", newError(KindInvalidExportsTarget, "invalid exports entry for "+subpath)
	}
}

func allKeysStartWith(fields []orderedField, prefix byte) bool {
	if len(fields) == 0 {
		return false
	}
	for _, f := range fields {
		if len(f.key) == 0 || f.key[0] != prefix {
			return false
		}
	}
	return true
}

// resolveConditionValue recurses through string / array / condition-map
// values (specification §4.4 rules 4-6), substituting capture into any "*"
// placeholder in the terminal string.
func resolveConditionValue(value gjson.Result, conditions Conditions, capture string) (string, error) {
	switch {
	case value.Type == gjson.Null:
		return "", newError(KindExportsBlocked, "export target is null")

	case value.Type == gjson.String:
		return substituteCapture(value.String(), capture), nil

	case value.IsArray():
		var lastErr error
		for _, f := range orderedFields(value) {
			resolved, err := resolveConditionValue(f.value, conditions, capture)
			if err == nil {
				return resolved, nil
			}
			lastErr = err
		}
		if lastErr == nil {
			lastErr = newError(KindInvalidExportsTarget, "no array entry resolved")
		}
		return "", lastErr

	case value.Type == gjson.JSON && value.IsObject():
		for _, f := range orderedFields(value) {
			if f.key == "default" || conditions[f.key] {
				return resolveConditionValue(f.value, conditions, capture)
			}
		}
		return "", newError(KindInvalidExportsTarget, "no matching condition")

	default:
		return "", newError(KindInvalidExportsTarget, "exports target must be a string, array, or object")
	}
}

func substituteCapture(value, capture string) string {
	if capture == "" || !strings.Contains(value, "*") {
		return value
	}
	return strings.ReplaceAll(value, "*", capture)
}

// validateInPackage checks rule 7: an exports result must begin with "./"
// and must not escape the descriptor root via ".." segments.
func validateInPackage(target string) error {
	if !strings.HasPrefix(target, "./") {
		return newError(KindInvalidExportsTarget, "exports target must start with \"./\": "+target)
	}
	cleaned := cleanRelative(target)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return newError(KindInvalidExportsTarget, "exports target escapes package root: "+target)
	}
	return nil
}

func cleanRelative(p string) string {
	segments := strings.Split(p, "/")
	var out []string
	for _, seg := range segments {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(out) > 0 && out[len(out)-1] != ".." {
				out = out[:len(out)-1]
			} else {
				out = append(out, "..")
			}
		default:
			out = append(out, seg)
		}
	}
	return strings.Join(out, "/")
}
