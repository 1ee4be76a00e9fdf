package registry

import "strings"

// SplitPath normalizes a route into its non-empty segments. "/" and "" both
// yield zero segments.
func SplitPath(route string) []string {
	route = strings.Trim(route, "/")
	if route == "" {
		return nil
	}
	return strings.Split(route, "/")
}

// JoinPath rebuilds a normalized path from segments, always with a leading
// slash. The normalized form is the exact-match map key, so /login and
// /login/ resolve identically.
func JoinPath(segs []string) string {
	return "/" + strings.Join(segs, "/")
}

// Match reports whether a pattern's segments match a concrete path's
// segments. Segment counts must be equal; a :param segment matches any one
// non-empty literal segment. Kept as a plain function over segment arrays so
// the tie-break and specificity rules above stay auditable in isolation.
func Match(pattern, path []string) bool {
	if len(pattern) != len(path) {
		return false
	}
	for i, p := range pattern {
		if isWildcard(p) {
			if path[i] == "" {
				return false
			}
			continue
		}
		if p != path[i] {
			return false
		}
	}
	return true
}

// overlaps reports whether two patterns can both match some concrete path.
func overlaps(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if isWildcard(a[i]) || isWildcard(b[i]) {
			continue
		}
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// SubstituteParams replaces every :param segment with the given value,
// turning a pattern into a concrete navigable path.
func SubstituteParams(pattern, value string) string {
	segs := SplitPath(pattern)
	for i, s := range segs {
		if isWildcard(s) {
			segs[i] = value
		}
	}
	return JoinPath(segs)
}

func isWildcard(seg string) bool {
	return strings.HasPrefix(seg, ":")
}

func countWildcards(segs []string) int {
	n := 0
	for _, s := range segs {
		if isWildcard(s) {
			n++
		}
	}
	return n
}
