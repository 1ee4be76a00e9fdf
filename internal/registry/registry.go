// Package registry maps route patterns to the testid keys that must be
// verifiable on that route. Patterns are literal paths or paths with
// single-segment placeholders (/app/leagues/:id/lobby). All validation runs
// at construction so lookups never fail.
package registry

import (
	"errors"
	"fmt"

	"tidgate/internal/testid"
)

var (
	// ErrAmbiguousPattern indicates two patterns can match the same path
	// with equal specificity, making the winner undefined.
	ErrAmbiguousPattern = errors.New("ambiguous route patterns")
	// ErrUnknownKey indicates a requirement references a key missing from
	// the vocabulary.
	ErrUnknownKey = errors.New("unknown testid key")
	// ErrDuplicateKey indicates a key appears twice in one requirement.
	ErrDuplicateKey = errors.New("duplicate key in requirement")
	// ErrDuplicatePattern indicates the same pattern registered twice.
	ErrDuplicatePattern = errors.New("duplicate route pattern")
)

// Requirement pairs one route pattern with its ordered required keys.
type Requirement struct {
	Pattern string
	Keys    []testid.Key
}

type entry struct {
	pattern   string
	segments  []string
	wildcards int
	keys      []testid.Key
}

// Registry resolves a concrete route path to its required testid keys.
// Read-only after construction.
type Registry struct {
	exact   map[string]*entry
	dynamic []*entry
}

// New validates requirements against the vocabulary and builds the registry.
// Any violation is a fatal configuration error, reported here rather than at
// lookup time.
func New(vocab *testid.Vocabulary, reqs []Requirement) (*Registry, error) {
	r := &Registry{exact: make(map[string]*entry, len(reqs))}
	for _, req := range reqs {
		segs := SplitPath(req.Pattern)
		if len(segs) == 0 && req.Pattern != "/" {
			return nil, fmt.Errorf("route pattern %q: empty", req.Pattern)
		}
		seen := make(map[testid.Key]bool, len(req.Keys))
		keys := make([]testid.Key, 0, len(req.Keys))
		for _, k := range req.Keys {
			if !vocab.Has(k) {
				return nil, fmt.Errorf("%w: %q in pattern %q", ErrUnknownKey, k, req.Pattern)
			}
			if seen[k] {
				return nil, fmt.Errorf("%w: %q in pattern %q", ErrDuplicateKey, k, req.Pattern)
			}
			seen[k] = true
			keys = append(keys, k)
		}
		e := &entry{
			pattern:   req.Pattern,
			segments:  segs,
			wildcards: countWildcards(segs),
			keys:      keys,
		}
		if e.wildcards == 0 {
			key := JoinPath(segs)
			if _, dup := r.exact[key]; dup {
				return nil, fmt.Errorf("%w: %q", ErrDuplicatePattern, req.Pattern)
			}
			r.exact[key] = e
			continue
		}
		for _, other := range r.dynamic {
			if other.pattern == e.pattern {
				return nil, fmt.Errorf("%w: %q", ErrDuplicatePattern, req.Pattern)
			}
			if overlaps(other.segments, e.segments) && other.wildcards == e.wildcards {
				return nil, fmt.Errorf("%w: %q and %q", ErrAmbiguousPattern, other.pattern, e.pattern)
			}
		}
		r.dynamic = append(r.dynamic, e)
	}
	return r, nil
}

// RequirementsFor returns the required keys for a concrete path. Exact
// literal match wins; otherwise the matching dynamic pattern with the fewest
// wildcard segments wins. An unregistered route yields an empty list, not an
// error: verifying it is legal and trivially passes.
func (r *Registry) RequirementsFor(route string) []testid.Key {
	segs := SplitPath(route)
	if e, ok := r.exact[JoinPath(segs)]; ok {
		return append([]testid.Key(nil), e.keys...)
	}
	var best *entry
	for _, e := range r.dynamic {
		if !Match(e.segments, segs) {
			continue
		}
		if best == nil || e.wildcards < best.wildcards {
			best = e
		}
	}
	if best == nil {
		return nil
	}
	return append([]testid.Key(nil), best.keys...)
}

// Patterns lists every registered pattern, exact first.
func (r *Registry) Patterns() []string {
	out := make([]string, 0, len(r.exact)+len(r.dynamic))
	for _, e := range r.exact {
		out = append(out, e.pattern)
	}
	for _, e := range r.dynamic {
		out = append(out, e.pattern)
	}
	return out
}
