// Package verify runs one route's requirements against a DOM prober and
// buckets each required key into present, hidden, or missing.
package verify

import (
	"sort"
	"time"

	"tidgate/internal/classify"
	"tidgate/internal/registry"
	"tidgate/internal/testid"
)

// Prober resolves one literal data-testid value to a probe snapshot of the
// matching element. Implementations must be read-only with respect to the
// page they inspect.
type Prober interface {
	Probe(testidValue string) (*classify.Probe, error)
}

// KeyOutcome is the per-key diagnostic record: which rule fired for which
// key. Failures are always reported with these, never as a bare boolean.
type KeyOutcome struct {
	Key   testid.Key              `json:"key"`
	Value string                  `json:"value"`
	Class classify.Classification `json:"classification"`
}

// Result aggregates one verification pass over one route. The three buckets
// are disjoint and together cover exactly the route's required keys.
type Result struct {
	Route     string       `json:"route"`
	Timestamp time.Time    `json:"timestamp"`
	Present   []testid.Key `json:"present"`
	Hidden    []testid.Key `json:"hidden"`
	Missing   []testid.Key `json:"missing"`
	Outcomes  []KeyOutcome `json:"outcomes,omitempty"`
}

// Verifier evaluates route requirements against a prober. It holds only the
// static vocabulary and registry, so a single Verifier is safe to share
// across concurrent route verifications.
type Verifier struct {
	vocab *testid.Vocabulary
	reg   *registry.Registry
}

// New builds a verifier over a validated vocabulary and registry.
func New(vocab *testid.Vocabulary, reg *registry.Registry) *Verifier {
	return &Verifier{vocab: vocab, reg: reg}
}

// Verify classifies every key required on the route. Keys are evaluated
// sequentially against the prober; a prober failure for one key classifies
// that key missing with a query-error reason and evaluation continues, so one
// broken selector never aborts the rest of the route. A route with zero
// requirements returns an empty, valid result.
func (v *Verifier) Verify(route string, p Prober) *Result {
	keys := v.reg.RequirementsFor(route)
	res := &Result{
		Route:     route,
		Timestamp: time.Now().UTC(),
		Present:   []testid.Key{},
		Hidden:    []testid.Key{},
		Missing:   []testid.Key{},
		Outcomes:  make([]KeyOutcome, 0, len(keys)),
	}
	for _, key := range keys {
		value, _ := v.vocab.Value(key)
		cls := probeOne(p, value)
		res.Outcomes = append(res.Outcomes, KeyOutcome{Key: key, Value: value, Class: cls})
		switch cls.State {
		case classify.Present:
			res.Present = append(res.Present, key)
		case classify.Hidden:
			res.Hidden = append(res.Hidden, key)
		default:
			res.Missing = append(res.Missing, key)
		}
	}
	return res
}

func probeOne(p Prober, value string) classify.Classification {
	probe, err := p.Probe(value)
	if err != nil {
		return classify.Classification{State: classify.Missing, Reason: classify.ReasonQueryError}
	}
	return classify.Classify(probe)
}

// RequiredKeys exposes the registry lookup for callers that only need the
// requirement list (the remote endpoint echoes it).
func (v *Verifier) RequiredKeys(route string) []testid.Key {
	return v.reg.RequirementsFor(route)
}

// SortedKeys returns a sorted copy, for stable report output.
func SortedKeys(keys []testid.Key) []testid.Key {
	out := append([]testid.Key(nil), keys...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
