// Package classify decides whether a testid-bearing DOM element counts as
// present, intentionally hidden, or missing. It operates on a Probe snapshot
// taken at query time, never on a live element handle, so the decision is a
// pure function of the captured state.
package classify

import (
	"strconv"
	"strings"
)

// StableHidingClass is the reserved class name marking an element that is
// deliberately kept mounted but invisible (the stable DOM pattern).
const StableHidingClass = "visually-hidden"

// State is the outward classification of one required element.
type State string

const (
	Present State = "present"
	Hidden  State = "hidden"
	Missing State = "missing"
)

// Reason identifies which rule produced a classification. Reasons are stable
// strings so reports and the remote endpoint can round-trip them.
type Reason string

const (
	ReasonVisible         Reason = "visible"
	ReasonElementNotFound Reason = "element-not-found"
	ReasonDetached        Reason = "detached"
	ReasonHiddenAttribute Reason = "explicit-hidden-attribute"
	ReasonAriaHidden      Reason = "aria-hidden"
	ReasonStableClass     Reason = "stable-hiding-class"
	ReasonStableCSS       Reason = "stable-css-pattern"
	ReasonComputedStyle   Reason = "computed-style"
	ReasonZeroDimensions  Reason = "zero-dimensions"
	ReasonQueryError      Reason = "query-error"
)

// Probe is a read-only snapshot of everything the classifier needs to know
// about one element. Probers fill it from a live page (CDP) or from
// server-rendered markup. Width and Height use -1 when the prober cannot
// measure geometry, so unknown dimensions never trip the zero-size rule.
type Probe struct {
	Found      bool     `json:"found"`
	Attached   bool     `json:"attached"`
	HiddenAttr bool     `json:"hiddenAttr"`
	AriaHidden string   `json:"ariaHidden"`
	Classes    []string `json:"classes"`
	Display    string   `json:"display"`
	Visibility string   `json:"visibility"`
	Opacity    string   `json:"opacity"`
	Position   string   `json:"position"`
	Width      float64  `json:"width"`
	Height     float64  `json:"height"`
}

// Classification pairs the outward state with the rule that fired.
type Classification struct {
	State  State  `json:"state"`
	Reason Reason `json:"reason"`
}

// Classify evaluates the visibility rules in strict precedence order, first
// match wins. Any CSS pattern not explicitly listed classifies Present: the
// gate fails open on unknown styling rather than blocking builds on guesses
// about intent.
func Classify(p *Probe) Classification {
	if p == nil || !p.Found {
		return Classification{State: Missing, Reason: ReasonElementNotFound}
	}
	if !p.Attached {
		return Classification{State: Missing, Reason: ReasonDetached}
	}
	if p.HiddenAttr {
		return Classification{State: Hidden, Reason: ReasonHiddenAttribute}
	}
	if p.AriaHidden == "true" {
		return Classification{State: Hidden, Reason: ReasonAriaHidden}
	}
	if hasClass(p.Classes, StableHidingClass) {
		return Classification{State: Hidden, Reason: ReasonStableClass}
	}
	if c, ok := computedStyleRule(p); ok {
		return c
	}
	if p.Width == 0 && p.Height == 0 {
		return Classification{State: Hidden, Reason: ReasonZeroDimensions}
	}
	return Classification{State: Present, Reason: ReasonVisible}
}

// computedStyleRule handles the computed-style layer. visibility:hidden on a
// positioned element is the CSS spelling of the stable DOM pattern (the
// component stays mounted, keeps layout, stays queryable) and gets its own
// reason so reports never confuse it with an explicit hidden/aria-hidden
// attribute.
func computedStyleRule(p *Probe) (Classification, bool) {
	if p.Visibility == "hidden" && (p.Position == "relative" || p.Position == "absolute") {
		return Classification{State: Hidden, Reason: ReasonStableCSS}, true
	}
	if p.Display == "none" || p.Visibility == "hidden" || opacityIsZero(p.Opacity) {
		return Classification{State: Hidden, Reason: ReasonComputedStyle}, true
	}
	return Classification{}, false
}

// opacityIsZero treats unparseable opacity values as non-zero (fail open).
func opacityIsZero(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return false
	}
	return v == 0
}

func hasClass(classes []string, want string) bool {
	for _, c := range classes {
		if c == want {
			return true
		}
	}
	return false
}
