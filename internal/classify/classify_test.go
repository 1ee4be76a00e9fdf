package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// visibleProbe returns a probe that classifies Present unless mutated.
func visibleProbe() *Probe {
	return &Probe{
		Found:      true,
		Attached:   true,
		AriaHidden: "",
		Display:    "block",
		Visibility: "visible",
		Opacity:    "1",
		Position:   "static",
		Width:      120,
		Height:     32,
	}
}

func TestClassify_RulePrecedence(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Probe)
		state  State
		reason Reason
	}{
		{
			name:   "visible element is present",
			mutate: func(p *Probe) {},
			state:  Present,
			reason: ReasonVisible,
		},
		{
			name:   "not found is missing",
			mutate: func(p *Probe) { p.Found = false },
			state:  Missing,
			reason: ReasonElementNotFound,
		},
		{
			name:   "detached is missing",
			mutate: func(p *Probe) { p.Attached = false },
			state:  Missing,
			reason: ReasonDetached,
		},
		{
			name:   "hidden attribute wins over everything below it",
			mutate: func(p *Probe) { p.HiddenAttr = true; p.AriaHidden = "true"; p.Display = "none"; p.Width = 0; p.Height = 0 },
			state:  Hidden,
			reason: ReasonHiddenAttribute,
		},
		{
			name:   "aria-hidden true hides even when displayed",
			mutate: func(p *Probe) { p.AriaHidden = "true" },
			state:  Hidden,
			reason: ReasonAriaHidden,
		},
		{
			name:   "aria-hidden false is not hiding",
			mutate: func(p *Probe) { p.AriaHidden = "false" },
			state:  Present,
			reason: ReasonVisible,
		},
		{
			name:   "stable hiding class",
			mutate: func(p *Probe) { p.Classes = []string{"btn", StableHidingClass} },
			state:  Hidden,
			reason: ReasonStableClass,
		},
		{
			name:   "display none",
			mutate: func(p *Probe) { p.Display = "none" },
			state:  Hidden,
			reason: ReasonComputedStyle,
		},
		{
			name:   "visibility hidden static position",
			mutate: func(p *Probe) { p.Visibility = "hidden" },
			state:  Hidden,
			reason: ReasonComputedStyle,
		},
		{
			name:   "visibility hidden relative position is the stable CSS pattern",
			mutate: func(p *Probe) { p.Visibility = "hidden"; p.Position = "relative" },
			state:  Hidden,
			reason: ReasonStableCSS,
		},
		{
			name:   "visibility hidden absolute position is the stable CSS pattern",
			mutate: func(p *Probe) { p.Visibility = "hidden"; p.Position = "absolute" },
			state:  Hidden,
			reason: ReasonStableCSS,
		},
		{
			name:   "zero opacity",
			mutate: func(p *Probe) { p.Opacity = "0" },
			state:  Hidden,
			reason: ReasonComputedStyle,
		},
		{
			name:   "fractional opacity is visible",
			mutate: func(p *Probe) { p.Opacity = "0.4" },
			state:  Present,
			reason: ReasonVisible,
		},
		{
			name:   "unparseable opacity fails open",
			mutate: func(p *Probe) { p.Opacity = "inherit" },
			state:  Present,
			reason: ReasonVisible,
		},
		{
			name:   "zero width and height",
			mutate: func(p *Probe) { p.Width = 0; p.Height = 0 },
			state:  Hidden,
			reason: ReasonZeroDimensions,
		},
		{
			name:   "zero width alone stays present",
			mutate: func(p *Probe) { p.Width = 0 },
			state:  Present,
			reason: ReasonVisible,
		},
		{
			name:   "unknown geometry never counts as zero size",
			mutate: func(p *Probe) { p.Width = -1; p.Height = -1 },
			state:  Present,
			reason: ReasonVisible,
		},
		{
			name:   "unlisted css pattern fails open",
			mutate: func(p *Probe) { p.Position = "fixed"; p.Display = "inline-flex" },
			state:  Present,
			reason: ReasonVisible,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := visibleProbe()
			tt.mutate(p)
			got := Classify(p)
			assert.Equal(t, tt.state, got.State)
			assert.Equal(t, tt.reason, got.Reason)
		})
	}
}

func TestClassify_NilProbe(t *testing.T) {
	got := Classify(nil)
	assert.Equal(t, Missing, got.State)
	assert.Equal(t, ReasonElementNotFound, got.Reason)
}

// A disabled-during-request control must never read as a regression: keeping
// it mounted with aria-disabled (not aria-hidden) is the whole point of the
// stable DOM pattern.
func TestClassify_DisabledIsNotHidden(t *testing.T) {
	p := visibleProbe()
	p.Classes = []string{"btn", "btn-disabled"}
	got := Classify(p)
	assert.Equal(t, Present, got.State)
}
