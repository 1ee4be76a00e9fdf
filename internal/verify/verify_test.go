package verify

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidgate/internal/classify"
	"tidgate/internal/registry"
	"tidgate/internal/testid"
)

// mapProber serves canned probes keyed by literal testid value. Values bound
// to a nil probe with no error simulate "querySelector returned null".
type mapProber struct {
	probes map[string]*classify.Probe
	errs   map[string]error
}

func (m *mapProber) Probe(value string) (*classify.Probe, error) {
	if err, ok := m.errs[value]; ok {
		return nil, err
	}
	return m.probes[value], nil
}

func visible() *classify.Probe {
	return &classify.Probe{
		Found: true, Attached: true,
		Display: "block", Visibility: "visible", Opacity: "1", Position: "static",
		Width: 100, Height: 20,
	}
}

func newVerifier(t *testing.T) *Verifier {
	t.Helper()
	vocab, err := testid.NewVocabulary(map[testid.Key]string{
		"loginHeader":    "login-header",
		"authFormReady":  "auth-form-ready",
		"authEmailInput": "auth-email-input",
		"authSubmitBtn":  "auth-submit-btn",
		"backToHome":     "back-to-home",
	})
	require.NoError(t, err)
	reg, err := registry.New(vocab, []registry.Requirement{
		{Pattern: "/login", Keys: []testid.Key{
			"loginHeader", "authFormReady", "authEmailInput", "authSubmitBtn", "backToHome",
		}},
	})
	require.NoError(t, err)
	return New(vocab, reg)
}

func TestVerify_AllPresent(t *testing.T) {
	v := newVerifier(t)
	p := &mapProber{probes: map[string]*classify.Probe{
		"login-header":     visible(),
		"auth-form-ready":  visible(),
		"auth-email-input": visible(),
		"auth-submit-btn":  visible(),
		"back-to-home":     visible(),
	}}

	res := v.Verify("/login", p)
	assert.Len(t, res.Present, 5)
	assert.Empty(t, res.Hidden)
	assert.Empty(t, res.Missing)
	assert.False(t, res.Timestamp.IsZero())
}

// A submit button disabled via aria-disabled stays present: disabled is not
// hidden.
func TestVerify_DisabledButtonIsPresent(t *testing.T) {
	v := newVerifier(t)
	disabled := visible()
	p := &mapProber{probes: map[string]*classify.Probe{
		"login-header":     visible(),
		"auth-form-ready":  visible(),
		"auth-email-input": visible(),
		"auth-submit-btn":  disabled,
		"back-to-home":     visible(),
	}}

	res := v.Verify("/login", p)
	assert.Contains(t, res.Present, testid.Key("authSubmitBtn"))
	assert.Empty(t, res.Missing)
}

func TestVerify_HiddenAndMissingBuckets(t *testing.T) {
	v := newVerifier(t)
	wrapped := visible()
	wrapped.Display = "none"
	p := &mapProber{probes: map[string]*classify.Probe{
		"login-header":     visible(),
		"auth-form-ready":  visible(),
		"auth-email-input": wrapped,
		"auth-submit-btn":  visible(),
		// back-to-home absent: querySelector returns null
	}}

	res := v.Verify("/login", p)
	assert.Equal(t, []testid.Key{"authEmailInput"}, res.Hidden)
	assert.Equal(t, []testid.Key{"backToHome"}, res.Missing)
	assert.Len(t, res.Present, 3)
}

func TestVerify_QueryErrorIsolatedPerKey(t *testing.T) {
	v := newVerifier(t)
	p := &mapProber{
		probes: map[string]*classify.Probe{
			"login-header":     visible(),
			"auth-form-ready":  visible(),
			"auth-submit-btn":  visible(),
			"back-to-home":     visible(),
		},
		errs: map[string]error{
			"auth-email-input": errors.New("invalid selector"),
		},
	}

	res := v.Verify("/login", p)
	assert.Equal(t, []testid.Key{"authEmailInput"}, res.Missing)
	assert.Len(t, res.Present, 4)

	var found bool
	for _, o := range res.Outcomes {
		if o.Key == "authEmailInput" {
			found = true
			assert.Equal(t, classify.ReasonQueryError, o.Class.Reason)
		}
	}
	assert.True(t, found)
}

func TestVerify_UnregisteredRouteIsEmptyResult(t *testing.T) {
	v := newVerifier(t)
	res := v.Verify("/nowhere", &mapProber{})
	assert.Empty(t, res.Present)
	assert.Empty(t, res.Hidden)
	assert.Empty(t, res.Missing)
}

// Partition property: every required key lands in exactly one bucket.
func TestVerify_PartitionInvariant(t *testing.T) {
	v := newVerifier(t)
	hiddenProbe := visible()
	hiddenProbe.AriaHidden = "true"
	p := &mapProber{
		probes: map[string]*classify.Probe{
			"login-header":    visible(),
			"auth-form-ready": hiddenProbe,
			"auth-submit-btn": visible(),
		},
		errs: map[string]error{"back-to-home": errors.New("boom")},
	}

	res := v.Verify("/login", p)
	required := v.RequiredKeys("/login")
	assert.Len(t, required, 5)

	seen := make(map[testid.Key]int)
	for _, k := range res.Present {
		seen[k]++
	}
	for _, k := range res.Hidden {
		seen[k]++
	}
	for _, k := range res.Missing {
		seen[k]++
	}
	assert.Len(t, seen, len(required))
	for _, k := range required {
		assert.Equal(t, 1, seen[k], "key %s must appear in exactly one bucket", k)
	}
}

func TestSortedKeys(t *testing.T) {
	got := SortedKeys([]testid.Key{"b", "a", "c"})
	assert.Equal(t, []testid.Key{"a", "b", "c"}, got)
}
