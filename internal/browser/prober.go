package browser

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"

	"tidgate/internal/classify"
	"tidgate/internal/verify"
)

// probeJS snapshots one element in a single evaluation so the probe reflects
// one consistent moment of the live DOM. Selector failures are returned as
// data, not thrown, so the caller can distinguish a query error from an
// absent element.
const probeJS = `(tid) => {
	let el;
	try {
		el = document.querySelector('[data-testid="' + tid + '"]');
	} catch (e) {
		return { queryError: String(e) };
	}
	if (!el) {
		return { found: false };
	}
	const cs = window.getComputedStyle(el);
	const rect = el.getBoundingClientRect();
	return {
		found: true,
		attached: el.isConnected,
		hiddenAttr: el.hasAttribute('hidden'),
		ariaHidden: el.getAttribute('aria-hidden') || '',
		classes: Array.from(el.classList),
		display: cs.display,
		visibility: cs.visibility,
		opacity: cs.opacity,
		position: cs.position,
		width: rect.width,
		height: rect.height,
	};
}`

// PageProber probes one loaded page. Read-only: it only ever evaluates
// getters against the document.
type PageProber struct {
	page *rod.Page
}

// Probe implements verify.Prober against the live DOM.
func (p *PageProber) Probe(testidValue string) (*classify.Probe, error) {
	res, err := p.page.Eval(probeJS, testidValue)
	if err != nil {
		return nil, fmt.Errorf("evaluate probe for %q: %w", testidValue, err)
	}
	m := res.Value.Map()
	if qe, ok := m["queryError"]; ok {
		return nil, fmt.Errorf("dom query for %q: %s", testidValue, qe.Str())
	}
	probe := &classify.Probe{Found: m["found"].Bool()}
	if !probe.Found {
		return probe, nil
	}
	probe.Attached = m["attached"].Bool()
	probe.HiddenAttr = m["hiddenAttr"].Bool()
	probe.AriaHidden = m["ariaHidden"].Str()
	for _, c := range m["classes"].Arr() {
		probe.Classes = append(probe.Classes, c.Str())
	}
	probe.Display = m["display"].Str()
	probe.Visibility = m["visibility"].Str()
	probe.Opacity = m["opacity"].Str()
	probe.Position = m["position"].Str()
	probe.Width = m["width"].Num()
	probe.Height = m["height"].Num()
	return probe, nil
}

// Close releases the underlying page.
func (p *PageProber) Close() error {
	return p.page.Close()
}

// RouteVerifier adapts a Session into the reconciler's local verifier: one
// fresh page per route, verified and closed.
type RouteVerifier struct {
	session  *Session
	verifier *verify.Verifier
	baseURL  string
}

// NewRouteVerifier wires a started session to the route verifier.
func NewRouteVerifier(session *Session, verifier *verify.Verifier, baseURL string) *RouteVerifier {
	return &RouteVerifier{session: session, verifier: verifier, baseURL: baseURL}
}

// Verify opens the route in the live browser and classifies its required
// keys. Harness-level waiting (network idle, app-specific readiness) belongs
// to the caller; this method verifies the DOM as loaded.
func (rv *RouteVerifier) Verify(ctx context.Context, route string) (*verify.Result, error) {
	page, err := rv.session.OpenRoute(ctx, rv.baseURL, route)
	if err != nil {
		return nil, err
	}
	defer func() { _ = page.Close() }()
	return rv.verifier.Verify(route, page), nil
}
