// Package reconcile combines local (live DOM) and remote (server-rendered)
// verification of one route. Local classification is always authoritative:
// it is exactly what a browser-driven E2E run will see. Remote corroborates,
// and a remote failure degrades to metadata instead of blocking the gate, so
// an unrelated backend outage cannot fail a demonstrably correct frontend.
package reconcile

import (
	"context"

	"go.uber.org/zap"

	"tidgate/internal/classify"
	"tidgate/internal/remoteapi"
	"tidgate/internal/testid"
	"tidgate/internal/verify"
)

// LocalVerifier verifies a route against the live in-page DOM.
type LocalVerifier interface {
	Verify(ctx context.Context, route string) (*verify.Result, error)
}

// RemoteVerifier verifies a route against server-side markup state.
type RemoteVerifier interface {
	Verify(ctx context.Context, route string) (*remoteapi.VerifyResponse, error)
}

// Unreported marks a key that one source classified and the other never
// covered. Both sources verify the same registry, so coverage gaps are
// themselves worth surfacing.
const Unreported classify.State = "unreported"

// Disagreement records one key the two sources bucketed differently.
// Surfaced for investigation; never part of the pass/fail decision.
type Disagreement struct {
	Key    testid.Key     `json:"key"`
	Local  classify.State `json:"local"`
	Remote classify.State `json:"remote"`
}

// Result is the combined verification for one route.
type Result struct {
	Route         string                    `json:"route"`
	Local         *verify.Result            `json:"local"`
	Remote        *remoteapi.VerifyResponse `json:"remote,omitempty"`
	RemoteErr     string                    `json:"remoteError,omitempty"`
	Disagreements []Disagreement            `json:"disagreements,omitempty"`
}

// Missing returns the authoritative missing keys (local's bucketing).
func (r *Result) Missing() []testid.Key { return r.Local.Missing }

// Hidden returns the authoritative hidden keys.
func (r *Result) Hidden() []testid.Key { return r.Local.Hidden }

// Present returns the authoritative present keys.
func (r *Result) Present() []testid.Key { return r.Local.Present }

// Reconciler pairs the two verification sources.
type Reconciler struct {
	local  LocalVerifier
	remote RemoteVerifier
	logger *zap.Logger
}

// New builds a reconciler. remote may be nil when no remote endpoint is
// configured; the result then carries no remote signal and no remote error.
func New(local LocalVerifier, remote RemoteVerifier, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{local: local, remote: remote, logger: logger}
}

// Reconcile verifies the route on both sources. A local failure is a hard
// error: without the authoritative source there is nothing to decide on. A
// remote failure is recorded on the result and never dropped.
func (r *Reconciler) Reconcile(ctx context.Context, route string) (*Result, error) {
	local, err := r.local.Verify(ctx, route)
	if err != nil {
		return nil, err
	}
	res := &Result{Route: route, Local: local}
	if r.remote == nil {
		return res, nil
	}

	remote, err := r.remote.Verify(ctx, route)
	if err != nil {
		res.RemoteErr = err.Error()
		r.logger.Warn("remote verification failed, proceeding on local only",
			zap.String("route", route), zap.Error(err))
		return res, nil
	}
	res.Remote = remote
	res.Disagreements = diff(local, remote)
	if len(res.Disagreements) > 0 {
		r.logger.Warn("local and remote verification disagree",
			zap.String("route", route),
			zap.Int("keys", len(res.Disagreements)))
	}
	return res, nil
}

func diff(local *verify.Result, remote *remoteapi.VerifyResponse) []Disagreement {
	localStates := bucketStates(local.Present, local.Hidden, local.Missing)
	remoteStates := bucketStates(remote.Present, remote.Hidden, remote.Missing)

	var out []Disagreement
	for _, key := range verify.SortedKeys(unionKeys(localStates, remoteStates)) {
		ls, lok := localStates[key]
		rs, rok := remoteStates[key]
		if lok && rok && ls == rs {
			continue
		}
		if !lok {
			ls = Unreported
		}
		if !rok {
			rs = Unreported
		}
		out = append(out, Disagreement{Key: key, Local: ls, Remote: rs})
	}
	return out
}

func bucketStates(present, hidden, missing []testid.Key) map[testid.Key]classify.State {
	m := make(map[testid.Key]classify.State, len(present)+len(hidden)+len(missing))
	for _, k := range present {
		m[k] = classify.Present
	}
	for _, k := range hidden {
		m[k] = classify.Hidden
	}
	for _, k := range missing {
		m[k] = classify.Missing
	}
	return m
}

func unionKeys(a, b map[testid.Key]classify.State) []testid.Key {
	out := make([]testid.Key, 0, len(a)+len(b))
	for k := range a {
		out = append(out, k)
	}
	for k := range b {
		if _, ok := a[k]; !ok {
			out = append(out, k)
		}
	}
	return out
}
