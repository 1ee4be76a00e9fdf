// Package gate runs reconciled verification over the critical-route list and
// turns the results into a single pass/fail decision for CI. Hidden keys are
// tolerated (intentional or a soft signal); missing keys are always a hard
// failure.
package gate

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tidgate/internal/reconcile"
	"tidgate/internal/registry"
)

// DefaultParallelism bounds concurrent route verifications. Each route gets
// its own page and network calls, so a small fan-out is safe.
const DefaultParallelism = 4

// DefaultPlaceholderID substitutes :param segments in critical routes.
const DefaultPlaceholderID = "testid-gate-0000"

// Reconciler is the per-route verification dependency.
type Reconciler interface {
	Reconcile(ctx context.Context, route string) (*reconcile.Result, error)
}

// RouteReport holds one route's reconciled outcome within a run.
type RouteReport struct {
	Route  string            `json:"route"`
	Result *reconcile.Result `json:"result"`
}

// Failed reports whether this route blocks the gate.
func (r *RouteReport) Failed() bool {
	return len(r.Result.Missing()) > 0
}

// Decision is the outcome of one full gate run.
type Decision struct {
	RunID      string        `json:"runId"`
	StartedAt  time.Time     `json:"startedAt"`
	FinishedAt time.Time     `json:"finishedAt"`
	Routes     []RouteReport `json:"routes"`
	Pass       bool          `json:"pass"`
}

// FailedRoutes lists the routes with non-empty missing sets.
func (d *Decision) FailedRoutes() []RouteReport {
	var out []RouteReport
	for _, r := range d.Routes {
		if r.Failed() {
			out = append(out, r)
		}
	}
	return out
}

// Gate orchestrates a run over the configured critical routes.
type Gate struct {
	rec         Reconciler
	routes      []string
	placeholder string
	parallelism int
	logger      *zap.Logger
}

// Option configures a Gate.
type Option func(*Gate)

// WithPlaceholderID overrides the dummy id substituted into :param segments.
func WithPlaceholderID(id string) Option {
	return func(g *Gate) { g.placeholder = id }
}

// WithParallelism bounds the route fan-out.
func WithParallelism(n int) Option {
	return func(g *Gate) {
		if n > 0 {
			g.parallelism = n
		}
	}
}

// New builds a gate over the critical-route list. Routes may be patterns;
// placeholder segments are substituted before verification.
func New(rec Reconciler, routes []string, logger *zap.Logger, opts ...Option) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Gate{
		rec:         rec,
		routes:      routes,
		placeholder: DefaultPlaceholderID,
		parallelism: DefaultParallelism,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Run verifies every critical route and decides. Routes are verified
// concurrently; a hard verification failure on any route (local source down)
// aborts the run, since a decision without the authoritative source would be
// meaningless.
func (g *Gate) Run(ctx context.Context) (*Decision, error) {
	d := &Decision{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Routes:    make([]RouteReport, len(g.routes)),
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.parallelism)
	for i, pattern := range g.routes {
		i := i
		route := registry.SubstituteParams(pattern, g.placeholder)
		eg.Go(func() error {
			res, err := g.rec.Reconcile(ctx, route)
			if err != nil {
				return err
			}
			d.Routes[i] = RouteReport{Route: route, Result: res}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	d.FinishedAt = time.Now().UTC()
	d.Pass = len(d.FailedRoutes()) == 0
	for _, r := range d.Routes {
		g.logger.Info("route verified",
			zap.String("run_id", d.RunID),
			zap.String("route", r.Route),
			zap.Int("present", len(r.Result.Present())),
			zap.Int("hidden", len(r.Result.Hidden())),
			zap.Int("missing", len(r.Result.Missing())),
			zap.Bool("remote_ok", r.Result.RemoteErr == ""))
	}
	return d, nil
}
