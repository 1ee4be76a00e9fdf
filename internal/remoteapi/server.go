package remoteapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"tidgate/internal/staticdom"
	"tidgate/internal/verify"
)

// Server exposes the verification endpoint over an upstream application's
// server-rendered markup. For each request it fetches the route's HTML from
// the upstream, probes it statically, and returns the bucketing.
type Server struct {
	upstream string
	verifier *verify.Verifier
	http     *http.Client
	logger   *zap.Logger
}

// NewServer wires the verification service. upstream is the base URL of the
// application whose rendered markup is inspected.
func NewServer(upstream string, verifier *verify.Verifier, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		upstream: strings.TrimRight(upstream, "/"),
		verifier: verifier,
		http:     &http.Client{Timeout: DefaultTimeout},
		logger:   logger,
	}
}

// Handler returns the HTTP handler for the verification API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(VerifyPath, s.handleVerify)
	return mux
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	route := r.URL.Query().Get("route")
	if route == "" || !strings.HasPrefix(route, "/") {
		http.Error(w, "route query parameter required (absolute path)", http.StatusBadRequest)
		return
	}

	prober, err := s.fetchRoute(r, route)
	if err != nil {
		s.logger.Warn("upstream fetch failed", zap.String("route", route), zap.Error(err))
		http.Error(w, fmt.Sprintf("upstream fetch: %v", err), http.StatusBadGateway)
		return
	}

	res := s.verifier.Verify(route, prober)
	resp := VerifyResponse{
		Route:     res.Route,
		Timestamp: time.Now().UTC(),
		Present:   res.Present,
		Missing:   res.Missing,
		Hidden:    res.Hidden,
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Warn("encode response failed", zap.Error(err))
	}
	s.logger.Debug("remote verification served",
		zap.String("route", route),
		zap.Int("present", len(res.Present)),
		zap.Int("hidden", len(res.Hidden)),
		zap.Int("missing", len(res.Missing)))
}

func (s *Server) fetchRoute(r *http.Request, route string) (*staticdom.Prober, error) {
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, s.upstream+route, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("status %d for %s", resp.StatusCode, route)
	}
	return staticdom.New(resp.Body)
}
