package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"tidgate/internal/browser"
	"tidgate/internal/config"
	"tidgate/internal/reconcile"
	"tidgate/internal/remoteapi"
	"tidgate/internal/verify"
)

// stack is the constructed service graph for one invocation. Nothing here is
// global: every component is built from config and passed down explicitly.
type stack struct {
	cfg      *config.Config
	verifier *verify.Verifier
	session  *browser.Session
	logger   *zap.Logger
}

// buildStack loads config and constructs the vocabulary, registry, and
// verifier. Configuration errors fail fast here, before any browser or
// network work starts.
func buildStack(log *zap.Logger) (*stack, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	vocab, err := cfg.Vocabulary()
	if err != nil {
		return nil, fmt.Errorf("testid vocabulary: %w", err)
	}
	reg, err := cfg.Registry(vocab)
	if err != nil {
		return nil, fmt.Errorf("route requirements: %w", err)
	}
	return &stack{
		cfg:      cfg,
		verifier: verify.New(vocab, reg),
		logger:   log,
	}, nil
}

// startBrowser launches or attaches the live DOM session.
func (s *stack) startBrowser(ctx context.Context) error {
	s.session = browser.NewSession(s.cfg.Browser, s.logger.Named("browser"))
	return s.session.Start(ctx)
}

// stopBrowser tears the session down; safe without a started session.
func (s *stack) stopBrowser() {
	if s.session == nil {
		return
	}
	if err := s.session.Stop(); err != nil {
		s.logger.Warn("browser shutdown", zap.Error(err))
	}
}

// reconciler wires the local and (when configured) remote verifiers.
func (s *stack) reconciler() *reconcile.Reconciler {
	local := browser.NewRouteVerifier(s.session, s.verifier, s.cfg.AppURL)
	var remote reconcile.RemoteVerifier
	if s.cfg.RemoteURL != "" {
		remote = remoteapi.NewClient(s.cfg.RemoteURL, time.Duration(s.cfg.RemoteTimeoutMs)*time.Millisecond)
	}
	return reconcile.New(local, remote, s.logger.Named("reconcile"))
}
