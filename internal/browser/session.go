// Package browser drives a real Chrome instance over CDP and probes live
// pages for testid elements. The live DOM is what a browser-based E2E suite
// will see, so this prober is the authoritative verification source.
package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// Config holds browser settings.
type Config struct {
	DebuggerURL         string `yaml:"debugger_url"`
	Headless            bool   `yaml:"headless"`
	ViewportWidth       int    `yaml:"viewport_width"`
	ViewportHeight      int    `yaml:"viewport_height"`
	NavigationTimeoutMs int    `yaml:"navigation_timeout_ms"`
}

// DefaultConfig returns sensible defaults for CI use.
func DefaultConfig() Config {
	return Config{
		Headless:            true,
		ViewportWidth:       1920,
		ViewportHeight:      1080,
		NavigationTimeoutMs: 30000,
	}
}

// NavigationTimeout returns the navigation timeout.
func (c Config) NavigationTimeout() time.Duration {
	if c.NavigationTimeoutMs == 0 {
		return 30 * time.Second
	}
	return time.Duration(c.NavigationTimeoutMs) * time.Millisecond
}

// Session owns one Chrome instance. Pages are opened per route and are
// independent, so routes can be verified in parallel against one session.
type Session struct {
	cfg      Config
	logger   *zap.Logger
	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
}

// NewSession creates an unstarted session.
func NewSession(cfg Config, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{cfg: cfg, logger: logger}
}

// Start connects to an existing Chrome when a debugger URL is configured, or
// launches a new one. Idempotent while the browser stays healthy.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.browser != nil {
		if _, err := s.browser.Version(); err == nil {
			return nil
		}
		s.logger.Warn("stale browser connection, reconnecting")
		_ = s.browser.Close()
		s.browser = nil
	}

	controlURL := s.cfg.DebuggerURL
	if controlURL == "" {
		l := launcher.New().Headless(s.cfg.Headless)
		u, err := l.Launch()
		if err != nil {
			return fmt.Errorf("launch chrome: %w", err)
		}
		s.launcher = l
		controlURL = u
	}

	b := rod.New().Context(ctx).ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return fmt.Errorf("connect to chrome: %w", err)
	}
	s.browser = b
	s.logger.Info("browser session started",
		zap.Bool("headless", s.cfg.Headless),
		zap.Bool("attached", s.cfg.DebuggerURL != ""))
	return nil
}

// Stop closes the browser and, when we launched it ourselves, the process.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.browser == nil {
		return nil
	}
	err := s.browser.Close()
	s.browser = nil
	if s.launcher != nil {
		s.launcher.Cleanup()
		s.launcher = nil
	}
	return err
}

// OpenRoute navigates a fresh page to baseURL+route and waits for load. The
// caller owns the returned page prober and must Close it.
func (s *Session) OpenRoute(ctx context.Context, baseURL, route string) (*PageProber, error) {
	s.mu.Lock()
	b := s.browser
	s.mu.Unlock()
	if b == nil {
		return nil, fmt.Errorf("browser session not started")
	}

	url := strings.TrimRight(baseURL, "/") + route
	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	page = page.Context(ctx).Timeout(s.cfg.NavigationTimeout())

	if s.cfg.ViewportWidth > 0 && s.cfg.ViewportHeight > 0 {
		if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:             s.cfg.ViewportWidth,
			Height:            s.cfg.ViewportHeight,
			DeviceScaleFactor: 1,
		}); err != nil {
			_ = page.Close()
			return nil, fmt.Errorf("set viewport: %w", err)
		}
	}
	if err := page.Navigate(url); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("wait load %s: %w", url, err)
	}
	s.logger.Debug("route opened", zap.String("url", url))
	return &PageProber{page: page}, nil
}
