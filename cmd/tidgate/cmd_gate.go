package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tidgate/internal/gate"
	"tidgate/internal/report"
	"tidgate/internal/store"
)

var (
	gateHistory     bool
	gateParallelism int
)

// gateCmd runs the full CI gate over the configured critical routes.
var gateCmd = &cobra.Command{
	Use:   "gate",
	Short: "Run the testid gate over all critical routes",
	Long: `Verifies every critical route, reconciling the live browser DOM with the
remote server-side check, and exits non-zero if any route has missing
testids. Hidden testids are reported but tolerated.`,
	RunE: runGate,
}

func init() {
	gateCmd.Flags().BoolVar(&gateHistory, "history", false, "Record the run in the gate history database")
	gateCmd.Flags().IntVar(&gateParallelism, "parallelism", gate.DefaultParallelism, "Concurrent route verifications")
}

func runGate(cmd *cobra.Command, args []string) error {
	s, err := buildStack(logger)
	if err != nil {
		return err
	}
	if len(s.cfg.CriticalRoutes) == 0 {
		return fmt.Errorf("no critical_routes configured")
	}

	ctx := cmd.Context()
	if err := s.startBrowser(ctx); err != nil {
		return err
	}
	defer s.stopBrowser()

	g := gate.New(s.reconciler(), s.cfg.CriticalRoutes, logger.Named("gate"),
		gate.WithPlaceholderID(s.cfg.PlaceholderID),
		gate.WithParallelism(gateParallelism))

	decision, err := g.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), report.NewRenderer(plain).Render(decision))

	if gateHistory {
		if err := recordHistory(s.cfg.HistoryPath, decision); err != nil {
			logger.Warn("gate history not recorded", zap.Error(err))
		}
	}

	if !decision.Pass {
		return fmt.Errorf("gate failed: %d route(s) with missing testids", len(decision.FailedRoutes()))
	}
	return nil
}

func recordHistory(path string, decision *gate.Decision) error {
	h, err := store.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = h.Close() }()
	return h.RecordRun(decision)
}
