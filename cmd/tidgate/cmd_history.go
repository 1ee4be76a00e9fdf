package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tidgate/internal/store"
)

var (
	historyLimit int
	historyRun   string
	historyRoute string
)

// historyCmd reads recorded gate runs without touching a browser.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded gate runs",
	Long: `Lists recent gate runs from the history database, newest first. With --run
and --route, shows the missing testid keys recorded for that route of that
run.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum runs to list")
	historyCmd.Flags().StringVar(&historyRun, "run", "", "Run ID to inspect")
	historyCmd.Flags().StringVar(&historyRoute, "route", "", "Route to inspect within --run")
}

func runHistory(cmd *cobra.Command, args []string) error {
	s, err := buildStack(logger)
	if err != nil {
		return err
	}
	h, err := store.Open(s.cfg.HistoryPath)
	if err != nil {
		return err
	}
	defer func() { _ = h.Close() }()
	out := cmd.OutOrStdout()

	if historyRun != "" {
		if historyRoute == "" {
			return fmt.Errorf("--run requires --route")
		}
		keys, err := h.MissingKeysFor(historyRun, historyRoute)
		if err != nil {
			return fmt.Errorf("look up run %s route %s: %w", historyRun, historyRoute, err)
		}
		if len(keys) == 0 {
			fmt.Fprintf(out, "%s %s: no missing testids recorded\n", historyRun, historyRoute)
			return nil
		}
		fmt.Fprintf(out, "%s %s: %d missing testid(s):\n", historyRun, historyRoute, len(keys))
		for _, k := range keys {
			fmt.Fprintf(out, "  - %s\n", k)
		}
		return nil
	}

	runs, err := h.RecentRuns(historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "no gate runs recorded")
		return nil
	}
	for _, r := range runs {
		verdict := "PASS"
		if !r.Pass {
			verdict = "FAIL"
		}
		fmt.Fprintf(out, "%s  %s  %s\n", r.StartedAt.Format(time.RFC3339), verdict, r.RunID)
	}
	return nil
}
