package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var verifyJSON bool

// verifyCmd reconciles a single route, for local debugging of one page.
var verifyCmd = &cobra.Command{
	Use:   "verify <route>",
	Short: "Verify one route and print its classification",
	Long: `Opens the route in the live browser, classifies every required testid, and
reconciles with the remote endpoint when one is configured. Useful while
fixing a failing gate without re-running the whole critical-route list.`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().BoolVar(&verifyJSON, "json", false, "Emit the reconciled result as JSON")
}

func runVerify(cmd *cobra.Command, args []string) error {
	route := args[0]
	if route == "" || route[0] != '/' {
		return fmt.Errorf("route must be an absolute path, got %q", route)
	}

	s, err := buildStack(logger)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if err := s.startBrowser(ctx); err != nil {
		return err
	}
	defer s.stopBrowser()

	res, err := s.reconciler().Reconcile(ctx, route)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if verifyJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	fmt.Fprintf(out, "route: %s\n", res.Route)
	for _, o := range res.Local.Outcomes {
		fmt.Fprintf(out, "  %-10s %-28s %s\n", o.Class.State, o.Key, o.Class.Reason)
	}
	if res.RemoteErr != "" {
		fmt.Fprintf(out, "remote error: %s\n", res.RemoteErr)
	}
	for _, d := range res.Disagreements {
		fmt.Fprintf(out, "disagreement: %s local=%s remote=%s\n", d.Key, d.Local, d.Remote)
	}
	if n := len(res.Missing()); n > 0 {
		return fmt.Errorf("%d testid(s) missing on %s", n, route)
	}
	return nil
}
