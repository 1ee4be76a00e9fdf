package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// routesCmd inspects the requirement registry without touching a browser.
var routesCmd = &cobra.Command{
	Use:   "routes [path]",
	Short: "List route requirements, or resolve one concrete path",
	Long: `Without arguments, lists every registered route pattern and its required
testid keys. With a concrete path, shows which pattern it resolves to and
the keys the gate will require there.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRoutes,
}

func runRoutes(cmd *cobra.Command, args []string) error {
	s, err := buildStack(logger)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		keys := s.verifier.RequiredKeys(args[0])
		if len(keys) == 0 {
			fmt.Fprintf(out, "%s: no requirements registered\n", args[0])
			return nil
		}
		fmt.Fprintf(out, "%s requires %d testid(s):\n", args[0], len(keys))
		for _, k := range keys {
			fmt.Fprintf(out, "  - %s\n", k)
		}
		return nil
	}

	for _, rc := range s.cfg.Routes {
		fmt.Fprintf(out, "%s\n", rc.Pattern)
		for _, k := range rc.Require {
			fmt.Fprintf(out, "  - %s\n", k)
		}
	}
	return nil
}
