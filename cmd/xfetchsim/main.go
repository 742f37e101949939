package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd is the base command; it only dispatches to the simulations.
var rootCmd = &cobra.Command{
	Use:   "xfetchsim",
	Short: "Simulations for probabilistic early cache expiration",
	Long: `xfetchsim exercises the XFetch early-expiration algorithm outside of tests.

probability samples one entry's expiration test over its lifetime and prints
the observed early-expiration fraction next to the closed-form prediction.

stampede runs many workers against one hot cache key and compares the exact
deadline check with the probabilistic test, showing how early volunteering
keeps readers from piling up at the expiry boundary.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.AddCommand(newProbabilityCmd())
	rootCmd.AddCommand(newStampedeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
