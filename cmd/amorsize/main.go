// Package main is the entry point for the amorsize CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/amorsize/amorsize/cmd/amorsize/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "amorsize",
		Short: "Decide whether and how to parallelize a workload",
		Long: `amorsize recommends worker count and chunk size for a workload
without running it in parallel itself.

Commands:
  optimize   Decide batch parallelization parameters for a workload profile
  stream     Decide streaming parallelization parameters for a workload profile
  execute    Decide, then empirically validate the recommendation
  watch      Re-decide whenever the workload profile file changes`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewOptimizeCommand())
	rootCmd.AddCommand(commands.NewStreamCommand())
	rootCmd.AddCommand(commands.NewExecuteCommand())
	rootCmd.AddCommand(commands.NewWatchCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
