package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/amorsize/amorsize/internal/benchmark"
	"github.com/amorsize/amorsize/internal/cliformat"
	"github.com/amorsize/amorsize/internal/workload"
	"github.com/amorsize/amorsize/pkg/amorsize"
	"github.com/amorsize/amorsize/pkg/api"
)

// NewExecuteCommand builds the "execute" subcommand: decide, then run
// both the serial and recommended-parallel plan against the same
// synthetic data to check the prediction against a measured speedup.
func NewExecuteCommand() *cobra.Command {
	flags := &sharedFlags{}
	var maxItems int
	var timeoutSeconds int

	cmd := &cobra.Command{
		Use:   "execute",
		Short: "Decide, then empirically validate the recommendation",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(flags.format)
			if err != nil {
				return err
			}

			profile, err := flags.loadProfile()
			if err != nil {
				return err
			}

			var shutdown api.MultiCloser
			defer shutdown.Close()
			metrics := startMetrics(flags.metricsAddr, &shutdown)

			client, err := amorsize.New(flags.cacheDir, metrics)
			if err != nil {
				return err
			}

			fn, data := workload.Build(profile)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			benchOpts := benchmark.DefaultOptions()
			benchOpts.MaxItems = maxItems
			if timeoutSeconds > 0 {
				benchOpts.Timeout = time.Duration(timeoutSeconds) * time.Second
			}

			result, err := amorsize.Validate(ctx, client, fn, data, benchOpts)
			if err != nil {
				return err
			}

			if flags.exportPath != "" {
				if err := writeExport(flags.exportPath, result); err != nil {
					return err
				}
			}

			decisionRendered, err := cliformat.Decision(result.Optimization, format)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), decisionRendered)
			fmt.Fprintln(cmd.OutOrStdout())
			fmt.Fprintln(cmd.OutOrStdout(), result.String())
			for _, r := range result.Recommendations {
				fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", r)
			}
			return nil
		},
	}

	registerSharedFlags(cmd, flags)
	cmd.Flags().IntVar(&maxItems, "max-items", 0, "truncate the workload to this many items before running (0 means no limit)")
	cmd.Flags().IntVar(&timeoutSeconds, "timeout-seconds", 0, "fail with an error if the serial or parallel run took longer than this once finished (0 uses the default)")
	return cmd
}
