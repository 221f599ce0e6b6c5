package commands

import (
	"github.com/spf13/cobra"

	"github.com/amorsize/amorsize/internal/cliformat"
	"github.com/amorsize/amorsize/internal/workload"
	"github.com/amorsize/amorsize/pkg/amorsize"
	"github.com/amorsize/amorsize/pkg/api"
)

// NewOptimizeCommand builds the batch "optimize" subcommand: decide
// worker count and chunk size for one workload profile.
func NewOptimizeCommand() *cobra.Command {
	flags := &sharedFlags{}

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Decide batch parallelization parameters for a workload profile",
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
			result, err := amorsize.Optimize(client, fn, data, flags.options())
			if err != nil {
				return err
			}

			if flags.exportPath != "" {
				if err := writeExport(flags.exportPath, result); err != nil {
					return err
				}
			}

			rendered, err := cliformat.Decision(result, format)
			return printResult(cmd, rendered, err)
		},
	}

	registerSharedFlags(cmd, flags)
	return cmd
}
