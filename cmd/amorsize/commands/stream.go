package commands

import (
	"github.com/spf13/cobra"

	"github.com/amorsize/amorsize/internal/cliformat"
	"github.com/amorsize/amorsize/internal/workload"
	"github.com/amorsize/amorsize/pkg/amorsize"
)

// NewStreamCommand builds the "stream" subcommand: decide streaming
// parallelization parameters (ordered vs unordered, buffer size) for
// one workload profile.
func NewStreamCommand() *cobra.Command {
	flags := &sharedFlags{}
	var preferOrdered string

	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Decide streaming parallelization parameters for a workload profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(flags.format)
			if err != nil {
				return err
			}

			profile, err := flags.loadProfile()
			if err != nil {
				return err
			}

			opts := flags.options()
			switch preferOrdered {
			case "true":
				ordered := true
				opts.PreferOrdered = &ordered
			case "false":
				ordered := false
				opts.PreferOrdered = &ordered
			}

			fn, data := workload.Build(profile)
			result, err := amorsize.OptimizeStreaming(fn, data, opts)
			if err != nil {
				return err
			}

			if flags.exportPath != "" {
				if err := writeExport(flags.exportPath, result); err != nil {
					return err
				}
			}

			rendered, err := cliformat.Streaming(result, format)
			return printResult(cmd, rendered, err)
		},
	}

	registerSharedFlags(cmd, flags)
	cmd.Flags().StringVar(&preferOrdered, "prefer-ordered", "", "force ordered ('true') or unordered ('false') delivery; empty decides automatically")
	return cmd
}
