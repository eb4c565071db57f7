package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/torqueline/partsource/pkg/sourcing"
)

func newSourceCmd(cfgPath *string) *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "source <vin> <search-term>",
		Short: "Run one sourcing request and print the result as JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			a, err := newApp(ctx, *cfgPath, logger)
			if err != nil {
				return err
			}
			defer a.close()

			p := newProgress(logger)
			result, err := a.runner.Source(ctx, sourcing.Request{
				VIN:        args[0],
				SearchTerm: args[1],
				Mode:       sourcing.Mode(mode),
			})
			if err != nil {
				return err
			}
			p.done(fmt.Sprintf("Sourced %d parts from %d vendors", result.TotalParts, result.TotalVendors))

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", "manual", "sourcing mode: manual or ai")
	return cmd
}
