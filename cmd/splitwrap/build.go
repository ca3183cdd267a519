package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/syssam/splitwrap/compiler"
)

func newBuildCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Generate and compile all modules",
		Long: `Resolves the declaration files, splits them into the configured number
of modules, generates every module in order and compiles them on a worker
pool. Writes the aggregator module, the version stamps and the manifest.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := o.load(cmd)
			if err != nil {
				return err
			}
			tc, err := o.toolchain(cfg, true)
			if err != nil {
				return err
			}
			plan, res, err := compiler.Build(cmd.Context(), cfg.LoadConfig(), tc, o.genOptions(cfg)...)
			if err != nil {
				return err
			}
			o.logger.Info("build finished",
				zap.Stringer("run", plan.RunID),
				zap.Strings("artifacts", res.Artifacts),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "built %d modules into %s\n", len(res.Sources), cfg.Target())
			return nil
		},
	}
}
