package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/syssam/splitwrap/compiler"
	"github.com/syssam/splitwrap/compiler/gen"
)

func newPlanCmd(o *options) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the module layout without generating anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := o.load(cmd)
			if err != nil {
				return err
			}
			tc, err := o.toolchain(cfg, false)
			if err != nil {
				return err
			}
			opts := o.genOptions(cfg)
			plan, err := compiler.Plan(cmd.Context(), cfg.LoadConfig(), tc.Resolver, opts...)
			if err != nil {
				return err
			}
			switch format {
			case "text":
				return printPlan(cmd.OutOrStdout(), plan)
			case "yaml":
				gc, err := gen.NewConfig(opts...)
				if err != nil {
					return err
				}
				return yaml.NewEncoder(cmd.OutOrStdout()).Encode(gen.NewManifest(gc, plan))
			default:
				return fmt.Errorf("unknown format %q", format)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", "text", "output format (text, yaml)")
	return cmd
}

func printPlan(w io.Writer, plan *gen.Plan) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MODULE\tFILES\tDECLARATIONS\tADDONS")
	for _, p := range plan.Partitions {
		names := make([]string, len(p.Addons))
		for i, a := range p.Addons {
			names[i] = a.Name
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", p.Module, len(p.Files), len(p.Decls), strings.Join(names, ","))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, a := range plan.Broadcast {
		fmt.Fprintf(w, "unmatched addon %s added to all modules\n", a.Path)
	}
	return nil
}
