package main

import (
	"context"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/syssam/splitwrap/compiler"
	"github.com/syssam/splitwrap/compiler/watch"
)

func newWatchCmd(o *options) *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rebuild whenever declaration files or addons change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := o.load(cmd)
			if err != nil {
				return err
			}
			tc, err := o.toolchain(cfg, true)
			if err != nil {
				return err
			}
			lc := cfg.LoadConfig()
			w := &watch.Watcher{
				Dirs: []string{
					filepath.Join(cfg.SourceDir, cfg.Sources.DeclDir),
					filepath.Join(cfg.SourceDir, cfg.Sources.AddonDir),
				},
				Patterns: []string{cfg.Sources.DeclPattern, cfg.Sources.AddonPattern},
				Debounce: debounce,
				Logger:   o.logger,
				OnChange: func(ctx context.Context) error {
					_, _, err := compiler.Build(ctx, lc, tc, o.genOptions(cfg)...)
					return err
				},
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return w.Run(ctx)
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "quiet period before a rebuild")
	return cmd
}
