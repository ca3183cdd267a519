// Package compiler wires the build pipeline together: it loads the sources,
// enriches the declarations, plans the module layout and drives the
// toolchain over it.
//
//	plan, err := compiler.Plan(ctx, loadCfg, resolver, gen.WithModules(10))
//	plan, res, err := compiler.Build(ctx, loadCfg, tools, gen.WithModules(10))
package compiler

import (
	"context"

	"go.uber.org/zap"

	"github.com/syssam/splitwrap"
	"github.com/syssam/splitwrap/compiler/gen"
	"github.com/syssam/splitwrap/compiler/load"
	"github.com/syssam/splitwrap/schema"
	"github.com/syssam/splitwrap/toolchain"
)

// Toolchain bundles the external tools of a build run.
type Toolchain struct {
	Resolver  toolchain.Resolver
	Generator toolchain.Generator
	Compiler  toolchain.Compiler
	// Cache overrides the file-backed include hint cache.
	Cache splitwrap.HintCache
}

// Plan loads and resolves the sources, adds the string aliases and
// computes the module layout. No generator or compiler is invoked.
func Plan(ctx context.Context, lc *load.Config, r toolchain.Resolver, opts ...gen.Option) (*gen.Plan, error) {
	cfg, err := gen.NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	return plan(ctx, cfg, lc, r)
}

func plan(ctx context.Context, cfg *gen.Config, lc *load.Config, r toolchain.Resolver) (*gen.Plan, error) {
	log := cfg.Logger
	withLogger := *lc
	if withLogger.Logger == nil {
		withLogger.Logger = log
	}
	src, err := load.Load(ctx, &withLogger, r)
	if err != nil {
		return nil, err
	}
	for _, d := range schema.AddStringAliases(src.Set.Declarations) {
		log.Debug("added string alias", zap.String("declaration", d.Name), zap.String("file", d.File))
	}
	addons := make([]*gen.Addon, len(src.Addons))
	for i, path := range src.Addons {
		addons[i] = gen.NewAddon(path)
	}
	return gen.NewPlan(cfg, src.Set, addons)
}

// Build runs the whole pipeline and returns what the builder produced.
func Build(ctx context.Context, lc *load.Config, tc *Toolchain, opts ...gen.Option) (*gen.Plan, *gen.Result, error) {
	cfg, err := gen.NewConfig(opts...)
	if err != nil {
		return nil, nil, err
	}
	p, err := plan(ctx, cfg, lc, tc.Resolver)
	if err != nil {
		return nil, nil, err
	}
	cfg.Logger.Info("starting build",
		zap.Stringer("run", p.RunID),
		zap.Int("modules", len(p.Partitions)),
		zap.Int("files", p.FileCount()),
		zap.Int("threads", cfg.Threads),
	)
	res, err := gen.NewBuilder(cfg, tc.Generator, tc.Compiler, tc.Cache).Build(ctx, p)
	if err != nil {
		return p, nil, err
	}
	return p, res, nil
}
