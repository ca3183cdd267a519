package gen

import (
	"context"
	"errors"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/syssam/splitwrap"
	"github.com/syssam/splitwrap/toolchain"
)

// Builder drives the external generator and compiler over a plan.
//
// Generation runs module by module. Compilation starts once every module
// has been generated and runs on a pool of Config.Threads workers.
type Builder struct {
	cfg      *Config
	gen      toolchain.Generator
	compiler toolchain.Compiler
	cache    splitwrap.HintCache
}

// NewBuilder creates a Builder. A nil cache falls back to a FileHintCache at
// cfg.HintCache.
func NewBuilder(cfg *Config, g toolchain.Generator, c toolchain.Compiler, cache splitwrap.HintCache) *Builder {
	if cache == nil {
		cache = NewFileHintCache(cfg.HintCache)
	}
	return &Builder{cfg: cfg, gen: g, compiler: c, cache: cache}
}

// Result reports what a build produced.
type Result struct {
	// Sources maps module names to generated source paths.
	Sources map[string]string
	// IncludeDirs maps module names to the generator's include hints.
	IncludeDirs map[string][]string
	// Artifacts lists the extra files written after compilation.
	Artifacts []string
}

// Build generates every module, compiles them and writes the aggregate
// artifacts.
func (b *Builder) Build(ctx context.Context, plan *Plan) (*Result, error) {
	log := b.cfg.logger().With(zap.Stringer("run", plan.RunID))
	start := time.Now()

	hints, err := b.Generate(ctx, plan)
	if err != nil {
		return nil, err
	}
	if err := b.Compile(ctx, plan, hints); err != nil {
		return nil, err
	}
	artifacts, err := NewWriter(b.cfg).WriteAll(plan)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Sources:     make(map[string]string, len(plan.Partitions)),
		IncludeDirs: hints,
		Artifacts:   artifacts,
	}
	for _, p := range plan.Partitions {
		res.Sources[p.Module] = b.cfg.SourcePath(p.Module)
	}
	log.Info("created all modules",
		zap.Int("modules", len(plan.Partitions)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

// Generate runs the generator for every module in order and persists the
// latest include hints after each one. It stops at the first failure.
func (b *Builder) Generate(ctx context.Context, plan *Plan) (map[string][]string, error) {
	log := b.cfg.logger()
	if err := os.MkdirAll(b.cfg.Target, 0o755); err != nil {
		return nil, err
	}
	hints := make(map[string][]string, len(plan.Partitions))
	for _, p := range plan.Partitions {
		req := &toolchain.GenerateRequest{
			Module:       p.Module,
			Target:       b.cfg.SourcePath(p.Module),
			Declarations: p.Decls,
			Instances:    plan.Instances,
			Addons:       addonPaths(p.Addons),
			Converters:   b.cfg.Converters,
			Verbosity:    b.cfg.Verbosity,
		}
		log.Debug("generating module", zap.String("module", p.Module), zap.String("target", req.Target))
		dirs, err := b.gen.Generate(ctx, req)
		if err != nil {
			return nil, splitwrap.NewCollaboratorError("generate", p.Module, err)
		}
		hints[p.Module] = dirs
		if err := b.cache.Store(ctx, dirs); err != nil {
			return nil, err
		}
	}
	return hints, nil
}

// Compile compiles every module on a bounded pool. A failing module does not
// stop its siblings: all jobs run to completion and the failures are joined
// in module order.
func (b *Builder) Compile(ctx context.Context, plan *Plan, hints map[string][]string) error {
	log := b.cfg.logger()
	threads := b.cfg.Threads
	if threads < 1 {
		threads = 1
	}
	errs := make([]error, len(plan.Partitions))

	var g errgroup.Group
	g.SetLimit(threads)
	for i, p := range plan.Partitions {
		source := b.cfg.SourcePath(p.Module)
		dirs := hints[p.Module]
		g.Go(func() error {
			log.Info("compiling module", zap.String("module", p.Module), zap.String("source", source))
			if err := b.compiler.Compile(ctx, source, dirs); err != nil {
				errs[i] = splitwrap.NewCollaboratorError("compile", p.Module, err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

func addonPaths(addons []*Addon) []string {
	if len(addons) == 0 {
		return nil
	}
	paths := make([]string, len(addons))
	for i, a := range addons {
		paths[i] = a.Path
	}
	return paths
}
