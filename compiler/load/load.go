// Package load discovers the declaration files and addon fragments of a
// source tree and runs the declaration resolver over them.
package load

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/syssam/splitwrap"
	"github.com/syssam/splitwrap/schema"
	"github.com/syssam/splitwrap/toolchain"
)

// Default source layout.
const (
	DefaultDeclDir      = "pxds"
	DefaultDeclPattern  = "*.pxd"
	DefaultAddonDir     = "addons"
	DefaultAddonPattern = "*.pyx"
)

// Config describes where sources live and how the resolver is invoked.
type Config struct {
	// SourceDir is the root the other directories are relative to.
	SourceDir    string
	DeclDir      string
	DeclPattern  string
	AddonDir     string
	AddonPattern string
	// SearchPaths are handed to the resolver for include lookup. Empty
	// means the source dir itself.
	SearchPaths []string
	// Parallelism is the resolver's worker count.
	Parallelism int
	Logger      *zap.Logger
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.DeclDir == "" {
		out.DeclDir = DefaultDeclDir
	}
	if out.DeclPattern == "" {
		out.DeclPattern = DefaultDeclPattern
	}
	if out.AddonDir == "" {
		out.AddonDir = DefaultAddonDir
	}
	if out.AddonPattern == "" {
		out.AddonPattern = DefaultAddonPattern
	}
	if len(out.SearchPaths) == 0 {
		out.SearchPaths = []string{out.SourceDir}
	}
	if out.Parallelism < 1 {
		out.Parallelism = 1
	}
	if out.Logger == nil {
		out.Logger = zap.NewNop()
	}
	return out
}

// Sources are the inputs of a build run.
type Sources struct {
	// Files are the declaration files handed to the resolver.
	Files []string
	// Addons are the addon fragment paths.
	Addons []string
	// Set is the resolver output.
	Set *schema.Set
}

// Discover globs the declaration files and addon fragments. Both lists are
// sorted so runs over the same tree partition identically. A missing addon
// directory yields no addons.
func Discover(cfg *Config) (files, addons []string, err error) {
	c := cfg.withDefaults()
	if c.SourceDir == "" {
		return nil, nil, splitwrap.NewConfigError("SourceDir", "", "source directory is required")
	}
	declDir := filepath.Join(c.SourceDir, c.DeclDir)
	if _, err := os.Stat(declDir); err != nil {
		return nil, nil, fmt.Errorf("load: declaration directory: %w", err)
	}
	if files, err = glob(declDir, c.DeclPattern); err != nil {
		return nil, nil, err
	}
	if addons, err = glob(filepath.Join(c.SourceDir, c.AddonDir), c.AddonPattern); err != nil {
		return nil, nil, err
	}
	return files, addons, nil
}

func glob(dir, pattern string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("load: bad pattern %q: %w", pattern, err)
	}
	out := matches[:0]
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			return nil, err
		}
		if info.Mode().IsRegular() {
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Load discovers the sources under cfg.SourceDir and resolves the
// declaration files. Resolver failures are reported as CollaboratorError.
func Load(ctx context.Context, cfg *Config, r toolchain.Resolver) (*Sources, error) {
	c := cfg.withDefaults()
	files, addons, err := Discover(&c)
	if err != nil {
		return nil, err
	}
	c.Logger.Info("discovered sources",
		zap.String("dir", c.SourceDir),
		zap.Int("files", len(files)),
		zap.Int("addons", len(addons)),
	)
	set, err := r.Resolve(ctx, files, c.SearchPaths, c.Parallelism)
	if err != nil {
		return nil, splitwrap.NewCollaboratorError("resolve", "", err)
	}
	if set == nil {
		set = &schema.Set{}
	}
	if err := validate(set); err != nil {
		return nil, splitwrap.NewCollaboratorError("resolve", "", err)
	}
	c.Logger.Debug("resolved declarations",
		zap.Int("declarations", len(set.Declarations)),
		zap.Int("instances", len(set.Instances)),
	)
	return &Sources{Files: files, Addons: addons, Set: set}, nil
}
