package gen

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/syssam/splitwrap"
	"github.com/syssam/splitwrap/schema"
	"github.com/syssam/splitwrap/toolchain"
)

// memoryCache records every Store call.
type memoryCache struct {
	mu     sync.Mutex
	stores [][]string
}

func (c *memoryCache) Store(_ context.Context, hints []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stores = append(c.stores, hints)
	return nil
}

func (c *memoryCache) Load(context.Context) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.stores) == 0 {
		return nil, nil
	}
	return c.stores[len(c.stores)-1], nil
}

// recordingGenerator returns "inc/<module>" as include hint and records the
// requests it saw.
type recordingGenerator struct {
	requests []*toolchain.GenerateRequest
	failOn   string
}

func (g *recordingGenerator) Generate(_ context.Context, req *toolchain.GenerateRequest) ([]string, error) {
	g.requests = append(g.requests, req)
	if req.Module == g.failOn {
		return nil, errors.New("generator crashed")
	}
	return []string{"inc/" + req.Module}, nil
}

func testPlan(t *testing.T, cfg *Config, files int, addonPaths ...string) *Plan {
	t.Helper()
	set := &schema.Set{Instances: schema.InstanceMap{"libcpp_vector[int]": "std::vector<int>"}}
	for _, f := range declFiles(files) {
		set.Declarations = append(set.Declarations, f.Declarations...)
	}
	plan, err := NewPlan(cfg, set, addons(addonPaths...))
	require.NoError(t, err)
	return plan
}

func TestBuilderGenerate(t *testing.T) {
	t.Run("runs modules in order and caches the latest hints", func(t *testing.T) {
		cfg := MustNewConfig(WithModules(3), WithTarget(t.TempDir()), WithConverters("converters"), WithVerbosity(1))
		plan := testPlan(t, cfg, 7, "addons/F0.pyx")
		gen := &recordingGenerator{}
		cache := &memoryCache{}

		hints, err := NewBuilder(cfg, gen, nil, cache).Generate(context.Background(), plan)
		require.NoError(t, err)

		require.Len(t, gen.requests, 3)
		for i, req := range gen.requests {
			p := plan.Partitions[i]
			assert.Equal(t, p.Module, req.Module)
			assert.Equal(t, cfg.SourcePath(p.Module), req.Target)
			assert.Equal(t, p.Decls, req.Declarations)
			assert.Equal(t, plan.Instances, req.Instances)
			assert.Equal(t, []string{"converters"}, req.Converters)
			assert.Equal(t, 1, req.Verbosity)
		}
		assert.Equal(t, []string{"addons/F0.pyx"}, gen.requests[0].Addons)
		assert.Empty(t, gen.requests[1].Addons)

		assert.Equal(t, [][]string{{"inc/_bindings_1"}, {"inc/_bindings_2"}, {"inc/_bindings_3"}}, cache.stores)
		assert.Equal(t, []string{"inc/_bindings_2"}, hints["_bindings_2"])
	})

	t.Run("stops at the first failing module", func(t *testing.T) {
		cfg := MustNewConfig(WithModules(3), WithTarget(t.TempDir()))
		plan := testPlan(t, cfg, 6)
		gen := &recordingGenerator{failOn: "_bindings_2"}
		cache := &memoryCache{}

		_, err := NewBuilder(cfg, gen, nil, cache).Generate(context.Background(), plan)
		require.Error(t, err)

		var ce *splitwrap.CollaboratorError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, "generate", ce.Phase)
		assert.Equal(t, "_bindings_2", ce.Module)
		assert.Len(t, gen.requests, 2)
		assert.Len(t, cache.stores, 1)
	})

	t.Run("default cache writes the hint file", func(t *testing.T) {
		dir := t.TempDir()
		cfg := MustNewConfig(WithModules(2), WithTarget(dir), WithHintCache(filepath.Join(dir, "include_dir.bin")))
		plan := testPlan(t, cfg, 2)

		_, err := NewBuilder(cfg, &recordingGenerator{}, nil, nil).Generate(context.Background(), plan)
		require.NoError(t, err)

		hints, err := NewFileHintCache(cfg.HintCache).Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"inc/_bindings_2"}, hints)
	})
}

func TestBuilderCompile(t *testing.T) {
	t.Run("bounded pool", func(t *testing.T) {
		defer goleak.VerifyNone(t)

		cfg := MustNewConfig(WithModules(6), WithThreads(2), WithTarget(t.TempDir()))
		plan := testPlan(t, cfg, 12)
		hints := map[string][]string{"_bindings_4": {"inc/4"}}

		var (
			running, peak, calls atomic.Int32
			mu                   sync.Mutex
			seen                 = map[string][]string{}
		)
		compiler := toolchain.CompilerFunc(func(_ context.Context, source string, dirs []string) error {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
			calls.Add(1)
			mu.Lock()
			seen[filepath.Base(source)] = dirs
			mu.Unlock()
			return nil
		})

		err := NewBuilder(cfg, nil, compiler, &memoryCache{}).Compile(context.Background(), plan, hints)
		require.NoError(t, err)

		assert.Equal(t, int32(6), calls.Load())
		assert.LessOrEqual(t, peak.Load(), int32(2))
		assert.Equal(t, []string{"inc/4"}, seen["_bindings_4.pyx"])
		assert.Len(t, seen, 6)
	})

	t.Run("failures do not stop siblings", func(t *testing.T) {
		defer goleak.VerifyNone(t)

		cfg := MustNewConfig(WithModules(4), WithThreads(2), WithTarget(t.TempDir()))
		plan := testPlan(t, cfg, 4)

		var calls atomic.Int32
		compiler := toolchain.CompilerFunc(func(_ context.Context, source string, _ []string) error {
			calls.Add(1)
			switch filepath.Base(source) {
			case "_bindings_1.pyx", "_bindings_3.pyx":
				return errors.New("syntax error")
			}
			return nil
		})

		err := NewBuilder(cfg, nil, compiler, &memoryCache{}).Compile(context.Background(), plan, nil)
		require.Error(t, err)

		assert.Equal(t, int32(4), calls.Load())
		assert.True(t, splitwrap.IsCollaboratorError(err))
		assert.Contains(t, err.Error(), "compile _bindings_1")
		assert.Contains(t, err.Error(), "compile _bindings_3")
		assert.NotContains(t, err.Error(), "_bindings_2")
	})
}

func TestBuilderBuild(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	cfg := MustNewConfig(
		WithModules(3),
		WithThreads(2),
		WithTarget(dir),
		WithHintCache(filepath.Join(dir, "include_dir.bin")),
		WithVersion("3.1.0", "5.15.2"),
	)
	plan := testPlan(t, cfg, 10, "addons/ADD_TO_ALL.pyx")

	var compiled atomic.Int32
	compiler := toolchain.CompilerFunc(func(context.Context, string, []string) error {
		compiled.Add(1)
		return nil
	})

	res, err := NewBuilder(cfg, &recordingGenerator{}, compiler, nil).Build(context.Background(), plan)
	require.NoError(t, err)

	assert.Equal(t, int32(3), compiled.Load())
	assert.Len(t, res.Sources, 3)
	assert.Equal(t, filepath.Join(dir, "_bindings_3.pyx"), res.Sources["_bindings_3"])
	assert.Equal(t, []string{"inc/_bindings_1"}, res.IncludeDirs["_bindings_1"])
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, AggregatorFile),
		filepath.Join(dir, VersionFile),
		filepath.Join(dir, ToolchainInfoFile),
		filepath.Join(dir, ManifestFile),
	}, res.Artifacts)

	for _, a := range res.Artifacts {
		_, err := os.Stat(a)
		assert.NoError(t, err)
	}
}

func TestBuilderBuildCompileFailure(t *testing.T) {
	dir := t.TempDir()
	cfg := MustNewConfig(WithModules(2), WithTarget(dir), WithHintCache(filepath.Join(dir, "hints.bin")))
	plan := testPlan(t, cfg, 2)

	compiler := toolchain.CompilerFunc(func(context.Context, string, []string) error {
		return errors.New("boom")
	})

	_, err := NewBuilder(cfg, &recordingGenerator{}, compiler, nil).Build(context.Background(), plan)
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(dir, AggregatorFile))
	assert.True(t, os.IsNotExist(statErr), "no artifacts after a failed compile")
}
