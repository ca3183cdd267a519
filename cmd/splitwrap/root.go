package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/syssam/splitwrap/compiler"
	"github.com/syssam/splitwrap/compiler/gen"
	"github.com/syssam/splitwrap/config"
	"github.com/syssam/splitwrap/toolchain/exec"
)

// options holds the state shared by all commands.
type options struct {
	configFile string
	dotEnv     string
	verbose    bool

	// Flag overrides, applied only when the flag was set.
	numModules    int
	numThreads    int
	buildType     string
	sourceDir     string
	outDir        string
	moduleName    string
	version       string
	toolchainInfo string
	goManifest    string
	resolver      string
	generator     string
	compiler      string

	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	return newRootCmdWith(&options{})
}

// newRootCmdWith builds the command tree around o. A logger already set on o
// is kept.
func newRootCmdWith(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "splitwrap",
		Short:         "Split declaration files into binding modules and build them",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if o.logger == nil {
				zc := zap.NewProductionConfig()
				if o.verbose {
					zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
				}
				l, err := zc.Build()
				if err != nil {
					return fmt.Errorf("failed to initialize logger: %w", err)
				}
				o.logger = l
			}
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if o.logger != nil {
				_ = o.logger.Sync()
			}
		},
	}

	f := cmd.PersistentFlags()
	f.StringVar(&o.configFile, "config", "", "config file (default "+config.DefaultFile+" if present)")
	f.StringVar(&o.dotEnv, "env-file", "", "env file (default "+config.DefaultDotEnv+" if present)")
	f.BoolVarP(&o.verbose, "verbose", "v", false, "debug logging")
	f.IntVarP(&o.numModules, "modules", "k", 1, "number of modules to produce")
	f.IntVarP(&o.numThreads, "threads", "j", 1, "compile worker pool size")
	f.StringVar(&o.buildType, "build-type", "", "build type (Debug, Release, RelWithDebInfo)")
	f.StringVar(&o.sourceDir, "src", "", "source directory")
	f.StringVar(&o.outDir, "out", "", "output directory (default: source directory)")
	f.StringVar(&o.moduleName, "module-name", "", "base module name")
	f.StringVar(&o.version, "package-version", "", "version written to the version stamp")
	f.StringVar(&o.toolchainInfo, "toolchain-info", "", "toolchain info written to the info stamp")
	f.StringVar(&o.goManifest, "go-manifest", "", "directory of an additional Go manifest")
	f.StringVar(&o.resolver, "resolver", "", "declaration resolver command")
	f.StringVar(&o.generator, "generator", "", "module generator command")
	f.StringVar(&o.compiler, "compiler", "", "module compiler command")

	cmd.AddCommand(
		newBuildCmd(o),
		newPlanCmd(o),
		newWatchCmd(o),
		newVersionCmd(),
	)
	return cmd
}

// load reads the configuration layers, applies the flags that were set and
// validates the result.
func (o *options) load(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Loader{File: o.configFile, DotEnv: o.dotEnv}.Load()
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	setInt := func(name string, dst *int, v int) {
		if flags.Changed(name) {
			*dst = v
		}
	}
	setStr := func(name string, dst *string, v string) {
		if flags.Changed(name) {
			*dst = v
		}
	}
	setInt("modules", &cfg.NumModules, o.numModules)
	setInt("threads", &cfg.NumThreads, o.numThreads)
	setStr("build-type", &cfg.BuildType, o.buildType)
	setStr("src", &cfg.SourceDir, o.sourceDir)
	setStr("out", &cfg.OutDir, o.outDir)
	setStr("module-name", &cfg.ModuleName, o.moduleName)
	setStr("package-version", &cfg.Version, o.version)
	setStr("toolchain-info", &cfg.ToolchainInfo, o.toolchainInfo)
	setStr("go-manifest", &cfg.GoManifest, o.goManifest)
	setStr("resolver", &cfg.Toolchain.Resolver, o.resolver)
	setStr("generator", &cfg.Toolchain.Generator, o.generator)
	setStr("compiler", &cfg.Toolchain.Compiler, o.compiler)
	if o.verbose && cfg.Verbosity == 0 {
		cfg.Verbosity = 1
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (o *options) genOptions(cfg *config.Config) []gen.Option {
	return append(cfg.GenOptions(), gen.WithLogger(o.logger))
}

// toolchain builds the process-backed tools. Only the resolver is required
// when full is false.
func (o *options) toolchain(cfg *config.Config, full bool) (*compiler.Toolchain, error) {
	parse := func(name, line string) (exec.Command, error) {
		if line == "" {
			return exec.Command{}, fmt.Errorf("no %s command configured", name)
		}
		return exec.ParseCommand(line)
	}
	tc := &compiler.Toolchain{}
	rc, err := parse("resolver", cfg.Toolchain.Resolver)
	if err != nil {
		return nil, err
	}
	tc.Resolver = &exec.Resolver{Cmd: rc, Logger: o.logger}
	if !full {
		return tc, nil
	}
	gc, err := parse("generator", cfg.Toolchain.Generator)
	if err != nil {
		return nil, err
	}
	cc, err := parse("compiler", cfg.Toolchain.Compiler)
	if err != nil {
		return nil, err
	}
	tc.Generator = &exec.Generator{Cmd: gc, Logger: o.logger}
	tc.Compiler = &exec.Compiler{Cmd: cc, Logger: o.logger}
	return tc, nil
}
