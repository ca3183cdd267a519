// Package config loads the settings of a build run from defaults, an
// optional YAML file, a .env file and SPLITWRAP_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/syssam/splitwrap"
	"github.com/syssam/splitwrap/compiler/gen"
	"github.com/syssam/splitwrap/compiler/load"
)

// File names looked up in the working directory.
const (
	DefaultFile   = "splitwrap.yaml"
	DefaultDotEnv = ".env"
)

// Environment variables read by Load.
const (
	EnvNumModules    = "SPLITWRAP_NUM_MODULES"
	EnvNumThreads    = "SPLITWRAP_NUM_THREADS"
	EnvBuildType     = "SPLITWRAP_BUILD_TYPE"
	EnvSourceDir     = "SPLITWRAP_SRC_DIR"
	EnvOutDir        = "SPLITWRAP_OUT_DIR"
	EnvVersion       = "SPLITWRAP_VERSION"
	EnvToolchainInfo = "SPLITWRAP_TOOLCHAIN_INFO"
	EnvModuleName    = "SPLITWRAP_MODULE_NAME"
)

// Config holds every setting of a build run.
type Config struct {
	NumModules int    `yaml:"num_modules"`
	NumThreads int    `yaml:"num_threads"`
	BuildType  string `yaml:"build_type"`
	SourceDir  string `yaml:"source_dir"`
	// OutDir receives the generated sources and artifacts. Empty means
	// SourceDir.
	OutDir        string    `yaml:"out_dir"`
	ModuleName    string    `yaml:"module_name"`
	SourceExt     string    `yaml:"source_ext"`
	Version       string    `yaml:"version"`
	ToolchainInfo string    `yaml:"toolchain_info"`
	HintCache     string    `yaml:"hint_cache"`
	Converters    []string  `yaml:"converters"`
	Verbosity     int       `yaml:"verbosity"`
	GoManifest    string    `yaml:"go_manifest"`
	GoPackage     string    `yaml:"go_package"`
	Sources       Sources   `yaml:"sources"`
	Toolchain     Toolchain `yaml:"toolchain"`

	// Platform is the operating system the build targets. It defaults to
	// runtime.GOOS and is not read from files.
	Platform string `yaml:"-"`
}

// Sources describes the source tree layout.
type Sources struct {
	DeclDir      string   `yaml:"decl_dir"`
	DeclPattern  string   `yaml:"decl_pattern"`
	AddonDir     string   `yaml:"addon_dir"`
	AddonPattern string   `yaml:"addon_pattern"`
	SearchPaths  []string `yaml:"search_paths"`
}

// Toolchain holds the command lines of the external tools.
type Toolchain struct {
	Resolver  string `yaml:"resolver"`
	Generator string `yaml:"generator"`
	Compiler  string `yaml:"compiler"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		NumModules: 1,
		NumThreads: 1,
		BuildType:  "Release",
		ModuleName: gen.DefaultModuleName,
		SourceExt:  gen.DefaultSourceExt,
		HintCache:  gen.DefaultHintCacheFile,
		Sources: Sources{
			DeclDir:      load.DefaultDeclDir,
			DeclPattern:  load.DefaultDeclPattern,
			AddonDir:     load.DefaultAddonDir,
			AddonPattern: load.DefaultAddonPattern,
		},
		Platform: runtime.GOOS,
	}
}

// Loader controls where Load looks for settings.
type Loader struct {
	// File is the YAML file. Empty means DefaultFile if it exists.
	File string
	// DotEnv is the .env file. Empty means DefaultDotEnv if it exists.
	DotEnv string
	// Lookup reads the process environment. Nil means os.LookupEnv.
	Lookup func(string) (string, bool)
}

// Load reads the YAML file at path, or DefaultFile when path is empty,
// and applies environment overrides.
func Load(path string) (*Config, error) {
	return Loader{File: path}.Load()
}

// Load builds a Config from defaults, the YAML file, the .env file and the
// environment, later layers winning. Process environment variables take
// precedence over .env entries. The result is not validated.
func (l Loader) Load() (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(l.File); err != nil {
		return nil, err
	}
	dotenv, err := readDotEnv(l.DotEnv)
	if err != nil {
		return nil, err
	}
	lookup := l.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	env := func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := cfg.applyEnv(env); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && !explicit {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func readDotEnv(path string) (map[string]string, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultDotEnv
	}
	values, err := godotenv.Read(path)
	if errors.Is(err, os.ErrNotExist) && !explicit {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	return values, nil
}

func (c *Config) applyEnv(env func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := env(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	num := func(key string, dst *int) error {
		v, ok := env(key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return splitwrap.NewConfigError(key, v, "not an integer")
		}
		*dst = n
		return nil
	}
	if err := num(EnvNumModules, &c.NumModules); err != nil {
		return err
	}
	if err := num(EnvNumThreads, &c.NumThreads); err != nil {
		return err
	}
	str(EnvBuildType, &c.BuildType)
	str(EnvSourceDir, &c.SourceDir)
	str(EnvOutDir, &c.OutDir)
	str(EnvVersion, &c.Version)
	str(EnvToolchainInfo, &c.ToolchainInfo)
	str(EnvModuleName, &c.ModuleName)
	return nil
}

// Validate checks the settings and the platform and build type
// combination.
func (c *Config) Validate() error {
	var errs []error
	if c.NumModules < 1 {
		errs = append(errs, splitwrap.NewConfigError("num_modules", c.NumModules, "must be at least 1"))
	}
	if c.NumThreads < 1 {
		errs = append(errs, splitwrap.NewConfigError("num_threads", c.NumThreads, "must be at least 1"))
	}
	if strings.TrimSpace(c.SourceDir) == "" {
		errs = append(errs, splitwrap.NewConfigError("source_dir", c.SourceDir, "source directory is required"))
	}
	if c.Platform == "windows" && strings.EqualFold(c.BuildType, "debug") {
		errs = append(errs, splitwrap.NewEnvironmentError(c.Platform, c.BuildType,
			"debug builds are not supported on windows, use Release or RelWithDebInfo"))
	}
	return errors.Join(errs...)
}

// Target returns the output directory.
func (c *Config) Target() string {
	if c.OutDir != "" {
		return c.OutDir
	}
	return c.SourceDir
}

// GenOptions converts the settings into generator options.
func (c *Config) GenOptions() []gen.Option {
	opts := []gen.Option{
		gen.WithModules(c.NumModules),
		gen.WithThreads(c.NumThreads),
		gen.WithModuleName(c.ModuleName),
		gen.WithTarget(c.Target()),
		gen.WithSourceExt(c.SourceExt),
		gen.WithHintCache(c.HintCache),
		gen.WithVersion(c.Version, c.ToolchainInfo),
		gen.WithVerbosity(c.Verbosity),
	}
	if len(c.Converters) > 0 {
		opts = append(opts, gen.WithConverters(c.Converters...))
	}
	if c.GoManifest != "" {
		opts = append(opts, gen.WithGoManifest(c.GoManifest, c.GoPackage))
	}
	return opts
}

// LoadConfig returns the source discovery settings.
func (c *Config) LoadConfig() *load.Config {
	return &load.Config{
		SourceDir:    c.SourceDir,
		DeclDir:      c.Sources.DeclDir,
		DeclPattern:  c.Sources.DeclPattern,
		AddonDir:     c.Sources.AddonDir,
		AddonPattern: c.Sources.AddonPattern,
		SearchPaths:  c.Sources.SearchPaths,
		Parallelism:  c.NumThreads,
	}
}
