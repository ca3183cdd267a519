package gen

import (
	"errors"
	"path/filepath"
	"runtime"
	"strings"

	"go.uber.org/zap"

	"github.com/syssam/splitwrap"
)

// Defaults used by NewConfig.
const (
	DefaultModuleName    = "_bindings"
	DefaultSourceExt     = ".pyx"
	DefaultHintCacheFile = "include_dir.bin"
	DefaultGoPackage     = "modules"
)

// Config holds the settings of a build run.
type Config struct {
	// NumModules is the module count K. Exactly this many modules are
	// produced, later build stages rely on it.
	NumModules int
	// Threads bounds the compile worker pool.
	Threads int
	// ModuleName is the base module name. A single module keeps it as is,
	// otherwise modules are named <ModuleName>_1 .. <ModuleName>_K.
	ModuleName string
	// Target is the output directory for generated sources and artifacts.
	Target string
	// SourceExt is the extension of the generated source per module.
	SourceExt string
	// Converters is the converter registry handed to the generator.
	Converters []string
	// Verbosity is forwarded to the generator. It replaces any process-wide
	// log level tweaking of the generator's own logging.
	Verbosity int
	// HintCache is the path of the include-path hint cache.
	HintCache string
	// Version and ToolchainInfo are written to the version stamps. Empty
	// values skip the corresponding stamp.
	Version       string
	ToolchainInfo string
	// GoManifest, when set, is the directory of an additional Go manifest
	// listing the modules. GoPackage is its package name.
	GoManifest string
	GoPackage  string
	// Logger receives progress messages. Defaults to a no-op logger.
	Logger *zap.Logger
}

// Option configures a build run.
type Option func(*Config) error

// WithModules sets the module count.
func WithModules(k int) Option {
	return func(c *Config) error {
		if k < 1 {
			return splitwrap.NewConfigError("NumModules", k, "module count must be at least 1")
		}
		c.NumModules = k
		return nil
	}
}

// WithThreads sets the size of the compile worker pool.
func WithThreads(n int) Option {
	return func(c *Config) error {
		if n < 1 {
			return splitwrap.NewConfigError("Threads", n, "thread budget must be at least 1")
		}
		c.Threads = n
		return nil
	}
}

// WithModuleName sets the base module name.
func WithModuleName(name string) Option {
	return func(c *Config) error {
		if strings.TrimSpace(name) == "" {
			return splitwrap.NewConfigError("ModuleName", nil, "module name cannot be empty")
		}
		c.ModuleName = name
		return nil
	}
}

// WithTarget sets the output directory.
func WithTarget(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return splitwrap.NewConfigError("Target", nil, "target directory cannot be empty")
		}
		c.Target = dir
		return nil
	}
}

// WithSourceExt sets the extension of generated module sources.
// A missing leading dot is added.
func WithSourceExt(ext string) Option {
	return func(c *Config) error {
		if ext == "" || ext == "." {
			return splitwrap.NewConfigError("SourceExt", ext, "extension cannot be empty")
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.SourceExt = ext
		return nil
	}
}

// WithConverters adds entries to the converter registry.
func WithConverters(paths ...string) Option {
	return func(c *Config) error {
		c.Converters = append(c.Converters, paths...)
		return nil
	}
}

// WithVerbosity sets the verbosity forwarded to the generator.
func WithVerbosity(v int) Option {
	return func(c *Config) error {
		c.Verbosity = v
		return nil
	}
}

// WithHintCache sets the path of the include-path hint cache.
func WithHintCache(path string) Option {
	return func(c *Config) error {
		if path == "" {
			return splitwrap.NewConfigError("HintCache", nil, "hint cache path cannot be empty")
		}
		c.HintCache = path
		return nil
	}
}

// WithVersion sets the strings written to the version stamps.
func WithVersion(version, toolchainInfo string) Option {
	return func(c *Config) error {
		c.Version = version
		c.ToolchainInfo = toolchainInfo
		return nil
	}
}

// WithGoManifest enables the Go manifest in dir. An empty pkg defaults to
// the base name of dir.
func WithGoManifest(dir, pkg string) Option {
	return func(c *Config) error {
		if dir == "" {
			return splitwrap.NewConfigError("GoManifest", nil, "manifest directory cannot be empty")
		}
		if pkg == "" {
			pkg = filepath.Base(dir)
		}
		c.GoManifest = dir
		c.GoPackage = pkg
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Config) error {
		if l == nil {
			return splitwrap.NewConfigError("Logger", nil, "logger cannot be nil")
		}
		c.Logger = l
		return nil
	}
}

// Apply applies options to the config.
// It returns the first error encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAll applies options and collects all errors.
// Returns a joined error if any options failed.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewConfig creates a Config with defaults and then applies opts.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{
		NumModules: 1,
		Threads:    runtime.GOMAXPROCS(0),
		ModuleName: DefaultModuleName,
		Target:     ".",
		SourceExt:  DefaultSourceExt,
		HintCache:  DefaultHintCacheFile,
		Logger:     zap.NewNop(),
	}
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// MustNewConfig creates a new Config with the given options.
// It panics if any option fails.
func MustNewConfig(opts ...Option) *Config {
	c, err := NewConfig(opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// SourcePath returns the path of the generated source of module.
func (c *Config) SourcePath(module string) string {
	return filepath.Join(c.Target, module+c.SourceExt)
}

func (c *Config) logger() *zap.Logger {
	if c == nil || c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}
