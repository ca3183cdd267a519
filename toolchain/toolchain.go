// Package toolchain defines the external tools a build run drives: the
// declaration resolver, the binding generator and the compiler. splitwrap
// treats them as black boxes; package exec provides process-backed
// implementations.
package toolchain

import (
	"context"

	"github.com/syssam/splitwrap/schema"
)

// Resolver parses declaration files.
type Resolver interface {
	// Resolve parses files, looking up includes in searchPaths, using up to
	// parallelism workers. Every returned declaration carries the path of
	// the file it was parsed from.
	Resolve(ctx context.Context, files, searchPaths []string, parallelism int) (*schema.Set, error)
}

// GenerateRequest describes the generation of one module.
type GenerateRequest struct {
	Module       string                `json:"module"`
	Target       string                `json:"target"`
	Declarations []*schema.Declaration `json:"declarations"`
	Instances    schema.InstanceMap    `json:"instances,omitempty"`
	// Addons are paths of the fragments to merge into the module.
	Addons []string `json:"addons,omitempty"`
	// Converters is the converter registry.
	Converters []string `json:"converters,omitempty"`
	// Verbosity controls the generator's own logging.
	Verbosity int `json:"verbosity"`
}

// Generator emits the source of one module.
type Generator interface {
	// Generate writes req.Target and returns the include directories the
	// source needs to compile.
	Generate(ctx context.Context, req *GenerateRequest) ([]string, error)
}

// Compiler compiles one generated module source.
type Compiler interface {
	Compile(ctx context.Context, source string, includeDirs []string) error
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, req *GenerateRequest) ([]string, error)

// Generate calls f(ctx, req).
func (f GeneratorFunc) Generate(ctx context.Context, req *GenerateRequest) ([]string, error) {
	return f(ctx, req)
}

// CompilerFunc adapts a function to the Compiler interface.
type CompilerFunc func(ctx context.Context, source string, includeDirs []string) error

// Compile calls f(ctx, source, includeDirs).
func (f CompilerFunc) Compile(ctx context.Context, source string, includeDirs []string) error {
	return f(ctx, source, includeDirs)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, files, searchPaths []string, parallelism int) (*schema.Set, error)

// Resolve calls f(ctx, files, searchPaths, parallelism).
func (f ResolverFunc) Resolve(ctx context.Context, files, searchPaths []string, parallelism int) (*schema.Set, error) {
	return f(ctx, files, searchPaths, parallelism)
}
