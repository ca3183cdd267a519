package gen

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dave/jennifer/jen"
	"gopkg.in/yaml.v3"
)

// GoManifestFile is the file name of the Go manifest.
const GoManifestFile = "modules_gen.go"

// Manifest describes the module layout of a build for later build stages,
// which must agree with it on the module count and names.
type Manifest struct {
	RunID         string           `yaml:"run_id"`
	Version       string           `yaml:"version,omitempty"`
	ToolchainInfo string           `yaml:"toolchain_info,omitempty"`
	ModuleCount   int              `yaml:"module_count"`
	Modules       []ManifestModule `yaml:"modules"`
}

// ManifestModule is one module entry of a Manifest.
type ManifestModule struct {
	Name         string   `yaml:"name"`
	Source       string   `yaml:"source"`
	Files        []string `yaml:"files,omitempty"`
	Declarations int      `yaml:"declarations"`
	Addons       []string `yaml:"addons,omitempty"`
}

// NewManifest builds the manifest of plan.
func NewManifest(cfg *Config, plan *Plan) *Manifest {
	m := &Manifest{
		RunID:         plan.RunID.String(),
		Version:       cfg.Version,
		ToolchainInfo: cfg.ToolchainInfo,
		ModuleCount:   len(plan.Partitions),
		Modules:       make([]ManifestModule, len(plan.Partitions)),
	}
	for i, p := range plan.Partitions {
		m.Modules[i] = ManifestModule{
			Name:         p.Module,
			Source:       filepath.Base(cfg.SourcePath(p.Module)),
			Files:        p.Files,
			Declarations: len(p.Decls),
			Addons:       addonPaths(p.Addons),
		}
	}
	return m
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	return &m, nil
}

// WriteManifest writes the YAML manifest into the target directory.
func (w *Writer) WriteManifest(plan *Plan) (string, error) {
	data, err := yaml.Marshal(NewManifest(w.cfg, plan))
	if err != nil {
		return "", fmt.Errorf("encode manifest: %w", err)
	}
	return w.write(ManifestFile, data)
}

// WriteGoManifest renders the module list as a Go source file for Go-driven
// build stages. It is skipped unless Config.GoManifest is set.
func (w *Writer) WriteGoManifest(plan *Plan) (string, error) {
	if w.cfg.GoManifest == "" {
		return "", nil
	}
	pkg := w.cfg.GoPackage
	if pkg == "" {
		pkg = DefaultGoPackage
	}
	f := jen.NewFile(pkg)
	f.HeaderComment("Code generated by splitwrap. DO NOT EDIT.")

	f.Comment("RunID identifies the build run that produced this file.")
	f.Const().Id("RunID").Op("=").Lit(plan.RunID.String())

	f.Comment("ModuleCount is the number of generated modules.")
	f.Const().Id("ModuleCount").Op("=").Lit(len(plan.Partitions))

	f.Comment("Module describes one generated module.")
	f.Type().Id("Module").Struct(
		jen.Id("Name").String(),
		jen.Id("Source").String(),
		jen.Id("Files").Index().String(),
		jen.Id("Addons").Index().String(),
	)

	f.Comment("Modules lists the generated modules in build order.")
	f.Var().Id("Modules").Op("=").Index().Id("Module").ValuesFunc(func(g *jen.Group) {
		for _, p := range plan.Partitions {
			g.Values(jen.Dict{
				jen.Id("Name"):   jen.Lit(p.Module),
				jen.Id("Source"): jen.Lit(filepath.Base(w.cfg.SourcePath(p.Module))),
				jen.Id("Files"):  stringSlice(p.Files),
				jen.Id("Addons"): stringSlice(addonPaths(p.Addons)),
			})
		}
	})

	var b bytes.Buffer
	if err := f.Render(&b); err != nil {
		return "", fmt.Errorf("render go manifest: %w", err)
	}
	return writeFile(w.cfg, filepath.Join(w.cfg.GoManifest, GoManifestFile), b.Bytes())
}

func stringSlice(values []string) jen.Code {
	if len(values) == 0 {
		return jen.Nil()
	}
	return jen.Index().String().ValuesFunc(func(g *jen.Group) {
		for _, v := range values {
			g.Lit(v)
		}
	})
}
