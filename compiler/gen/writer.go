package gen

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Artifact file names written next to the generated modules.
const (
	AggregatorFile    = "_all_modules.py"
	VersionFile       = "_version.py"
	ToolchainInfoFile = "_qt_version_info.py"
	ManifestFile      = "modules.yaml"
)

// Writer writes the artifacts that describe a finished build: the
// aggregator module, the version stamps and the manifests.
type Writer struct {
	cfg *Config
}

// NewWriter returns a Writer for cfg.
func NewWriter(cfg *Config) *Writer {
	return &Writer{cfg: cfg}
}

// WriteAll writes every artifact enabled by the config and returns their
// paths.
func (w *Writer) WriteAll(plan *Plan) ([]string, error) {
	var written []string
	steps := []func(*Plan) (string, error){
		w.WriteAggregator,
		w.WriteVersion,
		w.WriteToolchainInfo,
		w.WriteManifest,
		w.WriteGoManifest,
	}
	for _, step := range steps {
		path, err := step(plan)
		if err != nil {
			return written, err
		}
		if path != "" {
			written = append(written, path)
		}
	}
	return written, nil
}

// WriteAggregator writes a module that re-exports every module in partition
// order.
func (w *Writer) WriteAggregator(plan *Plan) (string, error) {
	var b bytes.Buffer
	for _, name := range plan.Modules() {
		fmt.Fprintf(&b, "from .%s import *  # pylint: disable=wildcard-import; lgtm(py/polluting-import)\n", name)
	}
	return w.write(AggregatorFile, b.Bytes())
}

// WriteVersion writes the version stamp. It is skipped when no version is
// configured.
func (w *Writer) WriteVersion(*Plan) (string, error) {
	if w.cfg.Version == "" {
		return "", nil
	}
	return w.write(VersionFile, []byte(fmt.Sprintf("version=%s\n\n", pyRepr(w.cfg.Version))))
}

// WriteToolchainInfo writes the toolchain version stamp. It is skipped when
// no toolchain info is configured.
func (w *Writer) WriteToolchainInfo(*Plan) (string, error) {
	if w.cfg.ToolchainInfo == "" {
		return "", nil
	}
	return w.write(ToolchainInfoFile, []byte(fmt.Sprintf("info=%s\n\n", pyRepr(w.cfg.ToolchainInfo))))
}

func (w *Writer) write(name string, data []byte) (string, error) {
	return writeFile(w.cfg, filepath.Join(w.cfg.Target, name), data)
}

func writeFile(cfg *Config, path string, data []byte) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	cfg.logger().Debug("wrote artifact", zap.String("path", path), zap.Int("bytes", len(data)))
	return path, nil
}

// pyRepr quotes s the way Python's repr quotes a str: single quotes unless
// the string holds a single quote and no double quote.
func pyRepr(s string) string {
	quote := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		quote = '"'
	}
	var b strings.Builder
	b.WriteByte(quote)
	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == rune(quote):
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&b, `\x%02x`, r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte(quote)
	return b.String()
}
