package gen

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/splitwrap"
)

// FileHintCache stores include-path hints as a msgpack-encoded list in a
// single file. Every Store replaces the file.
type FileHintCache struct {
	Path string
}

// NewFileHintCache returns a cache backed by path.
func NewFileHintCache(path string) *FileHintCache {
	return &FileHintCache{Path: path}
}

// Store writes hints to a temporary file and renames it over the cache.
func (c *FileHintCache) Store(_ context.Context, hints []string) error {
	data, err := msgpack.Marshal(hints)
	if err != nil {
		return fmt.Errorf("encode include hints: %w", err)
	}
	dir := filepath.Dir(c.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(c.Path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), c.Path)
}

// Load reads the cached hints. A missing file yields nil, nil.
func (c *FileHintCache) Load(_ context.Context) ([]string, error) {
	data, err := os.ReadFile(c.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var hints []string
	if err := msgpack.Unmarshal(data, &hints); err != nil {
		return nil, fmt.Errorf("decode include hints %s: %w", c.Path, err)
	}
	return hints, nil
}

var _ splitwrap.HintCache = (*FileHintCache)(nil)
