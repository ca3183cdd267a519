package load

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/splitwrap"
	"github.com/syssam/splitwrap/schema"
	"github.com/syssam/splitwrap/toolchain"
)

func fixture(t *testing.T) *schema.Set {
	t.Helper()
	buf, err := os.ReadFile(filepath.Join("testdata", "valid", "resolved.json"))
	require.NoError(t, err)
	set, err := UnmarshalSet(buf)
	require.NoError(t, err)
	return set
}

func TestDiscover(t *testing.T) {
	dir := filepath.Join("testdata", "valid")
	files, addons, err := Discover(&Config{SourceDir: dir})
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "pxds", "MSSpectrum.pxd"),
		filepath.Join(dir, "pxds", "Peak1D.pxd"),
		filepath.Join(dir, "pxds", "Types.pxd"),
	}, files)
	assert.Equal(t, []string{
		filepath.Join(dir, "addons", "ADD_TO_ALL.pyx"),
		filepath.Join(dir, "addons", "Peak1D.pyx"),
	}, addons)
}

func TestDiscoverEmptyTree(t *testing.T) {
	files, addons, err := Discover(&Config{SourceDir: filepath.Join("testdata", "empty")})
	require.NoError(t, err)
	assert.Empty(t, files)
	assert.Empty(t, addons)
}

func TestDiscoverCustomLayout(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "decl"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "decl", "b.h"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "decl", "a.h"), nil, 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "decl", "dir.h"), 0o755))

	files, addons, err := Discover(&Config{SourceDir: dir, DeclDir: "decl", DeclPattern: "*.h"})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "decl", "a.h"), filepath.Join(dir, "decl", "b.h")}, files)
	assert.Empty(t, addons)
}

func TestDiscoverErrors(t *testing.T) {
	_, _, err := Discover(&Config{})
	assert.True(t, splitwrap.IsConfigError(err))

	_, _, err = Discover(&Config{SourceDir: t.TempDir()})
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, _, err = Discover(&Config{SourceDir: filepath.Join("testdata", "valid"), DeclPattern: "[.pxd"})
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := filepath.Join("testdata", "valid")
	want := fixture(t)

	var (
		gotFiles, gotPaths []string
		gotJobs            int
	)
	r := toolchain.ResolverFunc(func(_ context.Context, files, searchPaths []string, parallelism int) (*schema.Set, error) {
		gotFiles, gotPaths, gotJobs = files, searchPaths, parallelism
		return want, nil
	})

	src, err := Load(context.Background(), &Config{SourceDir: dir, Parallelism: 4}, r)
	require.NoError(t, err)

	assert.Equal(t, src.Files, gotFiles)
	assert.Equal(t, []string{dir}, gotPaths)
	assert.Equal(t, 4, gotJobs)
	assert.Len(t, src.Addons, 2)
	assert.Same(t, want, src.Set)
}

func TestLoadResolverErrors(t *testing.T) {
	dir := filepath.Join("testdata", "valid")

	t.Run("resolver failure", func(t *testing.T) {
		cause := errors.New("cython: syntax error")
		r := toolchain.ResolverFunc(func(context.Context, []string, []string, int) (*schema.Set, error) {
			return nil, cause
		})
		_, err := Load(context.Background(), &Config{SourceDir: dir}, r)
		require.Error(t, err)

		var ce *splitwrap.CollaboratorError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, "resolve", ce.Phase)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("declaration without file", func(t *testing.T) {
		r := toolchain.ResolverFunc(func(context.Context, []string, []string, int) (*schema.Set, error) {
			return &schema.Set{Declarations: []*schema.Declaration{{Name: "Orphan"}}}, nil
		})
		_, err := Load(context.Background(), &Config{SourceDir: dir}, r)
		require.Error(t, err)
		assert.True(t, splitwrap.IsCollaboratorError(err))
		assert.Contains(t, err.Error(), "Orphan")
	})

	t.Run("nil set", func(t *testing.T) {
		r := toolchain.ResolverFunc(func(context.Context, []string, []string, int) (*schema.Set, error) {
			return nil, nil
		})
		src, err := Load(context.Background(), &Config{SourceDir: dir}, r)
		require.NoError(t, err)
		assert.Empty(t, src.Set.Declarations)
	})
}

func TestUnmarshalSet(t *testing.T) {
	set := fixture(t)

	require.Len(t, set.Declarations, 3)
	spectrum := set.Declarations[0]
	assert.Equal(t, "MSSpectrum", spectrum.Name)
	assert.Equal(t, schema.KindClass, spectrum.Kind)
	assert.Equal(t, "pxds/MSSpectrum.pxd", spectrum.File)
	assert.Equal(t, []string{"toString"}, spectrum.Methods.Names())

	assert.False(t, set.Declarations[2].HasMethods())
	assert.Equal(t, "std::vector<OpenMS::Peak1D>", set.Instances["libcpp_vector[Peak1D]"])
}

func TestUnmarshalSetErrors(t *testing.T) {
	tests := []struct {
		name string
		buf  string
		msg  string
	}{
		{"not json", `{`, "decode declarations"},
		{"null declaration", `{"declarations": [null]}`, "is null"},
		{"missing name", `{"declarations": [{"file": "a.pxd"}]}`, "has no name"},
		{"missing file", `{"declarations": [{"name": "A"}]}`, "has no file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalSet([]byte(tt.buf))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestMarshalSet(t *testing.T) {
	buf, err := MarshalSet(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"declarations": []}`, string(buf))

	set := fixture(t)
	buf, err = MarshalSet(set)
	require.NoError(t, err)

	again, err := UnmarshalSet(buf)
	require.NoError(t, err)
	assert.Equal(t, set.Declarations[0].Methods.Names(), again.Declarations[0].Methods.Names())
	assert.Equal(t, set.Instances, again.Instances)
}
