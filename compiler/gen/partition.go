package gen

import (
	"fmt"

	"github.com/syssam/splitwrap"
	"github.com/syssam/splitwrap/schema"
)

// Partition is one independently generated and compiled module.
type Partition struct {
	Index  int
	Module string
	// Files are the declaration files owned by the module, in chunk order.
	Files []string
	// Decls are the declarations of Files, file by file.
	Decls []*schema.Declaration
	// Addons may hold the same fragment more than once when several rules
	// matched it.
	Addons []*Addon
}

// First reports whether p is the first module.
func (p *Partition) First() bool {
	return p.Index == 0
}

// Chunk splits seq into exactly k ordered chunks whose concatenation is seq.
// Chunk i spans seq[i*n/k : (i+1)*n/k]; anything past the last boundary is
// folded into the last chunk. Sizes differ by at most one when n >= k. When
// n < k some chunks are empty.
//
// The result is checked before it is returned: a chunk count other than k,
// or a total size other than n, is reported as a ConsistencyError.
func Chunk[T any](seq []T, k int) ([][]T, error) {
	if k < 1 {
		return nil, splitwrap.NewConfigError("NumModules", k, "module count must be at least 1")
	}
	n := len(seq)
	out := make([][]T, 0, k)
	last := 0
	for i := 0; i < k; i++ {
		start, end := i*n/k, (i+1)*n/k
		out = append(out, seq[start:end:end])
		last = end
	}
	// Tail past the last boundary belongs to the last chunk.
	out[k-1] = append(out[k-1], seq[last:]...)

	if err := checkChunks(out, k, n); err != nil {
		return nil, err
	}
	return out, nil
}

func checkChunks[T any](chunks [][]T, k, n int) error {
	if len(chunks) != k {
		return splitwrap.NewConsistencyError("chunk count", k, len(chunks))
	}
	total := 0
	for _, ch := range chunks {
		total += len(ch)
	}
	if total != n {
		return splitwrap.NewConsistencyError("partitioned file count", n, total)
	}
	return nil
}

// ModuleNames returns the k module names derived from base.
func ModuleNames(base string, k int) []string {
	if k == 1 {
		return []string{base}
	}
	names := make([]string, k)
	for i := range names {
		names[i] = fmt.Sprintf("%s_%d", base, i+1)
	}
	return names
}

// Partitions splits the declaration files into k partitions named after
// base. Each partition owns whole files: every declaration of a file lands
// in the same module.
func Partitions(files []*schema.DeclarationFile, k int, base string) ([]*Partition, error) {
	chunks, err := Chunk(files, k)
	if err != nil {
		return nil, err
	}
	names := ModuleNames(base, k)
	parts := make([]*Partition, k)
	for i, chunk := range chunks {
		p := &Partition{Index: i, Module: names[i]}
		for _, f := range chunk {
			p.Files = append(p.Files, f.Path)
			p.Decls = append(p.Decls, f.Declarations...)
		}
		parts[i] = p
	}
	return parts, nil
}
