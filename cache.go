package splitwrap

import "context"

// HintCache persists the include-path hints reported by the generator so a
// later, separate build stage can pick them up. Only the most recent Store
// is meaningful to readers: implementations overwrite, they do not merge.
type HintCache interface {
	// Store replaces the cached hints.
	Store(ctx context.Context, hints []string) error

	// Load returns the cached hints.
	// Returns nil, nil if nothing has been stored yet.
	Load(ctx context.Context) ([]string, error)
}
