package lookup

import (
	"errors"
	"fmt"
	"iter"

	"github.com/charmbracelet/log"

	"github.com/forgemo/ironstorm-lookup/pkg/store"
)

// ErrClosed is reported by iterators that touch a table after Close.
var ErrClosed = errors.New("lookup: table is closed")

// Options control how a table stores its data.
type Options struct {
	// Paged places the arena and suffix catalogs in a memory-mapped spill
	// file so the data set may exceed physical memory.
	Paged bool
	// PageDir is the directory for the spill file. Empty means the OS
	// temp dir. Ignored unless Paged is set.
	PageDir string
}

// Table is the built substring index. It is immutable: Find never mutates
// shared state, so concurrent queries need no locking.
type Table struct {
	backend store.Backend
	values  []Searchable
	closed  bool
}

// Build consumes items exactly once and returns a resident table.
// The input order is irrelevant to the result except for tie order among
// identical suffixes, which follows insertion order. Nothing half-built is
// ever returned: on error the caller gets nil.
func Build(items iter.Seq[Searchable]) (*Table, error) {
	return BuildWithOptions(items, Options{})
}

// BuildWithOptions is Build with an explicit storage choice.
func BuildWithOptions(items iter.Seq[Searchable], opts Options) (*Table, error) {
	b := store.NewBuilder()
	var values []Searchable

	for item := range items {
		text := item.SearchableText()
		bucket := item.Bucket()
		if _, err := b.Add(text, uint32(bucket)); err != nil {
			return nil, fmt.Errorf("lookup: build: %w", err)
		}
		values = append(values, item)
	}

	var backend store.Backend
	var err error
	if opts.Paged {
		backend, err = b.FinishPaged(opts.PageDir)
	} else {
		backend, err = b.Finish()
	}
	if err != nil {
		return nil, fmt.Errorf("lookup: build: %w", err)
	}

	log.Debugf("built %s table: %d items, %d buckets",
		backend.Mode(), backend.Items(), len(backend.Buckets()))

	return &Table{backend: backend, values: values}, nil
}

// Find returns a lazy cursor over every occurrence of pattern, lowest
// bucket first. An item whose text contains the pattern at K offsets is
// yielded K times. The cursor is not restartable; call Find again to
// search again. Abandoning a cursor early is free.
func (t *Table) Find(pattern string) *Iterator {
	return &Iterator{
		table:   t,
		pattern: []byte(pattern),
		buckets: t.backend.Buckets(),
	}
}

// Len returns the number of items in the table.
func (t *Table) Len() int {
	return t.backend.Items()
}

// BucketCount returns the number of distinct buckets.
func (t *Table) BucketCount() int {
	return len(t.backend.Buckets())
}

// Mode reports whether the table is resident or paged.
func (t *Table) Mode() store.Mode {
	return t.backend.Mode()
}

// Close releases the table as a unit; a paged table removes its spill
// file. In-flight iterators fail with ErrClosed on their next step.
// Close is not safe to call concurrently with Find.
func (t *Table) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	t.values = nil
	return t.backend.Close()
}
