package lookup

import (
	"bytes"
	"sort"

	"github.com/forgemo/ironstorm-lookup/pkg/store"
)

// Iterator is the pull-based result cursor returned by Find. It keeps
// private state only (current bucket, current range position), so any
// number of iterators may run over the same table at once.
//
// Each Next step does only the work for one result: locating a bucket's
// match range costs two binary searches, amortized once per bucket, and
// every yielded occurrence after that is O(1).
type Iterator struct {
	table   *Table
	pattern []byte
	buckets []uint32

	next    int // index into buckets of the next catalog to search
	catalog store.Catalog
	pos     int
	end     int

	value Searchable
	err   error
	done  bool
}

// Next advances to the next occurrence. It returns false when the stream
// is exhausted or a failure occurred; check Err to tell the two apart.
func (it *Iterator) Next() bool {
	if it.done {
		return false
	}
	if it.table.closed {
		it.err = ErrClosed
		it.done = true
		return false
	}

	for {
		if it.catalog != nil && it.pos < it.end {
			ref := it.catalog.At(it.pos)
			it.pos++
			it.value = it.table.values[ref.Item]
			return true
		}

		// Current bucket exhausted, binary-search the next one.
		if it.next >= len(it.buckets) {
			it.done = true
			it.value = nil
			return false
		}
		catalog, ok := it.table.backend.Catalog(it.buckets[it.next])
		it.next++
		if !ok {
			continue
		}
		it.catalog = catalog
		it.pos, it.end = prefixRange(catalog, it.pattern)
	}
}

// Value returns the item reference produced by the last successful Next.
func (it *Iterator) Value() Searchable {
	return it.value
}

// Err returns the failure that truncated the stream, if any. Items
// yielded before the failure remain valid.
func (it *Iterator) Err() error {
	return it.err
}

// prefixRange returns the half-open range of catalog entries whose suffix
// has pattern as a prefix. Two binary searches, O(|pattern| log n).
func prefixRange(c store.Catalog, pattern []byte) (lo, hi int) {
	n := c.Len()
	lo = sort.Search(n, func(i int) bool {
		return comparePrefix(c.Suffix(i), pattern) >= 0
	})
	hi = lo + sort.Search(n-lo, func(i int) bool {
		return comparePrefix(c.Suffix(lo+i), pattern) > 0
	})
	return lo, hi
}

// comparePrefix compares at most len(pattern) bytes of s against pattern.
// A suffix shorter than the pattern that matches as far as it goes
// compares low, which is exactly the sort position we need.
func comparePrefix(s, pattern []byte) int {
	if len(s) > len(pattern) {
		s = s[:len(pattern)]
	}
	return bytes.Compare(s, pattern)
}
