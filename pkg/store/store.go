/*
Package store holds the data a lookup table is built on: the text arena,
the per-item spans and the per-bucket sorted suffix catalogs.

A Backend is produced exactly once by a Builder and is read-only from then
on. Two backends exist with identical observable behavior:

  - resident: everything lives on the Go heap. Fastest, but the whole data
    set has to fit comfortably in physical memory.
  - paged: the arena and the suffix catalogs are laid out in a spill file
    and memory-mapped, so the OS keeps only the hot pages resident. Access
    during binary search is page-local, which keeps degradation graceful
    when the data set exceeds RAM.

The query side never cares which one it got; only latency differs.
*/
package store

// Mode selects how a finished backend keeps its data.
type Mode int

const (
	// ModeResident keeps all structures in heap memory.
	ModeResident Mode = iota
	// ModePaged keeps the arena and catalogs in a memory-mapped spill file.
	ModePaged
)

func (m Mode) String() string {
	switch m {
	case ModeResident:
		return "resident"
	case ModePaged:
		return "paged"
	}
	return "unknown"
}

// SuffixRef points at the suffix of item Item's text that starts at byte
// offset Off and runs to the end of the text. The suffix itself is never
// materialized; comparisons read straight from the arena.
type SuffixRef struct {
	Item uint32
	Off  uint32
}

// Catalog is one bucket's sorted set of suffix references. References are
// ordered by the byte sequence of the suffix they denote, ties broken by
// (item, offset) so a build is deterministic.
type Catalog interface {
	// Bucket returns the bucket id this catalog belongs to.
	Bucket() uint32
	// Len returns the number of suffix references.
	Len() int
	// At returns the i-th reference in sorted order.
	At(i int) SuffixRef
	// Suffix returns the bytes denoted by the i-th reference.
	Suffix(i int) []byte
}

// Backend is the uniform read interface over a finished build.
// Implementations are immutable and safe for concurrent readers.
type Backend interface {
	// Items returns the number of indexed items.
	Items() int
	// Buckets returns all bucket ids in ascending order.
	Buckets() []uint32
	// Catalog returns the suffix catalog for a bucket id.
	Catalog(bucket uint32) (Catalog, bool)
	// Text returns the full text bytes of an item.
	Text(item uint32) []byte
	// BucketOf returns the bucket an item was assigned to.
	BucketOf(item uint32) uint32
	// Mode reports how the backend stores its data.
	Mode() Mode
	// Close releases backing resources. A paged backend unmaps and removes
	// its spill file. Reads after Close are invalid.
	Close() error
}

// span locates one item's text inside the arena.
type span struct {
	off    uint64
	len    uint32
	bucket uint32
}
