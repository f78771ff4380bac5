package lookup

// Bucket is a coarse priority class. Matches from lower buckets are always
// streamed before matches from higher buckets; that is the only ordering
// the table provides. Don't introduce too many buckets per table — the
// degenerate case is one bucket per entry, which buys nothing.
type Bucket uint32

// Searchable must be implemented by every value put into a Table.
// Both methods must be pure and stable: the table calls each exactly once
// per item at build time and trusts the answers for its whole lifetime.
type Searchable interface {
	// SearchableText returns the text the item is findable by. Every
	// substring of it becomes discoverable.
	SearchableText() string

	// Bucket returns the coarse priority class for this item.
	Bucket() Bucket
}
