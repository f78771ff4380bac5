/*
Package lookup implements a build-once substring search table with coarse
bucket ordering and lazy result streams.

The table targets very large, rarely-changing candidate sets of short
texts, street names, movie titles and the like, where the first few
matches must come back in microseconds. It trades memory and storage
footprint for speed: there is no internal concurrency in either build or
query, and a finished table can only be rebuilt, never modified.

# Usage

Implement Searchable for the values to index:

	type Restaurant struct {
		Name    string
		Cuisine string
	}

	func (r Restaurant) SearchableText() string { return r.Name }

	func (r Restaurant) Bucket() lookup.Bucket {
		switch r.Cuisine {
		case "italian", "german":
			return 0
		case "chinese":
			return 1
		}
		return 5
	}

Build a table from any finite sequence and query it:

	table, err := lookup.Build(slices.Values(restaurants))
	if err != nil {
		return err
	}
	defer table.Close()

	it := table.Find("i")
	for it.Next() {
		fmt.Println(it.Value().SearchableText())
	}
	if err := it.Err(); err != nil {
		return err
	}

Matches stream back bucket by bucket, lowest bucket id first. Within a
bucket there is no ordering guarantee. A text containing the pattern at K
offsets is yielded K times; callers wanting distinct items or "top N"
truncate and deduplicate the stream themselves.

Matching is exact and case sensitive, byte for byte. The empty pattern is
a prefix of every suffix and therefore streams every suffix occurrence of
every item.

# Paged tables

BuildWithOptions can place the arena and the suffix catalogs in a
memory-mapped spill file instead of the heap, letting the indexed data set
exceed physical memory. Queries are unchanged; only access latency differs
when the OS has to fault pages in.

A built table is immutable, so any number of goroutines may call Find
concurrently without locking. Close invalidates the table as a whole.
*/
package lookup
