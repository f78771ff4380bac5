package lookup

import (
	"sync"

	"github.com/tchap/go-patricia/v2/patricia"
)

// CachedMatch is one materialized result kept by a QueryCache.
type CachedMatch struct {
	Text   string
	Bucket Bucket
}

// QueryCache remembers the first results of recently seen patterns so a
// serving layer can skip the table for repeated queries. Tables are
// immutable, so entries never go stale; only capacity evicts them (LRU).
type QueryCache struct {
	trie        *patricia.Trie
	accessTime  map[string]int64
	accessCount int64
	hits        int64
	misses      int64
	maxEntries  int
	size        int
	mu          sync.Mutex
}

// cacheEntry is what the trie stores per pattern. complete marks a fully
// drained stream; a truncated entry only serves limits it can cover.
type cacheEntry struct {
	matches  []CachedMatch
	complete bool
}

// NewQueryCache returns a cache holding at most maxEntries patterns.
func NewQueryCache(maxEntries int) *QueryCache {
	return &QueryCache{
		trie:       patricia.NewTrie(),
		accessTime: make(map[string]int64, maxEntries),
		maxEntries: maxEntries,
	}
}

// Get returns cached matches for pattern if the entry can satisfy limit:
// either the cached stream was complete, or it holds at least limit
// matches. complete reports whether the returned matches are everything
// the pattern has. The returned slice must not be modified.
func (c *QueryCache) Get(pattern string, limit int) (matches []CachedMatch, complete, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item := c.trie.Get(patricia.Prefix(pattern))
	if item == nil {
		c.misses++
		return nil, false, false
	}
	entry := item.(*cacheEntry)
	if !entry.complete && len(entry.matches) < limit {
		c.misses++
		return nil, false, false
	}

	c.hits++
	c.markAccessed(pattern)
	if len(entry.matches) > limit {
		return entry.matches[:limit], false, true
	}
	return entry.matches, entry.complete, true
}

// Put stores the first matches of a pattern. complete says the stream was
// drained rather than cut off at a limit.
func (c *QueryCache) Put(pattern string, matches []CachedMatch, complete bool) {
	if c.maxEntries <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	prefix := patricia.Prefix(pattern)
	if c.trie.Get(prefix) == nil {
		if c.size >= c.maxEntries {
			c.evictLRU()
		}
		c.size++
	}
	c.trie.Set(prefix, &cacheEntry{matches: matches, complete: complete})
	c.markAccessed(pattern)
}

// Stats reports cache counters for the serving layer's status replies.
func (c *QueryCache) Stats() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return map[string]int{
		"cachedPatterns": c.size,
		"maxPatterns":    c.maxEntries,
		"cacheHits":      int(c.hits),
		"cacheMisses":    int(c.misses),
	}
}

func (c *QueryCache) markAccessed(pattern string) {
	c.accessCount++
	c.accessTime[pattern] = c.accessCount
}

func (c *QueryCache) evictLRU() {
	if len(c.accessTime) == 0 {
		return
	}

	var oldest string
	var oldestTime int64 = 1<<63 - 1
	for pattern, t := range c.accessTime {
		if t < oldestTime {
			oldestTime = t
			oldest = pattern
		}
	}
	c.trie.Delete(patricia.Prefix(oldest))
	delete(c.accessTime, oldest)
	c.size--
}
