package store

// resident keeps the whole build on the Go heap.
type resident struct {
	arena    []byte
	spans    []span
	order    []uint32
	catalogs map[uint32][]SuffixRef
}

func (r *resident) Items() int {
	return len(r.spans)
}

func (r *resident) Buckets() []uint32 {
	return r.order
}

func (r *resident) Catalog(bucket uint32) (Catalog, bool) {
	refs, ok := r.catalogs[bucket]
	if !ok {
		return nil, false
	}
	return &residentCatalog{store: r, id: bucket, refs: refs}, true
}

func (r *resident) Text(item uint32) []byte {
	s := r.spans[item]
	return r.arena[s.off : s.off+uint64(s.len)]
}

func (r *resident) BucketOf(item uint32) uint32 {
	return r.spans[item].bucket
}

func (r *resident) Mode() Mode {
	return ModeResident
}

func (r *resident) Close() error {
	r.arena = nil
	r.spans = nil
	r.order = nil
	r.catalogs = nil
	return nil
}

type residentCatalog struct {
	store *resident
	id    uint32
	refs  []SuffixRef
}

func (c *residentCatalog) Bucket() uint32 {
	return c.id
}

func (c *residentCatalog) Len() int {
	return len(c.refs)
}

func (c *residentCatalog) At(i int) SuffixRef {
	return c.refs[i]
}

func (c *residentCatalog) Suffix(i int) []byte {
	r := c.refs[i]
	s := c.store.spans[r.Item]
	return c.store.arena[s.off+uint64(r.Off) : s.off+uint64(s.len)]
}
