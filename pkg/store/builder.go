package store

import (
	"bytes"
	"fmt"
	"math"
	"sort"

	"github.com/charmbracelet/log"
)

// Builder accumulates item texts in a single arena and generates one suffix
// reference per byte offset of every text. Finish sorts the per-bucket
// catalogs and seals the result into a Backend; the Builder must not be
// used afterwards.
//
// The build runs on the caller's goroutine only. Sorting dominates the
// cost, roughly O(S log S) per bucket for S suffix references.
type Builder struct {
	arena    []byte
	spans    []span
	catalogs map[uint32][]SuffixRef
	finished bool
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		catalogs: make(map[uint32][]SuffixRef),
	}
}

// Add copies text into the arena, assigns the item the next internal index
// and generates its suffix references. The empty text is legal and simply
// contributes no suffixes.
func (b *Builder) Add(text string, bucket uint32) (uint32, error) {
	if b.finished {
		return 0, fmt.Errorf("store: builder already finished")
	}
	if uint64(len(b.spans)) >= math.MaxUint32 {
		return 0, fmt.Errorf("store: item count exceeds %d", math.MaxUint32)
	}
	if uint64(len(text)) > math.MaxUint32 {
		return 0, fmt.Errorf("store: item text of %d bytes exceeds limit", len(text))
	}

	item := uint32(len(b.spans))
	b.spans = append(b.spans, span{
		off:    uint64(len(b.arena)),
		len:    uint32(len(text)),
		bucket: bucket,
	})
	b.arena = append(b.arena, text...)

	refs := b.catalogs[bucket]
	for off := 0; off < len(text); off++ {
		refs = append(refs, SuffixRef{Item: item, Off: uint32(off)})
	}
	b.catalogs[bucket] = refs
	return item, nil
}

// Items returns the number of items added so far.
func (b *Builder) Items() int {
	return len(b.spans)
}

func (b *Builder) suffix(r SuffixRef) []byte {
	s := b.spans[r.Item]
	return b.arena[s.off+uint64(r.Off) : s.off+uint64(s.len)]
}

// sortCatalogs orders every bucket's references by suffix bytes, ties by
// (item, offset), and returns the ascending bucket id order.
func (b *Builder) sortCatalogs() []uint32 {
	order := make([]uint32, 0, len(b.catalogs))
	for id := range b.catalogs {
		order = append(order, id)
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	for _, id := range order {
		refs := b.catalogs[id]
		sort.Slice(refs, func(i, j int) bool {
			c := bytes.Compare(b.suffix(refs[i]), b.suffix(refs[j]))
			if c != 0 {
				return c < 0
			}
			if refs[i].Item != refs[j].Item {
				return refs[i].Item < refs[j].Item
			}
			return refs[i].Off < refs[j].Off
		})
		log.Debugf("sorted catalog for bucket %d: %d suffixes", id, len(refs))
	}
	return order
}

// Finish seals the builder into a resident Backend.
func (b *Builder) Finish() (Backend, error) {
	if b.finished {
		return nil, fmt.Errorf("store: builder already finished")
	}
	order := b.sortCatalogs()
	b.finished = true

	log.Debugf("resident backend sealed: %d items, %d buckets, %d arena bytes",
		len(b.spans), len(order), len(b.arena))

	return &resident{
		arena:    b.arena,
		spans:    b.spans,
		order:    order,
		catalogs: b.catalogs,
	}, nil
}

// FinishPaged seals the builder into a paged Backend backed by a spill
// file under dir (the OS temp dir when dir is empty). On any write error
// the file is removed and no backend is returned.
func (b *Builder) FinishPaged(dir string) (Backend, error) {
	if b.finished {
		return nil, fmt.Errorf("store: builder already finished")
	}
	order := b.sortCatalogs()
	b.finished = true

	p, err := writePaged(dir, b.arena, b.spans, order, b.catalogs)
	if err != nil {
		return nil, err
	}

	// Drop the heap copies so only the mapping holds the data.
	b.arena = nil
	b.catalogs = nil
	b.spans = nil
	return p, nil
}
