package store

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/edsrzf/mmap-go"
)

// Spill file layout, all little-endian:
//
//	header    magic [4]byte, version u32, items u32, buckets u32, arenaLen u64
//	items     items x {arenaOff u64, textLen u32, bucket u32}
//	dir       buckets x {id u32, _ u32, refCount u64}
//	arena     arenaLen bytes
//	records   per bucket in dir order, refCount x {item u32, off u32}
//
// The file is private to one build and is removed on Close. The header
// only guards against opening something that is not ours; there is no
// cross-version compatibility promise.
const (
	pagedMagic   = "ISLT"
	pagedVersion = 1

	headerSize = 24
	itemSize   = 16
	dirSize    = 16
	refSize    = 8
)

// paged serves reads from a read-only memory mapping of the spill file.
// The item table and bucket directory are decoded into the heap (they are
// tiny); the arena and the suffix records stay mapped so the OS pages them
// in on demand.
type paged struct {
	f       *os.File
	m       mmap.MMap
	path    string
	spans   []span
	order   []uint32
	regions map[uint32]pagedRegion
	arena   []byte
}

// pagedRegion locates one bucket's records inside the mapping.
type pagedRegion struct {
	off int // byte offset of the first record
	n   int // record count
}

func writePaged(dir string, arena []byte, spans []span, order []uint32, catalogs map[uint32][]SuffixRef) (*paged, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	f, err := os.CreateTemp(dir, "ironstorm-*.idx")
	if err != nil {
		return nil, fmt.Errorf("store: create spill file: %w", err)
	}
	path := f.Name()

	fail := func(err error) (*paged, error) {
		f.Close()
		os.Remove(path)
		return nil, err
	}

	w := bufio.NewWriterSize(f, 1<<20)

	var scratch [headerSize]byte
	copy(scratch[0:4], pagedMagic)
	binary.LittleEndian.PutUint32(scratch[4:8], pagedVersion)
	binary.LittleEndian.PutUint32(scratch[8:12], uint32(len(spans)))
	binary.LittleEndian.PutUint32(scratch[12:16], uint32(len(order)))
	binary.LittleEndian.PutUint64(scratch[16:24], uint64(len(arena)))
	if _, err := w.Write(scratch[:]); err != nil {
		return fail(fmt.Errorf("store: write spill header: %w", err))
	}

	for _, s := range spans {
		binary.LittleEndian.PutUint64(scratch[0:8], s.off)
		binary.LittleEndian.PutUint32(scratch[8:12], s.len)
		binary.LittleEndian.PutUint32(scratch[12:16], s.bucket)
		if _, err := w.Write(scratch[:itemSize]); err != nil {
			return fail(fmt.Errorf("store: write item table: %w", err))
		}
	}

	for _, id := range order {
		binary.LittleEndian.PutUint32(scratch[0:4], id)
		binary.LittleEndian.PutUint32(scratch[4:8], 0)
		binary.LittleEndian.PutUint64(scratch[8:16], uint64(len(catalogs[id])))
		if _, err := w.Write(scratch[:dirSize]); err != nil {
			return fail(fmt.Errorf("store: write bucket directory: %w", err))
		}
	}

	if _, err := w.Write(arena); err != nil {
		return fail(fmt.Errorf("store: write arena: %w", err))
	}

	for _, id := range order {
		for _, r := range catalogs[id] {
			binary.LittleEndian.PutUint32(scratch[0:4], r.Item)
			binary.LittleEndian.PutUint32(scratch[4:8], r.Off)
			if _, err := w.Write(scratch[:refSize]); err != nil {
				return fail(fmt.Errorf("store: write suffix records: %w", err))
			}
		}
	}

	if err := w.Flush(); err != nil {
		return fail(fmt.Errorf("store: flush spill file: %w", err))
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return fail(fmt.Errorf("store: map spill file: %w", err))
	}

	p := &paged{f: f, m: m, path: path}
	if err := p.decode(); err != nil {
		m.Unmap()
		return fail(err)
	}

	log.Debugf("paged backend sealed: %d items, %d buckets, spill file %s (%d bytes)",
		len(p.spans), len(p.order), path, len(m))
	return p, nil
}

// decode reads the header, item table and bucket directory out of the
// mapping and pins the arena and record regions as subslices of it.
func (p *paged) decode() error {
	m := []byte(p.m)
	if len(m) < headerSize || string(m[0:4]) != pagedMagic {
		return fmt.Errorf("store: %s is not a spill file", p.path)
	}
	if v := binary.LittleEndian.Uint32(m[4:8]); v != pagedVersion {
		return fmt.Errorf("store: spill file version %d not supported", v)
	}
	items := int(binary.LittleEndian.Uint32(m[8:12]))
	buckets := int(binary.LittleEndian.Uint32(m[12:16]))
	arenaLen := int(binary.LittleEndian.Uint64(m[16:24]))

	itemsOff := headerSize
	dirOff := itemsOff + items*itemSize
	arenaOff := dirOff + buckets*dirSize
	recordsOff := arenaOff + arenaLen
	if recordsOff > len(m) {
		return fmt.Errorf("store: truncated spill file %s", p.path)
	}

	p.spans = make([]span, items)
	for i := range p.spans {
		b := m[itemsOff+i*itemSize:]
		p.spans[i] = span{
			off:    binary.LittleEndian.Uint64(b[0:8]),
			len:    binary.LittleEndian.Uint32(b[8:12]),
			bucket: binary.LittleEndian.Uint32(b[12:16]),
		}
	}

	p.order = make([]uint32, buckets)
	p.regions = make(map[uint32]pagedRegion, buckets)
	next := recordsOff
	for i := 0; i < buckets; i++ {
		b := m[dirOff+i*dirSize:]
		id := binary.LittleEndian.Uint32(b[0:4])
		n := int(binary.LittleEndian.Uint64(b[8:16]))
		p.order[i] = id
		p.regions[id] = pagedRegion{off: next, n: n}
		next += n * refSize
	}
	if next > len(m) {
		return fmt.Errorf("store: truncated spill file %s", p.path)
	}

	p.arena = m[arenaOff : arenaOff+arenaLen]
	return nil
}

func (p *paged) Items() int {
	return len(p.spans)
}

func (p *paged) Buckets() []uint32 {
	return p.order
}

func (p *paged) Catalog(bucket uint32) (Catalog, bool) {
	region, ok := p.regions[bucket]
	if !ok {
		return nil, false
	}
	return &pagedCatalog{store: p, id: bucket, region: region}, true
}

func (p *paged) Text(item uint32) []byte {
	s := p.spans[item]
	return p.arena[s.off : s.off+uint64(s.len)]
}

func (p *paged) BucketOf(item uint32) uint32 {
	return p.spans[item].bucket
}

func (p *paged) Mode() Mode {
	return ModePaged
}

// Close unmaps and deletes the spill file. Safe to call once.
func (p *paged) Close() error {
	p.spans = nil
	p.order = nil
	p.regions = nil
	p.arena = nil

	var first error
	if p.m != nil {
		if err := p.m.Unmap(); err != nil {
			first = fmt.Errorf("store: unmap spill file: %w", err)
		}
		p.m = nil
	}
	if p.f != nil {
		if err := p.f.Close(); err != nil && first == nil {
			first = fmt.Errorf("store: close spill file: %w", err)
		}
		p.f = nil
		if err := os.Remove(p.path); err != nil && first == nil {
			first = fmt.Errorf("store: remove spill file: %w", err)
		}
	}
	return first
}

type pagedCatalog struct {
	store  *paged
	id     uint32
	region pagedRegion
}

func (c *pagedCatalog) Bucket() uint32 {
	return c.id
}

func (c *pagedCatalog) Len() int {
	return c.region.n
}

func (c *pagedCatalog) At(i int) SuffixRef {
	b := c.store.m[c.region.off+i*refSize:]
	return SuffixRef{
		Item: binary.LittleEndian.Uint32(b[0:4]),
		Off:  binary.LittleEndian.Uint32(b[4:8]),
	}
}

func (c *pagedCatalog) Suffix(i int) []byte {
	r := c.At(i)
	s := c.store.spans[r.Item]
	return c.store.arena[s.off+uint64(r.Off) : s.off+uint64(s.len)]
}
