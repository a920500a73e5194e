package blocktable

import (
	"bytes"
	"fmt"

	bterrors "github.com/netsieve/blocktable/errors"
	"github.com/netsieve/blocktable/internal/jenkins"
	"github.com/netsieve/blocktable/internal/xmath"
)

// Seeds for the hash function. Arbitrary non-zero constants so that an
// all-zero key does not hash to zero.
const (
	hashSeedPrimary   = 0x9e3779b9
	hashSeedSecondary = 0x85ebca6b
)

// block is one power-of-two-sized open-addressed array of entries. An entry
// is keyLen+valueLen contiguous bytes, key first. A block never reallocates,
// shrinks, or moves; it is retired wholesale by rehash or Close.
type block struct {
	t       *Table
	data    []byte
	release func() // frees data, nil for heap-backed blocks

	// capacity is a power of two, so hash-to-index is a bitmask.
	capacity uint64
	count    uint64
	// full is capacity * loadFactor / 256; at this count the block stops
	// accepting inserts and the table grows.
	full uint64
}

// newBlock allocates a block of entries slots (entries must be a power of
// two) with every value region set to the sentinel.
func (t *Table) newBlock(entries uint64) (*block, error) {
	if !xmath.IsPow2(entries) {
		panic(fmt.Sprintf("blocktable: block capacity %d is not a power of two", entries))
	}
	size := entries * uint64(t.entryLen)
	buf, release, err := t.cfg.alloc.Alloc(size)
	if err != nil {
		return nil, err
	}
	t.stats.BlocksAllocated++

	b := &block{
		t:        t,
		data:     buf,
		release:  release,
		capacity: entries,
		full:     uint64(t.loadFactor) * (entries >> 8),
	}

	// Fresh memory is already zero, so only a non-zero sentinel needs
	// writing. Keys in empty slots are never read; a repeated-byte sentinel
	// is filled across the whole buffer, anything else slot by slot.
	switch {
	case t.memsetOK && t.sentinel[0] == 0:
	case t.memsetOK:
		fill := t.sentinel[0]
		for i := range buf {
			buf[i] = fill
		}
	default:
		for i := uint64(0); i < entries; i++ {
			copy(b.valueAt(i), t.sentinel)
		}
	}
	return b, nil
}

func (b *block) free() {
	if b.release != nil {
		b.release()
	}
	b.data = nil
}

func (b *block) entryAt(i uint64) []byte {
	off := i * uint64(b.t.entryLen)
	return b.data[off : off+uint64(b.t.entryLen)]
}

func (b *block) keyAt(i uint64) []byte {
	off := i * uint64(b.t.entryLen)
	return b.data[off : off+uint64(b.t.keyLen)]
}

func (b *block) valueAt(i uint64) []byte {
	off := i*uint64(b.t.entryLen) + uint64(b.t.keyLen)
	return b.data[off : off+uint64(b.t.valueLen)]
}

func (b *block) emptyAt(i uint64) bool {
	return bytes.Equal(b.valueAt(i), b.t.sentinel)
}

func (b *block) isFull() bool {
	return b.count >= b.full
}

// find probes for key and returns the slot index that ended the probe.
// When found is true the slot holds key; otherwise the slot is empty and is
// where key would be inserted.
//
// The probe starts at hash64 & (capacity-1) and advances by hash64|1 each
// collision. The step is odd, hence coprime with the power-of-two capacity,
// so the sequence visits every slot before repeating; the load factor keeps
// count below capacity, so an empty slot is always reached.
func (b *block) find(key []byte) (slot uint64, found bool) {
	b.t.stats.Finds++

	pc, pb := jenkins.HashPair(key, hashSeedPrimary, hashSeedSecondary)
	hash64 := uint64(pc) | uint64(pb)<<32
	step := hash64 | 1

	var tries uint64
	for {
		i := hash64 & (b.capacity - 1)
		if b.emptyAt(i) {
			return i, false
		}
		if bytes.Equal(b.keyAt(i), key) {
			return i, true
		}
		hash64 += step
		if tries == 0 {
			b.t.stats.Collisions++
		}
		b.t.stats.CollisionHops++
		tries++
		if tries >= b.capacity {
			// Unreachable unless a caller stored the sentinel into a live
			// value and broke collision resolution.
			panic("blocktable: probe visited every slot without terminating")
		}
	}
}

// insertAt writes key into an empty slot returned by find and counts the
// entry. The value region is left as the sentinel; the caller writes the
// value through the slice it holds.
func (b *block) insertAt(slot uint64, key []byte) {
	copy(b.keyAt(slot), key)
	b.count++
}

// reinsert copies a live entry into this block during rehash. Finding the
// key already present means the source table's invariants were broken.
func (b *block) reinsert(key, value []byte) error {
	slot, found := b.find(key)
	if found {
		return fmt.Errorf("%w: duplicate key during rehash", bterrors.ErrInternal)
	}
	copy(b.keyAt(slot), key)
	copy(b.valueAt(slot), value)
	b.count++
	b.t.stats.RehashInserts++
	return nil
}
