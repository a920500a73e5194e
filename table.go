package blocktable

import (
	"errors"
	"fmt"

	bterrors "github.com/netsieve/blocktable/errors"
	"github.com/netsieve/blocktable/internal/xmath"
)

// maxWidth bounds key and value widths; both must fit the table's
// fixed-width entry layout.
const maxWidth = 255

// Table is an open-addressed hash table over fixed-width byte keys and
// values. It grows by appending up to MaxBlocks power-of-two-sized blocks
// and consolidates them into one block when lookups start paying for the
// extra probes.
//
// A Table is not safe for concurrent use; the caller serializes access.
type Table struct {
	keyLen   int
	valueLen int
	entryLen int

	loadFactor uint8
	sentinel   []byte
	// memsetOK means the sentinel is a single repeated byte, so new block
	// memory can be initialized with one fill.
	memsetOK bool

	cfg            config
	maxInitEntries uint64

	// blocks[0] is the primary hash space and always the largest block.
	blocks []*block

	sorted       bool
	rehashFailed bool
	closed       bool

	cmp   func(a, b []byte) int
	stats Stats
}

// New creates a table mapping keyLen-byte keys to valueLen-byte values.
// Both widths must be in 1..255. See the Option functions for the estimate,
// load factor, sentinel pattern, and memory budget.
func New(keyLen, valueLen int, opts ...Option) (*Table, error) {
	if keyLen < 1 || keyLen > maxWidth || valueLen < 1 || valueLen > maxWidth {
		return nil, fmt.Errorf("%w: key width %d, value width %d", bterrors.ErrBadArgument, keyLen, valueLen)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.loadFactor == 0 {
		return nil, fmt.Errorf("%w: load factor 0", bterrors.ErrBadArgument)
	}
	if cfg.sentinel != nil && len(cfg.sentinel) != valueLen {
		return nil, fmt.Errorf("%w: sentinel is %d bytes, want %d", bterrors.ErrBadArgument, len(cfg.sentinel), valueLen)
	}
	if cfg.rehashBlockCount < 2 || cfg.rehashBlockCount >= MaxBlocks {
		return nil, fmt.Errorf("%w: rehash block count %d", bterrors.ErrBadArgument, cfg.rehashBlockCount)
	}
	if cfg.secondaryFraction < -4 {
		return nil, fmt.Errorf("%w: secondary fraction %d", bterrors.ErrBadArgument, cfg.secondaryFraction)
	}

	t := &Table{
		keyLen:     keyLen,
		valueLen:   valueLen,
		entryLen:   keyLen + valueLen,
		loadFactor: cfg.loadFactor,
		cfg:        *cfg,
	}

	if cfg.sentinel == nil {
		t.sentinel = make([]byte, valueLen)
		t.memsetOK = true
	} else {
		t.sentinel = cfg.sentinel
		t.memsetOK = true
		for _, c := range t.sentinel {
			if c != t.sentinel[0] {
				t.memsetOK = false
				break
			}
		}
	}

	maxMemory := resolveMaxMemory(&t.cfg)
	t.maxInitEntries = computeMaxInitEntries(maxMemory, t.entryLen,
		t.cfg.secondaryFraction, t.cfg.rehashBlockCount)

	// Allocate the primary block, halving on allocation failure until the
	// minimum capacity would be breached.
	entries := initialEntries(t.cfg.estimate, t.loadFactor, t.maxInitEntries)
	for {
		b, err := t.newBlock(entries)
		if err == nil {
			t.blocks = append(t.blocks, b)
			return t, nil
		}
		if entries <= MinBlockEntries {
			return nil, err
		}
		entries >>= 1
	}
}

// Close releases every block. Mapped blocks are unmapped eagerly; all other
// operations on a closed table fail with ErrTableClosed.
func (t *Table) Close() error {
	if t.closed {
		return nil
	}
	for _, b := range t.blocks {
		b.free()
	}
	t.blocks = nil
	t.closed = true
	return nil
}

// Insert looks up key, adding it if absent. The returned slice aliases the
// entry's value region: for a new key it still holds the sentinel and the
// caller must overwrite it with a non-sentinel value; for a duplicate it
// holds the current value and inserted is false.
//
// Any Insert may consolidate blocks, so value slices returned by earlier
// calls must not be used afterwards.
func (t *Table) Insert(key []byte) (value []byte, inserted bool, err error) {
	switch {
	case t.closed:
		return nil, false, bterrors.ErrTableClosed
	case t.sorted:
		return nil, false, bterrors.ErrSorted
	case len(key) != t.keyLen:
		return nil, false, fmt.Errorf("%w: key is %d bytes, want %d", bterrors.ErrBadArgument, len(key), t.keyLen)
	}
	t.stats.Inserts++

	// Grow first so that a miss on the newest block always ends the probe
	// at a usable empty slot.
	if t.blocks[len(t.blocks)-1].isFull() {
		if err := t.resize(); err != nil {
			return nil, false, err
		}
	}

	var (
		last *block
		slot uint64
	)
	for _, b := range t.blocks {
		idx, found := b.find(key)
		if found {
			return b.valueAt(idx), false, nil
		}
		last, slot = b, idx
	}

	// Not present anywhere; the final probe left slot pointing at an empty
	// slot in the newest block.
	last.insertAt(slot, key)
	return last.valueAt(slot), true, nil
}

// Lookup returns the value region for key, or ErrNotFound. The slice aliases
// block memory, so the caller may update the value in place; it must not
// write the sentinel pattern, and it must not hold the slice across an
// Insert.
func (t *Table) Lookup(key []byte) ([]byte, error) {
	switch {
	case t.closed:
		return nil, bterrors.ErrTableClosed
	case t.sorted:
		return nil, bterrors.ErrSorted
	case len(key) != t.keyLen:
		return nil, fmt.Errorf("%w: key is %d bytes, want %d", bterrors.ErrBadArgument, len(key), t.keyLen)
	}
	t.stats.Lookups++

	for _, b := range t.blocks {
		if idx, found := b.find(key); found {
			return b.valueAt(idx), nil
		}
	}
	return nil, bterrors.ErrNotFound
}

// Len returns the number of live entries.
func (t *Table) Len() uint64 {
	var n uint64
	for _, b := range t.blocks {
		n += b.count
	}
	return n
}

// Buckets returns the total slot capacity across all blocks.
func (t *Table) Buckets() uint64 {
	var n uint64
	for _, b := range t.blocks {
		n += b.capacity
	}
	return n
}

// KeyLen returns the table's key width in bytes.
func (t *Table) KeyLen() int { return t.keyLen }

// ValueLen returns the table's value width in bytes.
func (t *Table) ValueLen() int { return t.valueLen }

// resize grows the table after the newest block fills:
//
//  1. With MaxBlocks blocks there is nowhere to grow: ErrNoMoreBlocks.
//  2. If the primary block is at the memory cap, or a rehash has failed
//     before, append; consolidation can never help such a table again.
//  3. At the rehash block count, or when the next block would fall below
//     the minimum capacity, consolidate; if that runs out of memory, mark
//     the table and fall through to appending a minimum-size block.
//  4. Otherwise append a block sized by the secondary fraction.
func (t *Table) resize() error {
	entries := t.nextBlockEntries()

	if len(t.blocks) == MaxBlocks {
		return bterrors.ErrNoMoreBlocks
	}
	if t.blocks[0].capacity == t.maxInitEntries || t.rehashFailed {
		return t.addBlock(clampMin(entries))
	}
	if entries < MinBlockEntries || len(t.blocks) >= t.cfg.rehashBlockCount {
		err := t.rehash()
		if !errors.Is(err, bterrors.ErrOutOfMemory) {
			return err
		}
		t.rehashFailed = true
	}
	return t.addBlock(clampMin(entries))
}

func clampMin(entries uint64) uint64 {
	if entries < MinBlockEntries {
		return MinBlockEntries
	}
	return entries
}

func (t *Table) addBlock(entries uint64) error {
	b, err := t.newBlock(entries)
	if err != nil {
		return err
	}
	t.blocks = append(t.blocks, b)
	return nil
}

// rehash consolidates every live entry into a single new block.
//
// The new capacity is the next power of two above the sum of current block
// capacities, doubled once more while that stays clearly inside the cap; by
// the time appending blocks has stopped paying off, the table has earned an
// order-of-magnitude larger primary space. Blocks are drained newest first
// so that if a caller ever managed to shadow a key across blocks, the
// oldest (authoritative) copy lands last and wins.
//
// On ErrOutOfMemory the table is unchanged.
func (t *Table) rehash() error {
	if t.sorted {
		return bterrors.ErrSorted
	}
	t.stats.Rehashes++

	var sum uint64
	for _, b := range t.blocks {
		sum += b.capacity
	}
	if sum >= t.maxInitEntries {
		return fmt.Errorf("%w: %d slots exceed the per-block cap %d", bterrors.ErrOutOfMemory, sum, t.maxInitEntries)
	}

	entries := clampMin(xmath.NextPow2(sum))
	if t.maxInitEntries>>1 > entries && entries < 1<<28 {
		entries <<= 1
	}
	if entries > t.maxInitEntries {
		return fmt.Errorf("%w: rehash block of %d slots exceeds the per-block cap %d", bterrors.ErrOutOfMemory, entries, t.maxInitEntries)
	}

	nb, err := t.newBlock(entries)
	if err != nil {
		return err
	}

	for k := len(t.blocks) - 1; k >= 0; k-- {
		b := t.blocks[k]
		for i := uint64(0); i < b.capacity; i++ {
			if b.emptyAt(i) {
				continue
			}
			if err := nb.reinsert(b.keyAt(i), b.valueAt(i)); err != nil {
				// The source table broke collision resolution; keep the
				// blocks not yet drained and surface the violation.
				nb.free()
				t.blocks = t.blocks[:k+1]
				return err
			}
		}
		b.free()
		t.blocks[k] = nil
	}
	t.blocks = t.blocks[:0]
	t.blocks = append(t.blocks, nb)
	return nil
}

// nonEmptyCount recounts occupied slots the slow way, independently of the
// per-block counters. Used by tests to audit the sentinel invariant.
func (t *Table) nonEmptyCount() uint64 {
	var n uint64
	for _, b := range t.blocks {
		for i := uint64(0); i < b.capacity; i++ {
			if !b.emptyAt(i) {
				n++
			}
		}
	}
	return n
}
