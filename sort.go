package blocktable

import (
	"bytes"
	"fmt"
	"sort"

	bterrors "github.com/netsieve/blocktable/errors"
)

// Sort orders the table's entries by byte-order comparison of their keys.
// See SortFunc.
func (t *Table) Sort() error {
	return t.SortFunc(bytes.Compare)
}

// SortFunc compacts each block's live entries to its front and sorts each
// block's run in place with cmp, which receives two keys and returns the
// usual negative/zero/positive. Iteration then merges the runs, yielding
// keys in non-decreasing cmp order.
//
// Sorting is one-way: afterwards the table rejects Insert and Lookup, and
// only iteration and Close remain. Calling SortFunc again with a different
// comparator re-sorts the already-compacted runs.
func (t *Table) SortFunc(cmp func(a, b []byte) int) error {
	if t.closed {
		return bterrors.ErrTableClosed
	}
	if cmp == nil {
		return fmt.Errorf("%w: nil comparator", bterrors.ErrBadArgument)
	}

	if !t.sorted {
		t.makeContiguous()
	}
	t.cmp = cmp

	for _, b := range t.blocks {
		sort.Sort(&entrySorter{
			data:     b.data,
			n:        int(b.count),
			entryLen: t.entryLen,
			keyLen:   t.keyLen,
			cmp:      cmp,
			tmp:      make([]byte, t.entryLen),
		})
	}
	t.sorted = true
	return nil
}

// makeContiguous moves every occupied slot to the front of its block,
// writing the sentinel into each vacated slot. Order within the block is
// arbitrary; the per-block sort follows. Compaction turns the sort and the
// merge into O(count) walks instead of O(capacity).
func (t *Table) makeContiguous() {
	for _, b := range t.blocks {
		if b.count == 0 {
			continue
		}

		// j walks forward to empty slots, i walks backward to occupied
		// ones; each occupied i fills the hole at j until they meet.
		var j uint64
		for ; j < b.capacity && !b.emptyAt(j); j++ {
		}
		for i := b.capacity - 1; i > j; i-- {
			if b.emptyAt(i) {
				continue
			}
			copy(b.entryAt(j), b.entryAt(i))
			copy(b.valueAt(i), t.sentinel)
			for j++; j < i && !b.emptyAt(j); j++ {
			}
		}
	}
}

// entrySorter sorts the first n fixed-width entries of a block buffer,
// comparing keys only; values ride along with their entry.
type entrySorter struct {
	data     []byte
	n        int
	entryLen int
	keyLen   int
	cmp      func(a, b []byte) int
	tmp      []byte
}

func (s *entrySorter) Len() int { return s.n }

func (s *entrySorter) Less(i, j int) bool {
	return s.cmp(s.key(i), s.key(j)) < 0
}

func (s *entrySorter) Swap(i, j int) {
	ei := s.entry(i)
	ej := s.entry(j)
	copy(s.tmp, ei)
	copy(ei, ej)
	copy(ej, s.tmp)
}

func (s *entrySorter) entry(i int) []byte {
	off := i * s.entryLen
	return s.data[off : off+s.entryLen]
}

func (s *entrySorter) key(i int) []byte {
	off := i * s.entryLen
	return s.data[off : off+s.keyLen]
}
