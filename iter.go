package blocktable

// Iterator walks every live entry exactly once. On an unsorted table entries
// come out block by block in slot order; after Sort the iterator streams a
// k-way merge across the per-block sorted runs, yielding keys in comparator
// order.
//
// Key and Value return slices aliasing block memory; they are valid until
// the next call to Next. Inserting into the table invalidates the iterator.
type Iterator struct {
	t       *Table
	started bool
	done    bool

	// Unordered walk position; block doubles as the source of the entry
	// most recently yielded by the merge.
	block int
	index uint64

	// Per-block cursors for the merge. After compaction each block's live
	// entries occupy the prefix [0, count).
	heads [MaxBlocks]uint64

	key   []byte
	value []byte
}

// Iter returns a cursor positioned before the first entry. The caller must
// not insert or sort while iterating.
func (t *Table) Iter() *Iterator {
	return &Iterator{t: t}
}

// Next advances to the next live entry, reporting false when the table is
// exhausted (or closed).
func (it *Iterator) Next() bool {
	if it.done || it.t.closed {
		it.key, it.value = nil, nil
		it.done = true
		return false
	}
	if it.t.sorted && len(it.t.blocks) > 1 {
		return it.nextMerge()
	}
	return it.nextScan()
}

// Key returns the current entry's key. Nil before the first Next and after
// the last.
func (it *Iterator) Key() []byte { return it.key }

// Value returns the current entry's value region. The caller may update it
// in place but must never write the sentinel pattern.
func (it *Iterator) Value() []byte { return it.value }

// nextScan finds the next occupied slot, ascending within each block,
// blocks in creation order. A sorted single-block table is handled here
// too: compaction left its run at the front and the tail all-sentinel.
func (it *Iterator) nextScan() bool {
	if !it.started {
		it.started = true
	} else {
		it.index++
	}

	for it.block < len(it.t.blocks) {
		b := it.t.blocks[it.block]
		for ; it.index < b.capacity; it.index++ {
			if !b.emptyAt(it.index) {
				it.key = b.keyAt(it.index)
				it.value = b.valueAt(it.index)
				return true
			}
		}
		it.block++
		it.index = 0
	}

	it.key, it.value = nil, nil
	it.done = true
	return false
}

// nextMerge yields the smallest front-of-block entry under the table's
// comparator, advancing only the block it drew from last time.
func (it *Iterator) nextMerge() bool {
	if !it.started {
		it.started = true
	} else {
		it.heads[it.block]++
	}

	lowest := -1
	for k, b := range it.t.blocks {
		if it.heads[k] >= b.count {
			continue
		}
		if lowest < 0 || it.t.cmp(b.keyAt(it.heads[k]), it.t.blocks[lowest].keyAt(it.heads[lowest])) < 0 {
			lowest = k
		}
	}
	if lowest < 0 {
		it.key, it.value = nil, nil
		it.done = true
		return false
	}

	it.block = lowest
	b := it.t.blocks[lowest]
	it.key = b.keyAt(it.heads[lowest])
	it.value = b.valueAt(it.heads[lowest])
	return true
}
