package blocktable

// Stats accumulates operation counters over a table's lifetime. Counting is
// always on; the counters are a handful of increments on paths that already
// touch the block memory.
type Stats struct {
	// Inserts and Lookups count calls that passed argument validation,
	// including duplicate inserts and missed lookups.
	Inserts uint64
	Lookups uint64

	// Finds counts block probes; one Insert or Lookup issues a probe per
	// block visited. Collisions counts probes that did not settle on their
	// first slot, and CollisionHops the total extra slots visited.
	Finds         uint64
	Collisions    uint64
	CollisionHops uint64

	// Rehashes counts consolidation attempts; RehashInserts the entries
	// copied by them.
	Rehashes      uint64
	RehashInserts uint64

	// BlocksAllocated counts every block ever created, including rehash
	// targets and blocks retired afterwards.
	BlocksAllocated uint32
}

// Stats returns a snapshot of the table's counters.
func (t *Table) Stats() Stats {
	return t.stats
}
