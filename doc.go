// Package blocktable implements an open-addressed, block-extensible hash
// table mapping opaque fixed-width byte keys to opaque fixed-width byte
// values, with a configurable memory envelope.
//
// The table grows by appending power-of-two-sized blocks rather than
// reallocating one contiguous array, so inserts never stall on a full-table
// copy until a consolidation (rehash) is worthwhile. It is built for
// aggregation and dedup workloads that feed very large key populations into
// one logical map.
//
// # Basic Usage
//
// Creating a table and inserting:
//
//	tbl, err := blocktable.New(8, 4, blocktable.WithEstimate(1_000_000))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tbl.Close()
//
//	val, inserted, err := tbl.Insert(key)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if inserted {
//	    binary.LittleEndian.PutUint32(val, 1)
//	} else {
//	    binary.LittleEndian.PutUint32(val, binary.LittleEndian.Uint32(val)+1)
//	}
//
// Ordered output:
//
//	if err := tbl.Sort(); err != nil {
//	    log.Fatal(err)
//	}
//	for it := tbl.Iter(); it.Next(); {
//	    fmt.Printf("%x -> %x\n", it.Key(), it.Value())
//	}
//
// # Contract
//
// A slot is empty iff its value region equals the table's sentinel pattern.
// Callers must never write the sentinel into a live value; doing so strands
// keys that collided through that slot. Value slices returned by Insert and
// Lookup alias block memory: they stay valid until the next Insert, which
// may consolidate blocks and leave earlier slices pointing at stale copies.
//
// The table is single-writer. There is no internal locking and no deletion.
//
// # Package Structure
//
//   - Public API: table.go (New, Insert, Lookup, Close), iter.go (Iter),
//     sort.go (Sort, SortFunc)
//   - Configuration: options.go (Option, With* functions)
//   - Growth: sizing.go (memory budget, block capacities), block.go
//   - Observability: stats.go (operation counters), dump.go (debug dump)
//   - Key derivation: prehash.go (PreHash)
//   - Platform: alloc.go, prefault_*.go (large-block memory handling)
package blocktable
