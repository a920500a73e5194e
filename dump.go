package blocktable

import (
	"fmt"
	"io"
)

// Dump writes a human-readable description of the table's structure: widths,
// load factor, sentinel pattern, per-block occupancy, and memory accounting.
// Intended for debugging and capacity tuning.
func (t *Table) Dump(w io.Writer) {
	fmt.Fprintf(w, "Key width:\t%d bytes\n", t.keyLen)
	fmt.Fprintf(w, "Value width:\t%d bytes\n", t.valueLen)
	fmt.Fprintf(w, "Empty value:\t%x\n", t.sentinel)
	fmt.Fprintf(w, "Load factor:\t%d = %2.0f%%\n",
		t.loadFactor, 100*float64(t.loadFactor)/255)
	fmt.Fprintf(w, "Max block entries:\t%d\n", t.maxInitEntries)
	fmt.Fprintf(w, "Sorted:\t%v\n", t.sorted)

	var capBytes, usedBytes uint64
	fmt.Fprintf(w, "Table has %d block(s):\n", len(t.blocks))
	for k, b := range t.blocks {
		capBytes += b.capacity * uint64(t.entryLen)
		usedBytes += b.count * uint64(t.entryLen)
		fmt.Fprintf(w, "  Block #%d: %d/%d (%3.1f%%)\n",
			k, b.count, b.capacity, 100*float64(b.count)/float64(b.capacity))
	}
	fmt.Fprintf(w, "Total data memory:\t%d bytes\n", capBytes)
	fmt.Fprintf(w, "Occupied data memory:\t%d bytes\n", usedBytes)
	fmt.Fprintf(w, "Excess data memory:\t%d bytes\n", capBytes-usedBytes)
}
