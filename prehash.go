package blocktable

import (
	"encoding/binary"

	"github.com/zeebo/xxh3"
)

// PreHashLen is the width of keys produced by PreHash.
const PreHashLen = 16

// PreHash applies xxHash3-128 to data, returning a 16-byte key.
//
// The table stores fixed-width keys, so callers with variable-length keys
// (strings, URLs, tuples of mixed width) need a fixed-width digest to index
// on. PreHash provides one with enough bits that collisions are negligible
// for any population the table can hold:
//
//	tbl, _ := blocktable.New(blocktable.PreHashLen, 8)
//	val, _, err := tbl.Insert(blocktable.PreHash([]byte(url)))
//
// Keys that are already fixed-width (addresses, flow tuples, counters) do
// not need PreHash; the table's own hash function handles skewed key
// distributions fine.
func PreHash(data []byte) []byte {
	h := xxh3.Hash128(data)
	key := make([]byte, PreHashLen)
	binary.LittleEndian.PutUint64(key[0:8], h.Lo)
	binary.LittleEndian.PutUint64(key[8:16], h.Hi)
	return key
}

// PreHashInPlace writes the 16-byte digest of data into dst, which must be
// at least PreHashLen bytes. This avoids allocation in insert loops.
func PreHashInPlace(data []byte, dst []byte) {
	h := xxh3.Hash128(data)
	binary.LittleEndian.PutUint64(dst[0:8], h.Lo)
	binary.LittleEndian.PutUint64(dst[8:16], h.Hi)
}
