// Package jenkins implements Bob Jenkins' lookup3 hash in the two-output
// form: one pass over the key yields two 32-bit results whose concatenation
// is used as a 64-bit hash. The function is keyed by two 32-bit seeds and is
// not cryptographic.
package jenkins

import (
	"encoding/binary"
	"math/bits"
)

// initConst is lookup3's internal initializer ("golden ratio" bits). It is
// arbitrary beyond being non-zero, which keeps an all-zero key from hashing
// to zero under zero seeds.
const initConst = 0xdeadbeef

const chunk = 12

// HashPair hashes key with the two seeds and returns the pair (pc, pb).
// The mix is byte-order dependent; HashPair picks the variant matching the
// host so that results are consistent within one process.
func HashPair(key []byte, pc, pb uint32) (uint32, uint32) {
	if hostBigEndian {
		return HashBig2(key, pc, pb)
	}
	return HashLittle2(key, pc, pb)
}

var hostBigEndian = binary.NativeEndian.Uint16([]byte{0x01, 0x02}) == 0x0102

// HashLittle2 is the little-endian variant. Words are consumed as
// little-endian uint32s, 12 bytes per mixing round.
func HashLittle2(key []byte, pc, pb uint32) (uint32, uint32) {
	a := initConst + uint32(len(key)) + pc
	b := a
	c := a + pb

	for len(key) > chunk {
		a += binary.LittleEndian.Uint32(key[0:4])
		b += binary.LittleEndian.Uint32(key[4:8])
		c += binary.LittleEndian.Uint32(key[8:12])
		a, b, c = mix(a, b, c)
		key = key[chunk:]
	}

	if len(key) == 0 {
		// lookup3 skips the final scramble for an empty tail.
		return c, b
	}
	for i := len(key) - 1; i >= 0; i-- {
		switch {
		case i >= 8:
			c += uint32(key[i]) << (8 * (i - 8))
		case i >= 4:
			b += uint32(key[i]) << (8 * (i - 4))
		default:
			a += uint32(key[i]) << (8 * i)
		}
	}
	a, b, c = final(a, b, c)
	return c, b
}

// HashBig2 is the big-endian variant: full words are consumed as big-endian
// uint32s and tail bytes fill each word from its high octet down.
func HashBig2(key []byte, pc, pb uint32) (uint32, uint32) {
	a := initConst + uint32(len(key)) + pc
	b := a
	c := a + pb

	for len(key) > chunk {
		a += binary.BigEndian.Uint32(key[0:4])
		b += binary.BigEndian.Uint32(key[4:8])
		c += binary.BigEndian.Uint32(key[8:12])
		a, b, c = mix(a, b, c)
		key = key[chunk:]
	}

	if len(key) == 0 {
		return c, b
	}
	for i := len(key) - 1; i >= 0; i-- {
		switch {
		case i >= 8:
			c += uint32(key[i]) << (8 * (11 - i))
		case i >= 4:
			b += uint32(key[i]) << (8 * (7 - i))
		default:
			a += uint32(key[i]) << (8 * (3 - i))
		}
	}
	a, b, c = final(a, b, c)
	return c, b
}

// mix is lookup3's reversible three-word mixing round.
func mix(a, b, c uint32) (uint32, uint32, uint32) {
	a -= c
	a ^= bits.RotateLeft32(c, 4)
	c += b
	b -= a
	b ^= bits.RotateLeft32(a, 6)
	a += c
	c -= b
	c ^= bits.RotateLeft32(b, 8)
	b += a
	a -= c
	a ^= bits.RotateLeft32(c, 16)
	c += b
	b -= a
	b ^= bits.RotateLeft32(a, 19)
	a += c
	c -= b
	c ^= bits.RotateLeft32(b, 4)
	b += a
	return a, b, c
}

// final scrambles the last accumulated words into c and b.
func final(a, b, c uint32) (uint32, uint32, uint32) {
	c ^= b
	c -= bits.RotateLeft32(b, 14)
	a ^= c
	a -= bits.RotateLeft32(c, 11)
	b ^= a
	b -= bits.RotateLeft32(a, 25)
	c ^= b
	c -= bits.RotateLeft32(b, 16)
	a ^= c
	a -= bits.RotateLeft32(c, 4)
	b ^= a
	b -= bits.RotateLeft32(a, 14)
	c ^= b
	c -= bits.RotateLeft32(b, 24)
	return a, b, c
}
