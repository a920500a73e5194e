// Package xmath provides the power-of-two arithmetic used to size hash blocks.
package xmath

import "math/bits"

// Log2Floor returns floor(log2(x)). Log2Floor(0) == 0.
func Log2Floor(x uint64) uint {
	if x == 0 {
		return 0
	}
	return uint(bits.Len64(x)) - 1
}

// NextPow2 returns the smallest power of two strictly greater than x.
// NextPow2(0) == 2, matching 1 << (1 + Log2Floor(0)).
func NextPow2(x uint64) uint64 {
	return uint64(1) << (1 + Log2Floor(x))
}

// PrevPow2 returns the largest power of two less than or equal to x,
// or 0 when x is 0.
func PrevPow2(x uint64) uint64 {
	if x == 0 {
		return 0
	}
	return uint64(1) << Log2Floor(x)
}

// IsPow2 reports whether x is a power of two. Zero is not a power of two.
func IsPow2(x uint64) bool {
	return x != 0 && x&(x-1) == 0
}
