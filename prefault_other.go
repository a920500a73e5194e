//go:build !linux

package blocktable

// prefaultRegion is a no-op on platforms without madvise-based prefaulting.
// Pages fault in lazily during the sentinel fill.
func prefaultRegion(data []byte) {}
