package blocktable

import (
	"fmt"
	"math"

	"github.com/edsrzf/mmap-go"

	bterrors "github.com/netsieve/blocktable/errors"
)

// mmapThreshold is the block size, in bytes, at or above which block memory
// comes from an anonymous mapping instead of the Go heap. Mapped blocks are
// returned to the OS the moment a rehash retires them rather than waiting on
// the garbage collector, and a failed mapping surfaces as an error instead
// of aborting the process.
const mmapThreshold = 1 << 21

// Allocator supplies backing memory for hash blocks.
//
// Alloc returns a zeroed buffer of exactly size bytes and a release function
// that frees it; release may be nil when the buffer is garbage collected.
// Allocation failure is reported as an error, never a panic.
type Allocator interface {
	Alloc(size uint64) (buf []byte, release func(), err error)
}

// defaultAllocator uses the Go heap for small blocks and anonymous memory
// mappings for large ones.
type defaultAllocator struct{}

func (defaultAllocator) Alloc(size uint64) ([]byte, func(), error) {
	if size > math.MaxInt {
		return nil, nil, fmt.Errorf("%w: block of %d bytes exceeds address space", bterrors.ErrOutOfMemory, size)
	}
	if size < mmapThreshold {
		return make([]byte, size), nil, nil
	}
	m, err := mmap.MapRegion(nil, int(size), mmap.RDWR, mmap.ANON, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: anonymous mapping of %d bytes: %v", bterrors.ErrOutOfMemory, size, err)
	}
	prefaultRegion(m)
	release := func() { _ = m.Unmap() }
	return m, release, nil
}
