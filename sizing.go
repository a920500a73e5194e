package blocktable

import (
	"math"
	"os"

	"github.com/netsieve/blocktable/internal/memsize"
	"github.com/netsieve/blocktable/internal/xmath"
)

// maxMemoryBlock caps any single block's byte footprint at one eighth of the
// address space. The default whole-table budget is three times that, which
// matches the worst case of the default secondary fraction (-3): one full
// block, one half, and six quarters.
const (
	maxMemoryBlock   = uint64(math.MaxUint >> 3)
	maxMemoryDefault = 3 * maxMemoryBlock
)

// shareBasis is the nominal size of the primary block used by the share
// computation; the ratio total/basis is what matters, the absolute value
// only needs enough low bits for the halving shifts.
const shareBasis = uint64(1) << 16

// resolveMaxMemory returns the table's memory budget: the WithMaxMemory
// option when given, else the HASH_MAXMEM environment variable, else the
// default. An unparsable environment value is reported through the
// configured log function and ignored.
func resolveMaxMemory(cfg *config) uint64 {
	if cfg.maxMemory != 0 {
		return cfg.maxMemory
	}
	env := os.Getenv(EnvMaxMemory)
	if env == "" {
		return maxMemoryDefault
	}
	m, err := memsize.Parse(env)
	if err != nil || m == 0 {
		cfg.logf("blocktable: ignoring invalid %s value %q", EnvMaxMemory, env)
		return maxMemoryDefault
	}
	return m
}

// totalShares computes the whole-table footprint, in units of shareBasis,
// implied by the secondary-fraction mode: the primary block counts as one
// basis and each of the MaxBlocks-1 secondary blocks as its configured
// fraction.
//
// For the halving modes, summing basis/2 + basis/4 + ... N times is
// basis*2 - (basis >> (N-1)); blocks at and beyond the rehash block count
// repeat the previous block's size.
func totalShares(frac, rehashCount int) uint64 {
	basis := shareBasis
	switch {
	case frac == -1:
		return basis*2 + (basis>>(rehashCount-1))*uint64(MaxBlocks-rehashCount-1)
	case frac == -2:
		return basis + basis>>1 -
			(basis>>2)>>(rehashCount-2) +
			(basis>>rehashCount)>>(MaxBlocks-rehashCount)
	case frac == -3:
		return basis + basis>>1 + (basis>>2)*(MaxBlocks-2)
	case frac == -4:
		return basis + basis>>2 + (basis>>3)*(MaxBlocks-2)
	case frac == 0:
		return basis * MaxBlocks
	default:
		return basis + (basis>>frac)*(MaxBlocks-1)
	}
}

// computeMaxInitEntries converts the memory budget into the capacity cap for
// any single block: the budget buys total/basis times the primary block, so
// the primary block may hold budget * basis / (total * entryLen) entries,
// rounded down to a power of two and floored at MinBlockEntries.
func computeMaxInitEntries(maxMemory uint64, entryLen int, frac, rehashCount int) uint64 {
	total := totalShares(frac, rehashCount)
	maxEntries := uint64(float64(maxMemory) / float64(total) *
		float64(shareBasis) / float64(entryLen))
	n := xmath.PrevPow2(maxEntries)
	if n < MinBlockEntries {
		return MinBlockEntries
	}
	return n
}

// initialEntries sizes the primary block from the caller's estimate: scale
// the estimate up by the inverse load factor, take the next power of two,
// and clamp into [MinBlockEntries, maxInitEntries].
func initialEntries(estimate uint64, loadFactor uint8, maxInit uint64) uint64 {
	n := xmath.NextPow2((estimate << 8) / uint64(loadFactor))
	if n < MinBlockEntries {
		return MinBlockEntries
	}
	if n > maxInit {
		return maxInit
	}
	return n
}

// nextBlockEntries chooses the capacity of the block a resize would append.
// The result is not clamped: a value below MinBlockEntries tells resize that
// appending is no longer worthwhile and consolidation should run instead.
func (t *Table) nextBlockEntries() uint64 {
	// Only true once the primary block has reached the maximum block size:
	// every further block repeats the previous block's size.
	if len(t.blocks) >= t.cfg.rehashBlockCount {
		return t.blocks[len(t.blocks)-1].capacity
	}
	var entries uint64
	switch {
	case t.cfg.secondaryFraction == -1:
		// Keep halving.
		entries = t.blocks[len(t.blocks)-1].capacity >> 1
	case t.cfg.secondaryFraction == -2:
		if len(t.blocks) == 1 {
			entries = t.blocks[0].capacity >> 2
		} else {
			entries = t.blocks[len(t.blocks)-1].capacity >> 1
		}
	case t.cfg.secondaryFraction == -3:
		if len(t.blocks) == 1 {
			entries = t.blocks[0].capacity >> 1
		} else {
			entries = t.blocks[0].capacity >> 2
		}
	case t.cfg.secondaryFraction == -4:
		if len(t.blocks) == 1 {
			entries = t.blocks[0].capacity >> 2
		} else {
			entries = t.blocks[0].capacity >> 3
		}
	case t.cfg.secondaryFraction == 0:
		entries = t.blocks[0].capacity
	default:
		entries = t.blocks[0].capacity >> t.cfg.secondaryFraction
	}
	return entries
}
