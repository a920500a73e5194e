package blocktable

import "log"

const (
	// MaxBlocks is the most blocks a table will ever hold. Once the primary
	// block reaches its maximum capacity, growth appends blocks until this
	// bound and then fails with ErrNoMoreBlocks.
	MaxBlocks = 8

	// MinBlockEntries is the smallest capacity of any block.
	MinBlockEntries = 256

	// DefaultLoadFactor is the fullness threshold used when no
	// WithLoadFactor option is given. Load factors map 1..255 onto
	// (0, ~1.0); 185 is roughly 72% full.
	DefaultLoadFactor = 185

	// EnvMaxMemory names the environment variable that overrides the
	// per-table memory budget. The value is a human-readable byte count
	// such as "256m" or "1g". Invalid values are logged and ignored.
	EnvMaxMemory = "HASH_MAXMEM"

	defaultRehashBlockCount = 4
	defaultSecondary        = -3
)

// Option is a functional option for configuring a table at creation.
type Option func(*config)

type config struct {
	estimate          uint64
	loadFactor        uint8
	sentinel          []byte
	maxMemory         uint64 // 0 means default/environment
	secondaryFraction int
	rehashBlockCount  int
	alloc             Allocator
	logf              func(format string, args ...any)
}

func defaultConfig() *config {
	return &config{
		estimate:          MinBlockEntries,
		loadFactor:        DefaultLoadFactor,
		secondaryFraction: defaultSecondary,
		rehashBlockCount:  defaultRehashBlockCount,
		alloc:             defaultAllocator{},
		logf:              log.Printf,
	}
}

// WithEstimate sets the expected number of distinct keys. The first block is
// sized so that the estimate fits within the load factor in one allocation.
func WithEstimate(n uint64) Option {
	return func(c *config) {
		c.estimate = n
	}
}

// WithLoadFactor sets the fullness threshold at which a block is declared
// full, as a fraction of 255. Zero is rejected by New.
func WithLoadFactor(f uint8) Option {
	return func(c *config) {
		c.loadFactor = f
	}
}

// WithSentinel sets the value-region byte pattern that marks a slot as
// empty. The pattern must be valueLen bytes and is copied. The default is
// all zero. Callers must never store the sentinel pattern as a live value.
func WithSentinel(pattern []byte) Option {
	return func(c *config) {
		c.sentinel = append([]byte(nil), pattern...)
	}
}

// WithMaxMemory sets the table's memory budget in bytes, overriding both the
// default and the HASH_MAXMEM environment variable.
func WithMaxMemory(bytes uint64) Option {
	return func(c *config) {
		c.maxMemory = bytes
	}
}

// WithSecondaryFraction controls the sizing of blocks after the first:
//
//	 0   every secondary block equals the main block
//	 k>0 every secondary block is main >> k
//	-1   halve each successive block until the rehash block count
//	-2   block 1 is main/4, halving thereafter
//	-3   block 1 is main/2, all others main/4 (default)
//	-4   block 1 is main/4, all others main/8
func WithSecondaryFraction(frac int) Option {
	return func(c *config) {
		c.secondaryFraction = frac
	}
}

// WithRehashBlockCount sets the block count at which growth consolidates the
// table into a single block instead of appending. Must be at least 2 and
// less than MaxBlocks.
func WithRehashBlockCount(n int) Option {
	return func(c *config) {
		c.rehashBlockCount = n
	}
}

// WithAllocator replaces the backing-memory allocator for blocks. Intended
// for tests that need to provoke allocation failure.
func WithAllocator(a Allocator) Option {
	return func(c *config) {
		c.alloc = a
	}
}

// WithLogFunc routes the table's diagnostics (currently only the invalid
// HASH_MAXMEM warning) to the host application's error channel. The default
// is log.Printf.
func WithLogFunc(logf func(format string, args ...any)) Option {
	return func(c *config) {
		c.logf = logf
	}
}
