// Package errors defines all exported error sentinels for the blocktable library.
//
// This is the single source of truth for error values. Both the top-level
// blocktable package and internal packages import from here, ensuring
// errors.Is checks work across package boundaries.
package errors

import "errors"

// Construction errors
var (
	ErrBadArgument = errors.New("blocktable: invalid key width, value width, load factor, or comparator")
	ErrOutOfMemory = errors.New("blocktable: block allocation failed or memory budget exhausted")
)

// Mutation errors
var (
	ErrNoMoreBlocks = errors.New("blocktable: table is full (maximum block count reached)")
	ErrSorted       = errors.New("blocktable: table has been sorted and is read-only")
	ErrTableClosed  = errors.New("blocktable: table is closed")
)

// Lookup errors
var (
	ErrNotFound = errors.New("blocktable: key not found")
)

// Internal errors
var (
	// ErrInternal indicates a broken table invariant. The only known way to
	// trigger it is writing the empty-value sentinel into a live value slot,
	// which strands any keys that collided through that slot.
	ErrInternal = errors.New("blocktable: table invariant violated")
)
