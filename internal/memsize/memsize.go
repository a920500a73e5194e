// Package memsize parses human-readable byte counts such as "256m" or "1.5g".
// It exists for the HASH_MAXMEM environment variable, which bounds the memory
// footprint of a table.
package memsize

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Suffixes are powers of 1024; the optional trailing "b"/"B" is ignored, so
// "256m", "256M", "256mb" and "256MB" are equivalent.
var suffixes = map[byte]uint64{
	'k': 1 << 10,
	'm': 1 << 20,
	'g': 1 << 30,
	't': 1 << 40,
}

// Parse converts a human-readable byte count to a number of bytes.
func Parse(s string) (uint64, error) {
	orig := s
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, fmt.Errorf("empty byte count")
	}

	s = strings.TrimSuffix(s, "b")
	mult := uint64(1)
	if n := len(s); n > 0 {
		if m, ok := suffixes[s[n-1]]; ok {
			mult = m
			s = s[:n-1]
		}
	}
	if s == "" {
		return 0, fmt.Errorf("invalid byte count %q", orig)
	}

	// Accept a fractional mantissa only together with a suffix ("1.5g").
	if mult == 1 {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid byte count %q: %v", orig, err)
		}
		return v, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("invalid byte count %q", orig)
	}
	bytes := v * float64(mult)
	if bytes >= math.MaxUint64 {
		return 0, fmt.Errorf("byte count %q overflows uint64", orig)
	}
	return uint64(bytes), nil
}
