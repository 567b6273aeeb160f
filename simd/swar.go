// Package simd provides word-at-a-time byte scanning primitives used by the
// automaton prefilter and the text validator.
//
// All functions use SWAR (SIMD Within A Register): eight haystack bytes are
// loaded into a uint64 and tested in parallel with plain integer arithmetic,
// so the package is portable to every GOARCH, including wasm.
package simd

import (
	"encoding/binary"
	"math/bits"
)

const (
	lo8 = 0x0101010101010101
	hi8 = 0x8080808080808080
)

// zeroBytes returns a word whose high bit is set in every byte lane of v that
// is zero (Hacker's Delight). Only the lowest set lane is exact, which is all
// the callers need.
func zeroBytes(v uint64) uint64 {
	return (v - lo8) & ^v & hi8
}

// broadcast replicates b into every byte lane of a uint64.
func broadcast(b byte) uint64 {
	return uint64(b) * lo8
}

// Memchr returns the index of the first instance of needle in haystack,
// or -1 if needle is not present.
//
// Example:
//
//	pos := simd.Memchr([]byte("hello world"), 'o') // 4
func Memchr(haystack []byte, needle byte) int {
	n := len(haystack)
	mask := broadcast(needle)

	i := 0
	for ; i+8 <= n; i += 8 {
		chunk := binary.LittleEndian.Uint64(haystack[i:])
		if z := zeroBytes(chunk ^ mask); z != 0 {
			return i + bits.TrailingZeros64(z)/8
		}
	}
	for ; i < n; i++ {
		if haystack[i] == needle {
			return i
		}
	}
	return -1
}

// Memchr2 returns the index of the first byte equal to needle1 or needle2,
// or -1 if neither is present.
//
// The automaton uses it for the common case of a single case-folded
// start letter ('h' and 'H').
func Memchr2(haystack []byte, needle1, needle2 byte) int {
	n := len(haystack)
	mask1 := broadcast(needle1)
	mask2 := broadcast(needle2)

	i := 0
	for ; i+8 <= n; i += 8 {
		chunk := binary.LittleEndian.Uint64(haystack[i:])
		if z := zeroBytes(chunk^mask1) | zeroBytes(chunk^mask2); z != 0 {
			return i + bits.TrailingZeros64(z)/8
		}
	}
	for ; i < n; i++ {
		if b := haystack[i]; b == needle1 || b == needle2 {
			return i
		}
	}
	return -1
}

// Memchr3 returns the index of the first byte equal to any of the three
// needles, or -1 if none is present.
func Memchr3(haystack []byte, needle1, needle2, needle3 byte) int {
	n := len(haystack)
	mask1 := broadcast(needle1)
	mask2 := broadcast(needle2)
	mask3 := broadcast(needle3)

	i := 0
	for ; i+8 <= n; i += 8 {
		chunk := binary.LittleEndian.Uint64(haystack[i:])
		z := zeroBytes(chunk^mask1) | zeroBytes(chunk^mask2) | zeroBytes(chunk^mask3)
		if z != 0 {
			return i + bits.TrailingZeros64(z)/8
		}
	}
	for ; i < n; i++ {
		if b := haystack[i]; b == needle1 || b == needle2 || b == needle3 {
			return i
		}
	}
	return -1
}
