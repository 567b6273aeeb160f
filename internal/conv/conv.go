// Package conv provides checked integer conversions for values that cross
// the 32-bit memory boundary.
//
// The narrowing helpers panic on overflow since that indicates a programming
// error (a value the caller already validated). The arithmetic helpers report
// overflow instead, because their inputs come straight from the caller.
package conv

import "math"

// IntToUint32 safely converts an int to uint32.
// Panics if n < 0 or n > math.MaxUint32.
//
//go:inline
func IntToUint32(n int) uint32 {
	// Use uint for comparison to avoid overflow on 32-bit platforms
	// where int cannot represent math.MaxUint32
	if n < 0 || uint(n) > math.MaxUint32 {
		panic("integer overflow: int value out of uint32 range")
	}
	return uint32(n)
}

// Uint64ToUint32 safely converts a uint64 to uint32.
// Panics if n > math.MaxUint32.
//
//go:inline
func Uint64ToUint32(n uint64) uint32 {
	if n > math.MaxUint32 {
		panic("integer overflow: uint64 value out of uint32 range")
	}
	return uint32(n)
}

// AddUint32 returns a+b and whether the sum fits in a uint32.
func AddUint32(a, b uint32) (uint32, bool) {
	sum := uint64(a) + uint64(b)
	if sum > math.MaxUint32 {
		return 0, false
	}
	return uint32(sum), true
}

// MulUint32 returns a*b and whether the product fits in a uint32.
func MulUint32(a, b uint32) (uint32, bool) {
	product := uint64(a) * uint64(b)
	if product > math.MaxUint32 {
		return 0, false
	}
	return uint32(product), true
}

// AlignUp rounds n up to a multiple of align, which must be a power of two.
// The second result is false if the rounded value does not fit in a uint32.
func AlignUp(n, align uint32) (uint32, bool) {
	mask := align - 1
	sum, ok := AddUint32(n, mask)
	if !ok {
		return 0, false
	}
	return sum &^ mask, true
}
