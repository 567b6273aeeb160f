package memory

import (
	"unicode/utf8"

	"github.com/coregx/acbridge/internal/conv"
	"github.com/coregx/acbridge/simd"
)

// PairSize is the encoded size of one (start, end) pair.
const PairSize = 8

// RangeChecker is implemented by memories whose addressable bytes are not
// the single span [0, Size), such as a native address space where only
// reserved regions may be touched.
type RangeChecker interface {
	Contains(ptr, n uint32) bool
}

// CheckRange reports whether [ptr, ptr+n) lies inside mem.
func CheckRange(mem Memory, ptr, n uint32) error {
	if rc, ok := mem.(RangeChecker); ok {
		if !rc.Contains(ptr, n) {
			return &BoundsError{Offset: ptr, Length: n, Size: mem.Size()}
		}
		return nil
	}
	if uint64(ptr)+uint64(n) > uint64(mem.Size()) {
		return &BoundsError{Offset: ptr, Length: n, Size: mem.Size()}
	}
	return nil
}

// Borrow returns a view of n bytes at ptr. The view aliases mem and must not
// be kept past the current call.
func Borrow(mem Memory, ptr, n uint32) ([]byte, error) {
	if err := CheckRange(mem, ptr, n); err != nil {
		return nil, err
	}
	b, ok := mem.Read(ptr, n)
	if !ok {
		return nil, &BoundsError{Offset: ptr, Length: n, Size: mem.Size()}
	}
	return b, nil
}

// ReadText copies n bytes at ptr into a string after checking that they are
// well-formed UTF-8.
func ReadText(mem Memory, ptr, n uint32) (string, error) {
	b, err := Borrow(mem, ptr, n)
	if err != nil {
		return "", err
	}
	if err := ValidateText(b); err != nil {
		return "", err
	}
	return string(b), nil
}

// ValidateText returns an *EncodingError locating the first malformed byte of
// b, or nil if b is valid UTF-8.
func ValidateText(b []byte) error {
	i := simd.FirstNonASCII(b)
	if i < 0 || utf8.Valid(b[i:]) {
		return nil
	}
	for i < len(b) {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size == 1 {
			return &EncodingError{Offset: i}
		}
		i += size
	}
	return nil
}

// WritePairs encodes pairs at out as consecutive little-endian u32 values.
// The whole destination is bounds-checked before the first write.
func WritePairs(mem Memory, out uint32, pairs [][2]uint32) error {
	n, ok := conv.MulUint32(conv.IntToUint32(len(pairs)), PairSize)
	if !ok {
		return &BoundsError{Offset: out, Length: ^uint32(0), Size: mem.Size()}
	}
	if err := CheckRange(mem, out, n); err != nil {
		return err
	}
	for i, p := range pairs {
		off := out + uint32(i)*PairSize //nolint:gosec // G115: bounded by the check above
		if !mem.WriteUint32Le(off, p[0]) || !mem.WriteUint32Le(off+4, p[1]) {
			return &BoundsError{Offset: off, Length: PairSize, Size: mem.Size()}
		}
	}
	return nil
}
