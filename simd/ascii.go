package simd

import "encoding/binary"

// IsASCII reports whether every byte in data is below 0x80.
//
// Text decoding at the memory boundary uses this as a fast path: an ASCII
// buffer is always well-formed UTF-8.
func IsASCII(data []byte) bool {
	return FirstNonASCII(data) < 0
}

// FirstNonASCII returns the index of the first byte >= 0x80, or -1 if all
// bytes are ASCII.
func FirstNonASCII(data []byte) int {
	n := len(data)

	i := 0
	for ; i+8 <= n; i += 8 {
		if binary.LittleEndian.Uint64(data[i:])&hi8 != 0 {
			break
		}
	}
	for ; i < n; i++ {
		if data[i] >= 0x80 {
			return i
		}
	}
	return -1
}
