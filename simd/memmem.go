package simd

import "bytes"

// Memmem returns the index of the first instance of needle in haystack, or
// -1 if needle is not present. An empty needle matches at 0, as with
// bytes.Index.
//
// Candidates are found with Memchr on the rarest byte of needle (see
// RareByte) and then verified.
//
// Example:
//
//	pos := simd.Memmem([]byte("hello world"), []byte("world")) // 6
func Memmem(haystack, needle []byte) int {
	n := len(needle)
	switch {
	case n == 0:
		return 0
	case n > len(haystack):
		return -1
	case n == 1:
		return Memchr(haystack, needle[0])
	}

	rare, idx := RareByte(needle)
	// Rare byte positions p must leave room for the whole needle around
	// them: idx <= p < end.
	end := len(haystack) - n + idx + 1
	for pos := idx; pos < end; pos++ {
		j := Memchr(haystack[pos:end], rare)
		if j < 0 {
			return -1
		}
		pos += j
		start := pos - idx
		if bytes.Equal(haystack[start:start+n], needle) {
			return start
		}
	}
	return -1
}

// MemmemFold is like Memmem but compares ASCII letters case-insensitively.
// needle must already be lower case; haystack may be in any case.
//
// Example:
//
//	pos := simd.MemmemFold([]byte("Hello WORLD"), []byte("world")) // 6
func MemmemFold(haystack, needle []byte) int {
	n := len(needle)
	switch {
	case n == 0:
		return 0
	case n > len(haystack):
		return -1
	}

	rare, idx := RareByte(needle)
	upper, hasUpper := rare, false
	if 'a' <= rare && rare <= 'z' {
		upper, hasUpper = rare-'a'+'A', true
	}

	end := len(haystack) - n + idx + 1
	for pos := idx; pos < end; pos++ {
		var j int
		if hasUpper {
			j = Memchr2(haystack[pos:end], rare, upper)
		} else {
			j = Memchr(haystack[pos:end], rare)
		}
		if j < 0 {
			return -1
		}
		pos += j
		start := pos - idx
		if equalFoldLower(haystack[start:start+n], needle) {
			return start
		}
	}
	return -1
}

// equalFoldLower reports whether a equals the lower-case b after folding
// ASCII letters in a.
func equalFoldLower(a, lower []byte) bool {
	for i, c := range a {
		if 'A' <= c && c <= 'Z' {
			c += 'a' - 'A'
		}
		if c != lower[i] {
			return false
		}
	}
	return true
}
