package automaton

import "github.com/coregx/acbridge/simd"

// startPrefilter finds the next haystack byte that can leave the start state.
//
// While the scanner sits in the start state no match is in progress, so any
// byte that loops back to the start state can be skipped without running the
// automaton. With up to three such bytes the skip is a single memchr call.
type startPrefilter struct {
	bytes []byte
}

// newStartPrefilter returns nil when a prefilter would not help: the start
// state is itself a match (empty pattern), no byte leaves it, or more than
// three bytes do.
func newStartPrefilter(a *Automaton) *startPrefilter {
	if len(a.matches[StartState]) > 0 {
		return nil
	}
	var leaving []byte
	for b := 0; b < 256; b++ {
		if a.NextState(StartState, byte(b)) == StartState {
			continue
		}
		if len(leaving) == 3 {
			return nil
		}
		leaving = append(leaving, byte(b))
	}
	if len(leaving) == 0 {
		return nil
	}
	return &startPrefilter{bytes: leaving}
}

// find returns the offset of the first candidate byte in haystack, or -1.
func (p *startPrefilter) find(haystack []byte) int {
	switch len(p.bytes) {
	case 1:
		return simd.Memchr(haystack, p.bytes[0])
	case 2:
		return simd.Memchr2(haystack, p.bytes[0], p.bytes[1])
	default:
		return simd.Memchr3(haystack, p.bytes[0], p.bytes[1], p.bytes[2])
	}
}

// literalSearcher handles the single-pattern case. The whole search reduces
// to a substring search, so the automaton is bypassed entirely.
type literalSearcher struct {
	needle []byte
	fold   bool
}

// newLiteralSearcher returns nil unless the automaton holds exactly one
// non-empty pattern. The pattern must already be folded when fold is set.
func newLiteralSearcher(patterns [][]byte, fold bool) *literalSearcher {
	if len(patterns) != 1 || len(patterns[0]) == 0 {
		return nil
	}
	return &literalSearcher{needle: patterns[0], fold: fold}
}

// find returns the offset of the first occurrence in haystack, or -1.
func (l *literalSearcher) find(haystack []byte) int {
	if l.fold {
		return simd.MemmemFold(haystack, l.needle)
	}
	return simd.Memmem(haystack, l.needle)
}
