package automaton

import "iter"

// Find returns the leftmost-longest match in haystack.
func (a *Automaton) Find(haystack []byte) (Match, bool) {
	return a.FindAt(haystack, 0)
}

// FindAt returns the leftmost-longest match starting at or after at.
// Offsets in the returned Match are relative to the whole haystack.
//
// The scan records the last match seen and keeps going while a longer match
// with the same start is still possible; it stops at DeadState, which is
// only reachable once a match is in hand.
func (a *Automaton) FindAt(haystack []byte, at int) (Match, bool) {
	if at < 0 || at > len(haystack) || len(a.patternLens) == 0 {
		return Match{}, false
	}
	if a.literal != nil {
		j := a.literal.find(haystack[at:])
		if j < 0 {
			return Match{}, false
		}
		return Match{Start: at + j, End: at + j + len(a.literal.needle)}, true
	}

	var last Match
	found := false
	if pids := a.matches[StartState]; len(pids) > 0 {
		last = Match{Pattern: pids[0], Start: at, End: at}
		found = true
	}

	trans := a.trans
	stride := a.stride
	s := StartState
	for i := at; i < len(haystack); {
		if s == StartState && a.prefilter != nil {
			j := a.prefilter.find(haystack[i:])
			if j < 0 {
				break
			}
			i += j
		}

		s = trans[int(s)*stride+int(a.classes.Get(haystack[i]))]
		i++
		if s == DeadState {
			break
		}
		if pids := a.matches[s]; len(pids) > 0 {
			pid := pids[0]
			last = Match{Pattern: pid, Start: i - a.patternLens[pid], End: i}
			found = true
		}
	}
	return last, found
}

// FindIter returns a lazy sequence of the non-overlapping leftmost-longest
// matches in haystack, in increasing start order.
//
// The sequence is restartable: each range over it scans from the beginning
// and shares no state with other iterations.
//
// Example:
//
//	for m := range a.FindIter(haystack) {
//	    fmt.Printf("%d:%d\n", m.Start, m.End)
//	}
func (a *Automaton) FindIter(haystack []byte) iter.Seq[Match] {
	return func(yield func(Match) bool) {
		at := 0
		for at <= len(haystack) {
			m, ok := a.FindAt(haystack, at)
			if !ok || !yield(m) {
				return
			}
			if m.IsEmpty() {
				at = m.End + 1
			} else {
				at = m.End
			}
		}
	}
}

// FindAll returns up to n matches; n < 0 means all of them.
// Returns nil if there is no match.
func (a *Automaton) FindAll(haystack []byte, n int) []Match {
	if n == 0 {
		return nil
	}
	var out []Match
	for m := range a.FindIter(haystack) {
		out = append(out, m)
		if n > 0 && len(out) == n {
			break
		}
	}
	return out
}

// IsMatch reports whether any pattern occurs in haystack.
func (a *Automaton) IsMatch(haystack []byte) bool {
	_, ok := a.FindAt(haystack, 0)
	return ok
}

// Count returns the number of non-overlapping matches in haystack.
func (a *Automaton) Count(haystack []byte) int {
	n := 0
	for range a.FindIter(haystack) {
		n++
	}
	return n
}
