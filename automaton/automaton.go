// Package automaton implements an Aho-Corasick multi-pattern matcher compiled
// to a fully deterministic transition table.
//
// Construction follows the classic recipe: a trie over the (case-folded)
// pattern bytes, failure links computed breadth-first, and then every missing
// transition resolved through the failure links so that scanning takes exactly
// one table lookup per haystack byte and never backtracks.
//
// Matching uses leftmost-longest semantics: of all matches, the one with the
// smallest start wins, and among matches sharing that start the longest wins.
// Iteration resumes at the end of each reported match, so reported matches
// never overlap.
//
// Example:
//
//	a, _ := automaton.Build([][]byte{[]byte("he"), []byte("she"), []byte("hers")}, automaton.DefaultConfig())
//	for m := range a.FindIter([]byte("shers")) {
//	    fmt.Println(m.Start, m.End) // 0 3
//	}
//
// An Automaton is immutable after Build and safe for concurrent use.
package automaton

// StateID identifies an automaton state. State IDs index the transition
// table: row s occupies trans[s*stride : (s+1)*stride].
type StateID uint32

// PatternID identifies a pattern by its insertion order in the Builder.
type PatternID uint32

const (
	// DeadState is absorbing: every transition leads back to it. Reaching it
	// ends a search.
	DeadState StateID = 0

	// StartState is where every search begins.
	StartState StateID = 1

	// noState marks a transition not yet filled during construction.
	noState = ^StateID(0)
)

// Match is a half-open byte span [Start, End) of a haystack matched by
// Pattern.
type Match struct {
	Pattern PatternID
	Start   int
	End     int
}

// Len returns the length of the match in bytes.
func (m Match) Len() int {
	return m.End - m.Start
}

// IsEmpty reports whether the match is empty (only possible with an empty
// pattern).
func (m Match) IsEmpty() bool {
	return m.Start == m.End
}

// Automaton is a compiled pattern set.
type Automaton struct {
	classes ByteClasses
	stride  int

	// trans is the dense transition table, len = StateCount()*stride.
	trans []StateID

	// matches lists the patterns that end at each state, longest first.
	// Own patterns precede patterns inherited through the failure link.
	matches [][]PatternID

	patternLens []int

	caseInsensitive bool
	prefilter       *startPrefilter
	literal         *literalSearcher
}

// PatternCount returns the number of patterns the automaton was built from,
// including duplicates.
func (a *Automaton) PatternCount() int {
	return len(a.patternLens)
}

// PatternLen returns the length in bytes of pattern id.
func (a *Automaton) PatternLen(id PatternID) int {
	return a.patternLens[id]
}

// StateCount returns the number of states, including the dead and start
// states.
func (a *Automaton) StateCount() int {
	return len(a.matches)
}

// AlphabetLen returns the number of byte equivalence classes, which is the
// width of one transition row.
func (a *Automaton) AlphabetLen() int {
	return a.stride
}

// ByteClasses returns the byte equivalence classes used by the table.
func (a *Automaton) ByteClasses() ByteClasses {
	return a.classes
}

// CaseInsensitive reports whether ASCII letters were folded.
func (a *Automaton) CaseInsensitive() bool {
	return a.caseInsensitive
}

// HasPrefilter reports whether scans skip ahead with memchr while in the
// start state.
func (a *Automaton) HasPrefilter() bool {
	return a.prefilter != nil
}

// IsLiteral reports whether searches run as a plain substring search because
// the automaton holds a single non-empty pattern.
func (a *Automaton) IsLiteral() bool {
	return a.literal != nil
}

// NextState returns the state reached from s on byte b. Every state has a
// transition for every byte.
func (a *Automaton) NextState(s StateID, b byte) StateID {
	return a.trans[int(s)*a.stride+int(a.classes.Get(b))]
}

// Matches returns the patterns that end at state s, longest first. The
// returned slice must not be modified.
func (a *Automaton) Matches(s StateID) []PatternID {
	return a.matches[s]
}

// MemoryUsage returns an estimate of the heap bytes held by the automaton.
func (a *Automaton) MemoryUsage() int {
	n := len(a.trans)*4 + len(a.patternLens)*8 + len(a.matches)*24
	for _, m := range a.matches {
		n += cap(m) * 4
	}
	return n
}
