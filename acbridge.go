// Package acbridge provides multi-pattern substring search with
// leftmost-longest, ASCII case-insensitive semantics, usable in process or
// across a shared flat memory boundary.
//
// The matcher is an Aho-Corasick automaton compiled to a dense DFA over
// byte equivalence classes:
//   - One table lookup per haystack byte, no backtracking
//   - Memchr skip-ahead while no pattern prefix is in progress
//   - Non-overlapping matches; the leftmost match wins, then the longest
//
// Basic usage:
//
//	m := acbridge.MustCompile("he", "she", "hers")
//	fmt.Println(m.FindAllString("ushers", -1)) // [she]
//
// Across a memory boundary (WebAssembly guests, foreign callers), use the
// boundary and host packages, which implement construct, scan, reserve and
// release over a flat 32-bit address space.
//
// Pattern text in the wire format is a single string of patterns separated
// by ASCII spaces; see ParsePatterns.
package acbridge

import (
	"iter"
	"strings"

	"github.com/coregx/acbridge/automaton"
	"github.com/coregx/acbridge/boundary"
)

// Match is a half-open byte span [Start, End) matched by pattern Pattern.
type Match = automaton.Match

// Matcher is a compiled pattern set.
//
// A Matcher is immutable and safe to use concurrently from multiple
// goroutines.
//
// Example:
//
//	m := acbridge.MustCompile("apple", "banana")
//	if m.MatchString("I like BANANAS") {
//	    println("matched!")
//	}
type Matcher struct {
	a        *automaton.Automaton
	patterns []string
}

// Compile builds a Matcher from patterns using DefaultConfig.
// Pattern i is reported as Match.Pattern == i.
func Compile(patterns ...string) (*Matcher, error) {
	return CompileWithConfig(DefaultConfig(), patterns...)
}

// MustCompile is like Compile but panics if the pattern set cannot be built.
//
// Example:
//
//	var keywords = acbridge.MustCompile("select", "from", "where")
func MustCompile(patterns ...string) *Matcher {
	m, err := Compile(patterns...)
	if err != nil {
		panic("acbridge: Compile(" + strings.Join(patterns, " ") + "): " + err.Error())
	}
	return m
}

// CompileWithConfig builds a Matcher with a custom configuration.
//
// Example:
//
//	config := acbridge.DefaultConfig()
//	config.ASCIICaseInsensitive = false
//	m, err := acbridge.CompileWithConfig(config, "Go", "Rust")
func CompileWithConfig(config automaton.Config, patterns ...string) (*Matcher, error) {
	bs := make([][]byte, len(patterns))
	for i, p := range patterns {
		bs[i] = []byte(p)
	}
	a, err := automaton.Build(bs, config)
	if err != nil {
		return nil, err
	}
	return &Matcher{
		a:        a,
		patterns: append([]string(nil), patterns...),
	}, nil
}

// CompileText builds a Matcher from space-separated pattern text, the format
// accepted by the construct boundary operation.
func CompileText(text string) (*Matcher, error) {
	return Compile(ParsePatterns(text)...)
}

// DefaultConfig returns the default compilation configuration: ASCII
// case-insensitive with the start-byte prefilter enabled.
func DefaultConfig() automaton.Config {
	return automaton.DefaultConfig()
}

// ParsePatterns splits space-separated pattern text. Empty tokens are
// dropped.
func ParsePatterns(text string) []string {
	return boundary.ParsePatterns(text)
}

// Patterns returns a copy of the patterns the Matcher was compiled from.
func (m *Matcher) Patterns() []string {
	return append([]string(nil), m.patterns...)
}

// String returns the patterns joined by spaces.
func (m *Matcher) String() string {
	return strings.Join(m.patterns, " ")
}

// Automaton returns the underlying compiled automaton.
func (m *Matcher) Automaton() *automaton.Automaton {
	return m.a
}

// Match reports whether b contains any pattern.
func (m *Matcher) Match(b []byte) bool {
	return m.a.IsMatch(b)
}

// MatchString reports whether s contains any pattern.
func (m *Matcher) MatchString(s string) bool {
	return m.a.IsMatch([]byte(s))
}

// FindMatch returns the leftmost-longest match in b.
func (m *Matcher) FindMatch(b []byte) (Match, bool) {
	return m.a.Find(b)
}

// Find returns the text of the leftmost-longest match in b, or nil.
//
// Example:
//
//	m := acbridge.MustCompile("he", "she", "hers")
//	println(string(m.Find([]byte("ushers")))) // "she"
func (m *Matcher) Find(b []byte) []byte {
	match, ok := m.a.Find(b)
	if !ok {
		return nil
	}
	return b[match.Start:match.End:match.End]
}

// FindString returns the text of the leftmost-longest match in s, or "".
func (m *Matcher) FindString(s string) string {
	match, ok := m.a.Find([]byte(s))
	if !ok {
		return ""
	}
	return s[match.Start:match.End]
}

// FindIndex returns the location of the leftmost-longest match in b as
// b[loc[0]:loc[1]], or nil.
func (m *Matcher) FindIndex(b []byte) []int {
	match, ok := m.a.Find(b)
	if !ok {
		return nil
	}
	return []int{match.Start, match.End}
}

// FindStringIndex returns the location of the leftmost-longest match in s
// as s[loc[0]:loc[1]], or nil.
func (m *Matcher) FindStringIndex(s string) []int {
	return m.FindIndex([]byte(s))
}

// FindIter returns the successive non-overlapping matches in b.
func (m *Matcher) FindIter(b []byte) iter.Seq[Match] {
	return m.a.FindIter(b)
}

// FindAll returns the text of successive matches in b.
// If n > 0, it returns at most n matches. If n < 0, it returns all matches.
func (m *Matcher) FindAll(b []byte, n int) [][]byte {
	matches := m.a.FindAll(b, n)
	if matches == nil {
		return nil
	}
	result := make([][]byte, len(matches))
	for i, match := range matches {
		result[i] = b[match.Start:match.End:match.End]
	}
	return result
}

// FindAllString returns the text of successive matches in s.
// If n > 0, it returns at most n matches. If n < 0, it returns all matches.
//
// Example:
//
//	m := acbridge.MustCompile("a", "b")
//	matches := m.FindAllString("abcab", -1)
//	// matches = ["a", "b", "a", "b"]
func (m *Matcher) FindAllString(s string, n int) []string {
	matches := m.a.FindAll([]byte(s), n)
	if matches == nil {
		return nil
	}
	result := make([]string, len(matches))
	for i, match := range matches {
		result[i] = s[match.Start:match.End]
	}
	return result
}

// FindAllIndex returns the locations of successive matches in b.
// If n > 0, it returns at most n matches. If n < 0, it returns all matches.
func (m *Matcher) FindAllIndex(b []byte, n int) [][]int {
	matches := m.a.FindAll(b, n)
	if matches == nil {
		return nil
	}
	result := make([][]int, len(matches))
	for i, match := range matches {
		result[i] = []int{match.Start, match.End}
	}
	return result
}

// Count returns the number of non-overlapping matches in b.
func (m *Matcher) Count(b []byte) int {
	return m.a.Count(b)
}

// ReplaceAllLiteral returns a copy of src with every match replaced by repl.
//
// Example:
//
//	m := acbridge.MustCompile("cat", "dog")
//	result := m.ReplaceAllLiteral([]byte("Cat and dog"), []byte("pet"))
//	// result = []byte("pet and pet")
func (m *Matcher) ReplaceAllLiteral(src, repl []byte) []byte {
	return m.ReplaceAllFunc(src, func([]byte) []byte { return repl })
}

// ReplaceAllLiteralString returns a copy of src with every match replaced by
// repl.
func (m *Matcher) ReplaceAllLiteralString(src, repl string) string {
	return string(m.ReplaceAllLiteral([]byte(src), []byte(repl)))
}

// ReplaceAllFunc returns a copy of src in which every match has been replaced
// by the result of repl applied to the matched bytes.
func (m *Matcher) ReplaceAllFunc(src []byte, repl func([]byte) []byte) []byte {
	result := make([]byte, 0, len(src))
	lastEnd := 0
	for match := range m.a.FindIter(src) {
		result = append(result, src[lastEnd:match.Start]...)
		result = append(result, repl(src[match.Start:match.End:match.End])...)
		lastEnd = match.End
	}
	return append(result, src[lastEnd:]...)
}
