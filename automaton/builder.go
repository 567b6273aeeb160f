package automaton

import (
	"github.com/coregx/acbridge/internal/conv"
	"github.com/coregx/acbridge/internal/sparse"
)

// Builder collects patterns and compiles them into an Automaton.
//
// Example:
//
//	b := automaton.NewBuilder(automaton.DefaultConfig())
//	b.AddPattern([]byte("foo"))
//	b.AddPattern([]byte("bar"))
//	a, err := b.Build()
type Builder struct {
	config   Config
	patterns [][]byte
}

// NewBuilder creates a Builder with the given configuration.
func NewBuilder(config Config) *Builder {
	return &Builder{config: config}
}

// AddPattern appends a pattern. The bytes are copied, so the caller may reuse
// p afterwards. Pattern IDs are assigned in call order starting at 0.
func (b *Builder) AddPattern(p []byte) *Builder {
	if b.config.ASCIICaseInsensitive {
		b.patterns = append(b.patterns, foldBytes(p))
	} else {
		b.patterns = append(b.patterns, append([]byte(nil), p...))
	}
	return b
}

// AddPatterns appends several patterns in order.
func (b *Builder) AddPatterns(ps ...[]byte) *Builder {
	for _, p := range ps {
		b.AddPattern(p)
	}
	return b
}

// Len returns the number of patterns added so far.
func (b *Builder) Len() int {
	return len(b.patterns)
}

// Build compiles the pattern set.
func Build(patterns [][]byte, config Config) (*Automaton, error) {
	return NewBuilder(config).AddPatterns(patterns...).Build()
}

// Build compiles the collected patterns into an Automaton.
//
// The Builder may be reused; later calls see every pattern added so far.
func (b *Builder) Build() (*Automaton, error) {
	if err := b.config.Validate(); err != nil {
		return nil, err
	}
	if len(b.patterns) > b.config.MaxPatterns {
		return nil, &BuildError{Pattern: -1, Limit: b.config.MaxPatterns, Err: ErrTooManyPatterns}
	}

	c := &compiler{
		config:  b.config,
		classes: b.byteClasses(),
	}
	c.stride = c.classes.AlphabetLen()

	if err := c.buildTrie(b.patterns); err != nil {
		return nil, err
	}
	c.fillFailures()

	a := &Automaton{
		classes:         c.classes,
		stride:          c.stride,
		trans:           c.trans,
		matches:         c.matches,
		patternLens:     c.patternLens,
		caseInsensitive: b.config.ASCIICaseInsensitive,
	}
	if b.config.EnablePrefilter {
		a.prefilter = newStartPrefilter(a)
		a.literal = newLiteralSearcher(b.patterns, b.config.ASCIICaseInsensitive)
	}
	return a, nil
}

// byteClasses isolates every byte used by a pattern. With case folding the
// opposite-case twin of each letter gets its own class too, so both cases
// can be pointed at the same trie child.
func (b *Builder) byteClasses() ByteClasses {
	var set ByteClassSet
	for _, p := range b.patterns {
		for _, c := range p {
			set.SetByte(c)
			if b.config.ASCIICaseInsensitive {
				if twin, ok := opposite(c); ok {
					set.SetByte(twin)
				}
			}
		}
	}
	return set.ByteClasses()
}

// compiler holds the mutable tables while an Automaton is being built.
type compiler struct {
	config      Config
	classes     ByteClasses
	stride      int
	trans       []StateID
	matches     [][]PatternID
	patternLens []int
	fail        []StateID
}

func (c *compiler) addState() StateID {
	id := StateID(conv.IntToUint32(len(c.matches)))
	for i := 0; i < c.stride; i++ {
		c.trans = append(c.trans, noState)
	}
	c.matches = append(c.matches, nil)
	return id
}

func (c *compiler) row(s StateID) []StateID {
	start := int(s) * c.stride
	return c.trans[start : start+c.stride]
}

// buildTrie inserts every pattern, creating one state per new prefix.
func (c *compiler) buildTrie(patterns [][]byte) error {
	c.addState() // DeadState
	c.addState() // StartState

	dead := c.row(DeadState)
	for i := range dead {
		dead[i] = DeadState
	}

	c.patternLens = make([]int, len(patterns))
	for pid, p := range patterns {
		c.patternLens[pid] = len(p)

		s := StartState
		for _, b := range p {
			cls := c.classes.Get(b)
			next := c.row(s)[cls]
			if next == noState {
				if len(c.matches) >= c.config.MaxStates {
					return &BuildError{Pattern: pid, Limit: c.config.MaxStates, Err: ErrTooManyStates}
				}
				next = c.addState()
				c.row(s)[cls] = next
				if c.config.ASCIICaseInsensitive {
					if twin, ok := opposite(b); ok {
						c.row(s)[c.classes.Get(twin)] = next
					}
				}
			}
			s = next
		}
		c.matches[s] = append(c.matches[s], PatternID(conv.IntToUint32(pid)))
	}
	return nil
}

// fillFailures computes failure links breadth-first and, in the same pass,
// replaces every missing transition with the transition of the failure
// state. Because failure states are strictly shallower, their rows are
// already complete when a state is dequeued.
//
// Leftmost semantics: a state where a pattern ends fails to DeadState. Once
// a match is in hand the search may only extend it, never restart later in
// the haystack.
func (c *compiler) fillFailures() {
	c.fail = make([]StateID, len(c.matches))
	queued := sparse.NewSparseSet(len(c.matches))
	queue := make([]StateID, 0, len(c.matches))

	// Without an empty pattern the start state loops to itself. With one,
	// every search has a match at its first position, so the search is
	// effectively anchored: all failures lead to DeadState.
	startLoop := StartState
	if len(c.matches[StartState]) > 0 {
		startLoop = DeadState
	}

	startRow := c.row(StartState)
	for cls, next := range startRow {
		if next == noState {
			startRow[cls] = startLoop
			continue
		}
		if !queued.Insert(uint32(next)) {
			continue
		}
		queue = append(queue, next)
		if len(c.matches[next]) > 0 || startLoop == DeadState {
			c.fail[next] = DeadState
		} else {
			c.fail[next] = StartState
		}
	}

	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]

		row := c.row(s)
		failRow := c.row(c.fail[s])
		for cls, next := range row {
			if next == noState {
				row[cls] = failRow[cls]
				continue
			}
			if !queued.Insert(uint32(next)) {
				continue
			}
			queue = append(queue, next)

			if len(c.matches[next]) > 0 {
				c.fail[next] = DeadState
				continue
			}
			f := failRow[cls]
			c.fail[next] = f
			if f != DeadState && f != StartState {
				c.matches[next] = append(c.matches[next], c.matches[f]...)
			}
		}
	}
}
