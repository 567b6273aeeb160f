package boundary

import (
	"bytes"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coregx/acbridge/automaton"
	"github.com/coregx/acbridge/memory"
)

type fixture struct {
	mem    *memory.Linear
	heap   *memory.Heap
	engine *Engine
}

func newFixture(t *testing.T, config Config) *fixture {
	t.Helper()
	mem := memory.NewLinear(1, 16)
	heap, err := memory.NewHeap(mem, memory.HeapConfig{Base: memory.Alignment, MaxPages: 16})
	require.NoError(t, err)
	e, err := NewEngine(mem, heap, NewRegistry(config), config)
	require.NoError(t, err)
	return &fixture{mem: mem, heap: heap, engine: e}
}

func (f *fixture) write(t *testing.T, s string) memory.Region {
	t.Helper()
	r, err := memory.WriteRegion(f.mem, f.heap, []byte(s))
	require.NoError(t, err)
	return r
}

func (f *fixture) construct(t *testing.T, patterns string) uint32 {
	t.Helper()
	r := f.write(t, patterns)
	defer func() { require.NoError(t, r.Release(f.heap)) }()
	h, err := f.engine.Construct(r.Ptr, r.Len)
	require.NoError(t, err)
	return h
}

// scan runs a scan through freshly reserved regions and decodes the pairs.
func (f *fixture) scan(t *testing.T, handle uint32, haystack string, capacity uint32) ([][2]uint32, ScanResult) {
	t.Helper()
	hay := f.write(t, haystack)
	defer func() { require.NoError(t, hay.Release(f.heap)) }()
	out, err := memory.ReserveRegion(f.heap, capacity*memory.PairSize)
	require.NoError(t, err)
	defer func() { require.NoError(t, out.Release(f.heap)) }()

	res, err := f.engine.Scan(handle, hay.Ptr, hay.Len, capacity, out.Ptr)
	require.NoError(t, err)
	return f.readPairs(t, out.Ptr, res.Count), res
}

func (f *fixture) readPairs(t *testing.T, out, count uint32) [][2]uint32 {
	t.Helper()
	pairs := make([][2]uint32, 0, count)
	for i := uint32(0); i < count; i++ {
		s, ok1 := f.mem.ReadUint32Le(out + i*8)
		e, ok2 := f.mem.ReadUint32Le(out + i*8 + 4)
		require.True(t, ok1 && ok2)
		pairs = append(pairs, [2]uint32{s, e})
	}
	return pairs
}

func TestParsePatterns(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"he she hers", []string{"he", "she", "hers"}},
		{"single", []string{"single"}},
		{"", []string{}},
		{"  a  b ", []string{"a", "b"}},
		{"tab\tkept", []string{"tab\tkept"}},
	}
	for _, tt := range tests {
		got := ParsePatterns(tt.input)
		assert.ElementsMatch(t, tt.want, got, "ParsePatterns(%q)", tt.input)
	}
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	c := DefaultConfig()
	c.MaxMatchers = -1
	var cfgErr *ConfigError
	require.ErrorAs(t, c.Validate(), &cfgErr)
	assert.Equal(t, "MaxMatchers", cfgErr.Field)

	c = DefaultConfig()
	c.Automaton.MaxStates = 0
	require.ErrorAs(t, c.Validate(), &cfgErr)
	assert.Equal(t, "Automaton", cfgErr.Field)
}

func TestNewEngineRequiresParts(t *testing.T) {
	mem := memory.NewLinear(1, 1)
	_, err := NewEngine(mem, nil, NewRegistry(DefaultConfig()), DefaultConfig())
	assert.Error(t, err)
}

func TestLeftmostLongestTieBreak(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	h := f.construct(t, "he she hers")

	pairs, res := f.scan(t, h, "shers", 8)
	assert.Equal(t, [][2]uint32{{0, 3}}, pairs)
	assert.False(t, res.Truncated)
	assert.NoError(t, res.Err())
}

func TestCaseInsensitivity(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	h := f.construct(t, "ABC")

	pairs, _ := f.scan(t, h, "xxabcxx", 4)
	assert.Equal(t, [][2]uint32{{2, 5}}, pairs)

	pairs, _ = f.scan(t, h, "xxAbCxx", 4)
	assert.Equal(t, [][2]uint32{{2, 5}}, pairs)
}

func TestHandlesAreSequential(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	for want := uint32(0); want < 4; want++ {
		assert.Equal(t, want, f.construct(t, fmt.Sprintf("p%d", want)))
	}
	assert.Equal(t, 4, f.engine.Registry().Len())

	// Each handle keeps its own pattern set.
	pairs, _ := f.scan(t, 2, "p1 p2 p3", 4)
	assert.Equal(t, [][2]uint32{{3, 5}}, pairs)
}

func TestInvalidHandle(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	f.construct(t, "a")

	hay := f.write(t, "aaa")
	for _, h := range []uint32{1, 2, 1000, ^uint32(0)} {
		_, err := f.engine.Scan(h, hay.Ptr, hay.Len, 1, hay.Ptr)
		require.ErrorIs(t, err, ErrInvalidHandle, "handle %d", h)
		assert.Equal(t, StatusInvalidHandle, StatusOf(err))
	}

	// Rejected scans write nothing.
	got, _ := memory.ReadText(f.mem, hay.Ptr, hay.Len)
	assert.Equal(t, "aaa", got)
}

func TestConstructInvalidEncoding(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	r, err := memory.WriteRegion(f.mem, f.heap, []byte("ok \xff\xfe"))
	require.NoError(t, err)

	_, err = f.engine.Construct(r.Ptr, r.Len)
	require.ErrorIs(t, err, ErrInvalidEncoding)
	var encErr *memory.EncodingError
	require.ErrorAs(t, err, &encErr)
	assert.Equal(t, 3, encErr.Offset)
	assert.Zero(t, f.engine.Registry().Len(), "nothing registered on failure")
}

func TestScanInvalidEncoding(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	h := f.construct(t, "ab")

	hay, err := memory.WriteRegion(f.mem, f.heap, []byte("ab\xc3"))
	require.NoError(t, err)
	out, err := memory.ReserveRegion(f.heap, 16)
	require.NoError(t, err)

	_, err = f.engine.Scan(h, hay.Ptr, hay.Len, 2, out.Ptr)
	assert.ErrorIs(t, err, ErrInvalidEncoding)
	assert.Equal(t, StatusInvalidEncoding, StatusOf(err))
}

func TestScanBinaryHaystack(t *testing.T) {
	config := DefaultConfig()
	config.AllowBinaryHaystack = true
	f := newFixture(t, config)
	h := f.construct(t, "ab")

	hay, err := memory.WriteRegion(f.mem, f.heap, []byte("\xffAB\xfe"))
	require.NoError(t, err)
	out, err := memory.ReserveRegion(f.heap, 16)
	require.NoError(t, err)

	res, err := f.engine.Scan(h, hay.Ptr, hay.Len, 2, out.Ptr)
	require.NoError(t, err)
	assert.Equal(t, [][2]uint32{{1, 3}}, f.readPairs(t, out.Ptr, res.Count))
}

func TestScanOutOfBounds(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	h := f.construct(t, "a")
	hay := f.write(t, "aaaa")
	size := f.mem.Size()

	tests := []struct {
		name             string
		ptr, n, cap, out uint32
	}{
		{"haystack past end", size - 2, 4, 1, hay.Ptr},
		{"haystack overflow", ^uint32(0), 2, 1, hay.Ptr},
		{"output past end", hay.Ptr, hay.Len, 2, size - 8},
		{"capacity overflow", hay.Ptr, hay.Len, 1 << 30, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.engine.Scan(h, tt.ptr, tt.n, tt.cap, tt.out)
			assert.ErrorIs(t, err, ErrOutOfBounds)
			assert.Equal(t, StatusOutOfBounds, StatusOf(err))
		})
	}
}

func TestScanValidatesOutputBeforeWriting(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	h := f.construct(t, "a")
	hay := f.write(t, "aaaa")

	// One pair fits before the end of memory, the second does not.
	out := f.mem.Size() - 12
	_, err := f.engine.Scan(h, hay.Ptr, hay.Len, 2, out)
	require.ErrorIs(t, err, ErrOutOfBounds)

	first, _ := f.mem.ReadUint32Le(out)
	second, _ := f.mem.ReadUint32Le(out + 4)
	assert.Zero(t, first)
	assert.Zero(t, second)
}

func TestCapacityBound(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	h := f.construct(t, "a")
	hay := f.write(t, "aaaaa")

	for k := uint32(0); k <= 7; k++ {
		// A guard word directly after the output region must survive.
		out, err := memory.ReserveRegion(f.heap, k*8+4)
		require.NoError(t, err)
		guard := out.Ptr + k*8
		require.True(t, f.mem.WriteUint32Le(guard, 0xfeedface))

		res, err := f.engine.Scan(h, hay.Ptr, hay.Len, k, out.Ptr)
		require.NoError(t, err)

		assert.LessOrEqual(t, res.Count, k)
		assert.Equal(t, min(k, 5), res.Count)
		assert.Equal(t, k < 5, res.Truncated, "k=%d", k)
		if res.Truncated {
			assert.ErrorIs(t, res.Err(), ErrCapacityExceeded)
		}
		v, _ := f.mem.ReadUint32Le(guard)
		assert.Equal(t, uint32(0xfeedface), v, "k=%d wrote past capacity", k)

		require.NoError(t, out.Release(f.heap))
	}
}

func TestScanOutputMayOverlapHaystack(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	h := f.construct(t, "ab")

	r, err := memory.ReserveRegion(f.heap, 32)
	require.NoError(t, err)
	require.True(t, f.mem.Write(r.Ptr, []byte("abxxab")))

	res, err := f.engine.Scan(h, r.Ptr, 6, 2, r.Ptr)
	require.NoError(t, err)
	assert.Equal(t, [][2]uint32{{0, 2}, {4, 6}}, f.readPairs(t, r.Ptr, res.Count))
}

func TestEmptyInputs(t *testing.T) {
	f := newFixture(t, DefaultConfig())

	// No patterns: construct succeeds, scans find nothing.
	h, err := f.engine.Construct(8, 0)
	require.NoError(t, err)
	pairs, res := f.scan(t, h, "anything", 4)
	assert.Empty(t, pairs)
	assert.Zero(t, res.Count)

	h = f.construct(t, "x")
	pairs, _ = f.scan(t, h, "", 4)
	assert.Empty(t, pairs)
}

func TestRoundTripContainment(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	patterns := []string{"apple", "Banana", "cherry", "date", "elder"}
	h := f.construct(t, strings.Join(patterns, " "))

	for _, p := range patterns {
		for _, prefix := range []string{"", "zz ", "0123456789 "} {
			hay := prefix + strings.ToUpper(p) + " qq"
			pairs, _ := f.scan(t, h, hay, 4)
			require.Len(t, pairs, 1, "haystack %q", hay)
			start, end := pairs[0][0], pairs[0][1]
			assert.Equal(t, uint32(len(prefix)), start)
			assert.True(t, strings.EqualFold(p, hay[start:end]))
		}
	}
}

func TestMatchesAgreeWithAutomaton(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	rng := rand.New(rand.NewSource(3))
	alphabet := "abcAB"

	for i := 0; i < 50; i++ {
		var pats []string
		count := 1 + rng.Intn(4)
		for j := 0; j < count; j++ {
			n := 1 + rng.Intn(3)
			var sb strings.Builder
			for k := 0; k < n; k++ {
				sb.WriteByte(alphabet[rng.Intn(len(alphabet))])
			}
			pats = append(pats, sb.String())
		}
		var sb strings.Builder
		hayLen := rng.Intn(30)
		for k := 0; k < hayLen; k++ {
			sb.WriteByte(alphabet[rng.Intn(len(alphabet))])
		}
		hay := sb.String()

		h := f.construct(t, strings.Join(pats, " "))
		pairs, _ := f.scan(t, h, hay, 64)

		bs := make([][]byte, len(pats))
		for j, p := range pats {
			bs[j] = []byte(p)
		}
		a, err := automaton.Build(bs, automaton.DefaultConfig())
		require.NoError(t, err)
		var want [][2]uint32
		for _, m := range a.FindAll([]byte(hay), -1) {
			want = append(want, [2]uint32{uint32(m.Start), uint32(m.End)})
		}
		if want == nil {
			want = [][2]uint32{}
		}
		assert.Equal(t, want, pairs, "patterns %q haystack %q", pats, hay)
	}
}

func TestReserveReleaseRoundTrip(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	before := f.heap.Stats()

	for i := 0; i < 100; i++ {
		n := uint32(i * 37)
		ptr, err := f.engine.Reserve(n)
		require.NoError(t, err)
		require.NoError(t, f.engine.Release(ptr, n))
	}

	after := f.heap.Stats()
	assert.Equal(t, before.LiveRegions, after.LiveRegions)
	assert.Equal(t, before.LiveBytes, after.LiveBytes)
	assert.Equal(t, before.HeapBytes, after.HeapBytes)
}

func TestReleaseErrors(t *testing.T) {
	f := newFixture(t, DefaultConfig())

	ptr, err := f.engine.Reserve(24)
	require.NoError(t, err)

	err = f.engine.Release(ptr, 23)
	assert.ErrorIs(t, err, ErrSizeMismatch)
	assert.Equal(t, StatusSizeMismatch, StatusOf(err))

	require.NoError(t, f.engine.Release(ptr, 24))

	err = f.engine.Release(ptr, 24)
	assert.ErrorIs(t, err, ErrUnknownRegion)
	assert.Equal(t, StatusUnknownRegion, StatusOf(err))
}

func TestReserveOutOfMemory(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	_, err := f.engine.Reserve(^uint32(0))
	assert.ErrorIs(t, err, ErrOutOfMemory)
	assert.Equal(t, StatusOutOfMemory, StatusOf(err))
}

func TestRegistryFull(t *testing.T) {
	config := DefaultConfig()
	config.MaxMatchers = 1
	f := newFixture(t, config)
	f.construct(t, "a")

	r := f.write(t, "b")
	_, err := f.engine.Construct(r.Ptr, r.Len)
	assert.ErrorIs(t, err, ErrRegistryFull)
	assert.Equal(t, StatusRegistryFull, StatusOf(err))
}

func TestConstructTooLarge(t *testing.T) {
	config := DefaultConfig()
	config.Automaton.MaxPatterns = 2
	f := newFixture(t, config)

	r := f.write(t, "a b c")
	_, err := f.engine.Construct(r.Ptr, r.Len)
	assert.ErrorIs(t, err, automaton.ErrTooManyPatterns)
	assert.Equal(t, StatusTooLarge, StatusOf(err))
}

func TestSharedRegistry(t *testing.T) {
	config := DefaultConfig()
	reg := NewRegistry(config)

	newEngine := func() (*Engine, *memory.Linear, *memory.Heap) {
		mem := memory.NewLinear(1, 4)
		heap, err := memory.NewHeap(mem, memory.HeapConfig{Base: 8, MaxPages: 4})
		require.NoError(t, err)
		e, err := NewEngine(mem, heap, reg, config)
		require.NoError(t, err)
		return e, mem, heap
	}
	e1, mem1, heap1 := newEngine()
	e2, mem2, heap2 := newEngine()

	pats, err := memory.WriteRegion(mem1, heap1, []byte("needle"))
	require.NoError(t, err)
	h, err := e1.Construct(pats.Ptr, pats.Len)
	require.NoError(t, err)

	hay, err := memory.WriteRegion(mem2, heap2, []byte("hay NEEDLE hay"))
	require.NoError(t, err)
	out, err := memory.ReserveRegion(heap2, 8)
	require.NoError(t, err)
	res, err := e2.Scan(h, hay.Ptr, hay.Len, 1, out.Ptr)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), res.Count)
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	config := DefaultConfig()
	config.Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	f := newFixture(t, config)

	h := f.construct(t, "abc")
	assert.Contains(t, buf.String(), "msg=construct")
	assert.Contains(t, buf.String(), fmt.Sprintf("handle=%d", h))

	buf.Reset()
	_, _ = f.engine.Scan(99, 0, 0, 0, 0)
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "op=scan")
	assert.Contains(t, buf.String(), "invalid handle")
}
