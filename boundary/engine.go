// Package boundary implements the four operations a caller on the other side
// of a shared flat memory uses to drive the matcher: construct, scan,
// reserve and release.
//
// Every caller-supplied integer is validated before use. Handles must have
// been issued by the registry, regions must lie inside the memory, text
// must be well-formed UTF-8, and releases must name a live reservation with
// its exact size. Violations come back as typed errors (and, on the wire, as
// negative Status codes) instead of corrupting memory.
//
// Basic usage over an in-process memory:
//
//	mem := memory.NewLinear(1, memory.MaxPages)
//	heap, _ := memory.NewHeap(mem, memory.DefaultHeapConfig())
//	config := boundary.DefaultConfig()
//	e, _ := boundary.NewEngine(mem, heap, boundary.NewRegistry(config), config)
//
//	pats, _ := memory.WriteRegion(mem, heap, []byte("he she hers"))
//	handle, _ := e.Construct(pats.Ptr, pats.Len)
package boundary

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/coregx/acbridge/automaton"
	"github.com/coregx/acbridge/internal/conv"
	"github.com/coregx/acbridge/memory"
	"github.com/coregx/acbridge/registry"
)

// Registry maps handles to compiled automatons. Engines sharing a Registry
// share handles.
type Registry = registry.Registry[*automaton.Automaton]

// NewRegistry creates a registry bounded by config.MaxMatchers.
func NewRegistry(config Config) *Registry {
	return registry.New[*automaton.Automaton](config.MaxMatchers)
}

// PatternSeparator splits the pattern text passed to Construct.
const PatternSeparator = ' '

// ParsePatterns splits text on single ASCII spaces. Empty tokens produced by
// leading, trailing or repeated spaces are dropped.
func ParsePatterns(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool { return r == PatternSeparator })
}

// Engine binds a memory, its allocator and a registry.
//
// An Engine expects a single logical caller, matching the contract of the
// memory it wraps. The registry and allocator may be shared with other
// engines.
type Engine struct {
	mem    memory.Memory
	alloc  memory.Allocator
	reg    *Registry
	config Config
	log    *slog.Logger
}

// NewEngine creates an Engine.
func NewEngine(mem memory.Memory, alloc memory.Allocator, reg *Registry, config Config) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if mem == nil || alloc == nil || reg == nil {
		return nil, errors.New("boundary: memory, allocator and registry are required")
	}
	return &Engine{
		mem:    mem,
		alloc:  alloc,
		reg:    reg,
		config: config,
		log:    config.logger(),
	}, nil
}

// Registry returns the registry the engine registers automatons in.
func (e *Engine) Registry() *Registry {
	return e.reg
}

// Memory returns the memory the engine reads and writes.
func (e *Engine) Memory() memory.Memory {
	return e.mem
}

// Construct decodes the patterns at [ptr, ptr+n), builds an automaton from
// them and registers it. The region stays owned by the caller.
func (e *Engine) Construct(ptr, n uint32) (uint32, error) {
	text, err := memory.ReadText(e.mem, ptr, n)
	if err != nil {
		return 0, e.reject("construct", err, slog.Uint64("ptr", uint64(ptr)), slog.Uint64("len", uint64(n)))
	}

	a, cached, err := e.compile(text)
	if err != nil {
		return 0, e.reject("construct", err, slog.Int("len", len(text)))
	}
	h, err := e.reg.Register(a)
	if err != nil {
		return 0, e.reject("construct", err, slog.Int("patterns", a.PatternCount()))
	}

	e.log.Debug("construct",
		slog.Uint64("handle", uint64(h)),
		slog.Int("patterns", a.PatternCount()),
		slog.Int("states", a.StateCount()),
		slog.Bool("prefilter", a.HasPrefilter()),
		slog.Bool("cached", cached))
	return h, nil
}

// compile builds the automaton for pattern text, consulting the cache when
// one is configured.
func (e *Engine) compile(text string) (*automaton.Automaton, bool, error) {
	cache := e.config.Cache
	if cache != nil {
		if a, ok := cache.Get(text, e.config.Automaton); ok {
			return a, true, nil
		}
	}

	tokens := ParsePatterns(text)
	patterns := make([][]byte, len(tokens))
	for i, tok := range tokens {
		patterns[i] = []byte(tok)
	}
	a, err := automaton.Build(patterns, e.config.Automaton)
	if err != nil {
		return nil, false, err
	}
	if cache != nil {
		cache.Put(text, e.config.Automaton, a)
	}
	return a, false, nil
}

// Scan runs the automaton registered under handle over the haystack at
// [ptr, ptr+n) and writes up to capacity (start, end) pairs of little-endian
// u32 values at out.
//
// The handle, the haystack region, its encoding and the whole output range
// out .. out+capacity*8 are checked before anything is written. A result
// with Truncated set is still a success; see ScanResult.Err.
func (e *Engine) Scan(handle, ptr, n, capacity, out uint32) (ScanResult, error) {
	a, err := e.reg.Lookup(handle)
	if err != nil {
		return ScanResult{}, e.reject("scan", err, slog.Uint64("handle", uint64(handle)))
	}

	hay, err := memory.Borrow(e.mem, ptr, n)
	if err == nil && !e.config.AllowBinaryHaystack {
		err = memory.ValidateText(hay)
	}
	if err != nil {
		return ScanResult{}, e.reject("scan", err,
			slog.Uint64("handle", uint64(handle)), slog.Uint64("ptr", uint64(ptr)), slog.Uint64("len", uint64(n)))
	}

	outLen, ok := conv.MulUint32(capacity, memory.PairSize)
	if !ok {
		err = &memory.BoundsError{Offset: out, Length: ^uint32(0), Size: e.mem.Size()}
	} else {
		err = memory.CheckRange(e.mem, out, outLen)
	}
	if err != nil {
		return ScanResult{}, e.reject("scan", err,
			slog.Uint64("handle", uint64(handle)), slog.Uint64("out", uint64(out)), slog.Uint64("cap", uint64(capacity)))
	}

	// Collect first: the output range may overlap the haystack.
	var res ScanResult
	pairs := make([][2]uint32, 0, min(int(capacity), 64))
	for m := range a.FindIter(hay) {
		if len(pairs) == int(capacity) {
			res.Truncated = true
			break
		}
		pairs = append(pairs, [2]uint32{conv.IntToUint32(m.Start), conv.IntToUint32(m.End)})
	}
	if err := memory.WritePairs(e.mem, out, pairs); err != nil {
		return ScanResult{}, e.reject("scan", err, slog.Uint64("handle", uint64(handle)))
	}
	res.Count = conv.IntToUint32(len(pairs))

	e.log.Debug("scan",
		slog.Uint64("handle", uint64(handle)),
		slog.Uint64("len", uint64(n)),
		slog.Uint64("count", uint64(res.Count)),
		slog.Bool("truncated", res.Truncated))
	return res, nil
}

// Reserve transfers ownership of size fresh bytes to the caller.
func (e *Engine) Reserve(size uint32) (uint32, error) {
	ptr, err := e.alloc.Reserve(size)
	if err != nil {
		return 0, e.reject("reserve", err, slog.Uint64("size", uint64(size)))
	}
	e.log.Debug("reserve", slog.Uint64("ptr", uint64(ptr)), slog.Uint64("size", uint64(size)))
	return ptr, nil
}

// Release reclaims a region returned by Reserve. size must equal the size
// that was reserved.
func (e *Engine) Release(ptr, size uint32) error {
	if err := e.alloc.Release(ptr, size); err != nil {
		return e.reject("release", err, slog.Uint64("ptr", uint64(ptr)), slog.Uint64("size", uint64(size)))
	}
	e.log.Debug("release", slog.Uint64("ptr", uint64(ptr)), slog.Uint64("size", uint64(size)))
	return nil
}

func (e *Engine) reject(op string, err error, attrs ...slog.Attr) error {
	args := make([]any, 0, len(attrs)+2)
	args = append(args, slog.String("op", op))
	for _, a := range attrs {
		args = append(args, a)
	}
	args = append(args, slog.Any("err", err))
	e.log.Warn("rejected call", args...)
	return err
}
