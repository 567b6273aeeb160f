// Package host exposes the boundary operations to WebAssembly guests as a
// wazero host module.
//
// A guest imports four functions from the host module (named "acbridge" by
// default):
//
//	construct(ptr, len i32) -> i64                           handle or status
//	scan(handle, hay_ptr, hay_len, cap, out_ptr i32) -> i64  packed result or status
//	reserve(size i32) -> i64                                 pointer or status
//	release(ptr, size i32) -> i32                            0 or status
//
// Negative results are boundary.Status codes. A successful scan result
// carries the match count in the low 32 bits and the truncation flag in
// bit 32 (see boundary.PackScan).
//
// Each guest gets its own boundary.Engine over its own memory. Regions
// returned by reserve are carved from pages the bridge grows on top of the
// guest memory, so they never collide with the guest's own allocations. All
// guests share one registry: a handle constructed by one guest can be
// scanned by another.
package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/coregx/acbridge/boundary"
	"github.com/coregx/acbridge/memory"
)

// DefaultModuleName is the import module name guests use.
const DefaultModuleName = "acbridge"

// ErrNoMemory indicates a calling guest that has no linear memory.
var ErrNoMemory = errors.New("guest has no memory")

// Config configures a Bridge.
type Config struct {
	// ModuleName is the name guests import the functions from.
	//
	// Default: "acbridge"
	ModuleName string

	// Boundary configures the per-guest engines. Boundary.Logger is also
	// used for guest lifecycle records.
	Boundary boundary.Config

	// HeapMaxPages bounds the size a guest memory may be grown to by
	// reserve.
	//
	// Default: memory.MaxPages
	HeapMaxPages uint32

	// CacheEntries sizes the compile cache shared by all guests when
	// Boundary.Cache is nil. Zero disables caching.
	//
	// Default: 64
	CacheEntries int
}

// DefaultConfig returns the default bridge configuration.
func DefaultConfig() Config {
	return Config{
		ModuleName:   DefaultModuleName,
		Boundary:     boundary.DefaultConfig(),
		HeapMaxPages: memory.MaxPages,
		CacheEntries: 64,
	}
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if c.ModuleName == "" {
		return &ConfigError{Field: "ModuleName", Message: "must not be empty"}
	}
	if err := c.Boundary.Validate(); err != nil {
		return &ConfigError{Field: "Boundary", Message: err.Error()}
	}
	if c.HeapMaxPages == 0 || c.HeapMaxPages > memory.MaxPages {
		return &ConfigError{Field: "HeapMaxPages", Message: fmt.Sprintf("must be between 1 and %d", memory.MaxPages)}
	}
	if c.CacheEntries < 0 {
		return &ConfigError{Field: "CacheEntries", Message: "must be >= 0"}
	}
	return nil
}

// ConfigError represents an invalid bridge configuration.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "host: invalid config: " + e.Field + " " + e.Message
}

// Bridge serves the boundary operations to any number of guests.
type Bridge struct {
	config Config
	reg    *boundary.Registry
	log    *slog.Logger

	mu     sync.Mutex
	guests map[api.Module]*boundary.Engine
}

// New creates a Bridge that registers automatons in reg. A nil reg creates
// a fresh registry bounded by config.Boundary.MaxMatchers.
func New(reg *boundary.Registry, config Config) (*Bridge, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if reg == nil {
		reg = boundary.NewRegistry(config.Boundary)
	}
	if config.Boundary.Cache == nil && config.CacheEntries > 0 {
		config.Boundary.Cache = boundary.NewCache(config.CacheEntries)
	}
	log := config.Boundary.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Bridge{
		config: config,
		reg:    reg,
		log:    log,
		guests: make(map[api.Module]*boundary.Engine),
	}, nil
}

// Instantiate creates a Bridge and instantiates its host module in r.
func Instantiate(ctx context.Context, r wazero.Runtime, reg *boundary.Registry, config Config) (api.Module, *Bridge, error) {
	b, err := New(reg, config)
	if err != nil {
		return nil, nil, err
	}
	mod, err := b.Instantiate(ctx, r)
	if err != nil {
		return nil, nil, err
	}
	return mod, b, nil
}

// Instantiate instantiates the host module in r. Guests instantiated in r
// afterwards can import it.
func (b *Bridge) Instantiate(ctx context.Context, r wazero.Runtime) (api.Module, error) {
	mod, err := r.NewHostModuleBuilder(b.config.ModuleName).
		NewFunctionBuilder().WithFunc(b.construct).Export("construct").
		NewFunctionBuilder().WithFunc(b.scan).Export("scan").
		NewFunctionBuilder().WithFunc(b.reserve).Export("reserve").
		NewFunctionBuilder().WithFunc(b.release).Export("release").
		Instantiate(ctx)
	if err != nil {
		return nil, fmt.Errorf("host: instantiate %q: %w", b.config.ModuleName, err)
	}
	return mod, nil
}

// Registry returns the registry shared by all guests.
func (b *Bridge) Registry() *boundary.Registry {
	return b.reg
}

// Cache returns the compile cache shared by all guests, or nil.
func (b *Bridge) Cache() *boundary.Cache {
	return b.config.Boundary.Cache
}

// Guests returns the number of guests that have called the bridge and not
// been forgotten.
func (b *Bridge) Guests() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.guests)
}

// Engine returns the engine serving guest m, creating it on first use.
func (b *Bridge) Engine(m api.Module) (*boundary.Engine, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if e, ok := b.guests[m]; ok {
		return e, nil
	}
	mem := m.Memory()
	if mem == nil {
		return nil, fmt.Errorf("host: module %q: %w", m.Name(), ErrNoMemory)
	}
	heap, err := memory.NewHeap(mem, memory.HeapConfig{
		Base:     max(mem.Size(), memory.Alignment),
		MaxPages: b.config.HeapMaxPages,
	})
	if err != nil {
		return nil, err
	}
	e, err := boundary.NewEngine(mem, heap, b.reg, b.config.Boundary)
	if err != nil {
		return nil, err
	}
	b.guests[m] = e
	b.log.Debug("guest attached",
		slog.String("module", m.Name()),
		slog.Uint64("heap_base", uint64(heap.Base())))
	return e, nil
}

// Forget drops the engine of a guest, typically after the guest is closed.
// Handles it constructed stay valid for other guests.
func (b *Bridge) Forget(m api.Module) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.guests[m]; ok {
		delete(b.guests, m)
		b.log.Debug("guest detached", slog.String("module", m.Name()))
	}
}

func (b *Bridge) construct(_ context.Context, m api.Module, ptr, n uint32) int64 {
	e, err := b.Engine(m)
	if err != nil {
		return int64(boundary.StatusOf(err))
	}
	h, err := e.Construct(ptr, n)
	if err != nil {
		return int64(boundary.StatusOf(err))
	}
	return int64(h)
}

func (b *Bridge) scan(_ context.Context, m api.Module, handle, ptr, n, capacity, out uint32) int64 {
	e, err := b.Engine(m)
	if err != nil {
		return int64(boundary.StatusOf(err))
	}
	res, err := e.Scan(handle, ptr, n, capacity, out)
	if err != nil {
		return int64(boundary.StatusOf(err))
	}
	return boundary.PackScan(res)
}

func (b *Bridge) reserve(_ context.Context, m api.Module, size uint32) int64 {
	e, err := b.Engine(m)
	if err != nil {
		return int64(boundary.StatusOf(err))
	}
	ptr, err := e.Reserve(size)
	if err != nil {
		return int64(boundary.StatusOf(err))
	}
	return int64(ptr)
}

func (b *Bridge) release(_ context.Context, m api.Module, ptr, size uint32) int32 {
	e, err := b.Engine(m)
	if err != nil {
		return int32(boundary.StatusOf(err))
	}
	return int32(boundary.StatusOf(e.Release(ptr, size)))
}
