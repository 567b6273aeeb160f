package memory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/coregx/acbridge/internal/conv"
)

// Alignment is the alignment of every region returned by Heap.
const Alignment = 8

// HeapConfig configures a Heap.
type HeapConfig struct {
	// Base is the first offset the heap may hand out. Offsets below Base
	// belong to someone else. Base must be non-zero so that no region ever
	// starts at offset 0.
	//
	// Default: Alignment
	Base uint32

	// MaxPages bounds the size of the memory the heap may grow to.
	//
	// Default: MaxPages
	MaxPages uint32
}

// DefaultHeapConfig returns a configuration for a heap that owns the whole
// memory except the first word.
func DefaultHeapConfig() HeapConfig {
	return HeapConfig{
		Base:     Alignment,
		MaxPages: MaxPages,
	}
}

// Validate checks if the configuration is valid.
func (c HeapConfig) Validate() error {
	if c.Base == 0 {
		return &ConfigError{Field: "Base", Message: "must be non-zero"}
	}
	if c.MaxPages == 0 || c.MaxPages > MaxPages {
		return &ConfigError{Field: "MaxPages", Message: fmt.Sprintf("must be between 1 and %d", MaxPages)}
	}
	return nil
}

// ConfigError represents an invalid heap configuration.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "memory: invalid config: " + e.Field + " " + e.Message
}

// Stats is a snapshot of heap accounting.
type Stats struct {
	// LiveRegions is the number of reserved, unreleased regions.
	LiveRegions int
	// LiveBytes is the sum of the requested sizes of live regions.
	LiveBytes uint64
	// Reserves and Releases count successful calls.
	Reserves uint64
	Releases uint64
	// HeapBytes is the extent of memory in use by the heap, from Base to the
	// end of the highest block, including free blocks below it.
	HeapBytes uint32
	// FreeBlocks is the length of the free list.
	FreeBlocks int
}

type span struct {
	off  uint32
	size uint32
}

type region struct {
	block     uint32 // aligned size actually carved out
	requested uint32
}

// Heap is a first-fit free-list allocator over a Growable memory.
//
// Every live region is recorded with its requested size, so Release can
// reject double frees and size mismatches instead of corrupting the free
// list. Adjacent free blocks are merged, and a free block at the top of the
// heap is returned to the bump pointer.
//
// Heap is safe for concurrent use.
type Heap struct {
	mem    Growable
	config HeapConfig

	mu    sync.Mutex
	top   uint32
	limit uint32 // end of the memory owned by the heap
	free  []span // sorted by offset, never adjacent
	live  map[uint32]region
	stats Stats
}

// NewHeap creates a heap that hands out regions of mem starting at
// config.Base (rounded up to Alignment).
//
// The heap owns everything from Base to the current end of mem, plus every
// page it grows. Pages grown by someone else are never handed out, so a
// WebAssembly guest may keep growing its memory for its own use.
func NewHeap(mem Growable, config HeapConfig) (*Heap, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	base, ok := conv.AlignUp(config.Base, Alignment)
	if !ok {
		return nil, &ConfigError{Field: "Base", Message: "overflows when aligned"}
	}
	config.Base = base
	return &Heap{
		mem:    mem,
		config: config,
		top:    base,
		limit:  max(base, mem.Size()),
		live:   make(map[uint32]region),
	}, nil
}

// Reserve carves out size bytes. A zero-size request still gets a distinct
// minimal block so that every live region has a unique pointer.
func (h *Heap) Reserve(size uint32) (uint32, error) {
	block, ok := conv.AlignUp(max(size, 1), Alignment)
	if !ok {
		return 0, fmt.Errorf("memory: reserve %d bytes: %w", size, ErrOutOfMemory)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	ptr, ok := h.takeFree(block)
	if !ok {
		var err error
		if ptr, err = h.bump(block); err != nil {
			return 0, fmt.Errorf("memory: reserve %d bytes: %w", size, err)
		}
	}

	h.live[ptr] = region{block: block, requested: size}
	h.stats.Reserves++
	h.stats.LiveRegions++
	h.stats.LiveBytes += uint64(size)
	return ptr, nil
}

// Release returns the region at ptr. size must match the reservation.
func (h *Heap) Release(ptr, size uint32) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.live[ptr]
	if !ok {
		return &RegionError{Ptr: ptr}
	}
	if r.requested != size {
		return &SizeMismatchError{Ptr: ptr, Reserved: r.requested, Released: size}
	}
	delete(h.live, ptr)
	h.insertFree(span{off: ptr, size: r.block})

	h.stats.Releases++
	h.stats.LiveRegions--
	h.stats.LiveBytes -= uint64(size)
	return nil
}

// Stats returns a snapshot of the heap accounting.
func (h *Heap) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	s := h.stats
	s.HeapBytes = h.top - h.config.Base
	s.FreeBlocks = len(h.free)
	return s
}

// Base returns the lowest offset the heap hands out.
func (h *Heap) Base() uint32 {
	return h.config.Base
}

// takeFree finds the first free block of at least block bytes.
func (h *Heap) takeFree(block uint32) (uint32, bool) {
	for i, s := range h.free {
		if s.size < block {
			continue
		}
		if s.size == block {
			h.free = append(h.free[:i], h.free[i+1:]...)
		} else {
			h.free[i] = span{off: s.off + block, size: s.size - block}
		}
		return s.off, true
	}
	return 0, false
}

// bump extends the heap top, growing the memory by whole pages if needed.
func (h *Heap) bump(block uint32) (uint32, error) {
	end, ok := conv.AddUint32(h.top, block)
	if !ok {
		return 0, ErrOutOfMemory
	}
	if end > h.limit {
		size := h.mem.Size()
		if size > h.limit {
			// Pages past limit belong to whoever grew them. Keep the unused
			// tail below limit and continue above the foreign pages.
			if h.top < h.limit {
				h.free = append(h.free, span{off: h.top, size: h.limit - h.top})
			}
			h.top, h.limit = size, size
			if end, ok = conv.AddUint32(h.top, block); !ok {
				return 0, ErrOutOfMemory
			}
		}
		if end > size {
			need := (uint64(end) - uint64(size) + PageSize - 1) / PageSize
			if uint64(size)/PageSize+need > uint64(h.config.MaxPages) {
				return 0, ErrOutOfMemory
			}
			if _, ok := h.mem.Grow(uint32(need)); !ok {
				return 0, ErrOutOfMemory
			}
		}
		h.limit = h.mem.Size()
	}
	ptr := h.top
	h.top = end
	return ptr, nil
}

// insertFree adds s to the free list, merging with its neighbors. A block
// ending at the top lowers the top instead of staying on the list.
func (h *Heap) insertFree(s span) {
	i := sort.Search(len(h.free), func(i int) bool { return h.free[i].off > s.off })

	if i > 0 && h.free[i-1].off+h.free[i-1].size == s.off {
		i--
		s = span{off: h.free[i].off, size: h.free[i].size + s.size}
		h.free = append(h.free[:i], h.free[i+1:]...)
	}
	if i < len(h.free) && s.off+s.size == h.free[i].off {
		s.size += h.free[i].size
		h.free = append(h.free[:i], h.free[i+1:]...)
	}

	if s.off+s.size == h.top {
		h.top = s.off
		return
	}
	h.free = append(h.free, span{})
	copy(h.free[i+1:], h.free[i:])
	h.free[i] = s
}
