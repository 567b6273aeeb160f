//go:build wasip1

package main

import (
	"encoding/binary"
	"sync"
	"unsafe"

	"github.com/coregx/acbridge/memory"
)

// pinnedHeap is both the allocator and the memory of the callee. Regions
// are Go byte slices kept reachable until released, addressed by their
// location in the module's linear memory. Only bytes inside a live region
// can be read or written.
type pinnedHeap struct {
	mu      sync.Mutex
	regions map[uint32][]byte
}

func newPinnedHeap() *pinnedHeap {
	return &pinnedHeap{regions: make(map[uint32][]byte)}
}

func (h *pinnedHeap) Reserve(size uint32) (uint32, error) {
	buf := make([]byte, max(size, 1))
	ptr := uint32(uintptr(unsafe.Pointer(unsafe.SliceData(buf)))) //nolint:gosec // G115: wasm32 addresses

	h.mu.Lock()
	h.regions[ptr] = buf[:size]
	h.mu.Unlock()
	return ptr, nil
}

func (h *pinnedHeap) Release(ptr, size uint32) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	buf, ok := h.regions[ptr]
	if !ok {
		return &memory.RegionError{Ptr: ptr}
	}
	if uint32(len(buf)) != size { //nolint:gosec // G115: len <= size of a uint32 request
		return &memory.SizeMismatchError{Ptr: ptr, Reserved: uint32(len(buf)), Released: size} //nolint:gosec // G115
	}
	delete(h.regions, ptr)
	return nil
}

// find returns the n bytes at off if they lie inside one live region.
func (h *pinnedHeap) find(off, n uint32) ([]byte, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ptr, buf := range h.regions {
		if off < ptr {
			continue
		}
		rel := uint64(off - ptr)
		if rel+uint64(n) <= uint64(len(buf)) {
			return buf[rel : rel+uint64(n) : rel+uint64(n)], true
		}
	}
	return nil, false
}

// Size returns the end of the highest live region.
func (h *pinnedHeap) Size() uint32 {
	h.mu.Lock()
	defer h.mu.Unlock()

	var end uint32
	for ptr, buf := range h.regions {
		end = max(end, ptr+uint32(len(buf))) //nolint:gosec // G115: wasm32 addresses
	}
	return end
}

func (h *pinnedHeap) Contains(ptr, n uint32) bool {
	_, ok := h.find(ptr, n)
	return ok
}

func (h *pinnedHeap) Read(off, n uint32) ([]byte, bool) {
	return h.find(off, n)
}

func (h *pinnedHeap) Write(off uint32, v []byte) bool {
	b, ok := h.find(off, uint32(len(v))) //nolint:gosec // G115: wasm32 lengths
	if ok {
		copy(b, v)
	}
	return ok
}

func (h *pinnedHeap) ReadUint32Le(off uint32) (uint32, bool) {
	b, ok := h.find(off, 4)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint32(b), true
}

func (h *pinnedHeap) WriteUint32Le(off, v uint32) bool {
	b, ok := h.find(off, 4)
	if ok {
		binary.LittleEndian.PutUint32(b, v)
	}
	return ok
}
