package memory

import "encoding/binary"

// MaxPages is the largest page count whose byte size fits in a uint32.
const MaxPages = 65535

// Linear is a growable in-process Memory backed by a byte slice.
//
// Linear is not safe for concurrent mutation, matching the single-threaded
// contract of a WebAssembly linear memory.
type Linear struct {
	buf      []byte
	maxPages uint32
}

// NewLinear creates a memory of initial pages that may grow to maxPages.
// maxPages is clamped to [initial, MaxPages].
func NewLinear(initial, maxPages uint32) *Linear {
	maxPages = min(maxPages, MaxPages)
	initial = min(initial, maxPages)
	return &Linear{
		buf:      make([]byte, int(initial)*PageSize),
		maxPages: maxPages,
	}
}

// Size returns the memory size in bytes.
func (m *Linear) Size() uint32 {
	return uint32(len(m.buf)) //nolint:gosec // G115: len(buf) <= MaxPages*PageSize
}

// Pages returns the memory size in pages.
func (m *Linear) Pages() uint32 {
	return m.Size() / PageSize
}

// Grow extends the memory by deltaPages zeroed pages.
func (m *Linear) Grow(deltaPages uint32) (uint32, bool) {
	prev := m.Pages()
	if uint64(prev)+uint64(deltaPages) > uint64(m.maxPages) {
		return prev, false
	}
	m.buf = append(m.buf, make([]byte, int(deltaPages)*PageSize)...)
	return prev, true
}

func (m *Linear) inBounds(offset, byteCount uint32) bool {
	return uint64(offset)+uint64(byteCount) <= uint64(len(m.buf))
}

// Read returns a view of byteCount bytes at offset.
func (m *Linear) Read(offset, byteCount uint32) ([]byte, bool) {
	if !m.inBounds(offset, byteCount) {
		return nil, false
	}
	return m.buf[offset : offset+byteCount : offset+byteCount], true
}

// Write copies v to offset.
func (m *Linear) Write(offset uint32, v []byte) bool {
	if uint64(len(v)) > uint64(^uint32(0)) || !m.inBounds(offset, uint32(len(v))) {
		return false
	}
	copy(m.buf[offset:], v)
	return true
}

// ReadUint32Le reads a little-endian uint32 at offset.
func (m *Linear) ReadUint32Le(offset uint32) (uint32, bool) {
	if !m.inBounds(offset, 4) {
		return 0, false
	}
	return binary.LittleEndian.Uint32(m.buf[offset:]), true
}

// WriteUint32Le writes v as a little-endian uint32 at offset.
func (m *Linear) WriteUint32Le(offset, v uint32) bool {
	if !m.inBounds(offset, 4) {
		return false
	}
	binary.LittleEndian.PutUint32(m.buf[offset:], v)
	return true
}
