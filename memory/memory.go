// Package memory implements the byte-level side of the foreign-memory
// boundary: the flat address space shared with the caller, the allocator
// that hands regions of it to the caller, and helpers that borrow, decode
// and encode values at caller-supplied offsets.
//
// The Memory interface is the subset of wazero's api.Memory the boundary
// needs, so a WebAssembly guest's memory can be used directly. Linear is an
// in-process implementation with the same page-granular growth rules.
//
// Ownership protocol:
//   - Reserve transfers a region to the caller.
//   - Release takes it back and requires the exact size that was reserved.
//   - Borrowed views (Borrow, Read) are valid only for the duration of the
//     call that obtained them and are never retained.
package memory

import (
	"errors"
	"fmt"
)

// PageSize is the growth unit of a linear memory, as in WebAssembly.
const PageSize = 65536

// Memory is a flat, byte-addressed region with 32-bit offsets.
//
// Read returns a view, not a copy; writes through the view are visible to
// the owner of the memory. All methods report false instead of panicking
// when the requested range is outside the memory.
type Memory interface {
	// Size returns the memory size in bytes.
	Size() uint32
	Read(offset, byteCount uint32) ([]byte, bool)
	Write(offset uint32, v []byte) bool
	ReadUint32Le(offset uint32) (uint32, bool)
	WriteUint32Le(offset, v uint32) bool
}

// Growable is a Memory that can be extended by whole pages.
type Growable interface {
	Memory

	// Grow adds deltaPages pages and returns the previous size in pages.
	Grow(deltaPages uint32) (previousPages uint32, ok bool)
}

// Allocator hands out and takes back regions of a Memory.
type Allocator interface {
	// Reserve transfers ownership of size fresh bytes to the caller and
	// returns their offset. The contents are unspecified.
	Reserve(size uint32) (uint32, error)

	// Release returns a region to the allocator. size must equal the value
	// passed to the matching Reserve.
	Release(ptr, size uint32) error
}

// Common memory errors.
var (
	// ErrOutOfBounds indicates a region that does not lie inside the memory.
	ErrOutOfBounds = errors.New("region out of bounds")

	// ErrInvalidEncoding indicates bytes that are not well-formed UTF-8.
	ErrInvalidEncoding = errors.New("invalid text encoding")

	// ErrSizeMismatch indicates a release whose size differs from the
	// reservation.
	ErrSizeMismatch = errors.New("release size does not match reservation")

	// ErrUnknownRegion indicates a release of a pointer that is not a live
	// reservation, such as a double free.
	ErrUnknownRegion = errors.New("region is not reserved")

	// ErrOutOfMemory indicates the allocator could not grow the memory.
	ErrOutOfMemory = errors.New("out of memory")
)

// BoundsError describes a region that falls outside the memory.
type BoundsError struct {
	Offset uint32
	Length uint32
	Size   uint32
}

// Error implements the error interface.
func (e *BoundsError) Error() string {
	return fmt.Sprintf("memory: region [%d, %d+%d) outside memory of %d bytes: %v",
		e.Offset, e.Offset, e.Length, e.Size, ErrOutOfBounds)
}

// Unwrap returns ErrOutOfBounds.
func (e *BoundsError) Unwrap() error {
	return ErrOutOfBounds
}

// EncodingError reports the first malformed byte of a text region.
type EncodingError struct {
	// Offset is relative to the start of the region.
	Offset int
}

// Error implements the error interface.
func (e *EncodingError) Error() string {
	return fmt.Sprintf("memory: malformed UTF-8 at byte %d: %v", e.Offset, ErrInvalidEncoding)
}

// Unwrap returns ErrInvalidEncoding.
func (e *EncodingError) Unwrap() error {
	return ErrInvalidEncoding
}

// SizeMismatchError reports a release with the wrong size. The region stays
// reserved.
type SizeMismatchError struct {
	Ptr      uint32
	Reserved uint32
	Released uint32
}

// Error implements the error interface.
func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("memory: release of %d with size %d, reserved %d: %v",
		e.Ptr, e.Released, e.Reserved, ErrSizeMismatch)
}

// Unwrap returns ErrSizeMismatch.
func (e *SizeMismatchError) Unwrap() error {
	return ErrSizeMismatch
}

// RegionError reports a release of a pointer with no live reservation.
type RegionError struct {
	Ptr uint32
}

// Error implements the error interface.
func (e *RegionError) Error() string {
	return fmt.Sprintf("memory: release of %d: %v", e.Ptr, ErrUnknownRegion)
}

// Unwrap returns ErrUnknownRegion.
func (e *RegionError) Unwrap() error {
	return ErrUnknownRegion
}
