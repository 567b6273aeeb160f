// Package registry provides an append-only table that maps sequential
// 32-bit handles to values.
//
// Handles are assigned from 0 in registration order and stay valid for the
// lifetime of the Registry; there is no removal. A Registry is an explicit
// value: components that share handles share the Registry they were given.
package registry

import (
	"errors"
	"fmt"
	"math"
	"sync"
)

var (
	// ErrInvalidHandle indicates a handle that was never issued.
	ErrInvalidHandle = errors.New("invalid handle")

	// ErrFull indicates the registry reached its configured bound.
	ErrFull = errors.New("registry full")
)

// HandleError reports a lookup of an unknown handle.
type HandleError struct {
	Handle uint32
	Len    int
}

// Error implements the error interface.
func (e *HandleError) Error() string {
	return fmt.Sprintf("registry: handle %d not issued (have %d): %v", e.Handle, e.Len, ErrInvalidHandle)
}

// Unwrap returns ErrInvalidHandle.
func (e *HandleError) Unwrap() error {
	return ErrInvalidHandle
}

// Registry is a concurrency-safe, append-only handle table.
type Registry[T any] struct {
	mu     sync.RWMutex
	values []T
	max    uint64
}

// New creates a registry that holds at most maxEntries values.
// maxEntries <= 0 means the full 32-bit handle space.
func New[T any](maxEntries int) *Registry[T] {
	limit := uint64(math.MaxUint32) + 1
	if maxEntries > 0 && uint64(maxEntries) < limit {
		limit = uint64(maxEntries)
	}
	return &Registry[T]{max: limit}
}

// Register appends v and returns its handle.
func (r *Registry[T]) Register(v T) (uint32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := uint64(len(r.values))
	if n >= r.max {
		return 0, fmt.Errorf("registry: register entry %d: %w", n, ErrFull)
	}
	r.values = append(r.values, v)
	return uint32(n), nil //nolint:gosec // G115: n < max <= 1<<32
}

// Lookup returns the value registered under h.
func (r *Registry[T]) Lookup(h uint32) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if uint64(h) >= uint64(len(r.values)) {
		var zero T
		return zero, &HandleError{Handle: h, Len: len(r.values)}
	}
	return r.values[h], nil
}

// Len returns the number of registered values.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.values)
}
