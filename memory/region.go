package memory

// Region is an owned range of a Memory. It carries its own length, so a
// release through Region cannot pass the wrong size.
type Region struct {
	Ptr uint32
	Len uint32
}

// ReserveRegion reserves size bytes from a.
func ReserveRegion(a Allocator, size uint32) (Region, error) {
	ptr, err := a.Reserve(size)
	if err != nil {
		return Region{}, err
	}
	return Region{Ptr: ptr, Len: size}, nil
}

// WriteRegion reserves len(data) bytes from a and copies data into them.
// On a write failure the region is released again.
func WriteRegion(mem Memory, a Allocator, data []byte) (Region, error) {
	if uint64(len(data)) > uint64(^uint32(0)) {
		return Region{}, &BoundsError{Offset: 0, Length: ^uint32(0), Size: mem.Size()}
	}
	r, err := ReserveRegion(a, uint32(len(data)))
	if err != nil {
		return Region{}, err
	}
	if !mem.Write(r.Ptr, data) {
		_ = r.Release(a)
		return Region{}, &BoundsError{Offset: r.Ptr, Length: r.Len, Size: mem.Size()}
	}
	return r, nil
}

// Release returns the region to a.
func (r Region) Release(a Allocator) error {
	return a.Release(r.Ptr, r.Len)
}

// End returns the offset one past the last byte of the region.
func (r Region) End() uint64 {
	return uint64(r.Ptr) + uint64(r.Len)
}
