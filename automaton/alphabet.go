package automaton

// ByteClasses maps each byte value to its equivalence class.
//
// Two bytes share a class if no state of the automaton distinguishes them.
// Every byte that appears on a trie edge (and, when folding case, its
// upper-case twin) gets a class of its own; each run of bytes between them
// collapses into one class. Transition rows then hold AlphabetLen() entries
// instead of 256.
//
// Example for patterns {"ab"} with case folding:
//   - bytes 0x00-0x40 share class 0
//   - 'A' is class 1, 'B' is class 2
//   - 0x43-0x60 share class 3
//   - 'a' is class 4, 'b' is class 5
//   - 0x63-0xff share class 6
type ByteClasses struct {
	classes [256]byte
}

// SingletonByteClasses returns ByteClasses where each byte is its own class.
func SingletonByteClasses() ByteClasses {
	var bc ByteClasses
	for i := 0; i < 256; i++ {
		bc.classes[i] = byte(i)
	}
	return bc
}

// Get returns the equivalence class for the given byte.
func (bc *ByteClasses) Get(b byte) byte {
	return bc.classes[b]
}

// AlphabetLen returns the number of distinct classes.
// Classes are assigned in increasing byte order, so the last byte holds the
// largest class.
func (bc *ByteClasses) AlphabetLen() int {
	return int(bc.classes[255]) + 1
}

// Representatives returns one byte per class, in class order.
func (bc *ByteClasses) Representatives() []byte {
	reps := make([]byte, 0, bc.AlphabetLen())
	next := 0
	for b := 0; b < 256; b++ {
		if int(bc.classes[b]) == next {
			reps = append(reps, byte(b))
			next++
		}
	}
	return reps
}

// ByteClassSet records class boundaries while patterns are collected.
//
// Bit i is set when byte i ends a class. SetRange(lo, hi) marks lo-1 and hi,
// which isolates [lo, hi] from its neighbours.
type ByteClassSet struct {
	bits [4]uint64
}

// SetRange marks [start, end] as a range with its own transitions.
func (bcs *ByteClassSet) SetRange(start, end byte) {
	if start > 0 {
		bcs.setBit(start - 1)
	}
	bcs.setBit(end)
}

// SetByte marks a single byte as having a distinct transition.
func (bcs *ByteClassSet) SetByte(b byte) {
	bcs.SetRange(b, b)
}

func (bcs *ByteClassSet) setBit(b byte) {
	bcs.bits[b/64] |= 1 << (b % 64)
}

func (bcs *ByteClassSet) getBit(b byte) bool {
	return bcs.bits[b/64]&(1<<(b%64)) != 0
}

// ByteClasses converts the boundary set into a lookup table by walking the
// 256 bytes and starting a new class after every boundary.
func (bcs *ByteClassSet) ByteClasses() ByteClasses {
	var bc ByteClasses
	class := byte(0)
	for b := 0; b < 256; b++ {
		bc.classes[b] = class
		// The class after byte 255 would wrap; there is nothing to assign.
		if b < 255 && bcs.getBit(byte(b)) {
			class++
		}
	}
	return bc
}
