// Package bloomfilter implements the inverted Bloom filter and counting
// Bloom filter used to drive, and then extract the result of, the ring
// protocol's position-conditional voting pass.
package bloomfilter

import "encoding/binary"

// Element is the fixed-width value type hashed into filter positions,
// matching the original's 32-bit ElementType.
type Element = uint32

// GetHashPositions returns, for each seed, the position e hashes to modulo
// size. It is the shared primitive behind BloomFilter.Insert/CheckElement
// and the enhanced variant's bundled per-element membership test.
func GetHashPositions(e Element, size uint64, seeds []uint32) []uint64 {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], e)

	positions := make([]uint64, len(seeds))
	for i, seed := range seeds {
		positions[i] = hash64(buf[:], seed) % size
	}
	return positions
}

// BloomFilter is a standard k-hash-function Bloom filter over a bit array
// of the given size. The ring protocol uses it inverted (see Invert): a
// zero bit means "this position was hit by some inserted element," which
// lets a position-conditional pass treat a 1 bit as "definitely absent."
type BloomFilter struct {
	size  uint64
	bits  []bool
	seeds []uint32
}

// New constructs an empty filter of the given size with the given
// MurmurHash seeds, one hash function per seed.
func New(size uint64, seeds []uint32) *BloomFilter {
	return &BloomFilter{
		size:  size,
		bits:  make([]bool, size),
		seeds: append([]uint32(nil), seeds...),
	}
}

// Size returns the number of positions in the filter.
func (b *BloomFilter) Size() uint64 { return b.size }

// Insert sets every hashed position of e to 1.
func (b *BloomFilter) Insert(e Element) {
	for _, pos := range GetHashPositions(e, b.size, b.seeds) {
		b.bits[pos] = true
	}
}

// CheckElement reports whether every hashed position of e is set.
func (b *BloomFilter) CheckElement(e Element) bool {
	for _, pos := range GetHashPositions(e, b.size, b.seeds) {
		if !b.bits[pos] {
			return false
		}
	}
	return true
}

// CheckPosition reports the raw bit at pos.
func (b *BloomFilter) CheckPosition(pos uint64) bool { return b.bits[pos] }

// Invert flips every bit in place, turning "present" into "absent."
func (b *BloomFilter) Invert() {
	for i := range b.bits {
		b.bits[i] = !b.bits[i]
	}
}

// Clear resets every bit to zero.
func (b *BloomFilter) Clear() {
	for i := range b.bits {
		b.bits[i] = false
	}
}
