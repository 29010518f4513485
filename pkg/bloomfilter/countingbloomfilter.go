package bloomfilter

import "math"

// CountingBloomFilter replaces each bit of a Bloom filter with a counter, so
// that the number of times a position was voted for survives across inserts.
// The protocol extracts an element's vote count as the minimum counter
// across its k hashed positions, same as a standard counting Bloom filter's
// membership-count query.
type CountingBloomFilter struct {
	size     uint64
	counters []uint32
	seeds    []uint32
}

// NewCounting constructs an empty counting filter.
func NewCounting(size uint64, seeds []uint32) *CountingBloomFilter {
	return &CountingBloomFilter{
		size:     size,
		counters: make([]uint32, size),
		seeds:    append([]uint32(nil), seeds...),
	}
}

// Size returns the number of positions in the filter.
func (c *CountingBloomFilter) Size() uint64 { return c.size }

// Insert increments every hashed position of e.
func (c *CountingBloomFilter) Insert(e Element) {
	for _, pos := range GetHashPositions(e, c.size, c.seeds) {
		c.counters[pos]++
	}
}

// Remove decrements every hashed position of e.
func (c *CountingBloomFilter) Remove(e Element) {
	for _, pos := range GetHashPositions(e, c.size, c.seeds) {
		c.counters[pos]--
	}
}

// Set overwrites the counter at pos.
func (c *CountingBloomFilter) Set(pos uint64, val uint32) { c.counters[pos] = val }

// CheckPosition returns the counter at pos.
func (c *CountingBloomFilter) CheckPosition(pos uint64) uint32 { return c.counters[pos] }

// CheckElement returns the minimum counter across e's hashed positions,
// i.e. an upper bound on how many times e was voted for (hash collisions
// can only raise a counter).
func (c *CountingBloomFilter) CheckElement(e Element) uint32 {
	r := uint32(math.MaxUint32)
	for _, pos := range GetHashPositions(e, c.size, c.seeds) {
		if c.counters[pos] < r {
			r = c.counters[pos]
		}
	}
	return r
}
