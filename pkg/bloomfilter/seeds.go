package bloomfilter

import (
	"encoding/binary"

	"github.com/zeebo/blake3"
)

// DeriveSeeds expands one base seed into k independent 32-bit MurmurHash
// seeds using BLAKE3 as an XOF, so a config file only needs to carry a
// single seed value rather than k of them. The original C++ configuration
// lists all k seeds explicitly (see common.h's murmurhash_seeds); config
// files produced that way are still accepted verbatim by pkg/config, this
// is purely a convenience for configs that specify one base seed instead.
func DeriveSeeds(base []byte, k int) []uint32 {
	h := blake3.New()
	h.Write(base)
	digest := h.Digest()

	out := make([]uint32, k)
	var buf [4]byte
	for i := range out {
		digest.Read(buf[:])
		out[i] = binary.LittleEndian.Uint32(buf[:])
	}
	return out
}
