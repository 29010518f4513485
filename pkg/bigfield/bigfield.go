// Package bigfield wraps github.com/cronokirby/saferith's constant-time
// arithmetic behind the handful of operations the threshold ElGamal layer
// needs: modular exponentiation, modular multiplication, modular inverse,
// and fixed-width wire encoding of field elements.
//
// The protocol's security does not depend on these operations being
// constant-time (spec.md explicitly scopes out side-channel resistance),
// but saferith is what the teacher already depends on for its own Nat/
// Modulus arithmetic, so we reuse it rather than reach for math/big alone.
package bigfield

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/cronokirby/saferith"
)

// Modulus wraps a saferith.Modulus together with the big.Int it was built
// from, since saferith does not expose a cheap way back to big.Int metadata
// such as BitLen for an arbitrary modulus.
type Modulus struct {
	m   *saferith.Modulus
	big *big.Int
}

// NewModulus builds a Modulus from a positive big.Int.
func NewModulus(n *big.Int) *Modulus {
	return &Modulus{
		m:   saferith.ModulusFromNat(new(saferith.Nat).SetBig(n, n.BitLen())),
		big: new(big.Int).Set(n),
	}
}

// Big returns the underlying modulus as a big.Int. The caller must not
// mutate the result.
func (m *Modulus) Big() *big.Int { return m.big }

// ByteLen returns the fixed wire width for elements of this field: the
// number of bytes needed to hold any value in [0, m).
func (m *Modulus) ByteLen() int {
	return (m.big.BitLen() + 7) / 8
}

// Element is a field element, represented as a saferith.Nat; Big converts
// it back to a big.Int on demand.
type Element struct {
	nat *saferith.Nat
}

// FromBig constructs an Element from a big.Int, reduced mod m.
func FromBig(x *big.Int, m *Modulus) *Element {
	nat := new(saferith.Nat).SetBig(x, m.big.BitLen())
	nat.Mod(nat, m.m)
	return &Element{nat: nat}
}

// FromUint64 constructs a small Element.
func FromUint64(x uint64) *Element {
	return &Element{nat: new(saferith.Nat).SetUint64(x)}
}

// Big returns the element's value as a big.Int.
func (e *Element) Big() *big.Int {
	return e.nat.Big()
}

// Bytes returns the element zero-padded to width bytes, big-endian. The
// wire format used by pkg/netchan is little-endian; callers reverse as
// needed at the channel boundary (see netchan.Channel.WriteBigInt).
func (e *Element) Bytes(width int) []byte {
	buf := make([]byte, width)
	return e.nat.FillBytes(buf)
}

// FromBytes parses a big-endian, width-byte field element.
func FromBytes(b []byte) *Element {
	return &Element{nat: new(saferith.Nat).SetBytes(b)}
}

// MulMod returns a*b mod m.
func MulMod(a, b *Element, m *Modulus) *Element {
	z := new(saferith.Nat).ModMul(a.nat, b.nat, m.m)
	return &Element{nat: z}
}

// ExpMod returns base^exp mod m. exp may be negative, in which case the
// base's modular inverse is used.
func ExpMod(base *Element, exp *big.Int, m *Modulus) *Element {
	if exp.Sign() >= 0 {
		e := new(saferith.Nat).SetBig(exp, exp.BitLen())
		z := new(saferith.Nat).Exp(base.nat, e, m.m)
		return &Element{nat: z}
	}
	inv := InverseMod(base, m)
	pos := new(big.Int).Neg(exp)
	return ExpMod(inv, pos, m)
}

// InverseMod returns a's multiplicative inverse mod m. Panics if a is not
// invertible; callers in this module only ever invert values already known
// to be coprime to m (generators, ElGamal masks), so this mirrors the
// original's assumption rather than adding a codepath that cannot trigger.
func InverseMod(a *Element, m *Modulus) *Element {
	inv, invertible := new(saferith.Nat).ModInverse(a.nat, m.m)
	if invertible == 0 {
		panic(fmt.Sprintf("bigfield: %s has no inverse mod %s", a.Big(), m.big))
	}
	return &Element{nat: inv}
}

// RandomElement samples a uniform element of [0, m).
func RandomElement(m *Modulus) (*Element, error) {
	n, err := rand.Int(rand.Reader, m.big)
	if err != nil {
		return nil, fmt.Errorf("bigfield: sampling random element: %w", err)
	}
	return FromBig(n, m), nil
}

// RandomBelow samples a uniform value of [1, bound).
func RandomBelow(bound *big.Int) (*big.Int, error) {
	if bound.Sign() <= 0 {
		return nil, fmt.Errorf("bigfield: bound must be positive")
	}
	span := new(big.Int).Sub(bound, big.NewInt(1))
	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return nil, fmt.Errorf("bigfield: sampling random value: %w", err)
	}
	return n.Add(n, big.NewInt(1)), nil
}
