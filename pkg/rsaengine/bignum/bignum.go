package bignum

import (
	"errors"
	"math/big"

	"github.com/cronokirby/safenum"
)

// ErrEvenModulus is returned when a Modulus is requested for an even or zero
// value. Montgomery arithmetic only supports odd moduli.
var ErrEvenModulus = errors.New("bignum: modulus must be odd and non-zero")

// Int is an arbitrary-precision natural number.
type Int struct {
	v *safenum.Nat
}

// Modulus is an odd modulus with precomputed Montgomery parameters.
type Modulus struct {
	m    *safenum.Modulus
	bits int
}

// FromBytes interprets b as a big-endian unsigned integer.
func FromBytes(b []byte) *Int {
	return &Int{v: new(safenum.Nat).SetBytes(b)}
}

// FromUint64 returns x as an Int.
func FromUint64(x uint64) *Int {
	return &Int{v: new(safenum.Nat).SetUint64(x)}
}

// FromBig converts a non-negative big.Int. Negative values are rejected by
// returning nil.
func FromBig(x *big.Int) *Int {
	if x == nil || x.Sign() < 0 {
		return nil
	}
	return FromBytes(x.Bytes())
}

// Big returns a math/big copy of x. The conversion is not constant time and
// is meant for key setup, not for per-operation secrets.
func (x *Int) Big() *big.Int {
	return new(big.Int).SetBytes(x.Bytes())
}

// Bytes returns the minimal big-endian encoding of x. Zero encodes as an
// empty slice.
func (x *Int) Bytes() []byte {
	b := x.v.Bytes()
	i := 0
	for i < len(b) && b[i] == 0 {
		i++
	}
	return b[i:]
}

// FillBytes writes x big-endian into buf, left-padded with zeros, and returns
// buf. buf must be large enough to hold x.
func (x *Int) FillBytes(buf []byte) []byte {
	return x.v.FillBytes(buf)
}

// BitLen returns the number of significant bits in x.
func (x *Int) BitLen() int {
	return x.v.TrueLen()
}

// ByteLen returns the length of the minimal big-endian encoding of x.
func (x *Int) ByteLen() int {
	return (x.BitLen() + 7) / 8
}

// IsZero reports whether x == 0.
func (x *Int) IsZero() bool {
	return x.v.EqZero() == 1
}

// Equal reports whether x == y in constant time with respect to the values.
func (x *Int) Equal(y *Int) bool {
	return x.v.Eq(y.v) == 1
}

// Clone returns an independent copy of x.
func (x *Int) Clone() *Int {
	return &Int{v: new(safenum.Nat).SetNat(x.v)}
}

// Clear overwrites x with zero and drops its storage. The runtime may still
// hold copies made during earlier arithmetic; this is best effort.
func (x *Int) Clear() {
	if x == nil || x.v == nil {
		return
	}
	x.v.SetUint64(0)
	x.v = new(safenum.Nat)
}

// NewModulus builds a Modulus from x. x must be odd.
func NewModulus(x *Int) (*Modulus, error) {
	if x == nil || x.IsZero() {
		return nil, ErrEvenModulus
	}
	b := x.Bytes()
	if b[len(b)-1]&1 == 0 {
		return nil, ErrEvenModulus
	}
	return &Modulus{m: safenum.ModulusFromBytes(b), bits: x.BitLen()}, nil
}

// BitLen returns the bit length of m.
func (m *Modulus) BitLen() int {
	return m.bits
}

// Size returns the byte length of m.
func (m *Modulus) Size() int {
	return (m.bits + 7) / 8
}

// Int returns m as an Int.
func (m *Modulus) Int() *Int {
	return &Int{v: m.m.Nat()}
}

// Bytes returns the minimal big-endian encoding of m.
func (m *Modulus) Bytes() []byte {
	return m.Int().Bytes()
}

// Contains reports whether 0 <= x < m.
func (m *Modulus) Contains(x *Int) bool {
	_, _, lt := x.v.CmpMod(m.m)
	return lt == 1
}

// Reduce returns x mod m.
func Reduce(x *Int, m *Modulus) *Int {
	return &Int{v: new(safenum.Nat).Mod(x.v, m.m)}
}

// Exp returns x^e mod m. x need not be reduced.
func Exp(x, e *Int, m *Modulus) *Int {
	base := new(safenum.Nat).Mod(x.v, m.m)
	return &Int{v: new(safenum.Nat).Exp(base, e.v, m.m)}
}

// ModMul returns x*y mod m. x and y must be reduced modulo m.
func ModMul(x, y *Int, m *Modulus) *Int {
	return &Int{v: new(safenum.Nat).ModMul(x.v, y.v, m.m)}
}

// ModSub returns x-y mod m. x and y must be reduced modulo m.
func ModSub(x, y *Int, m *Modulus) *Int {
	return &Int{v: new(safenum.Nat).ModSub(x.v, y.v, m.m)}
}

// ModInverse returns x^-1 mod m and whether the inverse exists. x must be
// reduced modulo m.
func ModInverse(x *Int, m *Modulus) (*Int, bool) {
	if x.IsZero() {
		return nil, false
	}
	inv := &Int{v: new(safenum.Nat).ModInverse(x.v, m.m)}
	check := ModMul(x, inv, m)
	if !check.Equal(FromUint64(1)) {
		return nil, false
	}
	return inv, true
}

// MulAdd returns x*y + z truncated to bits. Callers size bits so that the
// exact result fits.
func MulAdd(x, y, z *Int, bits int) *Int {
	prod := new(safenum.Nat).Mul(x.v, y.v, bits)
	return &Int{v: prod.Add(prod, z.v, bits)}
}

// Mul returns x*y truncated to bits.
func Mul(x, y *Int, bits int) *Int {
	return &Int{v: new(safenum.Nat).Mul(x.v, y.v, bits)}
}
