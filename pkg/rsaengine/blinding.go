package rsaengine

import (
	"fmt"
	"io"

	"github.com/hsiuhsiu/rsa-engine-go/pkg/rsaengine/bignum"
)

const maxBlindingAttempts = 64

// blinder holds r^e and r^-1 mod n for one private operation.
type blinder struct {
	re   *bignum.Int
	rInv *bignum.Int
}

// newBlinder draws r uniformly from [1, n) until it is invertible mod n.
func newBlinder(n *bignum.Modulus, e *bignum.Int, random io.Reader) (*blinder, error) {
	buf := make([]byte, n.Size())
	defer ZeroizeBytes(buf)
	excess := uint(n.Size()*8 - n.BitLen())

	for i := 0; i < maxBlindingAttempts; i++ {
		if _, err := io.ReadFull(random, buf); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRngUnavailable, err)
		}
		buf[0] &= 0xFF >> excess

		r := bignum.FromBytes(buf)
		if r.IsZero() || !n.Contains(r) {
			continue
		}
		rInv, ok := bignum.ModInverse(r, n)
		if !ok {
			r.Clear()
			continue
		}
		b := &blinder{re: bignum.Exp(r, e, n), rInv: rInv}
		r.Clear()
		return b, nil
	}
	return nil, fmt.Errorf("%w: no invertible blinding factor found", ErrRngUnavailable)
}

// blind returns r^e * m mod n.
func (b *blinder) blind(m *bignum.Int, n *bignum.Modulus) *bignum.Int {
	return bignum.ModMul(b.re, m, n)
}

// unblind returns s * r^-1 mod n.
func (b *blinder) unblind(s *bignum.Int, n *bignum.Modulus) *bignum.Int {
	return bignum.ModMul(s, b.rInv, n)
}

func (b *blinder) clear() {
	b.re.Clear()
	b.rInv.Clear()
}
