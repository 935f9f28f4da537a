package rsaengine

import (
	"fmt"
	"io"

	"github.com/hsiuhsiu/rsa-engine-go/pkg/rsaengine/bignum"
)

// Operation selects which exponent the raw permutation applies. Encrypt and
// decrypt name the exponent, not the padding purpose: signing is
// PrivateEncrypt and verification is PublicDecrypt.
type Operation int

const (
	PublicEncrypt  Operation = 0
	PublicDecrypt  Operation = 1
	PrivateEncrypt Operation = 2
	PrivateDecrypt Operation = 3
)

func (o Operation) String() string {
	switch o {
	case PublicEncrypt:
		return "public-encrypt"
	case PublicDecrypt:
		return "public-decrypt"
	case PrivateEncrypt:
		return "private-encrypt"
	case PrivateDecrypt:
		return "private-decrypt"
	}
	return fmt.Sprintf("Operation(%d)", int(o))
}

func (o Operation) valid() bool {
	return o >= PublicEncrypt && o <= PrivateDecrypt
}

func (o Operation) private() bool {
	return o == PrivateEncrypt || o == PrivateDecrypt
}

// Function applies the raw RSA permutation to in, which must be exactly
// Size() bytes, and writes Size() bytes to out. Private operations are
// blinded with random, or with the key's bound source when random is nil.
func (k *Key) Function(in, out []byte, op Operation, random io.Reader) (int, error) {
	const name = "function"
	if err := k.checkFunction(in, op); err != nil {
		return 0, opError(name, err)
	}
	size := k.Size()
	if len(out) < size {
		return 0, opError(name, &BufferTooSmallError{Required: size})
	}
	src, err := k.blindingSource(op, random)
	if err != nil {
		return 0, opError(name, err)
	}
	if err := k.apply(out[:size], in, op, src); err != nil {
		return 0, opError(name, err)
	}
	return size, nil
}

func (k *Key) checkFunction(in []byte, op Operation) error {
	if !op.valid() {
		return fmt.Errorf("%w: unknown operation %d", ErrBadArgument, int(op))
	}
	if err := k.ready(op.private()); err != nil {
		return err
	}
	if len(in) != k.Size() {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidInputLength, len(in), k.Size())
	}
	return nil
}

// blindingSource resolves the random source for op under the key's policy.
// A nil result with a nil error means run unblinded.
func (k *Key) blindingSource(op Operation, random io.Reader) (io.Reader, error) {
	if !op.private() {
		return nil, nil
	}
	if random == nil {
		random = k.rng
	}
	if random == nil && k.blinding == BlindingRequired {
		return nil, ErrRngUnavailable
	}
	return random, nil
}

// apply computes the permutation of in into out, which must both be Size()
// bytes and may alias. safenum arithmetic writes into the storage of the key
// values, so apply must not run on the same key from two goroutines;
// offloaded work runs on a detached copy.
func (k *Key) apply(out, in []byte, op Operation, random io.Reader) error {
	m := bignum.FromBytes(in)
	if !k.nMod.Contains(m) {
		return ErrMessageTooLarge
	}
	if !op.private() {
		bignum.Exp(m, k.e, k.nMod).FillBytes(out)
		return nil
	}

	x := m
	var b *blinder
	if random != nil {
		var err error
		if b, err = newBlinder(k.nMod, k.e, random); err != nil {
			return err
		}
		defer b.clear()
		x = b.blind(m, k.nMod)
	}

	s := k.exponentiate(x)
	if b != nil {
		s = b.unblind(s, k.nMod)
	}
	defer s.Clear()

	if !bignum.Exp(s, k.e, k.nMod).Equal(m) {
		return ErrFault
	}
	s.FillBytes(out)
	return nil
}

// exponentiate returns x^d mod n, through the factors when the key has
// consistent CRT components.
func (k *Key) exponentiate(x *bignum.Int) *bignum.Int {
	if !k.crt {
		return bignum.Exp(x, k.d, k.nMod)
	}

	mp := bignum.Exp(x, k.dP, k.pMod)
	mq := bignum.Exp(x, k.dQ, k.qMod)
	defer mp.Clear()
	defer mq.Clear()

	// h = u * (mp - mq) mod p; m = mq + h*q
	h := bignum.ModMul(k.u, bignum.ModSub(mp, bignum.Reduce(mq, k.pMod), k.pMod), k.pMod)
	defer h.Clear()
	return bignum.MulAdd(h, k.q, mq, k.nMod.BitLen())
}
