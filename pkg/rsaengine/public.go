package rsaengine

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"io"

	"github.com/hsiuhsiu/rsa-engine-go/pkg/rsaengine/padding"
)

// PublicEncrypt pads in according to opts and encrypts it with the public
// exponent, writing Size() bytes to out. random supplies padding bytes; nil
// uses the key's bound source.
func (k *Key) PublicEncrypt(in, out []byte, random io.Reader, opts *PaddingOptions) (int, error) {
	const name = "encrypt"
	if err := k.ready(false); err != nil {
		return 0, opError(name, err)
	}
	if err := opts.validate(); err != nil {
		return 0, opError(name, err)
	}
	size := k.Size()
	if len(out) < size {
		return 0, opError(name, &BufferTooSmallError{Required: size})
	}
	if random == nil {
		random = k.rng
	}
	if random == nil {
		return 0, opError(name, ErrRngUnavailable)
	}

	em, err := k.scratchFor(size)
	if err != nil {
		return 0, opError(name, err)
	}
	defer ZeroizeBytes(em)

	if opts.oaep() {
		err = padding.EncodeOAEP(em, in, opts.params(), random)
	} else {
		err = padding.EncodePKCS1v15(em, in, padding.BlockType2, random)
	}
	if err != nil {
		return 0, opError(name, err)
	}
	if err := k.apply(out[:size], em, PublicEncrypt, nil); err != nil {
		return 0, opError(name, err)
	}
	return size, nil
}

// Verify recovers the message signed in sig, which must be Size() bytes,
// and copies it to out. Signatures use PKCS #1 v1.5 block type 1. Every
// verification failure is reported as ErrInvalidSignature.
func (k *Key) Verify(sig, out []byte) (int, error) {
	const name = "verify"
	if err := k.ready(false); err != nil {
		return 0, opError(name, err)
	}
	em, err := k.scratchFor(k.Size())
	if err != nil {
		return 0, opError(name, err)
	}
	defer ZeroizeBytes(em)

	off, err := k.recover(sig, em)
	if err != nil {
		return 0, opError(name, err)
	}
	msg := em[off:]
	if len(out) < len(msg) {
		return 0, opError(name, &BufferTooSmallError{Required: len(msg)})
	}
	return copy(out, msg), nil
}

// VerifyInline is Verify without a second buffer: sig is overwritten and the
// returned slice aliases it.
func (k *Key) VerifyInline(sig []byte) ([]byte, error) {
	const name = "verify"
	if err := k.ready(false); err != nil {
		return nil, opError(name, err)
	}
	off, err := k.recover(sig, sig)
	if err != nil {
		return nil, opError(name, err)
	}
	return sig[off:], nil
}

// VerifyHash checks that sig is a PKCS #1 v1.5 signature over digest, a hash
// computed with h.
func (k *Key) VerifyHash(h HashType, digest, sig []byte) error {
	const name = "verify"
	if err := k.ready(false); err != nil {
		return opError(name, err)
	}
	want, err := padding.DigestInfo(h, digest)
	if err != nil {
		return opError(name, fmt.Errorf("%w: %w", ErrBadArgument, err))
	}
	em, err := k.scratchFor(k.Size())
	if err != nil {
		return opError(name, err)
	}
	defer ZeroizeBytes(em)

	off, err := k.recover(sig, em)
	if err != nil {
		return opError(name, err)
	}
	if subtle.ConstantTimeCompare(em[off:], want) != 1 {
		return opError(name, ErrInvalidSignature)
	}
	return nil
}

// recover applies the public exponent to sig into em and strips type 1
// padding, returning the message offset in em.
func (k *Key) recover(sig, em []byte) (int, error) {
	if len(sig) != k.Size() {
		return 0, ErrInvalidSignature
	}
	if err := k.apply(em, sig, PublicDecrypt, nil); err != nil {
		if errors.Is(err, ErrMessageTooLarge) {
			return 0, ErrInvalidSignature
		}
		return 0, err
	}
	off, err := padding.DecodePKCS1v15(em, padding.BlockType1)
	if err != nil {
		return 0, ErrInvalidSignature
	}
	return off, nil
}
