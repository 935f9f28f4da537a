package rsaengine

import (
	"errors"
	"fmt"
	"io"

	"github.com/hsiuhsiu/rsa-engine-go/pkg/rsaengine/padding"
)

// PrivateDecrypt decrypts in, which must be Size() bytes, and copies the
// message to out. out must hold the longest message the padding allows,
// whatever the actual length, so its size cannot reveal anything about the
// plaintext. Every padding failure, including a ciphertext not below the
// modulus, is reported as ErrInvalidPadding.
func (k *Key) PrivateDecrypt(in, out []byte, opts *PaddingOptions) (int, error) {
	const name = "decrypt"
	if err := k.checkDecrypt(in, opts); err != nil {
		return 0, opError(name, err)
	}
	if limit := opts.maxMessage(k.Size()); len(out) < limit {
		return 0, opError(name, &BufferTooSmallError{Required: limit})
	}
	em, err := k.scratchFor(k.Size())
	if err != nil {
		return 0, opError(name, err)
	}
	defer ZeroizeBytes(em)

	off, err := k.decrypt(in, em, opts)
	if err != nil {
		return 0, opError(name, err)
	}
	return copy(out, em[off:]), nil
}

// PrivateDecryptInline decrypts in place. The returned slice aliases in; on
// failure in is zeroized.
func (k *Key) PrivateDecryptInline(in []byte, opts *PaddingOptions) ([]byte, error) {
	const name = "decrypt"
	if err := k.checkDecrypt(in, opts); err != nil {
		return nil, opError(name, err)
	}
	off, err := k.decrypt(in, in, opts)
	if err != nil {
		ZeroizeBytes(in)
		return nil, opError(name, err)
	}
	return in[off:], nil
}

func (k *Key) checkDecrypt(in []byte, opts *PaddingOptions) error {
	if err := k.checkFunction(in, PrivateDecrypt); err != nil {
		return err
	}
	return opts.validate()
}

func (k *Key) decrypt(in, em []byte, opts *PaddingOptions) (int, error) {
	src, err := k.blindingSource(PrivateDecrypt, nil)
	if err != nil {
		return 0, err
	}
	return unpad(em, k.apply(em, in, PrivateDecrypt, src), opts)
}

// unpad strips the padding from em, the raw decryption result produced with
// error err, and returns the message offset. Out-of-range ciphertexts and
// padding failures collapse into ErrInvalidPadding.
func unpad(em []byte, err error, opts *PaddingOptions) (int, error) {
	if err != nil {
		if errors.Is(err, ErrMessageTooLarge) {
			return 0, ErrInvalidPadding
		}
		return 0, err
	}
	var off int
	if opts.oaep() {
		off, err = padding.DecodeOAEP(em, opts.params())
	} else {
		off, err = padding.DecodePKCS1v15(em, padding.BlockType2)
	}
	if err != nil {
		return 0, ErrInvalidPadding
	}
	return off, nil
}

// Sign pads in with PKCS #1 v1.5 block type 1 and applies the private
// exponent, writing Size() bytes to out. random blinds the operation; nil
// uses the key's bound source.
func (k *Key) Sign(in, out []byte, random io.Reader) (int, error) {
	const name = "sign"
	if err := k.ready(true); err != nil {
		return 0, opError(name, err)
	}
	size := k.Size()
	if len(out) < size {
		return 0, opError(name, &BufferTooSmallError{Required: size})
	}
	src, err := k.blindingSource(PrivateEncrypt, random)
	if err != nil {
		return 0, opError(name, err)
	}

	em, err := k.scratchFor(size)
	if err != nil {
		return 0, opError(name, err)
	}
	defer ZeroizeBytes(em)

	if err := padding.EncodePKCS1v15(em, in, padding.BlockType1, nil); err != nil {
		return 0, opError(name, err)
	}
	if err := k.apply(out[:size], em, PrivateEncrypt, src); err != nil {
		return 0, opError(name, err)
	}
	return size, nil
}

// SignHash signs digest, a hash computed with h, wrapping it in a DER
// DigestInfo first.
func (k *Key) SignHash(h HashType, digest, out []byte, random io.Reader) (int, error) {
	info, err := padding.DigestInfo(h, digest)
	if err != nil {
		return 0, opError("sign", fmt.Errorf("%w: %w", ErrBadArgument, err))
	}
	return k.Sign(info, out, random)
}
