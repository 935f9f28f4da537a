package rsaengine

import (
	"context"
	"encoding/asn1"
	"fmt"
	"math/big"

	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"

	"github.com/hsiuhsiu/rsa-engine-go/pkg/rsaengine/bignum"
)

var oidRSAEncryption = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 1}

// DecodePrivateKey populates k from a DER RSAPrivateKey (PKCS #1):
//
//	RSAPrivateKey ::= SEQUENCE {
//	    version Version, modulus INTEGER, publicExponent INTEGER,
//	    privateExponent INTEGER, prime1 INTEGER, prime2 INTEGER,
//	    exponent1 INTEGER, exponent2 INTEGER, coefficient INTEGER }
//
// Only two-prime keys (version 0) are accepted. It returns the number of
// bytes consumed; trailing data is left for the caller.
func (k *Key) DecodePrivateKey(der []byte) (int, error) {
	const name = "decode private key"
	if err := k.populate(); err != nil {
		return 0, opError(name, err)
	}

	input := cryptobyte.String(der)
	var seq cryptobyte.String
	if !input.ReadASN1(&seq, cbasn1.SEQUENCE) {
		return 0, opError(name, fmt.Errorf("%w: not a DER sequence", ErrMalformedKey))
	}
	consumed := len(der) - len(input)

	var version int
	if !seq.ReadASN1Integer(&version) {
		return 0, opError(name, fmt.Errorf("%w: missing version", ErrMalformedKey))
	}
	if version != 0 {
		return 0, opError(name, fmt.Errorf("%w: unsupported version %d", ErrMalformedKey, version))
	}

	var comps [8]*bignum.Int
	for i := range comps {
		v := new(big.Int)
		if !seq.ReadASN1Integer(v) || v.Sign() < 0 {
			v.SetInt64(0)
			clearInts(comps[:i]...)
			return 0, opError(name, fmt.Errorf("%w: component %d", ErrMalformedKey, i))
		}
		comps[i] = bignum.FromBig(v)
		v.SetInt64(0)
	}
	if !seq.Empty() {
		clearInts(comps[:]...)
		return 0, opError(name, fmt.Errorf("%w: unexpected trailing components", ErrMalformedKey))
	}

	if err := k.setPrivate(comps[0], comps[1], comps[2], comps[3], comps[4], comps[5], comps[6], comps[7]); err != nil {
		return 0, opError(name, malformed(err))
	}
	k.logger.Debug(context.Background(), "private key decoded", "bits", k.BitLen(), "crt", k.crt)
	return consumed, nil
}

// DecodePublicKey populates k from a DER SubjectPublicKeyInfo carrying an
// rsaEncryption key, or from a bare PKCS #1 RSAPublicKey. It returns the
// number of bytes consumed.
func (k *Key) DecodePublicKey(der []byte) (int, error) {
	const name = "decode public key"
	if err := k.populate(); err != nil {
		return 0, opError(name, err)
	}

	input := cryptobyte.String(der)
	var seq cryptobyte.String
	if !input.ReadASN1(&seq, cbasn1.SEQUENCE) {
		return 0, opError(name, fmt.Errorf("%w: not a DER sequence", ErrMalformedKey))
	}
	consumed := len(der) - len(input)

	body := seq
	if seq.PeekASN1Tag(cbasn1.SEQUENCE) {
		inner, err := readSubjectPublicKeyInfo(seq)
		if err != nil {
			return 0, opError(name, err)
		}
		in := cryptobyte.String(inner)
		if !in.ReadASN1(&body, cbasn1.SEQUENCE) || !in.Empty() {
			return 0, opError(name, fmt.Errorf("%w: bad RSAPublicKey", ErrMalformedKey))
		}
	}

	n, e := new(big.Int), new(big.Int)
	if !body.ReadASN1Integer(n) || !body.ReadASN1Integer(e) || !body.Empty() {
		return 0, opError(name, fmt.Errorf("%w: bad RSAPublicKey", ErrMalformedKey))
	}
	if n.Sign() <= 0 || e.Sign() <= 0 {
		return 0, opError(name, fmt.Errorf("%w: non-positive component", ErrMalformedKey))
	}
	if err := k.setPublic(bignum.FromBig(n), bignum.FromBig(e)); err != nil {
		return 0, opError(name, malformed(err))
	}
	k.logger.Debug(context.Background(), "public key decoded", "bits", k.BitLen())
	return consumed, nil
}

// readSubjectPublicKeyInfo checks the algorithm identifier and returns the
// subjectPublicKey bit string contents.
func readSubjectPublicKeyInfo(spki cryptobyte.String) ([]byte, error) {
	var algo cryptobyte.String
	var oid asn1.ObjectIdentifier
	if !spki.ReadASN1(&algo, cbasn1.SEQUENCE) || !algo.ReadASN1ObjectIdentifier(&oid) {
		return nil, fmt.Errorf("%w: bad algorithm identifier", ErrMalformedKey)
	}
	if !oid.Equal(oidRSAEncryption) {
		return nil, fmt.Errorf("%w: algorithm %s is not rsaEncryption", ErrMalformedKey, oid)
	}
	if !algo.Empty() {
		var params cryptobyte.String
		if !algo.ReadASN1(&params, cbasn1.NULL) || !params.Empty() || !algo.Empty() {
			return nil, fmt.Errorf("%w: rsaEncryption parameters must be NULL", ErrMalformedKey)
		}
	}

	var bits asn1.BitString
	if !spki.ReadASN1BitString(&bits) || !spki.Empty() || bits.BitLength%8 != 0 {
		return nil, fmt.Errorf("%w: bad subjectPublicKey", ErrMalformedKey)
	}
	return bits.Bytes, nil
}

// malformed folds validation failures from a decoder into ErrMalformedKey,
// keeping size and exponent errors distinguishable.
func malformed(err error) error {
	if Code(err) == CodeUnknown {
		return fmt.Errorf("%w: %w", ErrMalformedKey, err)
	}
	return err
}

// ImportRawPublicKey populates k from big-endian modulus and exponent
// bytes without DER framing. Leading zeros are ignored.
func (k *Key) ImportRawPublicKey(n, e []byte) error {
	const name = "import public key"
	if err := k.populate(); err != nil {
		return opError(name, err)
	}
	if len(n) == 0 || len(e) == 0 {
		return opError(name, fmt.Errorf("%w: empty component", ErrBadArgument))
	}
	if err := k.setPublic(bignum.FromBytes(n), bignum.FromBytes(e)); err != nil {
		return opError(name, err)
	}
	k.logger.Debug(context.Background(), "public key imported", "bits", k.BitLen())
	return nil
}

// MarshalPrivateKeyDER returns the PKCS #1 RSAPrivateKey encoding of k.
// The caller owns the result and should zeroize it after use.
func (k *Key) MarshalPrivateKeyDER() ([]byte, error) {
	const name = "encode private key"
	if err := k.ready(true); err != nil {
		return nil, opError(name, err)
	}

	var b cryptobyte.Builder
	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1Int64(0)
		for _, x := range []*bignum.Int{k.n, k.e, k.d, k.p, k.q, k.dP, k.dQ, k.u} {
			b.AddASN1BigInt(x.Big())
		}
	})
	der, err := b.Bytes()
	if err != nil {
		return nil, opError(name, fmt.Errorf("%w: %w", ErrMalformedKey, err))
	}
	return der, nil
}

// MarshalPKCS1PublicKeyDER returns the bare RSAPublicKey encoding of k.
func (k *Key) MarshalPKCS1PublicKeyDER() ([]byte, error) {
	const name = "encode public key"
	if err := k.ready(false); err != nil {
		return nil, opError(name, err)
	}
	der, err := k.pkcs1PublicKey()
	if err != nil {
		return nil, opError(name, err)
	}
	return der, nil
}

// MarshalPublicKeyDER returns the SubjectPublicKeyInfo encoding of k, the
// form crypto/x509.ParsePKIXPublicKey reads.
func (k *Key) MarshalPublicKeyDER() ([]byte, error) {
	const name = "encode public key"
	if err := k.ready(false); err != nil {
		return nil, opError(name, err)
	}
	pkcs1, err := k.pkcs1PublicKey()
	if err != nil {
		return nil, opError(name, err)
	}

	var b cryptobyte.Builder
	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
			b.AddASN1ObjectIdentifier(oidRSAEncryption)
			b.AddASN1NULL()
		})
		b.AddASN1BitString(pkcs1)
	})
	der, err := b.Bytes()
	if err != nil {
		return nil, opError(name, err)
	}
	return der, nil
}

func (k *Key) pkcs1PublicKey() ([]byte, error) {
	var b cryptobyte.Builder
	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1BigInt(k.n.Big())
		b.AddASN1BigInt(k.e.Big())
	})
	return b.Bytes()
}

// EncodePrivateKeyDER writes the RSAPrivateKey encoding of k into out and
// returns its length. A short out yields a *BufferTooSmallError carrying the
// required size.
func (k *Key) EncodePrivateKeyDER(out []byte) (int, error) {
	der, err := k.MarshalPrivateKeyDER()
	if err != nil {
		return 0, err
	}
	defer ZeroizeBytes(der)
	return copyOut("encode private key", out, der)
}

// EncodePublicKeyDER writes the SubjectPublicKeyInfo encoding of k into out
// and returns its length.
func (k *Key) EncodePublicKeyDER(out []byte) (int, error) {
	der, err := k.MarshalPublicKeyDER()
	if err != nil {
		return 0, err
	}
	return copyOut("encode public key", out, der)
}

func copyOut(op string, out, data []byte) (int, error) {
	if len(out) < len(data) {
		return 0, opError(op, &BufferTooSmallError{Required: len(data)})
	}
	return copy(out, data), nil
}

// FlattenPublicKey writes the minimal big-endian exponent and modulus into
// eOut and nOut and returns their lengths. If either buffer is short, nothing
// is written and the error carries the size of the first one that did not
// fit.
func (k *Key) FlattenPublicKey(eOut, nOut []byte) (eLen, nLen int, err error) {
	const name = "flatten public key"
	if err := k.ready(false); err != nil {
		return 0, 0, opError(name, err)
	}
	e, n := k.e.Bytes(), k.n.Bytes()
	if len(eOut) < len(e) {
		return 0, 0, opError(name, &BufferTooSmallError{Required: len(e)})
	}
	if len(nOut) < len(n) {
		return 0, 0, opError(name, &BufferTooSmallError{Required: len(n)})
	}
	return copy(eOut, e), copy(nOut, n), nil
}

// PublicComponents returns freshly allocated minimal big-endian copies of
// the exponent and modulus.
func (k *Key) PublicComponents() (e, n []byte, err error) {
	if err := k.ready(false); err != nil {
		return nil, nil, opError("flatten public key", err)
	}
	return k.e.Bytes(), k.n.Bytes(), nil
}
