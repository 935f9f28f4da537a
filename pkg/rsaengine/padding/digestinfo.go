package padding

import (
	"encoding/asn1"
	"fmt"

	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"
)

var hashOIDs = map[HashType]asn1.ObjectIdentifier{
	HashSHA1:   {1, 3, 14, 3, 2, 26},
	HashSHA224: {2, 16, 840, 1, 101, 3, 4, 2, 4},
	HashSHA256: {2, 16, 840, 1, 101, 3, 4, 2, 1},
	HashSHA384: {2, 16, 840, 1, 101, 3, 4, 2, 2},
	HashSHA512: {2, 16, 840, 1, 101, 3, 4, 2, 3},
}

// DigestInfo returns the DER encoding of
//
//	DigestInfo ::= SEQUENCE { digestAlgorithm AlgorithmIdentifier, digest OCTET STRING }
//
// with NULL algorithm parameters, which is the payload of a PKCS #1 v1.5
// hash signature.
func DigestInfo(h HashType, digest []byte) ([]byte, error) {
	oid, ok := hashOIDs[h]
	if !ok {
		return nil, ErrUnsupportedHash
	}
	if len(digest) != h.Size() {
		return nil, fmt.Errorf("padding: %s digest must be %d bytes, got %d", h, h.Size(), len(digest))
	}

	var b cryptobyte.Builder
	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
			b.AddASN1ObjectIdentifier(oid)
			b.AddASN1NULL()
		})
		b.AddASN1OctetString(digest)
	})
	return b.Bytes()
}
