package padding

import (
	"fmt"
	"hash"
	"io"
)

// OAEPParams selects the OAEP hash, the MGF1 hash and the label. A zero MGF
// (MGF1None) means MGF1 runs over Hash.
type OAEPParams struct {
	Hash  HashType
	MGF   MGF
	Label []byte
}

func (p OAEPParams) hashes() (hash.Hash, hash.Hash, error) {
	h, err := p.Hash.New()
	if err != nil {
		return nil, nil, err
	}
	mgfHash, err := p.MGF.Hash()
	if err != nil {
		return nil, nil, err
	}
	if mgfHash == HashNone {
		mgfHash = p.Hash
	}
	mh, err := mgfHash.New()
	if err != nil {
		return nil, nil, err
	}
	return h, mh, nil
}

// MaxOAEPMessage returns the longest message EncodeOAEP accepts for a k-byte
// modulus, or a negative value when the modulus is too small for the hash.
func MaxOAEPMessage(k int, h HashType) int {
	return k - 2*h.Size() - 2
}

// EncodeOAEP writes the OAEP encoding of msg into em, which must be exactly
// the modulus length: 0x00 || maskedSeed || maskedDB with
// DB = lHash || PS || 0x01 || msg.
func EncodeOAEP(em, msg []byte, params OAEPParams, random io.Reader) error {
	h, mh, err := params.hashes()
	if err != nil {
		return err
	}
	hLen := h.Size()
	k := len(em)
	if len(msg) > k-2*hLen-2 {
		return ErrMessageTooLong
	}
	if random == nil {
		return ErrNoRandom
	}

	h.Write(params.Label)
	lHash := h.Sum(nil)

	for i := range em {
		em[i] = 0
	}
	seed := em[1 : 1+hLen]
	db := em[1+hLen:]
	copy(db[:hLen], lHash)
	db[len(db)-len(msg)-1] = 0x01
	copy(db[len(db)-len(msg):], msg)

	if _, err := io.ReadFull(random, seed); err != nil {
		return fmt.Errorf("padding: read seed: %w", err)
	}

	MGF1XOR(db, mh, seed)
	MGF1XOR(seed, mh, db)
	return nil
}

// DecodeOAEP unmasks em in place and returns the offset of the message
// within em. Every malformed block yields ErrInvalidPadding, and the checks
// on the leading byte, the label hash and the separator run to completion
// before the single verdict is taken.
func DecodeOAEP(em []byte, params OAEPParams) (int, error) {
	h, mh, err := params.hashes()
	if err != nil {
		return 0, err
	}
	hLen := h.Size()
	k := len(em)
	if k < 2*hLen+2 {
		return 0, ErrInvalidPadding
	}

	h.Write(params.Label)
	lHash := h.Sum(nil)

	seed := em[1 : 1+hLen]
	db := em[1+hLen:]
	MGF1XOR(seed, mh, db)
	MGF1XOR(db, mh, seed)

	valid, off := scanOAEP(em[0], lHash, db)
	if valid != 1 {
		return 0, ErrInvalidPadding
	}
	return 1 + hLen + off, nil
}
