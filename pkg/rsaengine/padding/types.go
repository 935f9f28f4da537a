package padding

import (
	"crypto"
	"crypto/sha1" // #nosec G505 -- SHA-1 is selectable for OAEP/MGF1 interoperability only
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"fmt"
	"hash"
	"strings"
)

var (
	// ErrMessageTooLong is returned when the message does not fit in the
	// block together with the mandatory padding.
	ErrMessageTooLong = errors.New("padding: message too long for block")

	// ErrInvalidPadding is the only error decoders return for a malformed
	// block.
	ErrInvalidPadding = errors.New("padding: invalid padding")

	// ErrUnsupportedHash is returned for HashNone or an unknown selector.
	ErrUnsupportedHash = errors.New("padding: unsupported hash")

	// ErrNoRandom is returned when an encoding needs random bytes and no
	// source was supplied.
	ErrNoRandom = errors.New("padding: random source required")
)

// Type selects the padding scheme. The numeric values are part of the
// external interface.
type Type int

const (
	PKCS1v15 Type = 0
	OAEP     Type = 1
)

func (t Type) String() string {
	switch t {
	case PKCS1v15:
		return "pkcs1v15"
	case OAEP:
		return "oaep"
	}
	return fmt.Sprintf("padding.Type(%d)", int(t))
}

// ParseType accepts the names produced by Type.String.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(s) {
	case "pkcs1v15", "pkcs1", "pkcs1v1.5":
		return PKCS1v15, nil
	case "oaep":
		return OAEP, nil
	}
	return 0, fmt.Errorf("padding: unknown padding type %q", s)
}

// BlockType is the PKCS #1 v1.5 block type byte.
type BlockType byte

const (
	// BlockType1 pads with 0xFF bytes and is used for private-key signatures.
	BlockType1 BlockType = 1
	// BlockType2 pads with non-zero random bytes and is used for public-key
	// encryption.
	BlockType2 BlockType = 2
)

// MinPadSize is the PKCS #1 v1.5 overhead: two marker bytes, at least eight
// padding bytes and the zero separator.
const MinPadSize = 11

// HashType identifies a hash function for OAEP and DigestInfo.
type HashType int

const (
	HashNone HashType = iota
	HashSHA1
	HashSHA224
	HashSHA256
	HashSHA384
	HashSHA512
)

var hashNames = map[HashType]string{
	HashNone:   "none",
	HashSHA1:   "sha1",
	HashSHA224: "sha224",
	HashSHA256: "sha256",
	HashSHA384: "sha384",
	HashSHA512: "sha512",
}

func (h HashType) String() string {
	if n, ok := hashNames[h]; ok {
		return n
	}
	return fmt.Sprintf("padding.HashType(%d)", int(h))
}

// ParseHash accepts the names produced by HashType.String, with or without a
// dash ("sha-256").
func ParseHash(s string) (HashType, error) {
	norm := strings.ReplaceAll(strings.ToLower(s), "-", "")
	for h, n := range hashNames {
		if n == norm {
			return h, nil
		}
	}
	return HashNone, fmt.Errorf("%w: %q", ErrUnsupportedHash, s)
}

// New returns a fresh hash.Hash for h.
func (h HashType) New() (hash.Hash, error) {
	switch h {
	case HashSHA1:
		return sha1.New(), nil // #nosec G401
	case HashSHA224:
		return sha256.New224(), nil
	case HashSHA256:
		return sha256.New(), nil
	case HashSHA384:
		return sha512.New384(), nil
	case HashSHA512:
		return sha512.New(), nil
	}
	return nil, ErrUnsupportedHash
}

// Size returns the digest length of h, or 0 for HashNone.
func (h HashType) Size() int {
	if c, ok := h.crypto(); ok {
		return c.Size()
	}
	return 0
}

func (h HashType) crypto() (crypto.Hash, bool) {
	switch h {
	case HashSHA1:
		return crypto.SHA1, true
	case HashSHA224:
		return crypto.SHA224, true
	case HashSHA256:
		return crypto.SHA256, true
	case HashSHA384:
		return crypto.SHA384, true
	case HashSHA512:
		return crypto.SHA512, true
	}
	return 0, false
}

// MGF identifies the mask generation function by its underlying hash. The
// numeric values are part of the external interface.
type MGF int

const (
	MGF1None   MGF = 0
	MGF1SHA1   MGF = 26
	MGF1SHA224 MGF = 4
	MGF1SHA256 MGF = 1
	MGF1SHA384 MGF = 2
	MGF1SHA512 MGF = 3
)

// Hash returns the hash MGF1 runs over. MGF1None maps to HashNone, which
// OAEP interprets as "same as the OAEP hash".
func (m MGF) Hash() (HashType, error) {
	switch m {
	case MGF1None:
		return HashNone, nil
	case MGF1SHA1:
		return HashSHA1, nil
	case MGF1SHA224:
		return HashSHA224, nil
	case MGF1SHA256:
		return HashSHA256, nil
	case MGF1SHA384:
		return HashSHA384, nil
	case MGF1SHA512:
		return HashSHA512, nil
	}
	return HashNone, fmt.Errorf("%w: mgf %d", ErrUnsupportedHash, int(m))
}

// MGFFor returns the MGF1 selector running over h.
func MGFFor(h HashType) MGF {
	switch h {
	case HashSHA1:
		return MGF1SHA1
	case HashSHA224:
		return MGF1SHA224
	case HashSHA256:
		return MGF1SHA256
	case HashSHA384:
		return MGF1SHA384
	case HashSHA512:
		return MGF1SHA512
	}
	return MGF1None
}

func (m MGF) String() string {
	h, err := m.Hash()
	if err != nil {
		return fmt.Sprintf("padding.MGF(%d)", int(m))
	}
	return "mgf1-" + h.String()
}
