package rsaengine

import (
	"fmt"

	"github.com/hsiuhsiu/rsa-engine-go/pkg/rsaengine/padding"
)

// Aliases so callers can select padding without importing the padding
// package.
type (
	PaddingType = padding.Type
	HashType    = padding.HashType
	MGF         = padding.MGF
)

const (
	PadPKCS1v15 = padding.PKCS1v15
	PadOAEP     = padding.OAEP

	HashNone   = padding.HashNone
	HashSHA1   = padding.HashSHA1
	HashSHA224 = padding.HashSHA224
	HashSHA256 = padding.HashSHA256
	HashSHA384 = padding.HashSHA384
	HashSHA512 = padding.HashSHA512

	MGF1None   = padding.MGF1None
	MGF1SHA1   = padding.MGF1SHA1
	MGF1SHA224 = padding.MGF1SHA224
	MGF1SHA256 = padding.MGF1SHA256
	MGF1SHA384 = padding.MGF1SHA384
	MGF1SHA512 = padding.MGF1SHA512
)

// PaddingOptions selects the encryption padding. A nil *PaddingOptions means
// PKCS #1 v1.5. Hash, MGF and Label apply to OAEP only; an MGF of MGF1None
// runs MGF1 over Hash.
type PaddingOptions struct {
	Padding PaddingType
	Hash    HashType
	MGF     MGF
	Label   []byte
}

// OAEPOptions returns options for OAEP with h for both the label hash and
// MGF1.
func OAEPOptions(h HashType, label []byte) *PaddingOptions {
	return &PaddingOptions{Padding: PadOAEP, Hash: h, MGF: padding.MGFFor(h), Label: label}
}

func (o *PaddingOptions) validate() error {
	if o == nil || o.Padding == PadPKCS1v15 {
		return nil
	}
	if o.Padding != PadOAEP {
		return fmt.Errorf("%w: unknown padding %d", ErrBadArgument, int(o.Padding))
	}
	if _, err := o.Hash.New(); err != nil {
		return fmt.Errorf("%w: oaep hash %s", ErrBadArgument, o.Hash)
	}
	if _, err := o.MGF.Hash(); err != nil {
		return fmt.Errorf("%w: %w", ErrBadArgument, err)
	}
	return nil
}

func (o *PaddingOptions) oaep() bool {
	return o != nil && o.Padding == PadOAEP
}

func (o *PaddingOptions) params() padding.OAEPParams {
	return padding.OAEPParams{Hash: o.Hash, MGF: o.MGF, Label: o.Label}
}

// maxMessage is the longest plaintext a size-byte block can carry.
func (o *PaddingOptions) maxMessage(size int) int {
	if o.oaep() {
		return padding.MaxOAEPMessage(size, o.Hash)
	}
	return size - padding.MinPadSize
}
