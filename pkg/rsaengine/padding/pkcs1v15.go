package padding

import (
	"fmt"
	"io"
)

// EncodePKCS1v15 writes 0x00 || bt || PS || 0x00 || msg into em, which must be
// exactly the modulus length. Type 1 pads with 0xFF; type 2 pads with
// non-zero bytes read from random.
func EncodePKCS1v15(em, msg []byte, bt BlockType, random io.Reader) error {
	k := len(em)
	if len(msg) > k-MinPadSize {
		return ErrMessageTooLong
	}

	em[0] = 0
	em[1] = byte(bt)
	ps := em[2 : k-len(msg)-1]
	switch bt {
	case BlockType1:
		for i := range ps {
			ps[i] = 0xFF
		}
	case BlockType2:
		if random == nil {
			return ErrNoRandom
		}
		if err := nonZeroRandomBytes(ps, random); err != nil {
			return err
		}
	default:
		return fmt.Errorf("padding: unknown block type %d", bt)
	}
	em[k-len(msg)-1] = 0
	copy(em[k-len(msg):], msg)
	return nil
}

// DecodePKCS1v15 validates em as a block of type bt and returns the offset of
// the message within em. Any structural fault yields ErrInvalidPadding.
func DecodePKCS1v15(em []byte, bt BlockType) (int, error) {
	valid, off := scanPKCS1v15(em, bt)
	if valid != 1 {
		return 0, ErrInvalidPadding
	}
	return off, nil
}

// nonZeroRandomBytes fills s with non-zero random bytes.
func nonZeroRandomBytes(s []byte, random io.Reader) error {
	if _, err := io.ReadFull(random, s); err != nil {
		return fmt.Errorf("padding: read random: %w", err)
	}
	for i := range s {
		for s[i] == 0 {
			if _, err := io.ReadFull(random, s[i:i+1]); err != nil {
				return fmt.Errorf("padding: read random: %w", err)
			}
		}
	}
	return nil
}
