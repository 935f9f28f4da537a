package padding

import (
	"encoding/binary"
	"hash"
)

// MGF1XOR XORs out in place with the MGF1 mask derived from seed using h, as
// specified in RFC 8017 appendix B.2.1. h is reset before use.
func MGF1XOR(out []byte, h hash.Hash, seed []byte) {
	var counter [4]byte
	var digest []byte

	for done, c := 0, uint32(0); done < len(out); c++ {
		binary.BigEndian.PutUint32(counter[:], c)
		h.Reset()
		h.Write(seed)
		h.Write(counter[:])
		digest = h.Sum(digest[:0])

		for i := 0; i < len(digest) && done < len(out); i++ {
			out[done] ^= digest[i]
			done++
		}
	}
	h.Reset()
}
