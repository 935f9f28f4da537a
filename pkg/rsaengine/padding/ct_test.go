package padding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func pkcs1Block(k int, bt BlockType, psLen int, msg []byte) []byte {
	em := make([]byte, k)
	em[1] = byte(bt)
	for i := 2; i < 2+psLen; i++ {
		em[i] = 0xFF
	}
	copy(em[3+psLen:], msg)
	return em
}

func TestScanPKCS1v15(t *testing.T) {
	msg := []byte("hello")

	t.Run("well formed type 1", func(t *testing.T) {
		em := pkcs1Block(32, BlockType1, 32-3-len(msg), msg)
		valid, off := scanPKCS1v15(em, BlockType1)
		assert.Equal(t, 1, valid)
		assert.Equal(t, msg, em[off:])
	})

	t.Run("empty message", func(t *testing.T) {
		em := pkcs1Block(16, BlockType1, 13, nil)
		valid, off := scanPKCS1v15(em, BlockType1)
		assert.Equal(t, 1, valid)
		assert.Equal(t, 16, off)
	})

	cases := map[string]func([]byte){
		"nonzero leading byte": func(em []byte) { em[0] = 1 },
		"wrong block type":     func(em []byte) { em[1] = 2 },
		"non-FF type 1 pad":    func(em []byte) { em[5] = 0x7F },
		"short pad":            func(em []byte) { em[8] = 0 },
		"missing separator":    func(em []byte) { em[2+24] = 0xFF },
	}
	for name, corrupt := range cases {
		t.Run(name, func(t *testing.T) {
			em := pkcs1Block(32, BlockType1, 24, msg)
			corrupt(em)
			valid, _ := scanPKCS1v15(em, BlockType1)
			assert.Equal(t, 0, valid)
		})
	}

	t.Run("too short", func(t *testing.T) {
		valid, _ := scanPKCS1v15(make([]byte, MinPadSize-1), BlockType1)
		assert.Equal(t, 0, valid)
	})
}

func TestScanOAEP(t *testing.T) {
	lHash := []byte{1, 2, 3, 4}
	db := append(append([]byte{}, lHash...), 0, 0, 0, 1, 'h', 'i')

	valid, off := scanOAEP(0, lHash, db)
	assert.Equal(t, 1, valid)
	assert.Equal(t, []byte("hi"), db[off:])

	bad := append([]byte{}, db...)
	bad[0] ^= 1
	valid, _ = scanOAEP(0, lHash, bad)
	assert.Equal(t, 0, valid, "label hash mismatch")

	bad = append([]byte{}, db...)
	bad[5] = 9
	valid, _ = scanOAEP(0, lHash, bad)
	assert.Equal(t, 0, valid, "non-zero byte before separator")

	bad = append([]byte{}, db[:7]...)
	valid, _ = scanOAEP(0, lHash, bad)
	assert.Equal(t, 0, valid, "no separator")

	valid, _ = scanOAEP(1, lHash, db)
	assert.Equal(t, 0, valid, "leading byte")
}
