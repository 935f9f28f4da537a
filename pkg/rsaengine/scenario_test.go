package rsaengine_test

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hsiuhsiu/rsa-engine-go/pkg/rsaengine"
)

// TestEndToEndFlattenedPublicKey generates a key, ships only (e, n) to a
// second key, encrypts there with OAEP/SHA-256 and decrypts with the
// original.
func TestEndToEndFlattenedPublicKey(t *testing.T) {
	if testing.Short() {
		t.Skip("2048-bit generation")
	}

	priv := newEmptyKey(t, rsaengine.Config{})
	require.NoError(t, priv.SetRNG(rand.Reader))
	require.NoError(t, priv.MakeKey(2048, 65537, nil))

	eBuf := make([]byte, 8)
	nBuf := make([]byte, priv.Size())
	eLen, nLen, err := priv.FlattenPublicKey(eBuf, nBuf)
	require.NoError(t, err)

	pub := newEmptyKey(t, rsaengine.Config{})
	require.NoError(t, pub.ImportRawPublicKey(nBuf[:nLen], eBuf[:eLen]))

	msg := make([]byte, 32)
	_, err = rand.Read(msg)
	require.NoError(t, err)

	opts := rsaengine.OAEPOptions(rsaengine.HashSHA256, nil)
	ct := make([]byte, pub.Size())
	_, err = pub.PublicEncrypt(msg, ct, rand.Reader, opts)
	require.NoError(t, err)

	out := make([]byte, priv.Size())
	n, err := priv.PrivateDecrypt(ct, out, opts)
	require.NoError(t, err)
	require.Equal(t, msg, out[:n])
}
