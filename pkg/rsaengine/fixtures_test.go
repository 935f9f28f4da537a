package rsaengine_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hsiuhsiu/rsa-engine-go/pkg/rsaengine"
	"github.com/hsiuhsiu/rsa-engine-go/pkg/rsaengine/logging"
)

var (
	fixtureOnce  sync.Once
	fixture1024  *rsa.PrivateKey
	fixture2048  *rsa.PrivateKey
	fixtureOther *rsa.PrivateKey
	fixtureErr   error
)

// stdKeys returns keys generated once per test binary by crypto/rsa.
func stdKeys(t *testing.T) (k1024, k2048, other *rsa.PrivateKey) {
	t.Helper()
	fixtureOnce.Do(func() {
		if fixture1024, fixtureErr = rsa.GenerateKey(rand.Reader, 1024); fixtureErr != nil {
			return
		}
		if fixture2048, fixtureErr = rsa.GenerateKey(rand.Reader, 2048); fixtureErr != nil {
			return
		}
		fixtureOther, fixtureErr = rsa.GenerateKey(rand.Reader, 1024)
	})
	require.NoError(t, fixtureErr)
	return fixture1024, fixture2048, fixtureOther
}

func newEmptyKey(t *testing.T, cfg rsaengine.Config) *rsaengine.Key {
	t.Helper()
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	k, err := rsaengine.NewKeyWithConfig(cfg)
	require.NoError(t, err)
	t.Cleanup(k.Free)
	return k
}

// privateKey loads priv into a fresh engine key with crypto/rand bound.
func privateKey(t *testing.T, priv *rsa.PrivateKey) *rsaengine.Key {
	t.Helper()
	return privateKeyWithConfig(t, priv, rsaengine.Config{})
}

func privateKeyWithConfig(t *testing.T, priv *rsa.PrivateKey, cfg rsaengine.Config) *rsaengine.Key {
	t.Helper()
	k := newEmptyKey(t, cfg)
	der := x509.MarshalPKCS1PrivateKey(priv)
	n, err := k.DecodePrivateKey(der)
	require.NoError(t, err)
	require.Equal(t, len(der), n)
	require.NoError(t, k.SetRNG(rand.Reader))
	return k
}

// publicKey loads the public half of priv into a fresh engine key.
func publicKey(t *testing.T, priv *rsa.PrivateKey) *rsaengine.Key {
	t.Helper()
	k := newEmptyKey(t, rsaengine.Config{})
	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	require.NoError(t, err)
	_, err = k.DecodePublicKey(der)
	require.NoError(t, err)
	require.NoError(t, k.SetRNG(rand.Reader))
	return k
}

func randomBelow(t *testing.T, k *rsaengine.Key) []byte {
	t.Helper()
	buf := make([]byte, k.Size())
	_, err := rand.Read(buf)
	require.NoError(t, err)
	buf[0] = 0
	return buf
}
