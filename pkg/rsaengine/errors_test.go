package rsaengine_test

import (
	"crypto/x509"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hsiuhsiu/rsa-engine-go/pkg/rsaengine"
)

func TestCodeMapping(t *testing.T) {
	assert.Equal(t, rsaengine.CodeOK, rsaengine.Code(nil))
	assert.Equal(t, rsaengine.CodeUnknown, rsaengine.Code(errors.New("elsewhere")))

	sentinels := map[error]int{
		rsaengine.ErrAllocation:          rsaengine.CodeAllocation,
		rsaengine.ErrInvalidState:        rsaengine.CodeInvalidState,
		rsaengine.ErrMessageTooLarge:     rsaengine.CodeMessageTooLarge,
		rsaengine.ErrMessageTooLong:      rsaengine.CodeMessageTooLong,
		rsaengine.ErrInvalidInputLength:  rsaengine.CodeInvalidInputLength,
		rsaengine.ErrInvalidPadding:      rsaengine.CodeInvalidPadding,
		rsaengine.ErrInvalidSignature:    rsaengine.CodeInvalidSignature,
		rsaengine.ErrMalformedKey:        rsaengine.CodeMalformedKey,
		rsaengine.ErrBufferTooSmall:      rsaengine.CodeBufferTooSmall,
		rsaengine.ErrInvalidSize:         rsaengine.CodeInvalidSize,
		rsaengine.ErrInvalidExponent:     rsaengine.CodeInvalidExponent,
		rsaengine.ErrKeyTypeMismatch:     rsaengine.CodeKeyTypeMismatch,
		rsaengine.ErrRngUnavailable:      rsaengine.CodeRngUnavailable,
		rsaengine.ErrOperationInProgress: rsaengine.CodeOperationInProgress,
		rsaengine.ErrAccelerator:         rsaengine.CodeAccelerator,
		rsaengine.ErrBadArgument:         rsaengine.CodeBadArgument,
		rsaengine.ErrFault:               rsaengine.CodeFault,
		rsaengine.ErrPending:             rsaengine.CodePending,
	}
	seen := map[int]bool{}
	for err, code := range sentinels {
		assert.Less(t, code, 0, err.Error())
		assert.False(t, seen[code], "duplicate code %d", code)
		seen[code] = true

		wrapped := fmt.Errorf("outer: %w", &rsaengine.Error{Op: "test", Err: err})
		assert.Equal(t, code, rsaengine.Code(wrapped), err.Error())
	}

	assert.Equal(t, rsaengine.CodeBufferTooSmall, rsaengine.Code(&rsaengine.BufferTooSmallError{Required: 9}))
}

func TestErrorFormatting(t *testing.T) {
	err := &rsaengine.Error{Op: "decrypt", Err: rsaengine.ErrInvalidPadding}
	assert.Equal(t, "rsaengine decrypt: invalid padding", err.Error())
	assert.ErrorIs(t, err, rsaengine.ErrInvalidPadding)

	bts := &rsaengine.BufferTooSmallError{Required: 42}
	assert.Contains(t, bts.Error(), "42")
}

func TestLimitedHeap(t *testing.T) {
	t.Run("init rejected", func(t *testing.T) {
		_, err := rsaengine.NewKey(rsaengine.NewLimitedHeap(0))
		require.ErrorIs(t, err, rsaengine.ErrAllocation)
		assert.Equal(t, rsaengine.CodeAllocation, rsaengine.Code(err))
	})

	t.Run("populate rejected", func(t *testing.T) {
		_, k2048, _ := stdKeys(t)
		heap := rsaengine.NewLimitedHeap(128)
		k := newEmptyKey(t, rsaengine.Config{Heap: heap})
		_, err := k.DecodePrivateKey(x509.MarshalPKCS1PrivateKey(k2048))
		require.ErrorIs(t, err, rsaengine.ErrAllocation)
		assert.Equal(t, rsaengine.StateUninitialized, k.State())
	})

	t.Run("accounting", func(t *testing.T) {
		k1024, _, _ := stdKeys(t)
		heap := rsaengine.NewLimitedHeap(4096)
		k, err := rsaengine.NewKey(heap)
		require.NoError(t, err)
		assert.Equal(t, rsaengine.MinDecodeBits/8, heap.Used())

		_, err = k.DecodePrivateKey(x509.MarshalPKCS1PrivateKey(k1024))
		require.NoError(t, err)
		assert.Equal(t, k.Size(), heap.Used())

		k.Free()
		assert.Equal(t, 0, heap.Used())
		k.Free()
	})
}

func TestConfigValidation(t *testing.T) {
	_, err := rsaengine.NewKeyWithConfig(rsaengine.Config{Blinding: rsaengine.BlindingPolicy(9)})
	require.ErrorIs(t, err, rsaengine.ErrBadArgument)

	k, err := rsaengine.NewKey(nil)
	require.NoError(t, err)
	defer k.Free()
	assert.Equal(t, rsaengine.StateUninitialized, k.State())
	assert.Equal(t, 0, k.Size())
	assert.Equal(t, "required", rsaengine.BlindingRequired.String())
}

func TestEngineVersion(t *testing.T) {
	assert.NotEmpty(t, rsaengine.EngineVersion())
}
