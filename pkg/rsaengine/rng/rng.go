// Package rng provides random-source helpers for the RSA engine.
//
// Keys read from an io.Reader for blinding and generation. A reader's state
// advances on every read, so a reader shared between goroutines must be
// serialized; Locked does that. NewDeterministic yields a reproducible stream
// for known-answer tests and must never back production blinding.
package rng

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"
	"sync"
)

// Default returns the operating system CSPRNG.
func Default() io.Reader {
	return rand.Reader
}

// Locked wraps r so concurrent Read calls are serialized.
func Locked(r io.Reader) io.Reader {
	if r == nil {
		return nil
	}
	if l, ok := r.(*lockedReader); ok {
		return l
	}
	return &lockedReader{r: r}
}

type lockedReader struct {
	mu sync.Mutex
	r  io.Reader
}

func (l *lockedReader) Read(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Read(p)
}

// ErrExhausted is returned once a deterministic stream has produced its
// maximum output.
var ErrExhausted = errors.New("rng: deterministic stream exhausted")

const (
	deterministicSalt = "rsaengine-deterministic-rng"
	deterministicInfo = "rsaengine-kat"
	maxBlocks         = 255
)

// NewDeterministic returns an HKDF-SHA256 (RFC 5869) expansion of seed. The
// stream is at most 255 blocks of 32 bytes; reads past that fail with
// ErrExhausted. Callers needing more bytes re-seed.
func NewDeterministic(seed []byte) io.Reader {
	mac := hmac.New(sha256.New, []byte(deterministicSalt))
	mac.Write(seed)
	return &deterministicReader{prk: mac.Sum(nil)}
}

type deterministicReader struct {
	prk       []byte
	lastBlock []byte
	counter   int
	cache     []byte
}

func (r *deterministicReader) Read(p []byte) (int, error) {
	out := copy(p, r.cache)
	r.cache = r.cache[out:]

	for out < len(p) {
		if r.counter == maxBlocks {
			return out, ErrExhausted
		}
		r.counter++

		// T(i) = HMAC(PRK, T(i-1) || info || i)
		h := hmac.New(sha256.New, r.prk)
		h.Write(r.lastBlock)
		h.Write([]byte(deterministicInfo))
		h.Write([]byte{byte(r.counter)})
		block := h.Sum(nil)
		r.lastBlock = block

		n := copy(p[out:], block)
		out += n
		r.cache = block[n:]
	}
	return out, nil
}
