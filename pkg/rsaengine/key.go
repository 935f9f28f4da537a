package rsaengine

import (
	"context"
	"fmt"
	"io"

	"github.com/hsiuhsiu/rsa-engine-go/pkg/rsaengine/accel"
	"github.com/hsiuhsiu/rsa-engine-go/pkg/rsaengine/bignum"
	"github.com/hsiuhsiu/rsa-engine-go/pkg/rsaengine/logging"
)

const (
	// MinBits and MaxBits bound the modulus size accepted by MakeKey.
	MinBits = 1024
	MaxBits = 4096

	// MinDecodeBits is the smallest modulus accepted from DER or raw
	// components.
	MinDecodeBits = 512

	initialScratch = MinDecodeBits / 8
)

// KeyType tells whether a key holds private material.
type KeyType int

const (
	Public  KeyType = 0
	Private KeyType = 1
)

func (t KeyType) String() string {
	switch t {
	case Public:
		return "public"
	case Private:
		return "private"
	}
	return fmt.Sprintf("KeyType(%d)", int(t))
}

// State is the lifecycle marker of a key.
type State int

const (
	// StateUninitialized keys have no material yet, or have been freed.
	StateUninitialized State = iota
	// StateIdle keys are populated and accept operations.
	StateIdle
	// StatePending keys have an offloaded operation in flight.
	StatePending
	// StateCompleted keys hold an uncollected successful result.
	StateCompleted
	// StateFailed keys hold an uncollected failure.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Key is an RSA public or private key together with its working state.
//
// A Key is populated exactly once, by MakeKey, DecodePrivateKey,
// DecodePublicKey or ImportRawPublicKey. Operations never change the key
// material. A Key is not safe for concurrent use; distinct keys are
// independent.
type Key struct {
	n, e, d          *bignum.Int
	p, q, dP, dQ, u  *bignum.Int
	nMod, pMod, qMod *bignum.Modulus
	typ              KeyType
	crt              bool
	populated        bool
	freed            bool

	heap     Heap
	scratch  []byte
	rng      io.Reader
	blinding BlindingPolicy
	device   *accel.Queue
	logger   logging.Logger

	state     State
	pending   *accel.Event
	pendingOp Operation
	abandoned []*accel.Event
}

// NewKey initializes an empty key bound to heap. A nil heap uses
// DefaultHeap.
func NewKey(heap Heap) (*Key, error) {
	return NewKeyWithConfig(Config{Heap: heap})
}

// NewKeyWithConfig initializes an empty key from cfg.
func NewKeyWithConfig(cfg Config) (*Key, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, opError("init", err)
	}
	scratch, err := cfg.Heap.Alloc(initialScratch)
	if err != nil {
		return nil, opError("init", fmt.Errorf("%w: %w", ErrAllocation, err))
	}

	logger := cfg.Logger
	if cfg.Device != nil {
		logger = logger.With("device", cfg.Device.ID())
	}
	return &Key{
		heap:     cfg.Heap,
		scratch:  scratch,
		blinding: cfg.Blinding,
		device:   cfg.Device,
		logger:   logger,
		state:    StateUninitialized,
	}, nil
}

// Free waits for any offloaded operation on k, including abandoned ones,
// then zeroizes and releases the key material and working buffers. Calling
// Free again is a no-op.
func (k *Key) Free() {
	if k == nil || k.freed {
		return
	}
	if k.pending != nil {
		<-k.pending.Done()
		k.pending = nil
	}
	for _, ev := range k.abandoned {
		<-ev.Done()
	}
	k.abandoned = nil

	k.wipe()
	if k.scratch != nil {
		k.heap.Free(k.scratch)
		k.scratch = nil
	}
	k.rng = nil
	k.freed = true
	k.state = StateUninitialized
	k.logger.Debug(context.Background(), "key freed")
}

// SetRNG binds r as the random source for blinding and generation. r is read
// from whenever k runs a private operation; a reader shared with other keys
// must be wrapped with rng.Locked.
func (k *Key) SetRNG(r io.Reader) error {
	if k.freed {
		return opError("set rng", ErrInvalidState)
	}
	if k.pending != nil {
		return opError("set rng", fmt.Errorf("%w: operation in flight", ErrInvalidState))
	}
	k.rng = r
	return nil
}

// DisableBlinding lets private operations run without a random source.
// Unblinded private operations may leak the private exponent through timing.
func (k *Key) DisableBlinding() {
	k.blinding = BlindingOptional
	k.logger.Warn(context.Background(), "blinding requirement disabled; private operations may run unblinded")
}

// Size returns the modulus length in bytes, or 0 for an unpopulated key.
func (k *Key) Size() int {
	if k.nMod == nil {
		return 0
	}
	return k.nMod.Size()
}

// BitLen returns the modulus length in bits, or 0 for an unpopulated key.
func (k *Key) BitLen() int {
	if k.nMod == nil {
		return 0
	}
	return k.nMod.BitLen()
}

// Type returns whether k is a public or private key.
func (k *Key) Type() KeyType {
	return k.typ
}

// CRT reports whether private operations use the prime factors.
func (k *Key) CRT() bool {
	return k.crt
}

// State returns the lifecycle state. A pending key whose offloaded work has
// finished reports StateCompleted or StateFailed until the result is
// collected.
func (k *Key) State() State {
	if k.state == StatePending && k.pending != nil {
		if res, ok := k.pending.Poll(); ok {
			if res.Err != nil {
				return StateFailed
			}
			return StateCompleted
		}
	}
	return k.state
}

// wipe zeroizes and drops the key material.
func (k *Key) wipe() {
	clearInts(k.n, k.e, k.d, k.p, k.q, k.dP, k.dQ, k.u)
	k.n, k.e, k.d, k.p, k.q, k.dP, k.dQ, k.u = nil, nil, nil, nil, nil, nil, nil, nil
	k.nMod, k.pMod, k.qMod = nil, nil, nil
	k.crt = false
}

func clearInts(xs ...*bignum.Int) {
	for _, x := range xs {
		x.Clear()
	}
}

func cloneInt(x *bignum.Int) *bignum.Int {
	if x == nil {
		return nil
	}
	return x.Clone()
}

// detach returns a copy of the key material with moduli of its own, for
// work running on another goroutine. safenum writes into the storage of its
// operands, moduli included, so two goroutines must never share them.
func (k *Key) detach() (*Key, error) {
	w := &Key{
		n: cloneInt(k.n), e: cloneInt(k.e), d: cloneInt(k.d),
		p: cloneInt(k.p), q: cloneInt(k.q),
		dP: cloneInt(k.dP), dQ: cloneInt(k.dQ), u: cloneInt(k.u),
		typ:       k.typ,
		crt:       k.crt,
		populated: true,
	}
	var err error
	if w.nMod, err = bignum.NewModulus(w.n); err != nil {
		w.wipe()
		return nil, err
	}
	if w.crt {
		if w.pMod, err = bignum.NewModulus(w.p); err != nil {
			w.wipe()
			return nil, err
		}
		if w.qMod, err = bignum.NewModulus(w.q); err != nil {
			w.wipe()
			return nil, err
		}
	}
	return w, nil
}

// ready checks that k can start an operation.
func (k *Key) ready(needPrivate bool) error {
	switch {
	case k.freed:
		return ErrInvalidState
	case k.pending != nil:
		return ErrOperationInProgress
	case !k.populated:
		return fmt.Errorf("%w: key has no material", ErrKeyTypeMismatch)
	case needPrivate && k.typ != Private:
		return fmt.Errorf("%w: private key required", ErrKeyTypeMismatch)
	}
	return nil
}

// scratchFor returns a key-owned buffer of n bytes, growing the scratch
// allocation through the heap when needed.
func (k *Key) scratchFor(n int) ([]byte, error) {
	if cap(k.scratch) < n {
		buf, err := k.heap.Alloc(n)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrAllocation, err)
		}
		if k.scratch != nil {
			k.heap.Free(k.scratch)
		}
		k.scratch = buf
	}
	return k.scratch[:n], nil
}

func (k *Key) populate() error {
	if k.freed {
		return ErrInvalidState
	}
	if k.populated {
		return fmt.Errorf("%w: key already populated", ErrInvalidState)
	}
	return nil
}

// setPublic validates and installs n and e.
func (k *Key) setPublic(n, e *bignum.Int) error {
	bits := n.BitLen()
	if bits < MinDecodeBits || bits > MaxBits {
		return fmt.Errorf("%w: %d-bit modulus", ErrInvalidSize, bits)
	}
	nMod, err := bignum.NewModulus(n)
	if err != nil {
		return fmt.Errorf("%w: modulus must be odd", ErrMalformedKey)
	}
	if err := checkExponent(e, nMod); err != nil {
		return err
	}
	if _, err := k.scratchFor(nMod.Size()); err != nil {
		return err
	}

	k.n, k.e, k.nMod = n, e, nMod
	k.typ = Public
	k.populated = true
	k.state = StateIdle
	return nil
}

func checkExponent(e *bignum.Int, n *bignum.Modulus) error {
	b := e.Bytes()
	if len(b) == 0 || b[len(b)-1]&1 == 0 || e.Equal(bignum.FromUint64(1)) {
		return fmt.Errorf("%w: exponent must be odd and greater than one", ErrInvalidExponent)
	}
	if !n.Contains(e) {
		return fmt.Errorf("%w: exponent not below modulus", ErrInvalidExponent)
	}
	return nil
}

// setPrivate installs a full key. n, e and d are authoritative; the CRT
// components are kept as given and used only when consistent with n and e.
// On failure every argument is cleared.
func (k *Key) setPrivate(n, e, d, p, q, dP, dQ, u *bignum.Int) error {
	if err := k.setPublic(n, e); err != nil {
		clearInts(n, e, d, p, q, dP, dQ, u)
		return err
	}
	if d.IsZero() || !k.nMod.Contains(d) {
		k.reset()
		clearInts(n, e, d, p, q, dP, dQ, u)
		return fmt.Errorf("%w: private exponent out of range", ErrMalformedKey)
	}
	k.d = d
	k.p, k.q, k.dP, k.dQ, k.u = p, q, dP, dQ, u
	k.typ = Private
	k.crt = k.setupCRT()
	return nil
}

// setupCRT reports whether the factors and CRT exponents agree with n and
// e, installing the prime moduli when they do.
func (k *Key) setupCRT() bool {
	for _, x := range []*bignum.Int{k.p, k.q, k.dP, k.dQ, k.u} {
		if x == nil || x.IsZero() {
			return false
		}
	}
	pMod, err := bignum.NewModulus(k.p)
	if err != nil {
		return false
	}
	qMod, err := bignum.NewModulus(k.q)
	if err != nil {
		return false
	}
	if !pMod.Contains(k.dP) || !qMod.Contains(k.dQ) || !pMod.Contains(k.u) {
		return false
	}
	if !bignum.Mul(k.p, k.q, k.p.BitLen()+k.q.BitLen()).Equal(k.n) {
		return false
	}
	// u*q == 1 mod p
	if !bignum.ModMul(k.u, bignum.Reduce(k.q, pMod), pMod).Equal(bignum.FromUint64(1)) {
		return false
	}
	if !inverts(k.dP, k.e, pMod) || !inverts(k.dQ, k.e, qMod) {
		return false
	}
	k.pMod, k.qMod = pMod, qMod
	return true
}

// inverts reports whether 2^(dX*e) == 2 mod m, which holds when dX is the
// inverse of e modulo m-1.
func inverts(dX, e *bignum.Int, m *bignum.Modulus) bool {
	base := bignum.FromUint64(2)
	return bignum.Exp(bignum.Exp(base, dX, m), e, m).Equal(base)
}

// reset returns a partially populated key to its empty state.
func (k *Key) reset() {
	k.n, k.e, k.nMod = nil, nil, nil
	k.typ = Public
	k.populated = false
	k.state = StateUninitialized
}
