package rsaengine

import (
	"context"
	"fmt"
	"io"

	"github.com/hsiuhsiu/rsa-engine-go/pkg/rsaengine/accel"
)

// Submit offloads the raw operation op on in to the key's accelerator queue
// and returns an error matching ErrPending. The work runs on its own copy of
// the key material. The key stays in StatePending until Poll, Wait or
// WaitDecrypt collects the result; meanwhile every other operation fails
// with ErrOperationInProgress. ctx bounds the wait for a free accelerator
// slot only.
func (k *Key) Submit(ctx context.Context, in []byte, op Operation, random io.Reader) error {
	const name = "submit"
	if k.device == nil {
		return opError(name, fmt.Errorf("%w: no accelerator bound", ErrInvalidState))
	}
	if err := k.checkFunction(in, op); err != nil {
		return opError(name, err)
	}
	src, err := k.blindingSource(op, random)
	if err != nil {
		return opError(name, err)
	}

	w, err := k.detach()
	if err != nil {
		return opError(name, err)
	}
	size := k.Size()
	input := make([]byte, size)
	copy(input, in)

	ev, err := k.device.Submit(ctx, func(context.Context) ([]byte, error) {
		out := make([]byte, size)
		if err := w.apply(out, input, op, src); err != nil {
			return nil, err
		}
		return out, nil
	})
	if err != nil {
		w.wipe()
		ZeroizeBytes(input)
		return opError(name, err)
	}

	// The work may be cancelled before it starts, so the copies are wiped
	// once the event completes either way.
	go func() {
		<-ev.Done()
		w.wipe()
		ZeroizeBytes(input)
	}()

	k.pending = ev
	k.pendingOp = op
	k.state = StatePending
	k.logger.Debug(ctx, "operation submitted", "op", op, "event", ev.ID())
	return opError(name, ErrPending)
}

// Poll collects the offloaded result if it is ready. While the work is in
// flight it returns an error matching ErrPending and the key stays pending.
func (k *Key) Poll() ([]byte, error) {
	const name = "poll"
	if k.pending == nil {
		return nil, opError(name, fmt.Errorf("%w: nothing submitted", ErrInvalidState))
	}
	res, ok := k.pending.Poll()
	if !ok {
		return nil, opError(name, ErrPending)
	}
	return k.collect(name, res)
}

// Wait blocks until the offloaded result is ready or ctx is done. A ctx
// error leaves the key pending so the caller can wait again or Abandon.
func (k *Key) Wait(ctx context.Context) ([]byte, error) {
	const name = "wait"
	if k.pending == nil {
		return nil, opError(name, fmt.Errorf("%w: nothing submitted", ErrInvalidState))
	}
	res, err := k.pending.Wait(ctx)
	if err != nil {
		return nil, &Error{Op: name, Err: err}
	}
	return k.collect(name, res)
}

// WaitDecrypt waits for an offloaded PrivateDecrypt and strips its padding
// according to opts, with the same error collapse as PrivateDecrypt: a
// ciphertext not below the modulus and every padding failure are reported
// as ErrInvalidPadding. A ctx error leaves the key pending.
func (k *Key) WaitDecrypt(ctx context.Context, opts *PaddingOptions) ([]byte, error) {
	const name = "decrypt"
	if k.pending == nil {
		return nil, opError(name, fmt.Errorf("%w: nothing submitted", ErrInvalidState))
	}
	if k.pendingOp != PrivateDecrypt {
		return nil, opError(name, fmt.Errorf("%w: pending operation is %v", ErrBadArgument, k.pendingOp))
	}
	if err := opts.validate(); err != nil {
		return nil, opError(name, err)
	}
	res, err := k.pending.Wait(ctx)
	if err != nil {
		return nil, &Error{Op: name, Err: err}
	}
	em, err := k.collect(name, res)
	off, err := unpad(em, err, opts)
	if err != nil {
		ZeroizeBytes(em)
		return nil, opError(name, err)
	}
	return em[off:], nil
}

func (k *Key) collect(name string, res accel.Result) ([]byte, error) {
	ev := k.pending
	k.pending = nil
	k.state = StateIdle
	k.logger.Debug(context.Background(), "operation collected", "event", ev.ID(), "failed", res.Err != nil)
	if res.Err != nil {
		return nil, opError(name, res.Err)
	}
	return res.Out, nil
}

// Abandon detaches the in-flight operation and returns the key to
// StateIdle. Cancellation is fire-and-forget: the accelerator still runs the
// work to completion, its result is zeroized and discarded, and Free waits
// for it before releasing the key material.
func (k *Key) Abandon() {
	ev := k.pending
	if ev == nil {
		return
	}
	k.pending = nil
	k.state = StateIdle

	live := k.abandoned[:0]
	for _, a := range k.abandoned {
		if _, done := a.Poll(); !done {
			live = append(live, a)
		}
	}
	k.abandoned = append(live, ev)

	go func() {
		<-ev.Done()
		if res, ok := ev.Poll(); ok {
			ZeroizeBytes(res.Out)
		}
	}()
	k.logger.Debug(context.Background(), "operation abandoned", "event", ev.ID())
}
