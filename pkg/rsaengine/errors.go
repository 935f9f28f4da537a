package rsaengine

import (
	"errors"
	"fmt"

	"github.com/hsiuhsiu/rsa-engine-go/pkg/rsaengine/accel"
	"github.com/hsiuhsiu/rsa-engine-go/pkg/rsaengine/padding"
)

var (
	ErrAllocation          = errors.New("allocation rejected by heap")
	ErrInvalidState        = errors.New("key is not in a usable state")
	ErrMessageTooLarge     = errors.New("input is not less than the modulus")
	ErrMessageTooLong      = errors.New("message too long for modulus")
	ErrInvalidInputLength  = errors.New("input length does not match modulus size")
	ErrInvalidPadding      = errors.New("invalid padding")
	ErrInvalidSignature    = errors.New("invalid signature")
	ErrMalformedKey        = errors.New("malformed key")
	ErrBufferTooSmall      = errors.New("output buffer too small")
	ErrInvalidSize         = errors.New("unsupported key size")
	ErrInvalidExponent     = errors.New("invalid public exponent")
	ErrKeyTypeMismatch     = errors.New("key type does not support operation")
	ErrRngUnavailable      = errors.New("random source unavailable")
	ErrOperationInProgress = errors.New("operation already in progress")
	ErrAccelerator         = errors.New("accelerator failure")
	ErrBadArgument         = errors.New("invalid argument")
	ErrFault               = errors.New("private operation failed consistency check")

	// ErrPending is the would-block indication of the async interface. It is
	// not a failure: the caller polls or waits for the result.
	ErrPending = errors.New("operation pending")
)

// Error records the operation that failed. Err is one of the package
// sentinels, possibly wrapping more detail.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return "rsaengine " + e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// BufferTooSmallError reports how many bytes the output needed.
type BufferTooSmallError struct {
	Required int
}

func (e *BufferTooSmallError) Error() string {
	return fmt.Sprintf("%s: need %d bytes", ErrBufferTooSmall, e.Required)
}

func (e *BufferTooSmallError) Is(target error) bool {
	return target == ErrBufferTooSmall
}

// Integer result codes. Success is zero; every failure kind has a distinct
// negative value. Callers branch on sign first.
const (
	CodeOK                  = 0
	CodeUnknown             = -1
	CodePending             = -108
	CodeAllocation          = -125
	CodeMessageTooLarge     = -131
	CodeInvalidInputLength  = -132
	CodeBufferTooSmall      = -133
	CodeMalformedKey        = -140
	CodeBadArgument         = -173
	CodeInvalidState        = -192
	CodeInvalidPadding      = -201
	CodeMessageTooLong      = -207
	CodeInvalidSignature    = -229
	CodeInvalidSize         = -234
	CodeInvalidExponent     = -235
	CodeRngUnavailable      = -236
	CodeKeyTypeMismatch     = -237
	CodeFault               = -238
	CodeOperationInProgress = -245
	CodeAccelerator         = -246
)

var codes = []struct {
	err  error
	code int
}{
	{ErrPending, CodePending},
	{ErrAllocation, CodeAllocation},
	{ErrMessageTooLarge, CodeMessageTooLarge},
	{ErrInvalidInputLength, CodeInvalidInputLength},
	{ErrBufferTooSmall, CodeBufferTooSmall},
	{ErrMalformedKey, CodeMalformedKey},
	{ErrBadArgument, CodeBadArgument},
	{ErrInvalidState, CodeInvalidState},
	{ErrInvalidPadding, CodeInvalidPadding},
	{ErrMessageTooLong, CodeMessageTooLong},
	{ErrInvalidSignature, CodeInvalidSignature},
	{ErrInvalidSize, CodeInvalidSize},
	{ErrInvalidExponent, CodeInvalidExponent},
	{ErrRngUnavailable, CodeRngUnavailable},
	{ErrKeyTypeMismatch, CodeKeyTypeMismatch},
	{ErrFault, CodeFault},
	{ErrOperationInProgress, CodeOperationInProgress},
	{ErrAccelerator, CodeAccelerator},
}

// Code maps err to its integer result code. Errors that did not originate in
// this package map to CodeUnknown.
func Code(err error) int {
	if err == nil {
		return CodeOK
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return CodeUnknown
}

// remapError converts errors from the padding and accelerator layers into
// package sentinels. Errors that already carry a sentinel pass through.
func remapError(err error) error {
	if err == nil {
		return nil
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return err
		}
	}
	switch {
	case errors.Is(err, padding.ErrMessageTooLong):
		return ErrMessageTooLong
	case errors.Is(err, padding.ErrInvalidPadding):
		return ErrInvalidPadding
	case errors.Is(err, padding.ErrUnsupportedHash):
		return fmt.Errorf("%w: %w", ErrBadArgument, err)
	case errors.Is(err, padding.ErrNoRandom):
		return ErrRngUnavailable
	case errors.Is(err, accel.ErrQueueClosed), errors.Is(err, accel.ErrDeviceFault):
		return fmt.Errorf("%w: %w", ErrAccelerator, err)
	}
	return err
}

func opError(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Op: op, Err: remapError(err)}
}
