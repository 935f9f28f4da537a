package rsaengine

import (
	"fmt"

	"github.com/hsiuhsiu/rsa-engine-go/pkg/rsaengine/accel"
	"github.com/hsiuhsiu/rsa-engine-go/pkg/rsaengine/logging"
)

// BlindingPolicy controls what a private operation does when no random source
// is available for blinding.
type BlindingPolicy int

const (
	// BlindingRequired fails private operations with ErrRngUnavailable when
	// neither the call nor the key supplies a random source.
	BlindingRequired BlindingPolicy = iota

	// BlindingOptional lets private operations run unblinded when no random
	// source is available. A source that is available is still used.
	BlindingOptional
)

func (p BlindingPolicy) String() string {
	switch p {
	case BlindingRequired:
		return "required"
	case BlindingOptional:
		return "optional"
	}
	return fmt.Sprintf("BlindingPolicy(%d)", int(p))
}

// Config collects the settings a key is created with.
type Config struct {
	// Heap supplies working buffers. Nil uses DefaultHeap.
	Heap Heap

	// Device binds the key to an accelerator queue for Submit/Poll/Wait.
	// Nil keys can only run synchronously.
	Device *accel.Queue

	// Logger receives lifecycle records. Nil uses slog.Default().
	Logger logging.Logger

	// Blinding selects the blinding policy for private operations.
	Blinding BlindingPolicy
}

func (c Config) withDefaults() (Config, error) {
	if c.Heap == nil {
		c.Heap = DefaultHeap
	}
	if c.Logger == nil {
		c.Logger = logging.New(nil)
	}
	switch c.Blinding {
	case BlindingRequired, BlindingOptional:
	default:
		return c, fmt.Errorf("%w: unknown blinding policy %d", ErrBadArgument, int(c.Blinding))
	}
	return c, nil
}
