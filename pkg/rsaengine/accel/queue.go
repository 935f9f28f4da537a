package accel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/hsiuhsiu/rsa-engine-go/pkg/rsaengine/logging"
)

var (
	// ErrQueueClosed is reported by Submit after Close, and by events whose
	// work never started because the queue closed first.
	ErrQueueClosed = errors.New("accel: queue closed")

	// ErrDeviceFault is reported when a work item panics.
	ErrDeviceFault = errors.New("accel: device fault")
)

// Work is a unit of offloaded computation.
type Work func(ctx context.Context) ([]byte, error)

// Config configures a Queue.
type Config struct {
	// ID identifies the device in logs. Keys record it as their device id.
	ID int

	// Workers bounds the number of concurrently running work items. Zero
	// means one.
	Workers int64

	// Logger receives queue lifecycle records. Nil uses logging.New(nil).
	Logger logging.Logger
}

// Queue runs submitted work on background goroutines.
type Queue struct {
	id     int
	sem    *semaphore.Weighted
	ctx    context.Context
	cancel context.CancelFunc
	logger logging.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewQueue starts a queue.
func NewQueue(cfg Config) (*Queue, error) {
	if cfg.Workers < 0 {
		return nil, fmt.Errorf("accel: workers must not be negative (got %d)", cfg.Workers)
	}
	if cfg.Workers == 0 {
		cfg.Workers = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.New(nil)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Queue{
		id:     cfg.ID,
		sem:    semaphore.NewWeighted(cfg.Workers),
		ctx:    ctx,
		cancel: cancel,
		logger: cfg.Logger.With("device", cfg.ID),
	}, nil
}

// ID returns the device identifier.
func (q *Queue) ID() int {
	return q.id
}

// Submit schedules w and returns without waiting for it. ctx bounds only the
// wait for a free worker slot; once w starts it runs to completion.
func (q *Queue) Submit(ctx context.Context, w Work) (*Event, error) {
	if w == nil {
		return nil, errors.New("accel: nil work")
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil, ErrQueueClosed
	}
	q.wg.Add(1)
	q.mu.Unlock()

	ev := newEvent()
	q.logger.Debug(ctx, "work submitted", "event", ev.id)

	go func() {
		defer q.wg.Done()
		q.run(ctx, ev, w)
	}()
	return ev, nil
}

func (q *Queue) run(ctx context.Context, ev *Event, w Work) {
	acquireCtx, stop := context.WithCancel(ctx)
	defer stop()
	go func() {
		select {
		case <-q.ctx.Done():
			stop()
		case <-acquireCtx.Done():
		}
	}()

	if err := q.sem.Acquire(acquireCtx, 1); err != nil {
		if q.ctx.Err() != nil {
			err = ErrQueueClosed
		}
		ev.complete(nil, err)
		return
	}
	defer q.sem.Release(1)

	out, err := q.execute(ev, w)
	q.logger.Debug(q.ctx, "work finished", "event", ev.id, "elapsed", time.Since(ev.submitted), "failed", err != nil)
	ev.complete(out, err)
}

func (q *Queue) execute(ev *Event, w Work) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error(q.ctx, "work panicked", "event", ev.id)
			out, err = nil, ErrDeviceFault
		}
	}()
	return w(q.ctx)
}

// Close stops accepting work, cancels work still waiting for a slot and
// waits for running work to return. Close is idempotent.
func (q *Queue) Close() error {
	if q == nil {
		return nil
	}
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	q.mu.Unlock()

	q.cancel()
	q.wg.Wait()
	q.logger.Debug(context.Background(), "queue closed")
	return nil
}

// Result is the outcome of a work item.
type Result struct {
	Out []byte
	Err error
}

// Event is the handle for one submitted work item.
type Event struct {
	id        uuid.UUID
	submitted time.Time
	done      chan struct{}
	res       Result
}

func newEvent() *Event {
	return &Event{
		id:        uuid.New(),
		submitted: time.Now(),
		done:      make(chan struct{}),
	}
}

func (e *Event) complete(out []byte, err error) {
	e.res = Result{Out: out, Err: err}
	close(e.done)
}

// ID returns the event identifier.
func (e *Event) ID() uuid.UUID {
	return e.id
}

// Done is closed once the result is available.
func (e *Event) Done() <-chan struct{} {
	return e.done
}

// Poll returns the result if the work has finished. ok is false while the
// work is still pending.
func (e *Event) Poll() (res Result, ok bool) {
	select {
	case <-e.done:
		return e.res, true
	default:
		return Result{}, false
	}
}

// Wait blocks until the work finishes or ctx is done. The returned error is
// ctx.Err() only; the work's own failure is in Result.Err. A ctx error leaves
// the work running.
func (e *Event) Wait(ctx context.Context) (Result, error) {
	select {
	case <-e.done:
		return e.res, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}
