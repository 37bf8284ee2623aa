package audit

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// DispatcherConfig controls the buffered background writer.
type DispatcherConfig struct {
	BufferSize int
	// DropIfFull makes Create non-blocking: entries that don't fit in the
	// buffer are counted and discarded instead of stalling the request
	// handler.
	DropIfFull bool
}

// Dispatcher decouples request handlers from the trail's persistence
// latency. It implements [Store] itself, so a [Recorder] can sit directly
// on top: Create enqueues, a single background goroutine writes.
//
// Entries that fail to persist in the background are logged and counted;
// a Dispatcher is inherently fail-open. Use a Recorder with
// [PolicyFailClosed] directly on the underlying Store when writes must
// gate the request.
type Dispatcher struct {
	cfg   DispatcherConfig
	store Store
	log   zerolog.Logger

	ch        chan Entry
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	failed    atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

// NewDispatcher starts the background writer over store.
func NewDispatcher(store Store, cfg DispatcherConfig, logger zerolog.Logger) *Dispatcher {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}

	d := &Dispatcher{
		cfg:   cfg,
		store: store,
		log:   logger,
		ch:    make(chan Entry, cfg.BufferSize),
		done:  make(chan struct{}),
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case entry := <-d.ch:
			d.write(entry)
		case <-d.done:
			// Drain whatever is still buffered before exiting.
			for {
				select {
				case entry := <-d.ch:
					d.write(entry)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) write(entry Entry) {
	if err := d.store.Create(context.Background(), entry); err != nil {
		d.failed.Add(1)
		d.log.Warn().
			Err(err).
			Str("action", string(entry.Action)).
			Msg("background audit write failed")
	}
}

// Create enqueues the entry for the background writer. After Close it is a
// safe no-op.
func (d *Dispatcher) Create(ctx context.Context, entry Entry) error {
	if d == nil || d.closed.Load() {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if d.cfg.DropIfFull {
		select {
		case d.ch <- entry:
		case <-d.done:
		default:
			d.dropped.Add(1)
		}
		return nil
	}

	select {
	case d.ch <- entry:
	case <-ctx.Done():
	case <-d.done:
	}
	return nil
}

// Close stops the writer after draining the buffer. Idempotent.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.done)
		d.wg.Wait()
	})
}

// Dropped returns how many entries were discarded because the buffer was
// full.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}

// Failed returns how many background writes errored.
func (d *Dispatcher) Failed() uint64 {
	if d == nil {
		return 0
	}
	return d.failed.Load()
}
