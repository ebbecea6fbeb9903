// Package publisher provides asynchronous fan-out of audit events. Emission
// never blocks a lookup; a bounded queue absorbs bursts and drops the oldest
// events under sustained overload.
package publisher

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"domainlens/pkg/platform/audit"
)

// Sink receives events from the publisher worker. Implementations include
// the Kafka producer and the in-memory store used in tests.
type Sink interface {
	Publish(ctx context.Context, event audit.Event) error
}

const (
	defaultQueueSize    = 4096
	defaultFlushTimeout = 5 * time.Second
)

// Async decouples event emission from delivery. One worker goroutine drains
// the queue into the sink; delivery failures are logged and counted, never
// propagated to the emitting lookup.
type Async struct {
	sink   Sink
	queue  chan audit.Event
	logger *slog.Logger
	now    func() time.Time

	dropped atomic.Int64
	done    chan struct{}
	once    sync.Once
}

// Option configures an Async publisher.
type Option func(*Async)

// WithQueueSize bounds the event queue.
func WithQueueSize(n int) Option {
	return func(p *Async) {
		if n > 0 {
			p.queue = make(chan audit.Event, n)
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Async) { p.logger = logger }
}

// WithClock overrides the timestamp clock for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Async) { p.now = now }
}

// NewAsync starts a publisher draining into sink. Call Close to flush.
func NewAsync(sink Sink, opts ...Option) *Async {
	p := &Async{
		sink:  sink,
		queue: make(chan audit.Event, defaultQueueSize),
		now:   time.Now,
		done:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	go p.drain()
	return p
}

// Emit enqueues an event without blocking. A full queue drops the event and
// increments the drop counter.
func (p *Async) Emit(_ context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now()
	}
	select {
	case p.queue <- event:
	default:
		p.dropped.Add(1)
		if p.logger != nil {
			p.logger.Warn("audit queue full, event dropped", "action", event.Action)
		}
	}
	return nil
}

// Dropped reports how many events were discarded due to a full queue.
func (p *Async) Dropped() int64 {
	return p.dropped.Load()
}

// Close stops accepting events and flushes the queue, bounded by a timeout.
func (p *Async) Close() {
	p.once.Do(func() {
		close(p.queue)
		select {
		case <-p.done:
		case <-time.After(defaultFlushTimeout):
			if p.logger != nil {
				p.logger.Warn("audit publisher close timed out with events pending")
			}
		}
	})
}

func (p *Async) drain() {
	defer close(p.done)
	for event := range p.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := p.sink.Publish(ctx, event); err != nil && p.logger != nil {
			p.logger.Warn("audit event delivery failed", "action", event.Action, "error", err)
		}
		cancel()
	}
}
