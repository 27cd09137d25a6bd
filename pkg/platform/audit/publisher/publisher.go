// Package publisher buffers audit events in memory and persists them from
// a background loop so barrier evaluation never waits on a sink.
package publisher

import (
	"context"
	"errors"
	"log/slog"
	"time"

	audit "msgbarrier/pkg/platform/audit"
	"msgbarrier/pkg/platform/circuit"
	"msgbarrier/pkg/requestcontext"
)

// BatchStore is implemented by sinks that persist several events at once.
type BatchStore interface {
	AppendBatch(ctx context.Context, events []audit.Event) error
}

// Publisher is a non-blocking audit.Emitter. Emit enqueues into a ring
// buffer and Run drains it into the primary store. Batches the primary
// rejects go to the fallback store; a circuit breaker tracks whether the
// primary is currently healthy.
type Publisher struct {
	primary  audit.Store
	fallback audit.Store
	buffer   *RingBuffer
	sampler  *Sampler
	breaker  *circuit.Breaker
	metrics  *Metrics
	logger   *slog.Logger

	batchSize     int
	flushInterval time.Duration
	wake          chan struct{}
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithFallback sets the store used while the primary is failing.
func WithFallback(store audit.Store) Option {
	return func(p *Publisher) { p.fallback = store }
}

// WithSampler samples operations events before they are buffered.
func WithSampler(s *Sampler) Option {
	return func(p *Publisher) { p.sampler = s }
}

func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) { p.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) { p.logger = logger }
}

// WithBufferSize sets the ring buffer capacity.
func WithBufferSize(n int) Option {
	return func(p *Publisher) { p.buffer = NewRingBuffer(n) }
}

// WithBatchSize bounds how many events one persist call carries.
func WithBatchSize(n int) Option {
	return func(p *Publisher) {
		if n > 0 {
			p.batchSize = n
		}
	}
}

// WithFlushInterval sets how often Run drains the buffer when idle.
func WithFlushInterval(d time.Duration) Option {
	return func(p *Publisher) {
		if d > 0 {
			p.flushInterval = d
		}
	}
}

// WithBreaker replaces the default primary-sink circuit breaker.
func WithBreaker(b *circuit.Breaker) Option {
	return func(p *Publisher) { p.breaker = b }
}

// New creates a publisher writing to store.
func New(store audit.Store, opts ...Option) (*Publisher, error) {
	if store == nil {
		return nil, errors.New("audit store is required")
	}
	p := &Publisher{
		primary:       store,
		buffer:        NewRingBuffer(1024),
		breaker:       circuit.New("audit_sink", circuit.WithFailureThreshold(3), circuit.WithSuccessThreshold(2)),
		logger:        slog.Default(),
		batchSize:     100,
		flushInterval: time.Second,
		wake:          make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Emit stamps and enqueues event. It never blocks and only drops events
// through sampling or buffer overflow.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}
	if event.Category == audit.CategoryOperations && p.sampler != nil && !p.sampler.Keep(event.Action) {
		p.metrics.incSampled()
		return nil
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}

	if p.buffer.Enqueue(event) {
		p.metrics.incDropped()
	}
	if p.buffer.Len() >= p.batchSize {
		select {
		case p.wake <- struct{}{}:
		default:
		}
	}
	return nil
}

// Run drains the buffer until ctx is done, then flushes what is left.
func (p *Publisher) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.Flush(context.WithoutCancel(ctx))
			return nil
		case <-ticker.C:
			p.Flush(ctx)
		case <-p.wake:
			p.Flush(ctx)
		}
	}
}

// Flush persists every buffered event.
func (p *Publisher) Flush(ctx context.Context) {
	for {
		batch := p.buffer.DequeueBatch(p.batchSize)
		if len(batch) == 0 {
			return
		}
		p.persist(ctx, batch)
	}
}

// Healthy reports whether the primary sink is accepting writes.
func (p *Publisher) Healthy() bool {
	return !p.breaker.IsOpen()
}

// Pending returns the number of buffered events.
func (p *Publisher) Pending() int {
	return p.buffer.Len()
}

func (p *Publisher) persist(ctx context.Context, batch []audit.Event) {
	err := appendAll(ctx, p.primary, batch)
	if err == nil {
		if _, change := p.breaker.RecordSuccess(); change.Closed {
			p.metrics.setSinkOpen(false)
			p.logger.InfoContext(ctx, "audit sink recovered", "sink", p.breaker.Name())
		}
		p.countPublished(batch)
		return
	}

	p.metrics.incPersistFailures()
	if _, change := p.breaker.RecordFailure(); change.Opened {
		p.metrics.setSinkOpen(true)
		p.logger.WarnContext(ctx, "audit sink circuit opened", "sink", p.breaker.Name(), "error", err)
	}
	if p.fallback == nil {
		p.logger.ErrorContext(ctx, "failed to persist audit events",
			"error", err,
			"count", len(batch),
		)
		return
	}
	if ferr := appendAll(ctx, p.fallback, batch); ferr != nil {
		p.logger.ErrorContext(ctx, "failed to persist audit events to fallback",
			"error", ferr,
			"count", len(batch),
		)
		return
	}
	p.countPublished(batch)
}

func (p *Publisher) countPublished(batch []audit.Event) {
	counts := make(map[audit.EventCategory]int)
	for _, e := range batch {
		counts[e.Category]++
	}
	for category, n := range counts {
		p.metrics.incPublished(string(category), n)
	}
}

func appendAll(ctx context.Context, store audit.Store, batch []audit.Event) error {
	if bs, ok := store.(BatchStore); ok {
		return bs.AppendBatch(ctx, batch)
	}
	for _, event := range batch {
		if err := store.Append(ctx, event); err != nil {
			return err
		}
	}
	return nil
}
