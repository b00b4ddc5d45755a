// Package publisher emits audit events into a store, synchronously by
// default or through a buffered channel when the caller tolerates lag.
package publisher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	id "custos/pkg/domain"
	audit "custos/pkg/platform/audit"
)

// Lister is implemented by stores that support reading events back
// (the memory store; the outbox store does not).
type Lister interface {
	List(ctx context.Context, entityID id.EntityID) ([]audit.Event, error)
}

// Publisher writes audit events to a store. In async mode events are
// buffered and persisted by a background goroutine; a full buffer drops
// the event rather than blocking domain logic.
type Publisher struct {
	store  audit.Store
	logger *slog.Logger

	inbox chan audit.Event
	done  chan struct{}
	once  sync.Once
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithAsyncBuffer enables async mode with the given buffer size.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.inbox = make(chan audit.Event, size)
	}
}

// WithLogger sets a logger for drop and persistence failures.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// NewPublisher creates a publisher over the given store.
func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store: store,
		done:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		go p.drain()
	}
	return p
}

// Emit records an event, stamping timestamp and category when unset.
// Sync mode returns the store error; async mode never blocks.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.Category == "" {
		event.Category = audit.Action(event.Action).Category()
	}

	if p.inbox == nil {
		return p.store.Append(ctx, event)
	}

	select {
	case p.inbox <- event:
	default:
		if p.logger != nil {
			p.logger.Warn("audit buffer full, dropping event", "action", event.Action)
		}
	}
	return nil
}

// List reads back events for an entity when the store supports it.
func (p *Publisher) List(ctx context.Context, entityID id.EntityID) ([]audit.Event, error) {
	lister, ok := p.store.(Lister)
	if !ok {
		return nil, nil
	}
	return lister.List(ctx, entityID)
}

// Close flushes the async buffer and stops the background goroutine.
// Safe to call multiple times.
func (p *Publisher) Close() {
	p.once.Do(func() {
		if p.inbox != nil {
			close(p.inbox)
			<-p.done
		}
	})
}

func (p *Publisher) drain() {
	defer close(p.done)
	for event := range p.inbox {
		if err := p.store.Append(context.Background(), event); err != nil && p.logger != nil {
			p.logger.Error("audit append failed", "action", event.Action, "error", err)
		}
	}
}
