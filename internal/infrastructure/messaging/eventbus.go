// Package messaging delivers committed domain events to in-process
// subscribers and, optionally, mirrors them to Redis Pub/Sub.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/juju/clock"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/asidocente/school-records/internal/domain/shared"
	"github.com/asidocente/school-records/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrEventBusClosed is returned when operations are attempted on a closed bus.
	ErrEventBusClosed = errors.New("event bus is closed")

	// ErrHandlerPanic is returned when a handler panics.
	ErrHandlerPanic = errors.New("handler panicked")
)

// ══════════════════════════════════════════════════════════════════════════════
// IN-MEMORY EVENT BUS
// ══════════════════════════════════════════════════════════════════════════════

// InMemoryEventBus fans events out to subscribers inside the process.
// Handler failures are logged and never reach the publisher.
type InMemoryEventBus struct {
	mu          sync.RWMutex
	handlers    map[shared.EventType][]shared.EventHandler
	allHandlers []shared.EventHandler
	asyncMode   bool
	workerPool  chan struct{}
	logger      *slog.Logger
	clock       clock.Clock
	metrics     *EventBusMetrics
	closed      bool
	closeCh     chan struct{}
	wg          sync.WaitGroup
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)

// InMemoryEventBusConfig contains configuration for InMemoryEventBus.
type InMemoryEventBusConfig struct {
	// AsyncMode runs handlers on a bounded worker pool instead of inline.
	AsyncMode bool

	// WorkerPoolSize bounds concurrent async handlers.
	WorkerPoolSize int

	Logger  *slog.Logger
	Clock   clock.Clock
	Metrics *EventBusMetrics
}

// DefaultInMemoryEventBusConfig returns sensible defaults.
func DefaultInMemoryEventBusConfig() InMemoryEventBusConfig {
	return InMemoryEventBusConfig{
		AsyncMode:      true,
		WorkerPoolSize: 4,
	}
}

// NewInMemoryEventBus creates a new in-memory event bus.
func NewInMemoryEventBus(config InMemoryEventBusConfig) *InMemoryEventBus {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Clock == nil {
		config.Clock = clock.WallClock
	}
	if config.WorkerPoolSize <= 0 {
		config.WorkerPoolSize = 4
	}

	return &InMemoryEventBus{
		handlers:   make(map[shared.EventType][]shared.EventHandler),
		asyncMode:  config.AsyncMode,
		workerPool: make(chan struct{}, config.WorkerPoolSize),
		logger:     config.Logger.With(logger.Component("event_bus")),
		clock:      config.Clock,
		metrics:    config.Metrics,
		closeCh:    make(chan struct{}),
	}
}

// Subscribe registers a handler for a specific event type.
func (b *InMemoryEventBus) Subscribe(eventType shared.EventType, handler shared.EventHandler) error {
	if handler == nil {
		return errors.New("handler cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrEventBusClosed
	}
	b.handlers[eventType] = append(b.handlers[eventType], handler)
	b.logger.Debug("subscribed handler", slog.String("event_type", string(eventType)))
	return nil
}

// SubscribeAll registers a handler for all events.
func (b *InMemoryEventBus) SubscribeAll(handler shared.EventHandler) error {
	if handler == nil {
		return errors.New("handler cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrEventBusClosed
	}
	b.allHandlers = append(b.allHandlers, handler)
	return nil
}

// Publish delivers events in order. In async mode handlers run detached
// from ctx cancellation, since the events are already committed.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.Event) error {
	for _, event := range events {
		if event == nil {
			return errors.New("event cannot be nil")
		}

		b.mu.RLock()
		if b.closed {
			b.mu.RUnlock()
			return ErrEventBusClosed
		}
		handlers := make([]shared.EventHandler, 0, len(b.handlers[event.EventType()])+len(b.allHandlers))
		handlers = append(handlers, b.handlers[event.EventType()]...)
		handlers = append(handlers, b.allHandlers...)
		b.mu.RUnlock()

		b.metrics.recordPublish(event.EventType())

		if len(handlers) == 0 {
			b.logger.DebugContext(ctx, "no handlers for event", slog.String("event_type", string(event.EventType())))
			continue
		}

		for _, handler := range handlers {
			if b.asyncMode {
				b.executeAsync(context.WithoutCancel(ctx), event, handler)
				continue
			}
			if err := b.execute(ctx, event, handler); err != nil {
				b.logger.ErrorContext(ctx, "handler error",
					slog.String("event_type", string(event.EventType())), logger.Err(err))
			}
		}
	}
	return nil
}

// executeAsync executes a handler on the worker pool.
func (b *InMemoryEventBus) executeAsync(ctx context.Context, event shared.Event, handler shared.EventHandler) {
	b.wg.Add(1)

	go func() {
		defer b.wg.Done()

		select {
		case b.workerPool <- struct{}{}:
			defer func() { <-b.workerPool }()
		case <-b.closeCh:
			return
		}

		if err := b.execute(ctx, event, handler); err != nil {
			b.logger.ErrorContext(ctx, "async handler error",
				slog.String("event_type", string(event.EventType())), logger.Err(err))
		}
	}()
}

// execute runs one handler, converting a panic into ErrHandlerPanic.
func (b *InMemoryEventBus) execute(ctx context.Context, event shared.Event, handler shared.EventHandler) (err error) {
	start := b.clock.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v\n%s", ErrHandlerPanic, r, debug.Stack())
		}
		b.metrics.recordHandler(event.EventType(), b.clock.Now().Sub(start).Seconds(), err == nil)
	}()
	return handler(ctx, event)
}

// Wait blocks until every async handler started so far has finished.
func (b *InMemoryEventBus) Wait() {
	b.wg.Wait()
}

// Close stops accepting events and waits for running handlers.
func (b *InMemoryEventBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	close(b.closeCh)
	b.mu.Unlock()

	b.wg.Wait()
	b.logger.Info("event bus closed")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// FAN-OUT
// ══════════════════════════════════════════════════════════════════════════════

// Tee publishes to every publisher and joins their errors.
type Tee []shared.EventPublisher

// Publish implements shared.EventPublisher.
func (t Tee) Publish(ctx context.Context, events ...shared.Event) error {
	var errs []error
	for _, p := range t {
		if err := p.Publish(ctx, events...); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ══════════════════════════════════════════════════════════════════════════════
// METRICS
// ══════════════════════════════════════════════════════════════════════════════

// EventBusMetrics exposes event delivery counters to Prometheus. A nil
// *EventBusMetrics records nothing.
type EventBusMetrics struct {
	published *prometheus.CounterVec
	handled   *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// NewEventBusMetrics creates the collectors; register them with Register.
func NewEventBusMetrics(namespace string) *EventBusMetrics {
	return &EventBusMetrics{
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Committed domain events handed to the bus.",
		}, []string{"type"}),
		handled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "handled_total",
			Help:      "Event handler executions by result.",
		}, []string{"type", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "handler_duration_seconds",
			Help:      "Event handler latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"type"}),
	}
}

// Register adds the collectors to reg.
func (m *EventBusMetrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.published, m.handled, m.duration} {
		if err := reg.Register(c); err != nil {
			return fmt.Errorf("register event bus metrics: %w", err)
		}
	}
	return nil
}

func (m *EventBusMetrics) recordPublish(t shared.EventType) {
	if m == nil {
		return
	}
	m.published.WithLabelValues(string(t)).Inc()
}

func (m *EventBusMetrics) recordHandler(t shared.EventType, seconds float64, ok bool) {
	if m == nil {
		return
	}
	res := "success"
	if !ok {
		res = "failure"
	}
	m.handled.WithLabelValues(string(t), res).Inc()
	m.duration.WithLabelValues(string(t)).Observe(seconds)
}
