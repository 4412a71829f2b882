// Package activity forwards operator-activity events to a sink without ever
// blocking the console. Events that do not fit in the buffer are dropped.
package activity

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/pkg/metrics"
)

// Sink publishes one event. *kafka.Producer satisfies it.
type Sink interface {
	Publish(ctx context.Context, event kafka.Event) error
}

// LogSink writes events to a logger, for when no broker is configured.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Publish(_ context.Context, event kafka.Event) error {
	s.Logger.Info("activity", "type", event.Type, "event", event.Value)
	return nil
}

type Collector struct {
	sink    Sink
	eventCh chan Event
	metrics *metrics.Metrics
	logger  *slog.Logger
	done    chan struct{}

	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

// NewCollector buffers up to bufferSize events. m may be nil.
func NewCollector(sink Sink, bufferSize int, m *metrics.Metrics) *Collector {
	if bufferSize <= 0 {
		bufferSize = 1024
	}
	return &Collector{
		sink:    sink,
		eventCh: make(chan Event, bufferSize),
		metrics: m,
		logger:  slog.Default().With("component", "activity-collector"),
		done:    make(chan struct{}),
	}
}

func (c *Collector) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		for {
			select {
			case event, ok := <-c.eventCh:
				if !ok {
					return
				}
				c.publish(ctx, event)
			case <-ctx.Done():
				c.drainRemaining()
				return
			}
		}
	}()
	c.logger.Info("activity collector started", "buffer_size", cap(c.eventCh))
}

// Track enqueues event. It never blocks and is a no-op after Close.
func (c *Collector) Track(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}
	select {
	case c.eventCh <- event:
	default:
		if c.metrics != nil {
			c.metrics.ActivityDroppedTotal.Inc()
		}
		c.logger.Warn("activity event dropped (buffer full)", "type", event.Type)
	}
}

// Close stops accepting events and waits for the buffer to flush.
func (c *Collector) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.eventCh)
		c.mu.Unlock()
	})
	<-c.done
}

func (c *Collector) publish(ctx context.Context, event Event) {
	if err := c.sink.Publish(ctx, kafka.Event{Key: string(event.Type), Type: string(event.Type), Value: event}); err != nil {
		c.logger.Error("failed to publish activity event", "type", event.Type, "error", err)
	}
}

func (c *Collector) drainRemaining() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				return
			}
			c.publish(ctx, event)
		default:
			return
		}
	}
}
