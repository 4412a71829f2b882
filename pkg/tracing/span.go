// Package tracing records one span tree per operator action (dispatch, build,
// backend call, render) and logs it through slog when the action completes.
package tracing

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

type contextKey struct{}

var enabled atomic.Bool

// Enable turns span logging on or off process-wide.
func Enable(on bool) { enabled.Store(on) }

// Span represents a timed operation within a trace.
type Span struct {
	Name      string
	TraceID   string
	StartTime time.Time
	Duration  time.Duration
	Children  []*Span
	Attrs     map[string]any

	root bool
	mu   sync.Mutex
}

// Start opens a span. Without a parent span in ctx it becomes a root with a
// fresh trace id; otherwise it is attached as a child.
func Start(ctx context.Context, name string) (context.Context, *Span) {
	span := &Span{
		Name:      name,
		StartTime: time.Now(),
		Attrs:     make(map[string]any),
	}
	if parent := FromContext(ctx); parent != nil {
		span.TraceID = parent.TraceID
		parent.mu.Lock()
		parent.Children = append(parent.Children, span)
		parent.mu.Unlock()
	} else {
		span.TraceID = uuid.NewString()
		span.root = true
	}
	return context.WithValue(ctx, contextKey{}, span), span
}

// FromContext extracts the current Span from ctx, or nil if none.
func FromContext(ctx context.Context) *Span {
	if span, ok := ctx.Value(contextKey{}).(*Span); ok {
		return span
	}
	return nil
}

// SetAttr attaches a key-value attribute to the span.
func (s *Span) SetAttr(key string, value any) {
	s.mu.Lock()
	s.Attrs[key] = value
	s.mu.Unlock()
}

// End records the duration. Ending a root span logs the whole tree.
func (s *Span) End() {
	s.mu.Lock()
	s.Duration = time.Since(s.StartTime)
	s.mu.Unlock()
	if s.root && enabled.Load() {
		s.log(0)
	}
}

func (s *Span) log(depth int) {
	s.mu.Lock()
	attrs := []any{
		"trace_id", s.TraceID,
		"span", s.Name,
		"duration_ms", s.Duration.Milliseconds(),
		"depth", depth,
	}
	for k, v := range s.Attrs {
		attrs = append(attrs, k, v)
	}
	children := append([]*Span(nil), s.Children...)
	s.mu.Unlock()

	slog.Debug("span", attrs...)
	for _, child := range children {
		child.log(depth + 1)
	}
}
