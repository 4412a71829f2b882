package activity

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/pkg/metrics"
)

type memorySink struct {
	mu     sync.Mutex
	events []kafka.Event
	block  chan struct{}
	err    error
}

func (s *memorySink) Publish(_ context.Context, e kafka.Event) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	s.events = append(s.events, e)
	s.mu.Unlock()
	return s.err
}

func TestCollectorPublishesOnClose(t *testing.T) {
	sink := &memorySink{}
	c := NewCollector(sink, 8, nil)
	c.Start(context.Background())

	c.Track(Event{Type: EventSubmit, Kind: "850", RunID: "R1", Outcome: "ok"})
	c.Track(Event{Type: EventReplay, RunID: "R1", Outcome: "lookup"})
	c.Close()

	require.Len(t, sink.events, 2)
	assert.Equal(t, "submit", sink.events[0].Key)
	ev := sink.events[1].Value.(Event)
	assert.Equal(t, "lookup", ev.Outcome)
	assert.False(t, ev.Timestamp.IsZero())
}

func TestCollectorDropsWhenFull(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegisterer(reg)

	// Not started, so nothing drains the buffer.
	c := NewCollector(&memorySink{}, 1, m)
	c.Track(Event{Type: EventAsk})
	c.Track(Event{Type: EventAsk})
	c.Track(Event{Type: EventAsk})

	families, err := reg.Gather()
	require.NoError(t, err)
	var dropped float64
	for _, mf := range families {
		if mf.GetName() == "console_activity_dropped_total" {
			dropped = mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	assert.Equal(t, 2.0, dropped)
}

func TestTrackAfterCloseIsNoop(t *testing.T) {
	sink := &memorySink{}
	c := NewCollector(sink, 4, nil)
	c.Start(context.Background())
	c.Close()

	assert.NotPanics(t, func() { c.Track(Event{Type: EventCopy}) })
	assert.Empty(t, sink.events)
	c.Close()
}

func TestPublishErrorDoesNotStop(t *testing.T) {
	sink := &memorySink{err: errors.New("broker down")}
	c := NewCollector(sink, 4, nil)
	c.Start(context.Background())
	c.Track(Event{Type: EventSubmit})
	c.Track(Event{Type: EventSubmit})
	c.Close()

	assert.Len(t, sink.events, 2)
}
