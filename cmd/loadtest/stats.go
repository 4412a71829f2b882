package main

import (
	"fmt"
	"io"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Stats aggregates outcomes per call (submit, replay) across workers.
type Stats struct {
	calls sync.Map // call name -> *callStats
}

type callStats struct {
	total     atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64

	mu        sync.Mutex
	latencies []time.Duration
	outcomes  map[string]int64
}

func NewStats() *Stats {
	return &Stats{}
}

func (s *Stats) forCall(call string) *callStats {
	v, _ := s.calls.LoadOrStore(call, &callStats{
		latencies: make([]time.Duration, 0, 4096),
		outcomes:  make(map[string]int64),
	})
	return v.(*callStats)
}

// Record counts one call. outcome is "ok" for success.
func (s *Stats) Record(call string, d time.Duration, outcome string) {
	cs := s.forCall(call)
	cs.total.Add(1)
	if outcome == "ok" {
		cs.succeeded.Add(1)
	} else {
		cs.failed.Add(1)
	}
	cs.mu.Lock()
	cs.latencies = append(cs.latencies, d)
	cs.outcomes[outcome]++
	cs.mu.Unlock()
}

// Total is the number of calls recorded across every call name.
func (s *Stats) Total() int64 {
	var n int64
	s.calls.Range(func(_, v any) bool {
		n += v.(*callStats).total.Load()
		return true
	})
	return n
}

// Summary is the latency distribution of one call.
type Summary struct {
	Count          int
	Min, Avg, Max  time.Duration
	P50, P90, P99  time.Duration
	StdDev         time.Duration
}

func summarize(latencies []time.Duration) Summary {
	if len(latencies) == 0 {
		return Summary{}
	}
	sorted := append([]time.Duration(nil), latencies...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var sum time.Duration
	for _, l := range sorted {
		sum += l
	}
	avg := sum / time.Duration(len(sorted))

	var sq float64
	for _, l := range sorted {
		diff := float64(l - avg)
		sq += diff * diff
	}
	return Summary{
		Count:  len(sorted),
		Min:    sorted[0],
		Avg:    avg,
		Max:    sorted[len(sorted)-1],
		P50:    percentile(sorted, 50),
		P90:    percentile(sorted, 90),
		P99:    percentile(sorted, 99),
		StdDev: time.Duration(math.Sqrt(sq / float64(len(sorted)))),
	}
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// Report writes a per-call breakdown to w.
func (s *Stats) Report(w io.Writer, elapsed time.Duration) {
	var names []string
	s.calls.Range(func(k, _ any) bool {
		names = append(names, k.(string))
		return true
	})
	sort.Strings(names)

	for _, name := range names {
		cs := s.forCall(name)
		cs.mu.Lock()
		sum := summarize(cs.latencies)
		outcomes := make([]string, 0, len(cs.outcomes))
		for o := range cs.outcomes {
			outcomes = append(outcomes, o)
		}
		sort.Strings(outcomes)
		counts := make(map[string]int64, len(outcomes))
		for _, o := range outcomes {
			counts[o] = cs.outcomes[o]
		}
		cs.mu.Unlock()

		total := cs.total.Load()
		fmt.Fprintf(w, "=== %s ===\n", name)
		fmt.Fprintf(w, "Requests:     %d (%d ok, %d failed)\n", total, cs.succeeded.Load(), cs.failed.Load())
		if total > 0 && elapsed > 0 {
			fmt.Fprintf(w, "Requests/sec: %.2f\n", float64(total)/elapsed.Seconds())
			fmt.Fprintf(w, "Error rate:   %.2f%%\n", float64(cs.failed.Load())/float64(total)*100)
		}
		if sum.Count > 0 {
			fmt.Fprintf(w, "Latency:      min %s  avg %s  p50 %s  p90 %s  p99 %s  max %s  stddev %s\n",
				sum.Min, sum.Avg, sum.P50, sum.P90, sum.P99, sum.Max, sum.StdDev)
		}
		for _, o := range outcomes {
			fmt.Fprintf(w, "  %-12s %d\n", o, counts[o])
		}
		fmt.Fprintln(w)
	}
}
