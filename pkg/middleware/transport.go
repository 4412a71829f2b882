// Package middleware provides http.RoundTripper decorators for outgoing
// backend calls: request-ID propagation and Prometheus instrumentation.
package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/pkg/metrics"
)

// RequestIDHeader carries the console's request id to the backend.
const RequestIDHeader = "X-Request-ID"

type callKey struct{}

// WithCall tags ctx with the logical backend call name used as a metric label.
func WithCall(ctx context.Context, call string) context.Context {
	return context.WithValue(ctx, callKey{}, call)
}

func callName(ctx context.Context) string {
	if call, ok := ctx.Value(callKey{}).(string); ok {
		return call
	}
	return "unknown"
}

// RoundTripperFunc adapts a function to http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// Chain wraps base with each decorator, outermost first.
func Chain(base http.RoundTripper, decorators ...func(http.RoundTripper) http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	for i := len(decorators) - 1; i >= 0; i-- {
		base = decorators[i](base)
	}
	return base
}

// RequestID stamps every outgoing request with the id from its context,
// generating one when the caller did not set it.
func RequestID(next http.RoundTripper) http.RoundTripper {
	return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		if r.Header.Get(RequestIDHeader) != "" {
			return next.RoundTrip(r)
		}
		id, ok := logger.RequestID(r.Context())
		if !ok {
			id = uuid.NewString()
		}
		r = r.Clone(r.Context())
		r.Header.Set(RequestIDHeader, id)
		return next.RoundTrip(r)
	})
}

// Metrics returns a decorator that records backend call count, latency, and
// the in-flight gauge. A non-2xx status counts as a failed call.
func Metrics(m *metrics.Metrics) func(http.RoundTripper) http.RoundTripper {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()
			call := callName(r.Context())

			m.BackendRequestsInFlight.Inc()
			defer m.BackendRequestsInFlight.Dec()

			resp, err := next.RoundTrip(r)
			m.BackendRequestDuration.WithLabelValues(call).Observe(time.Since(start).Seconds())

			outcome := "transport"
			if err == nil {
				outcome = statusOutcome(resp.StatusCode)
			}
			m.BackendRequestsTotal.WithLabelValues(call, outcome).Inc()
			return resp, err
		})
	}
}

func statusOutcome(code int) string {
	if code >= 200 && code < 300 {
		return "ok"
	}
	return "status_" + strconv.Itoa(code)
}
