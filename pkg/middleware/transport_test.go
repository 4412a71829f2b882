package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/pkg/metrics"
)

func TestRequestIDFromContext(t *testing.T) {
	var seen string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get(RequestIDHeader)
	}))
	defer srv.Close()

	client := &http.Client{Transport: Chain(nil, RequestID)}
	ctx := logger.WithRequestID(context.Background(), "req-42")
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	resp.Body.Close()

	if seen != "req-42" {
		t.Errorf("backend saw request id %q, want req-42", seen)
	}
}

func TestRequestIDGenerated(t *testing.T) {
	var seen string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get(RequestIDHeader)
	}))
	defer srv.Close()

	client := &http.Client{Transport: Chain(nil, RequestID)}
	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if seen == "" {
		t.Error("expected a generated request id")
	}
}

func TestMetricsCountsByCallAndOutcome(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegisterer(reg)
	client := &http.Client{Transport: Chain(nil, Metrics(m))}

	for _, path := range []string{"/ok", "/missing"} {
		ctx := WithCall(context.Background(), "replay")
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+path, nil)
		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("do %s: %v", path, err)
		}
		resp.Body.Close()
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	outcomes := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "console_backend_requests_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range metric.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["call"] != "replay" {
				t.Errorf("unexpected call label %q", labels["call"])
			}
			outcomes[labels["outcome"]] = metric.GetCounter().GetValue()
		}
	}
	if outcomes["ok"] != 1 || outcomes["status_404"] != 1 {
		t.Errorf("outcomes = %v", outcomes)
	}
}
