// Package client talks to the ingestion service: document submission, run
// lookup for replay, the mapping assistant, and the health endpoint.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/internal/console"
	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/internal/console/document"
	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/pkg/middleware"
)

// Call names label backend requests in metrics and errors.
const (
	CallSubmit  = "submit"
	CallReplay  = "replay"
	CallAssist  = "assistant"
	CallHealth  = "health"
	maxBodyRead = 8 << 20
)

// Client is safe for concurrent use.
type Client struct {
	baseURL string
	paths   config.BackendPaths
	timeout time.Duration
	http    *http.Client
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its transport is still
// wrapped with request-id and metrics decorators.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithMetrics records every backend call in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithLogger sets the client's logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New builds a client for the backend described by cfg.
func New(cfg config.BackendConfig, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		paths:   cfg.Paths,
		timeout: cfg.RequestTimeout,
		http:    &http.Client{},
		logger:  logger.WithComponent("backend-client"),
	}
	for _, opt := range opts {
		opt(c)
	}

	decorators := []func(http.RoundTripper) http.RoundTripper{middleware.RequestID}
	if c.metrics != nil {
		decorators = append(decorators, middleware.Metrics(c.metrics))
	}
	hc := *c.http
	hc.Transport = middleware.Chain(hc.Transport, decorators...)
	c.http = &hc
	return c
}

// EndpointFor returns the ingestion path for kind.
func (c *Client) EndpointFor(kind document.Kind) string {
	if kind == document.KindShipNotice {
		return c.paths.Ingest856
	}
	return c.paths.Ingest850
}

type submitRequest struct {
	RawXML string `json:"raw_xml"`
}

// Submit posts doc to the ingestion endpoint for kind and returns the parsed
// body unmodified. Each call is a fresh run on the server.
func (c *Client) Submit(ctx context.Context, kind document.Kind, doc string) (*console.Result, error) {
	var result console.Result
	if err := c.do(ctx, CallSubmit, http.MethodPost, c.EndpointFor(kind), submitRequest{RawXML: doc}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// FetchRun looks up a stored run by id.
func (c *Client) FetchRun(ctx context.Context, runID string) (*console.ReplayRecord, error) {
	path := c.paths.Replay + url.PathEscape(runID)

	var record console.ReplayRecord
	if err := c.do(ctx, CallReplay, http.MethodGet, path, nil, &record); err != nil {
		return nil, err
	}
	if record.Replay == nil {
		return nil, apperrors.Newf(apperrors.ErrMalformedRecord, http.StatusOK, "run %q has no replay artifacts", runID)
	}
	return &record, nil
}

type chatRequest struct {
	Message string `json:"message"`
}

// Ask sends one message to the mapping assistant. The reply member is
// returned when present; any other body comes back as its JSON text.
func (c *Client) Ask(ctx context.Context, message string) (string, error) {
	var body json.RawMessage
	if err := c.do(ctx, CallAssist, http.MethodPost, c.paths.Chat, chatRequest{Message: message}, &body); err != nil {
		return "", err
	}
	var reply struct {
		Reply string `json:"reply"`
	}
	if err := json.Unmarshal(body, &reply); err == nil && reply.Reply != "" {
		return reply.Reply, nil
	}
	return compactJSON(body), nil
}

// HealthStatus is the backend root response.
type HealthStatus struct {
	Status string `json:"status"`
}

// Health reads the backend's health endpoint.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var hs HealthStatus
	if err := c.do(ctx, CallHealth, http.MethodGet, c.paths.Health, nil, &hs); err != nil {
		return nil, err
	}
	return &hs, nil
}

// Ping adapts Health to a health check.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Health(ctx)
	return err
}

func (c *Client) do(ctx context.Context, call, method, path string, in, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	ctx = middleware.WithCall(ctx, call)

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding %s request: %w", call, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return apperrors.Newf(apperrors.ErrTransport, 0, "building %s request: %v", call, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("backend call failed", "call", call, "path", path, "error", err)
		return &IngestionError{Call: call, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyRead))
	if err != nil {
		return &IngestionError{Call: call, Status: resp.StatusCode, Err: err}
	}
	c.logger.Debug("backend call",
		"call", call,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &IngestionError{Call: call, Status: resp.StatusCode, Body: raw}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		if call == CallReplay {
			return apperrors.Newf(apperrors.ErrMalformedRecord, resp.StatusCode, "decoding %s response: %v", call, err)
		}
		return apperrors.Newf(apperrors.ErrTransport, resp.StatusCode, "decoding %s response: %v", call, err)
	}
	return nil
}
