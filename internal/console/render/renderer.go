package render

import (
	"log/slog"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/internal/console"
	apperrors "github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/pkg/metrics"
)

// Renderer writes results into an Area and owns the run-id actions.
type Renderer struct {
	area      *Area
	clipboard Clipboard
	metrics   *metrics.Metrics
	logger    *slog.Logger

	mu       sync.RWMutex
	onReplay func(runID string)
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithClipboard sets where copied run ids go.
func WithClipboard(c Clipboard) Option {
	return func(r *Renderer) { r.clipboard = c }
}

// WithMetrics counts renders by kind.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Renderer) { r.metrics = m }
}

// NewRenderer renders into area.
func NewRenderer(area *Area, opts ...Option) *Renderer {
	r := &Renderer{
		area:   area,
		logger: logger.WithComponent("renderer"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// OnReplay registers the handler behind every run-id row's Replay action.
func (r *Renderer) OnReplay(fn func(runID string)) {
	r.mu.Lock()
	r.onReplay = fn
	r.mu.Unlock()
}

// Area returns the area this renderer writes to.
func (r *Renderer) Area() *Area { return r.area }

// Render replaces the results area with result.
func (r *Renderer) Render(result console.Result) *Card {
	card := BuildCard(result, r.copy, r.replay)
	r.area.Replace(card)
	if r.metrics != nil {
		r.metrics.RendersTotal.WithLabelValues(card.Kind()).Inc()
	}
	r.logger.Debug("rendered result", "kind", card.Kind(), "run_id", result.RunID, "blocks", len(card.Blocks))
	return card
}

func (r *Renderer) copy(runID string) error {
	if r.clipboard == nil {
		return apperrors.New(apperrors.ErrUnavailable, 0, "no clipboard configured")
	}
	return r.clipboard.Copy(runID)
}

func (r *Renderer) replay(runID string) {
	r.mu.RLock()
	fn := r.onReplay
	r.mu.RUnlock()
	if fn == nil {
		r.logger.Warn("replay requested with no handler", "run_id", runID)
		return
	}
	fn(runID)
}
