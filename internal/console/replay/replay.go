// Package replay looks up a stored run and renders its re-derived artifacts.
package replay

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/internal/console"
	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/internal/console/render"
	apperrors "github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/pkg/logger"
)

// ExecutedMessage heads every successful replay.
const ExecutedMessage = "Replay executed"

// Fetcher retrieves a stored run.
type Fetcher interface {
	FetchRun(ctx context.Context, runID string) (*console.ReplayRecord, error)
}

// Sink displays a result.
type Sink interface {
	Render(result console.Result) *render.Card
}

// Replayer runs lookups. Concurrent lookups of the same id share one request.
type Replayer struct {
	fetcher Fetcher
	sink    Sink
	group   singleflight.Group
	logger  *slog.Logger
}

// New creates a Replayer.
func New(fetcher Fetcher, sink Sink) *Replayer {
	return &Replayer{
		fetcher: fetcher,
		sink:    sink,
		logger:  logger.WithComponent("replay"),
	}
}

// Replay looks up runID and renders the outcome. A blank id does nothing and
// reports false.
func (r *Replayer) Replay(ctx context.Context, runID string) (console.Result, bool) {
	id := strings.TrimSpace(runID)
	if id == "" {
		return console.Result{}, false
	}

	v, err, shared := r.group.Do(id, func() (any, error) {
		return r.fetcher.FetchRun(ctx, id)
	})

	var result console.Result
	if err != nil {
		r.logger.Warn("replay lookup failed", "run_id", id, "outcome", apperrors.Outcome(err), "error", err)
		result = console.Result{Error: apperrors.Display(err)}
	} else {
		result = FromRecord(id, v.(*console.ReplayRecord))
		r.logger.Info("replay executed", "run_id", id, "shared", shared)
	}
	r.sink.Render(result)
	return result, true
}

// FromRecord reshapes a lookup response into a renderable result. The run id
// is the one looked up, not read back from the record.
func FromRecord(runID string, rec *console.ReplayRecord) console.Result {
	result := console.Result{
		Message: ExecutedMessage,
		RunID:   runID,
		Stored:  rec.Stored,
	}
	if rec.Replay != nil {
		result.Canonical = rec.Replay.Canonical
		result.NetsuitePayload = rec.Replay.NetsuitePayload
	}
	return result
}
