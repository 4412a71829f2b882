// Package session holds the operator's console state (form, results area,
// chat panel) and maps named actions to their handlers. It has no terminal
// dependency so every action can be driven from tests.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/internal/activity"
	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/internal/console"
	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/internal/console/assistant"
	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/internal/console/document"
	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/internal/console/render"
	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/internal/console/replay"
	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/internal/journal"
	apperrors "github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/pkg/tracing"
)

// ErrQuit is returned by the quit action.
var ErrQuit = errors.New("quit")

// Backend is what the session needs from the ingestion service.
type Backend interface {
	Submit(ctx context.Context, kind document.Kind, doc string) (*console.Result, error)
	FetchRun(ctx context.Context, runID string) (*console.ReplayRecord, error)
}

// Journal records and lists past runs.
type Journal interface {
	Record(ctx context.Context, e journal.Entry) error
	Recent(ctx context.Context, limit int) ([]journal.Entry, error)
}

// Tracker receives activity events.
type Tracker interface {
	Track(event activity.Event)
}

// Options carries the optional collaborators and settings.
type Options struct {
	Builder         document.Options
	SeedSampleItems bool
	HistoryLimit    int
	Clipboard       render.Clipboard
	Metrics         *metrics.Metrics
	Journal         Journal
	Activity        Tracker
	Health          *health.Checker
}

// Session is one operator's console. Dispatch is meant to be called from a
// single goroutine; network work runs in the background and is joined by Wait.
type Session struct {
	ctx       context.Context
	backend   Backend
	panel     *assistant.Panel
	renderer  *render.Renderer
	replayer  *replay.Replayer
	opts      Options
	commands  map[Action]command
	helpOrder []command
	logger    *slog.Logger

	mu       sync.Mutex
	kind     document.Kind
	raw      string
	form     document.GuidedForm
	replayID string

	outMu sync.Mutex
	out   io.Writer

	wg sync.WaitGroup
}

// New builds a session writing its display to out. Background work inherits
// ctx.
func New(ctx context.Context, backend Backend, panel *assistant.Panel, out io.Writer, opts Options) *Session {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 20
	}
	s := &Session{
		ctx:     ctx,
		backend: backend,
		panel:   panel,
		opts:    opts,
		out:     out,
		kind:    document.KindPurchaseOrder,
		logger:  logger.WithComponent("session"),
	}
	if opts.SeedSampleItems {
		s.form.Items = document.SampleItems()
	}

	area := render.NewArea(s.printCard)
	s.renderer = render.NewRenderer(area,
		render.WithClipboard(opts.Clipboard),
		render.WithMetrics(opts.Metrics),
	)
	s.renderer.OnReplay(s.replayFromResult)
	s.replayer = replay.New(backend, s.renderer)
	s.commands = s.commandTable()
	return s
}

// Exec splits line into an action name and its argument text and dispatches it.
// A blank line does nothing.
func (s *Session) Exec(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	name, rest, _ := strings.Cut(line, " ")
	return s.Dispatch(ctx, name, strings.TrimLeft(rest, " \t"))
}

// Dispatch runs the handler registered for name with text as its argument.
func (s *Session) Dispatch(ctx context.Context, name, text string) error {
	action := Action(strings.ToLower(name))
	cmd, ok := s.commands[action]
	if !ok {
		s.countAction("unknown", apperrors.ErrUnknownAction)
		return apperrors.Newf(apperrors.ErrUnknownAction, 400, "%q (try help)", name)
	}

	ctx, span := tracing.Start(ctx, "action."+string(action))
	defer span.End()

	err := cmd.run(ctx, Input{Text: text, Args: strings.Fields(text)})
	if errors.Is(err, ErrQuit) {
		return err
	}
	s.countAction(string(action), err)
	if err != nil {
		span.SetAttr("error", err.Error())
	}
	return err
}

// Wait blocks until every background submission, replay and chat exchange
// has finished. The session's own goroutines go first: an ask watcher only
// returns after its exchange is done. The panel is joined afterwards for
// exchanges started on it directly.
func (s *Session) Wait() {
	s.wg.Wait()
	s.panel.Wait()
}

// Area is the results area.
func (s *Session) Area() *render.Area { return s.renderer.Area() }

// Panel is the assistant panel.
func (s *Session) Panel() *assistant.Panel { return s.panel }

// State is a snapshot of the form.
type State struct {
	Kind     document.Kind
	Raw      string
	Form     document.GuidedForm
	ReplayID string
}

// State returns a copy of the current form.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	form := s.form
	form.Items = append([]document.LineItem(nil), s.form.Items...)
	return State{Kind: s.kind, Raw: s.raw, Form: form, ReplayID: s.replayID}
}

func (s *Session) spawn(fn func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn()
	}()
}

func (s *Session) submit(kind document.Kind, doc string) {
	ctx, span := tracing.Start(s.ctx, "submit")
	defer span.End()
	ctx = logger.WithRequestID(ctx, span.TraceID)
	span.SetAttr("kind", kind.String())

	start := time.Now()
	res, err := s.backend.Submit(ctx, kind, doc)
	result := console.Result{Error: apperrors.Display(err)}
	if err == nil {
		result = *res
	}
	s.renderer.Render(result)

	outcome := apperrors.Outcome(err)
	span.SetAttr("outcome", outcome)
	s.record(ctx, journal.Entry{RunID: result.RunID, Kind: kind.String(), Message: result.Message, Status: outcome})
	s.track(activity.Event{
		Type:      activity.EventSubmit,
		Kind:      kind.String(),
		RunID:     result.RunID,
		Outcome:   outcome,
		LatencyMs: time.Since(start).Milliseconds(),
		TraceID:   span.TraceID,
	})
}

// startReplay looks up id in the background. A blank id does nothing.
func (s *Session) startReplay(id string) bool {
	id = strings.TrimSpace(id)
	if id == "" {
		return false
	}
	s.spawn(func() {
		ctx, span := tracing.Start(s.ctx, "replay")
		defer span.End()
		ctx = logger.WithRequestID(ctx, span.TraceID)
		span.SetAttr("run_id", id)

		start := time.Now()
		result, _ := s.replayer.Replay(ctx, id)
		outcome := "ok"
		if result.HasError() {
			outcome = "error"
		}
		s.record(ctx, journal.Entry{RunID: id, Kind: "replay", Message: result.Message, Status: outcome})
		s.track(activity.Event{
			Type:      activity.EventReplay,
			RunID:     id,
			Outcome:   outcome,
			LatencyMs: time.Since(start).Milliseconds(),
			TraceID:   span.TraceID,
		})
	})
	return true
}

// replayFromResult backs the Replay action on a rendered run id: it fills the
// replay field and replays as if the operator had asked for it.
func (s *Session) replayFromResult(runID string) {
	s.mu.Lock()
	s.replayID = runID
	s.mu.Unlock()
	s.startReplay(runID)
}

func (s *Session) record(ctx context.Context, e journal.Entry) {
	if s.opts.Journal == nil {
		return
	}
	if err := s.opts.Journal.Record(ctx, e); err != nil {
		s.logger.Warn("journal write failed", "run_id", e.RunID, "error", err)
	}
}

func (s *Session) track(e activity.Event) {
	if s.opts.Activity != nil {
		s.opts.Activity.Track(e)
	}
}

func (s *Session) countAction(action string, err error) {
	if s.opts.Metrics != nil {
		s.opts.Metrics.ActionsTotal.WithLabelValues(action, apperrors.Outcome(err)).Inc()
	}
}

func (s *Session) printf(format string, args ...any) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	fmt.Fprintf(s.out, format, args...)
}

func (s *Session) printCard(card *render.Card) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	render.Print(s.out, card)
}
