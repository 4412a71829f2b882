// Package assistant is the console's chat panel for the mapping assistant.
// Each send is a single request/response exchange; replies are matched to
// their placeholder turn by an exchange token, so overlapping sends resolve
// independently.
package assistant

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/internal/console"
	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/internal/prefs"
	apperrors "github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/pkg/metrics"
)

// PendingText fills a bot turn until its reply arrives.
const PendingText = "Thinking..."

// DefaultPrefKey is where the collapse flag lives when no key is configured.
const DefaultPrefKey = "chatCollapsed"

// Asker sends one message and returns the reply text.
type Asker interface {
	Ask(ctx context.Context, message string) (string, error)
}

// Panel owns the transcript and the collapse flag.
type Panel struct {
	asker   Asker
	store   prefs.Store
	prefKey string
	metrics *metrics.Metrics
	logger  *slog.Logger

	mu        sync.Mutex
	turns     []console.ChatTurn
	collapsed bool

	wg sync.WaitGroup
}

// Option configures a Panel.
type Option func(*Panel)

// WithPrefKey overrides the collapse flag's key.
func WithPrefKey(key string) Option {
	return func(p *Panel) {
		if key != "" {
			p.prefKey = key
		}
	}
}

// WithMetrics counts exchanges by outcome.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Panel) { p.metrics = m }
}

// NewPanel reads the persisted collapse flag once. A missing or unreadable
// flag leaves the panel expanded.
func NewPanel(ctx context.Context, asker Asker, store prefs.Store, opts ...Option) *Panel {
	p := &Panel{
		asker:   asker,
		store:   store,
		prefKey: DefaultPrefKey,
		logger:  logger.WithComponent("assistant"),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.store != nil {
		collapsed, found, err := p.store.GetBool(ctx, p.prefKey)
		switch {
		case err != nil:
			p.logger.Warn("reading chat collapse flag", "error", err)
		case found:
			p.collapsed = collapsed
		}
	}
	return p
}

// Exchange identifies one in-flight send.
type Exchange struct {
	Token   string
	Message string
	done    chan struct{}
	err     error
}

// Done is closed once the exchange's bot turn has been resolved.
func (e *Exchange) Done() <-chan struct{} { return e.done }

// Err is the assistant call's failure, if any. Only valid after Done.
func (e *Exchange) Err() error { return e.err }

// Ask appends the user turn and a pending bot turn before returning, then
// resolves the bot turn in the background. A blank message does nothing.
func (p *Panel) Ask(ctx context.Context, message string) (*Exchange, bool) {
	msg := strings.TrimSpace(message)
	if msg == "" {
		return nil, false
	}

	ex := &Exchange{Token: uuid.NewString(), Message: msg, done: make(chan struct{})}
	p.mu.Lock()
	p.turns = append(p.turns,
		console.ChatTurn{Role: console.RoleUser, Text: msg},
		console.ChatTurn{Role: console.RoleBot, Text: PendingText, Token: ex.Token, Pending: true},
	)
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer close(ex.done)
		reply, err := p.asker.Ask(ctx, msg)
		ex.err = err
		if err != nil {
			p.logger.Warn("assistant exchange failed", "token", ex.Token, "error", err)
			reply = apperrors.Display(err)
		}
		if p.metrics != nil {
			p.metrics.ChatExchangesTotal.WithLabelValues(apperrors.Outcome(err)).Inc()
		}
		p.resolve(ex.Token, reply)
	}()
	return ex, true
}

func (p *Panel) resolve(token, text string) {
	p.mu.Lock()
	for i := range p.turns {
		if p.turns[i].Token == token {
			p.turns[i].Text = text
			p.turns[i].Pending = false
			break
		}
	}
	p.mu.Unlock()
}

// Turn returns the bot turn belonging to token.
func (p *Panel) Turn(token string) (console.ChatTurn, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, t := range p.turns {
		if t.Token == token {
			return t, true
		}
	}
	return console.ChatTurn{}, false
}

// Transcript returns a copy of all turns in order.
func (p *Panel) Transcript() []console.ChatTurn {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]console.ChatTurn(nil), p.turns...)
}

// Collapsed reports the panel's collapse state.
func (p *Panel) Collapsed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.collapsed
}

// Toggle flips the collapse state and persists it.
func (p *Panel) Toggle(ctx context.Context) (bool, error) {
	p.mu.Lock()
	next := !p.collapsed
	p.mu.Unlock()
	return next, p.SetCollapsed(ctx, next)
}

// SetCollapsed updates and persists the collapse state. The in-memory state
// changes even if persisting fails.
func (p *Panel) SetCollapsed(ctx context.Context, collapsed bool) error {
	p.mu.Lock()
	p.collapsed = collapsed
	p.mu.Unlock()
	if p.store == nil {
		return nil
	}
	return p.store.SetBool(ctx, p.prefKey, collapsed)
}

// Wait blocks until every in-flight exchange has resolved.
func (p *Panel) Wait() { p.wg.Wait() }
