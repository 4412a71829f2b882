package session

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/internal/activity"
	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/internal/console"
	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/internal/console/document"
	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/internal/console/render"
	apperrors "github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/pkg/errors"
)

// Action names a console command.
type Action string

const (
	ActionKind    Action = "kind"
	ActionPO      Action = "po"
	ActionShip    Action = "ship"
	ActionItem    Action = "item"
	ActionRaw     Action = "raw"
	ActionClear   Action = "clear"
	ActionForm    Action = "form"
	ActionSend    Action = "send"
	ActionReplay  Action = "replay"
	ActionResult  Action = "result"
	ActionAsk     Action = "ask"
	ActionChat    Action = "chat"
	ActionHistory Action = "history"
	ActionStatus  Action = "status"
	ActionHelp    Action = "help"
	ActionQuit    Action = "quit"
)

// Input is a dispatched action's argument text, verbatim and split on spaces.
type Input struct {
	Text string
	Args []string
}

// Handler runs one action.
type Handler func(ctx context.Context, in Input) error

type command struct {
	action Action
	usage  string
	help   string
	run    Handler
}

func (s *Session) commandTable() map[Action]command {
	list := []command{
		{ActionKind, "kind <850|856>", "select the document type", s.handleKind},
		{ActionPO, "po <number>", "set the purchase-order number", s.handlePO},
		{ActionShip, "ship <id>", "set the shipment identifier (856)", s.handleShip},
		{ActionItem, "item add <sku> [qty] | item rm <n> | item list", "edit 856 line items", s.handleItem},
		{ActionRaw, "raw <xml> | raw @file | raw -", "set or clear a raw document override", s.handleRaw},
		{ActionClear, "clear", "clear the form, items and raw override", s.handleClear},
		{ActionForm, "form", "show the current form", s.handleForm},
		{ActionSend, "send", "build and submit the document", s.handleSend},
		{ActionReplay, "replay [run-id]", "replay a stored run", s.handleReplay},
		{ActionResult, "result show|copy|replay|expand <block>|collapse <block>", "act on the displayed result", s.handleResult},
		{ActionAsk, "ask <question>", "ask the mapping assistant", s.handleAsk},
		{ActionChat, "chat [toggle|expand|collapse]", "show or fold the assistant transcript", s.handleChat},
		{ActionHistory, "history [n]", "list recent runs", s.handleHistory},
		{ActionStatus, "status", "check backend and local stores", s.handleStatus},
		{ActionHelp, "help", "list commands", s.handleHelp},
		{ActionQuit, "quit", "wait for pending work and exit", s.handleQuit},
	}
	table := make(map[Action]command, len(list)+1)
	for _, c := range list {
		table[c.action] = c
	}
	table["exit"] = table[ActionQuit]
	s.helpOrder = list
	return table
}

func usageError(usage string) error {
	return apperrors.Newf(apperrors.ErrInvalidInput, 400, "usage: %s", usage)
}

func (s *Session) handleKind(_ context.Context, in Input) error {
	if len(in.Args) != 1 {
		return usageError("kind <850|856>")
	}
	kind, err := document.ParseKind(in.Args[0])
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.kind = kind
	s.mu.Unlock()
	s.printf("kind: %s\n", kind.Label())
	return nil
}

func (s *Session) handlePO(_ context.Context, in Input) error {
	s.mu.Lock()
	s.form.PONumber = in.Text
	s.mu.Unlock()
	s.printf("po: %s\n", strings.TrimSpace(in.Text))
	return nil
}

func (s *Session) handleShip(_ context.Context, in Input) error {
	s.mu.Lock()
	s.form.ShipmentID = in.Text
	kind := s.kind
	s.mu.Unlock()
	s.printf("ship: %s\n", strings.TrimSpace(in.Text))
	if kind != document.KindShipNotice {
		s.printf("note: shipment id only applies to 856\n")
	}
	return nil
}

func (s *Session) handleItem(_ context.Context, in Input) error {
	const usage = "item add <sku> [qty] | item rm <n> | item list"
	if len(in.Args) == 0 {
		return usageError(usage)
	}
	switch in.Args[0] {
	case "add":
		const addUsage = `item add <sku> [qty] (quote fields with spaces: "SKU 1" "")`
		fields, err := quotedFields(in.Text)
		if err != nil || len(fields) < 2 || len(fields) > 3 {
			return usageError(addUsage)
		}
		sku, qty := fields[1], ""
		if len(fields) == 3 {
			qty = fields[2]
		}
		s.mu.Lock()
		s.form.AddItem(sku, qty)
		n := len(s.form.Items)
		s.mu.Unlock()
		s.printf("item %d: %q x %q\n", n, sku, qty)
	case "rm":
		if len(in.Args) != 2 {
			return usageError("item rm <n>")
		}
		n, err := strconv.Atoi(in.Args[1])
		if err != nil {
			return usageError("item rm <n>")
		}
		s.mu.Lock()
		err = s.form.RemoveItem(n - 1)
		s.mu.Unlock()
		if err != nil {
			return err
		}
		s.printf("removed item %d\n", n)
	case "list":
		s.printItems(s.State().Form.Items)
	default:
		return usageError(usage)
	}
	return nil
}

// quotedFields splits s on whitespace. A double-quoted field may hold spaces
// or be empty.
func quotedFields(s string) ([]string, error) {
	var (
		fields           []string
		cur              strings.Builder
		inQuote, started bool
	)
	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
			started = true
		case !inQuote && (r == ' ' || r == '\t'):
			if started {
				fields = append(fields, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if inQuote {
		return nil, fmt.Errorf("unterminated quote")
	}
	if started {
		fields = append(fields, cur.String())
	}
	return fields, nil
}

func (s *Session) handleRaw(_ context.Context, in Input) error {
	trimmed := strings.TrimSpace(in.Text)
	switch {
	case trimmed == "":
		st := s.State()
		if !document.UsesRaw(st.Raw) {
			s.printf("raw: none (guided form is used)\n")
			return nil
		}
		s.printf("raw override (%d bytes):\n%s\n", len(st.Raw), st.Raw)
		return nil
	case trimmed == "-":
		s.setRaw("")
		s.printf("raw override cleared\n")
		return nil
	case strings.HasPrefix(trimmed, "@"):
		path := strings.TrimSpace(trimmed[1:])
		data, err := os.ReadFile(path)
		if err != nil {
			return apperrors.Newf(apperrors.ErrInvalidInput, 400, "reading %s: %v", path, err)
		}
		s.setRaw(string(data))
		s.printf("raw override loaded from %s (%d bytes)\n", path, len(data))
		return nil
	default:
		s.setRaw(in.Text)
		s.printf("raw override set (%d bytes)\n", len(in.Text))
		return nil
	}
}

// SetRaw replaces the raw override with text exactly as given.
func (s *Session) SetRaw(text string) {
	s.setRaw(text)
}

func (s *Session) setRaw(text string) {
	s.mu.Lock()
	s.raw = text
	s.mu.Unlock()
}

func (s *Session) handleClear(_ context.Context, _ Input) error {
	s.mu.Lock()
	s.form.Clear()
	s.raw = ""
	s.mu.Unlock()
	s.printf("form cleared\n")
	return nil
}

func (s *Session) handleForm(_ context.Context, _ Input) error {
	st := s.State()
	s.printf("kind: %s\n", st.Kind.Label())
	s.printf("po:   %s\n", st.Form.PONumber)
	if st.Kind == document.KindShipNotice {
		s.printf("ship: %s\n", st.Form.ShipmentID)
		s.printItems(st.Form.Items)
	}
	if document.UsesRaw(st.Raw) {
		s.printf("raw override set (%d bytes); guided fields are ignored\n", len(st.Raw))
	}
	if st.ReplayID != "" {
		s.printf("replay id: %s\n", st.ReplayID)
	}
	return nil
}

func (s *Session) printItems(items []document.LineItem) {
	if len(items) == 0 {
		s.printf("items: none\n")
		return
	}
	for i, it := range items {
		s.printf("  %d. %s x %s\n", i+1, it.SKU, it.Quantity)
	}
}

func (s *Session) handleSend(_ context.Context, _ Input) error {
	st := s.State()
	doc := document.Build(st.Kind, st.Raw, st.Form, s.opts.Builder)
	source := "guided form"
	if document.UsesRaw(st.Raw) {
		source = "raw override"
	}
	s.printf("submitting %s from %s...\n", st.Kind.Label(), source)
	s.spawn(func() { s.submit(st.Kind, doc) })
	return nil
}

func (s *Session) handleReplay(_ context.Context, in Input) error {
	s.mu.Lock()
	if id := strings.TrimSpace(in.Text); id != "" {
		s.replayID = id
	}
	id := s.replayID
	s.mu.Unlock()

	if !s.startReplay(id) {
		s.printf("replay: no run id\n")
	}
	return nil
}

func (s *Session) handleResult(ctx context.Context, in Input) error {
	const usage = "result show|copy|replay|expand <block>|collapse <block>"
	if len(in.Args) == 0 {
		return usageError(usage)
	}
	card := s.Area().Current()
	if card == nil {
		return apperrors.New(apperrors.ErrInvalidInput, 400, "no result displayed yet")
	}

	switch in.Args[0] {
	case "show":
		s.printCard(card)
	case "copy":
		if card.RunID == nil {
			return apperrors.New(apperrors.ErrInvalidInput, 400, "displayed result has no run id")
		}
		err := card.RunID.Copy()
		s.track(activity.Event{Type: activity.EventCopy, RunID: card.RunID.RunID, Outcome: apperrors.Outcome(err)})
		if err != nil {
			return err
		}
		s.printf("copied %s\n", card.RunID.RunID)
	case "replay":
		if card.RunID == nil {
			return apperrors.New(apperrors.ErrInvalidInput, 400, "displayed result has no run id")
		}
		card.RunID.Replay()
	case "expand", "collapse":
		if len(in.Args) != 2 {
			return usageError("result " + in.Args[0] + " <canonical|netsuite|stored>")
		}
		key, ok := render.ParseBlockKey(in.Args[1])
		if !ok {
			return apperrors.Newf(apperrors.ErrInvalidInput, 400, "unknown block %q", in.Args[1])
		}
		return s.Area().SetExpanded(key, in.Args[0] == "expand")
	default:
		return usageError(usage)
	}
	return nil
}

func (s *Session) handleAsk(_ context.Context, in Input) error {
	ex, ok := s.panel.Ask(s.ctx, in.Text)
	if !ok {
		return nil
	}
	if !s.panel.Collapsed() {
		s.printf("you: %s\n", ex.Message)
	}
	s.spawn(func() {
		<-ex.Done()
		turn, found := s.panel.Turn(ex.Token)
		if found && !s.panel.Collapsed() {
			s.printf("bot: %s\n", turn.Text)
		}
		s.track(activity.Event{Type: activity.EventAsk, Outcome: apperrors.Outcome(ex.Err())})
	})
	return nil
}

func (s *Session) handleChat(ctx context.Context, in Input) error {
	if len(in.Args) == 0 {
		if s.panel.Collapsed() {
			s.printf("chat is collapsed (chat toggle to expand)\n")
			return nil
		}
		s.printTranscript(s.panel.Transcript())
		return nil
	}

	var (
		collapsed bool
		err       error
	)
	switch in.Args[0] {
	case "toggle":
		collapsed, err = s.panel.Toggle(ctx)
	case "expand":
		err = s.panel.SetCollapsed(ctx, false)
	case "collapse":
		collapsed = true
		err = s.panel.SetCollapsed(ctx, true)
	default:
		return usageError("chat [toggle|expand|collapse]")
	}
	s.track(activity.Event{Type: activity.EventChatToggle, Outcome: apperrors.Outcome(err)})
	if err != nil {
		return fmt.Errorf("saving chat state: %w", err)
	}
	if collapsed {
		s.printf("chat collapsed\n")
	} else {
		s.printf("chat expanded\n")
		s.printTranscript(s.panel.Transcript())
	}
	return nil
}

func (s *Session) printTranscript(turns []console.ChatTurn) {
	if len(turns) == 0 {
		s.printf("chat: no messages\n")
		return
	}
	for _, t := range turns {
		label := "you"
		if t.Role == console.RoleBot {
			label = "bot"
		}
		s.printf("%s: %s\n", label, t.Text)
	}
}

func (s *Session) handleHistory(ctx context.Context, in Input) error {
	if s.opts.Journal == nil {
		return apperrors.New(apperrors.ErrUnavailable, 503, "run journal is disabled")
	}
	limit := s.opts.HistoryLimit
	if len(in.Args) > 0 {
		n, err := strconv.Atoi(in.Args[0])
		if err != nil || n <= 0 {
			return usageError("history [n]")
		}
		limit = n
	}
	entries, err := s.opts.Journal.Recent(ctx, limit)
	if err != nil {
		return apperrors.Newf(apperrors.ErrUnavailable, 503, "reading journal: %v", err)
	}
	if len(entries) == 0 {
		s.printf("history: no runs yet\n")
		return nil
	}
	for _, e := range entries {
		runID := e.RunID
		if runID == "" {
			runID = "-"
		}
		s.printf("%s  %-6s  %-36s  %-9s  %s\n",
			e.CreatedAt.Format("2006-01-02 15:04:05"), e.Kind, runID, e.Status, e.Message)
	}
	return nil
}

func (s *Session) handleStatus(ctx context.Context, _ Input) error {
	if s.opts.Health == nil {
		return apperrors.New(apperrors.ErrUnavailable, 503, "no health checks configured")
	}
	report := s.opts.Health.Run(ctx)
	s.printf("status: %s\n", report.Status)
	for _, name := range report.Names() {
		c := report.Components[name]
		line := fmt.Sprintf("  %-8s %s", name, c.Status)
		if c.Message != "" {
			line += " (" + c.Message + ")"
		}
		s.printf("%s\n", line)
	}
	return nil
}

func (s *Session) handleHelp(_ context.Context, _ Input) error {
	for _, c := range s.helpOrder {
		s.printf("  %-58s %s\n", c.usage, c.help)
	}
	return nil
}

func (s *Session) handleQuit(_ context.Context, _ Input) error {
	return ErrQuit
}
