// Package render turns a console.Result into the card shown in the console's
// single results area.
package render

import (
	"bytes"
	"encoding/json"

	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/internal/console"
)

// DefaultHeader is shown when a result has no message.
const DefaultHeader = "Result"

// BlockKey names a structured block.
type BlockKey string

const (
	BlockCanonical       BlockKey = "canonical"
	BlockNetsuitePayload BlockKey = "netsuite_payload"
	BlockStored          BlockKey = "stored"
)

// ParseBlockKey accepts the block key or a short alias.
func ParseBlockKey(s string) (BlockKey, bool) {
	switch s {
	case "canonical":
		return BlockCanonical, true
	case "netsuite_payload", "netsuite", "payload":
		return BlockNetsuitePayload, true
	case "stored":
		return BlockStored, true
	}
	return "", false
}

// Block is a collapsible, pretty-printed structured member.
type Block struct {
	Key      BlockKey
	Title    string
	Body     string
	Expanded bool
}

// RunIDRow exposes the run id with its copy and replay actions.
type RunIDRow struct {
	RunID  string
	Copy   func() error
	Replay func()
}

// Card is one full render of the results area.
type Card struct {
	Header string
	RunID  *RunIDRow
	Blocks []Block
	Error  string
}

// Block returns the block for key, if shown.
func (c *Card) Block(key BlockKey) (Block, bool) {
	for _, b := range c.Blocks {
		if b.Key == key {
			return b, true
		}
	}
	return Block{}, false
}

// Kind labels the card for metrics.
func (c *Card) Kind() string {
	switch {
	case c.Error != "" && len(c.Blocks) > 0:
		return "mixed"
	case c.Error != "":
		return "error"
	default:
		return "success"
	}
}

func (c *Card) clone() *Card {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Blocks = append([]Block(nil), c.Blocks...)
	if c.RunID != nil {
		row := *c.RunID
		cp.RunID = &row
	}
	return &cp
}

var blockOrder = []struct {
	key      BlockKey
	title    string
	expanded bool
	pick     func(console.Result) json.RawMessage
}{
	{BlockCanonical, "Canonical", true, func(r console.Result) json.RawMessage { return r.Canonical }},
	{BlockNetsuitePayload, "Netsuite Payload", false, func(r console.Result) json.RawMessage { return r.NetsuitePayload }},
	{BlockStored, "Stored", false, func(r console.Result) json.RawMessage { return r.Stored }},
}

// BuildCard lays out result without side effects. copyFn and replayFn back
// the run-id row's actions and may be nil.
func BuildCard(result console.Result, copyFn func(string) error, replayFn func(string)) *Card {
	card := &Card{Header: result.Message, Error: result.Error}
	if card.Header == "" {
		card.Header = DefaultHeader
	}

	if result.RunID != "" {
		id := result.RunID
		row := &RunIDRow{RunID: id}
		if copyFn != nil {
			row.Copy = func() error { return copyFn(id) }
		}
		if replayFn != nil {
			row.Replay = func() { replayFn(id) }
		}
		card.RunID = row
	}

	for _, def := range blockOrder {
		raw := def.pick(result)
		if !console.Present(raw) {
			continue
		}
		card.Blocks = append(card.Blocks, Block{
			Key:      def.key,
			Title:    def.title,
			Body:     Pretty(raw),
			Expanded: def.expanded,
		})
	}
	return card
}

// Pretty indents raw with two spaces and keeps the original key order.
// Input that is not valid JSON is returned as is.
func Pretty(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(raw), "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
