package activity

import "time"

type EventType string

const (
	EventSubmit     EventType = "submit"
	EventReplay     EventType = "replay"
	EventAsk        EventType = "ask"
	EventChatToggle EventType = "chat_toggle"
	EventCopy       EventType = "copy_run_id"
)

// Event describes one operator action. Document bodies and chat text are
// never included.
type Event struct {
	Type      EventType `json:"type"`
	Kind      string    `json:"kind,omitempty"`
	RunID     string    `json:"run_id,omitempty"`
	Outcome   string    `json:"outcome"`
	LatencyMs int64     `json:"latency_ms"`
	TraceID   string    `json:"trace_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
