// Package console defines the result, replay and chat shapes shared by the
// operator console's builder, client, renderer, replay and assistant
// packages.
package console

import (
	"bytes"
	"encoding/json"
)

// Result is the single shape the renderer consumes, whether it came from a
// fresh submission, a replay, or a failed call. Every member is optional.
// Structured members stay as raw JSON so their key order survives rendering.
type Result struct {
	Message         string          `json:"message,omitempty"`
	RunID           string          `json:"run_id,omitempty"`
	Canonical       json.RawMessage `json:"canonical,omitempty"`
	NetsuitePayload json.RawMessage `json:"netsuite_payload,omitempty"`
	Stored          json.RawMessage `json:"stored,omitempty"`
	Error           string          `json:"error,omitempty"`
}

// UnmarshalJSON accepts any JSON value for the scalar members. A member that
// is not a string is kept as its compact JSON text, so one unexpected type
// never discards the rest of the body.
func (r *Result) UnmarshalJSON(data []byte) error {
	var wire struct {
		Message         json.RawMessage `json:"message"`
		RunID           json.RawMessage `json:"run_id"`
		Canonical       json.RawMessage `json:"canonical"`
		NetsuitePayload json.RawMessage `json:"netsuite_payload"`
		Stored          json.RawMessage `json:"stored"`
		Error           json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*r = Result{
		Message:         scalarText(wire.Message),
		RunID:           scalarText(wire.RunID),
		Canonical:       wire.Canonical,
		NetsuitePayload: wire.NetsuitePayload,
		Stored:          wire.Stored,
		Error:           scalarText(wire.Error),
	}
	return nil
}

func scalarText(raw json.RawMessage) string {
	if !Present(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

// HasError reports whether the result carries error text.
func (r Result) HasError() bool { return r.Error != "" }

// Present reports whether a structured member was supplied. JSON null counts
// as absent.
func Present(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// ReplayRecord is the lookup response for a stored run.
type ReplayRecord struct {
	Stored json.RawMessage  `json:"stored"`
	Replay *ReplayArtifacts `json:"replay"`
}

// ReplayArtifacts are the artifacts re-derived from the stored document.
type ReplayArtifacts struct {
	Canonical       json.RawMessage `json:"canonical"`
	NetsuitePayload json.RawMessage `json:"netsuite_payload"`
}

// Role identifies the author of a chat turn.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// ChatTurn is one entry of the assistant transcript. Token ties a bot turn to
// the exchange that will resolve it.
type ChatTurn struct {
	Role    Role   `json:"role"`
	Text    string `json:"text"`
	Token   string `json:"token,omitempty"`
	Pending bool   `json:"pending,omitempty"`
}
