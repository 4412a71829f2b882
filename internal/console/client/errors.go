package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/pkg/errors"
)

// IngestionError is a failed backend call. Body holds the service's error
// payload exactly as received; Err is set instead when no response arrived.
type IngestionError struct {
	Call   string
	Status int
	Body   []byte
	Err    error
}

func (e *IngestionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Call, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Call, e.Display())
}

// Display is the operator-facing text. A JSON body is shown as compact JSON
// with its key order intact; anything else is prefixed with the status.
func (e *IngestionError) Display() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	trimmed := bytes.TrimSpace(e.Body)
	if len(trimmed) == 0 {
		return fmt.Sprintf("HTTP %d", e.Status)
	}
	if json.Valid(trimmed) {
		return compactJSON(trimmed)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Status, strings.TrimSpace(string(trimmed)))
}

// Unwrap classifies the failure. A lookup that got an answer is a lookup
// error; everything else is transport.
func (e *IngestionError) Unwrap() []error {
	sentinel := apperrors.ErrTransport
	if e.Call == CallReplay && e.Err == nil {
		sentinel = apperrors.ErrLookup
	}
	if e.Err != nil {
		return []error{sentinel, e.Err}
	}
	return []error{sentinel}
}

func compactJSON(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
