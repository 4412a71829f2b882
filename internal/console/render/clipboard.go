package render

import (
	"encoding/base64"
	"fmt"
	"io"
	"sync"
)

// Clipboard receives copied text.
type Clipboard interface {
	Copy(text string) error
}

// TerminalClipboard copies through the terminal with an OSC 52 sequence, so
// it works over SSH without a display server.
type TerminalClipboard struct {
	mu sync.Mutex
	w  io.Writer
}

// NewTerminalClipboard writes escape sequences to w, normally the tty.
func NewTerminalClipboard(w io.Writer) *TerminalClipboard {
	return &TerminalClipboard{w: w}
}

func (t *TerminalClipboard) Copy(text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := fmt.Fprintf(t.w, "\x1b]52;c;%s\a", base64.StdEncoding.EncodeToString([]byte(text)))
	return err
}
