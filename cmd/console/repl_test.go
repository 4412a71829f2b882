package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/internal/console/assistant"
	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/internal/console/client"
	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/internal/console/session"
	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/internal/prefs"
	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/pkg/config"
)

func newTestSession(out *bytes.Buffer) *session.Session {
	c := client.New(config.BackendConfig{BaseURL: "http://127.0.0.1:0"})
	panel := assistant.NewPanel(context.Background(), c, prefs.NewMemoryStore())
	return session.New(context.Background(), c, panel, out, session.Options{})
}

func TestREPLMultilineRawAndQuit(t *testing.T) {
	var out bytes.Buffer
	sess := newTestSession(&out)

	input := strings.Join([]string{
		"po PO-42",
		"raw",
		"<order>",
		"  <poNumber>X</poNumber>",
		"</order>",
		".",
		"bogus",
		"quit",
		"po never-reached",
	}, "\n") + "\n"

	err := newREPL(sess, strings.NewReader(input), &out, "> ").Run(context.Background())
	require.NoError(t, err)

	st := sess.State()
	assert.Equal(t, "<order>\n  <poNumber>X</poNumber>\n</order>", st.Raw)
	assert.Equal(t, "PO-42", st.Form.PONumber)
	assert.Contains(t, out.String(), "raw override set")
	assert.Contains(t, out.String(), "error: ")
}

func TestREPLEOF(t *testing.T) {
	var out bytes.Buffer
	sess := newTestSession(&out)
	err := newREPL(sess, strings.NewReader("kind 856"), &out, "> ").Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "856", sess.State().Kind.String())
}

func TestREPLCancelled(t *testing.T) {
	var out bytes.Buffer
	sess := newTestSession(&out)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	blocking := &blockingReader{ch: make(chan struct{})}
	defer close(blocking.ch)
	assert.NoError(t, newREPL(sess, blocking, &out, "> ").Run(ctx))
}

type blockingReader struct{ ch chan struct{} }

func (b *blockingReader) Read(p []byte) (int, error) {
	<-b.ch
	return 0, context.Canceled
}
