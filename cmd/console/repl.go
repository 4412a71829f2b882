package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/internal/console/session"
	apperrors "github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/pkg/errors"
)

// rawTerminator ends a multi-line raw document.
const rawTerminator = "."

// repl reads commands line by line. A bare "raw" starts multi-line entry that
// runs until a line holding only ".".
type repl struct {
	sess   *session.Session
	in     io.Reader
	out    io.Writer
	prompt string
}

func newREPL(sess *session.Session, in io.Reader, out io.Writer, prompt string) *repl {
	return &repl{sess: sess, in: in, out: out, prompt: prompt}
}

// Run returns nil on quit, EOF or ctx cancellation.
func (r *repl) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(r.in)
		scanner.Buffer(make([]byte, 0, 64*1024), 8<<20)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
		close(lines)
	}()

	next := func() (string, bool, error) {
		select {
		case <-ctx.Done():
			return "", false, nil
		case line, ok := <-lines:
			if !ok {
				return "", false, <-readErr
			}
			return line, true, nil
		}
	}

	for {
		fmt.Fprint(r.out, r.prompt)
		line, ok, err := next()
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
		if !ok {
			fmt.Fprintln(r.out)
			return nil
		}

		if strings.TrimSpace(line) == "raw" {
			doc, ok, err := r.readRaw(next)
			if err != nil {
				return fmt.Errorf("reading input: %w", err)
			}
			if !ok {
				return nil
			}
			r.sess.SetRaw(doc)
			fmt.Fprintf(r.out, "raw override set (%d bytes)\n", len(doc))
			continue
		}

		err = r.sess.Exec(ctx, line)
		switch {
		case errors.Is(err, session.ErrQuit):
			return nil
		case err != nil:
			fmt.Fprintf(r.out, "error: %s\n", apperrors.Display(err))
		}
	}
}

func (r *repl) readRaw(next func() (string, bool, error)) (string, bool, error) {
	fmt.Fprintf(r.out, "paste the document, end with a line containing only %q\n", rawTerminator)
	var body []string
	for {
		line, ok, err := next()
		if err != nil || !ok {
			return "", false, err
		}
		if line == rawTerminator {
			return strings.Join(body, "\n"), true, nil
		}
		body = append(body, line)
	}
}
