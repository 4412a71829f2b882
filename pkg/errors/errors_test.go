package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type bodyErr struct{ body string }

func (e *bodyErr) Error() string   { return "wrapped: " + e.body }
func (e *bodyErr) Display() string { return e.body }
func (e *bodyErr) Unwrap() error   { return ErrTransport }

func TestDisplayPrefersCarriedText(t *testing.T) {
	err := fmt.Errorf("submit: %w", &bodyErr{body: `{"detail":"bad"}`})
	if got := Display(err); got != `{"detail":"bad"}` {
		t.Errorf("Display = %q", got)
	}
	if got := Display(errors.New("dial tcp: refused")); got != "dial tcp: refused" {
		t.Errorf("Display plain = %q", got)
	}
	if Display(nil) != "" {
		t.Error("Display(nil) should be empty")
	}
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{&bodyErr{}, "transport"},
		{New(ErrLookup, 404, "run not found"), "lookup"},
		{fmt.Errorf("x: %w", ErrMalformedRecord), "malformed"},
		{fmt.Errorf("x: %w", context.DeadlineExceeded), "timeout"},
		{errors.New("other"), "error"},
	}
	for _, tt := range tests {
		if got := Outcome(tt.err); got != tt.want {
			t.Errorf("Outcome(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	err := Newf(ErrInvalidInput, 400, "item %d", 3)
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("AppError should unwrap to its sentinel")
	}
	if err.Error() != "invalid input: item 3" {
		t.Errorf("Error() = %q", err.Error())
	}
}
