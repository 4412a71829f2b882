package errors

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrTransport       = errors.New("transport failure")
	ErrLookup          = errors.New("run lookup failed")
	ErrMalformedRecord = errors.New("malformed replay record")
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnknownAction   = errors.New("unknown action")
	ErrUnavailable     = errors.New("dependency unavailable")
)

type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

// Displayer is implemented by errors that carry their own operator-facing
// text, such as a service error body.
type Displayer interface {
	Display() string
}

// Display returns the text shown to the operator for err.
func Display(err error) string {
	if err == nil {
		return ""
	}
	var d Displayer
	if errors.As(err, &d) {
		return d.Display()
	}
	return err.Error()
}

// Outcome labels err for metrics and activity events.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, ErrMalformedRecord):
		return "malformed"
	case errors.Is(err, ErrLookup):
		return "lookup"
	case errors.Is(err, ErrTransport):
		return "transport"
	default:
		return "error"
	}
}
