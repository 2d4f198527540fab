package quote

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a per-symbol fetch failure. Failures are
// non-fatal to a run; they surface as Outcome.Err and are logged.
type ErrorKind string

const (
	ErrInvalidSymbol ErrorKind = "InvalidSymbol"
	ErrNetwork       ErrorKind = "NetworkError"
	ErrParsing       ErrorKind = "ParsingError"
	ErrUnexpected    ErrorKind = "UnexpectedError"
)

// Error is a typed per-symbol fetch failure. Raw holds a truncated
// snapshot of the offending response body for diagnosis.
type Error struct {
	Kind   ErrorKind
	Symbol string
	Raw    string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Symbol, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Symbol)
}

func (e *Error) Unwrap() error { return e.Err }

const maxRawSnapshot = 512

// NewError builds a typed fetch error, truncating the raw response
// snapshot to a loggable size.
func NewError(kind ErrorKind, symbol, raw string, err error) *Error {
	if len(raw) > maxRawSnapshot {
		raw = raw[:maxRawSnapshot]
	}
	return &Error{Kind: kind, Symbol: symbol, Raw: raw, Err: err}
}

// KindOf extracts the error kind from err, defaulting to UnexpectedError
// for anything that is not a *quote.Error.
func KindOf(err error) ErrorKind {
	var qe *Error
	if errors.As(err, &qe) {
		return qe.Kind
	}
	return ErrUnexpected
}
