package models

import (
	"errors"
	"fmt"
)

// ErrUnrecognizedPayload is wrapped when the document structure is not the
// one the decoder expects.
var ErrUnrecognizedPayload = errors.New("unrecognized payload")

// ParseError reports a payload that could not be decoded.
type ParseError struct {
	// Kind is the entity kind being decoded, e.g. "band_addition".
	Kind string

	// Row is the zero-based record index, or -1 for document-level failures.
	Row int

	// Reason is a short human readable description.
	Reason string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	msg := "parse " + e.Kind
	if e.Row >= 0 {
		msg += fmt.Sprintf(": row %d", e.Row)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *ParseError) Unwrap() error {
	return e.Err
}

func documentError(kind, reason string, err error) *ParseError {
	return &ParseError{Kind: kind, Row: -1, Reason: reason, Err: err}
}

func rowError(kind string, row int, reason string) *ParseError {
	return &ParseError{Kind: kind, Row: row, Reason: reason}
}
