package statements

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedXML is returned when a document is not well-formed XML
	ErrMalformedXML = errors.New("malformed xml")
	// ErrNoHeader is returned when the root or header container is absent
	ErrNoHeader = errors.New("header container not found")
	// ErrUnknownFormat is returned when the root matches no known schema
	ErrUnknownFormat = errors.New("unrecognized statement format")
)

// ErrorKind classifies per-document failures
type ErrorKind string

const (
	KindStructural   ErrorKind = "structural_parse_error"
	KindUnrecognized ErrorKind = "format_unrecognized"
)

// ParseError is the per-document failure recorded instead of a statement
type ParseError struct {
	Source string
	Kind   ErrorKind
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Source, e.Kind, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func structural(source string, err error) *ParseError {
	return &ParseError{Source: source, Kind: KindStructural, Err: err}
}
