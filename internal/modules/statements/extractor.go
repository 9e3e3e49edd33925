// Package statements turns fund position XML documents into normalized
// domain.FundStatement records.
//
// Each supported schema variant has its own Extractor; Detect picks the
// variant once per document and the Parser wires the two together behind a
// boundary that converts every failure into an error record.
package statements

import (
	"errors"
	"fmt"

	"github.com/beevik/etree"
	"github.com/rs/zerolog"

	"github.com/aristath/fundrisk/internal/domain"
)

// Extractor reads one schema variant into a FundStatement
type Extractor interface {
	Format() domain.FormatTag
	Extract(root *etree.Element, source string) (domain.FundStatement, []FieldGap, error)
}

// ExtractorFor returns the extractor registered for a format tag
func ExtractorFor(format domain.FormatTag, log zerolog.Logger) (Extractor, bool) {
	switch format {
	case domain.FormatSimple:
		return NewSimpleExtractor(log), true
	case domain.FormatISO20022:
		return NewISO20022Extractor(log), true
	default:
		return nil, false
	}
}

// Result is the outcome of parsing one document
type Result struct {
	Statement domain.FundStatement
	Gaps      []FieldGap
	Err       *ParseError
}

// Parser runs parse -> detect -> extract for single documents
type Parser struct {
	log zerolog.Logger
}

// NewParser creates a new statement parser
func NewParser(log zerolog.Logger) *Parser {
	return &Parser{
		log: log.With().Str("component", "statement_parser").Logger(),
	}
}

// Parse never panics and never returns a partially typed statement: either
// Result.Err is nil and Statement is populated, or Statement is an error record.
func (p *Parser) Parse(source string, data []byte) (res Result) {
	format := domain.FormatUnknown

	defer func() {
		if r := recover(); r != nil {
			perr := structural(source, fmt.Errorf("extraction aborted: %v", r))
			p.log.Error().Str("source", source).Interface("panic", r).Msg("Recovered from extraction panic")
			res = Result{Statement: domain.ErrorStatement(source, format, perr.Error()), Err: perr}
		}
	}()

	root, err := ParseDocument(source, data)
	if err != nil {
		var perr *ParseError
		if !errors.As(err, &perr) {
			perr = structural(source, err)
		}
		return Result{Statement: domain.ErrorStatement(source, format, perr.Error()), Err: perr}
	}

	format = Detect(root)
	extractor, ok := ExtractorFor(format, p.log)
	if !ok {
		perr := &ParseError{
			Source: source,
			Kind:   KindUnrecognized,
			Err:    fmt.Errorf("%w: root <%s> namespace %q", ErrUnknownFormat, root.Tag, root.NamespaceURI()),
		}
		return Result{Statement: domain.ErrorStatement(source, format, perr.Error()), Err: perr}
	}

	statement, gaps, err := extractor.Extract(root, source)
	if err != nil {
		perr := structural(source, err)
		return Result{Statement: domain.ErrorStatement(source, format, perr.Error()), Gaps: gaps, Err: perr}
	}

	p.log.Debug().
		Str("source", source).
		Str("format", string(format)).
		Int("positions", len(statement.Positions)).
		Int("gaps", len(gaps)).
		Msg("Statement extracted")

	return Result{Statement: statement, Gaps: gaps}
}
