// Package aggregation parses a batch of statement documents into a
// date-ordered series and enforces the minimum sample size.
package aggregation

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/aristath/fundrisk/internal/domain"
	"github.com/aristath/fundrisk/internal/modules/statements"
)

// ErrInsufficientSample is returned when fewer documents than required are
// provided or parse successfully. It is fatal for the batch.
var ErrInsufficientSample = errors.New("insufficient sample size")

// DefaultMinFiles is one month of business days
const DefaultMinFiles = 21

// Config holds aggregator configuration
type Config struct {
	MinFiles int `json:"min_files"`
	Workers  int `json:"workers"`
}

// Result is the outcome of a batch. Failures are populated even when
// Aggregate returns ErrInsufficientSample.
type Result struct {
	Statements []domain.FundStatement `json:"statements"`
	Failures   []domain.Failure       `json:"failures"`
	Documents  int                    `json:"documents"`
	Gaps       int                    `json:"gaps"`
}

// Valid returns the number of successfully parsed statements
func (r Result) Valid() int {
	return len(r.Statements)
}

// Aggregator parses documents in parallel and validates the sample
type Aggregator struct {
	cfg    Config
	parser *statements.Parser
	log    zerolog.Logger
}

// NewAggregator creates a new aggregator
func NewAggregator(cfg Config, log zerolog.Logger) *Aggregator {
	if cfg.MinFiles <= 0 {
		cfg.MinFiles = DefaultMinFiles
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Aggregator{
		cfg:    cfg,
		parser: statements.NewParser(log),
		log:    log.With().Str("component", "aggregator").Logger(),
	}
}

// MinFiles returns the effective minimum sample size
func (a *Aggregator) MinFiles() int {
	return a.cfg.MinFiles
}

// Aggregate parses every document and returns the valid statements sorted by
// date. The document count is checked before any parsing and the valid count
// after it.
func (a *Aggregator) Aggregate(ctx context.Context, docs []domain.Document) (Result, error) {
	res := Result{Documents: len(docs)}
	if len(docs) < a.cfg.MinFiles {
		a.log.Warn().
			Int("documents", len(docs)).
			Int("required", a.cfg.MinFiles).
			Msg("Not enough documents to aggregate")
		return res, fmt.Errorf("%w: %d files provided, %d required", ErrInsufficientSample, len(docs), a.cfg.MinFiles)
	}

	parsed, err := a.parseAll(ctx, docs)
	if err != nil {
		return res, err
	}

	for _, p := range parsed {
		res.Gaps += len(p.Gaps)
		if p.Err != nil {
			res.Failures = append(res.Failures, domain.Failure{
				Source: p.Err.Source,
				Kind:   string(p.Err.Kind),
				Reason: p.Err.Err.Error(),
			})
			a.log.Warn().
				Str("source", p.Err.Source).
				Str("kind", string(p.Err.Kind)).
				Err(p.Err.Err).
				Msg("Statement skipped")
			continue
		}
		res.Statements = append(res.Statements, p.Statement)
	}
	domain.SortByDate(res.Statements)

	if res.Valid() < a.cfg.MinFiles {
		a.log.Warn().
			Int("valid", res.Valid()).
			Int("failed", len(res.Failures)).
			Int("required", a.cfg.MinFiles).
			Msg("Not enough valid statements")
		return res, fmt.Errorf("%w: %d of %d files parsed, %d required",
			ErrInsufficientSample, res.Valid(), len(docs), a.cfg.MinFiles)
	}

	a.log.Info().
		Int("documents", len(docs)).
		Int("valid", res.Valid()).
		Int("failed", len(res.Failures)).
		Int("gaps", res.Gaps).
		Msg("Statements aggregated")

	return res, nil
}

// parseAll runs the parser over a bounded pool; results keep input order
func (a *Aggregator) parseAll(ctx context.Context, docs []domain.Document) ([]statements.Result, error) {
	results := make([]statements.Result, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Workers)
	for i, doc := range docs {
		i, doc := i, doc
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = a.parser.Parse(doc.Name, doc.Data)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to parse statements: %w", err)
	}
	return results, nil
}
