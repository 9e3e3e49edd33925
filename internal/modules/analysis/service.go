// Package analysis runs the full pipeline (load, aggregate, compute, format)
// for one batch of statements and keeps the resulting reports in memory.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/fundrisk/internal/domain"
	"github.com/aristath/fundrisk/internal/modules/aggregation"
	"github.com/aristath/fundrisk/internal/modules/answers"
	"github.com/aristath/fundrisk/internal/modules/risk"
	"github.com/aristath/fundrisk/internal/modules/sources"
)

// Options tune a single analysis
type Options struct {
	// Source describes where the documents came from
	Source string
	// MinFiles overrides the configured minimum sample when positive
	MinFiles int
	// IncludeRaw attaches the full engine output to the report
	IncludeRaw bool
}

// Service runs analyses
type Service struct {
	loader    *sources.Loader
	aggConfig aggregation.Config
	engine    *risk.Engine
	store     *ReportStore
	metrics   *Metrics
	log       zerolog.Logger
}

// NewService creates a new analysis service. A nil store or metrics disables
// that concern.
func NewService(
	loader *sources.Loader,
	aggConfig aggregation.Config,
	engine *risk.Engine,
	store *ReportStore,
	metrics *Metrics,
	log zerolog.Logger,
) *Service {
	return &Service{
		loader:    loader,
		aggConfig: aggConfig,
		engine:    engine,
		store:     store,
		metrics:   metrics,
		log:       log.With().Str("service", "analysis").Logger(),
	}
}

// Loader returns the service's document loader
func (s *Service) Loader() *sources.Loader {
	return s.loader
}

// Store returns the report store, which may be nil
func (s *Service) Store() *ReportStore {
	return s.store
}

// AnalyzePaths loads files, directories and archives and analyzes them
func (s *Service) AnalyzePaths(ctx context.Context, paths []string, opts Options) (*Report, error) {
	batch, err := s.loader.FromPaths(paths...)
	if err != nil {
		return nil, err
	}
	return s.Analyze(ctx, batch, opts)
}

// Analyze runs aggregation, the risk engine and the formatter over a batch.
// An undersized or empty batch yields a report with a non-ok status rather
// than an error; errors are reserved for cancellation and internal faults.
func (s *Service) Analyze(ctx context.Context, batch sources.Batch, opts Options) (*Report, error) {
	start := time.Now()

	aggCfg := s.aggConfig
	if opts.MinFiles > 0 {
		aggCfg.MinFiles = opts.MinFiles
	}
	aggregator := aggregation.NewAggregator(aggCfg, s.log)

	report := &Report{
		ID:             uuid.New().String(),
		CreatedAt:      start.UTC(),
		Source:         opts.Source,
		FilesProcessed: len(batch.Documents),
		FilesRequired:  aggregator.MinFiles(),
		Errors:         append([]domain.Failure{}, batch.Failures...),
	}

	if len(batch.Documents) == 0 {
		report.ValidationStatus = StatusNoData
		report.Message = "nenhum arquivo XML recebido"
		s.finish(report, start)
		return report, nil
	}

	res, err := aggregator.Aggregate(ctx, batch.Documents)
	report.FilesValid = res.Valid()
	report.Errors = append(report.Errors, res.Failures...)
	s.countDocuments(res)
	if err != nil {
		if !errors.Is(err, aggregation.ErrInsufficientSample) {
			return nil, fmt.Errorf("failed to aggregate statements: %w", err)
		}
		report.ValidationStatus = StatusInsufficientSample
		report.Message = fmt.Sprintf("são necessários pelo menos %d arquivos válidos; recebidos %d, válidos %d",
			report.FilesRequired, report.FilesProcessed, report.FilesValid)
		s.finish(report, start)
		return report, nil
	}

	metrics := s.engine.Compute(res.Statements)
	representative := Representative(res.Statements)
	set := answers.Format(metrics, representative, report.Errors)

	report.ValidationStatus = StatusOK
	report.FundName = set.FundName
	report.StatementDate = set.StatementDate
	report.Answers = set.Map()
	report.AnswerSet = set
	if opts.IncludeRaw {
		report.RawMetrics = &metrics
	}
	if s.metrics != nil {
		s.metrics.LastVaR.WithLabelValues("1d").Set(metrics.VaR1D)
		s.metrics.LastVaR.WithLabelValues(fmt.Sprintf("%dd", metrics.HorizonDays)).Set(metrics.VaRHorizon)
	}

	s.finish(report, start)
	return report, nil
}

// Representative picks the statement that names the report: the most recent
// dated one, or the last one when none is dated.
func Representative(statements []domain.FundStatement) domain.FundStatement {
	for i := len(statements) - 1; i >= 0; i-- {
		if statements[i].StatementDate != nil {
			return statements[i]
		}
	}
	if len(statements) > 0 {
		return statements[len(statements)-1]
	}
	return domain.FundStatement{}
}

func (s *Service) countDocuments(res aggregation.Result) {
	if s.metrics == nil {
		return
	}
	s.metrics.Documents.WithLabelValues("valid").Add(float64(res.Valid()))
	s.metrics.Documents.WithLabelValues("failed").Add(float64(len(res.Failures)))
}

func (s *Service) finish(report *Report, start time.Time) {
	elapsed := time.Since(start)
	if s.metrics != nil {
		s.metrics.Analyses.WithLabelValues(string(report.ValidationStatus)).Inc()
		s.metrics.Duration.Observe(elapsed.Seconds())
	}
	if s.store != nil {
		s.store.Put(report)
	}

	s.log.Info().
		Str("report_id", report.ID).
		Str("source", report.Source).
		Str("status", string(report.ValidationStatus)).
		Int("files", report.FilesProcessed).
		Int("valid", report.FilesValid).
		Int("errors", len(report.Errors)).
		Dur("elapsed", elapsed).
		Msg("Analysis finished")
}
