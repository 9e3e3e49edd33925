package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/fundrisk/internal/modules/analysis"
	"github.com/aristath/fundrisk/internal/modules/sources"
)

// Analyzer runs one analysis over a loaded batch
type Analyzer interface {
	Analyze(ctx context.Context, batch sources.Batch, opts analysis.Options) (*analysis.Report, error)
}

// InboxAnalysisJob analyzes whatever statements currently sit in a source
// (an inbox directory or an S3 prefix). The report lands in the service's
// store and becomes the latest one.
type InboxAnalysisJob struct {
	log      zerolog.Logger
	source   sources.Source
	analyzer Analyzer
	timeout  time.Duration
}

// InboxAnalysisConfig holds configuration for the inbox analysis job
type InboxAnalysisConfig struct {
	Log      zerolog.Logger
	Source   sources.Source
	Analyzer Analyzer
	Timeout  time.Duration
}

// NewInboxAnalysisJob creates a new inbox analysis job
func NewInboxAnalysisJob(cfg InboxAnalysisConfig) *InboxAnalysisJob {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &InboxAnalysisJob{
		log:      cfg.Log.With().Str("job", "inbox_analysis").Logger(),
		source:   cfg.Source,
		analyzer: cfg.Analyzer,
		timeout:  timeout,
	}
}

// Name returns the job name
func (j *InboxAnalysisJob) Name() string {
	return "inbox_analysis"
}

// Source names the inbox this job reads
func (j *InboxAnalysisJob) Source() string {
	return j.source.Name()
}

// Run loads the inbox and analyzes it
func (j *InboxAnalysisJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	j.log.Info().Str("source", j.source.Name()).Msg("Starting inbox analysis")

	batch, err := j.source.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", j.source.Name(), err)
	}

	report, err := j.analyzer.Analyze(ctx, batch, analysis.Options{Source: j.source.Name()})
	if err != nil {
		return fmt.Errorf("failed to analyze %s: %w", j.source.Name(), err)
	}

	j.log.Info().
		Str("report_id", report.ID).
		Str("status", string(report.ValidationStatus)).
		Int("files_valid", report.FilesValid).
		Msg("Inbox analysis completed")

	return nil
}
