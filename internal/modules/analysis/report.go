package analysis

import (
	"time"

	"github.com/aristath/fundrisk/internal/domain"
	"github.com/aristath/fundrisk/internal/modules/answers"
	"github.com/aristath/fundrisk/internal/modules/risk"
)

// Status is the validation outcome of a batch
type Status string

const (
	StatusOK                 Status = "ok"
	StatusInsufficientSample Status = "insufficient_sample"
	StatusNoData             Status = "no_data"
)

// Report is the structured answer record returned to callers
type Report struct {
	ID               string            `json:"id" msgpack:"id"`
	CreatedAt        time.Time         `json:"created_at" msgpack:"created_at"`
	Source           string            `json:"source,omitempty" msgpack:"source,omitempty"`
	FundName         string            `json:"fund_name" msgpack:"fund_name"`
	StatementDate    string            `json:"statement_date,omitempty" msgpack:"statement_date,omitempty"`
	FilesProcessed   int               `json:"files_processed" msgpack:"files_processed"`
	FilesValid       int               `json:"files_valid" msgpack:"files_valid"`
	FilesRequired    int               `json:"files_required" msgpack:"files_required"`
	ValidationStatus Status            `json:"validation_status" msgpack:"validation_status"`
	Message          string            `json:"message,omitempty" msgpack:"message,omitempty"`
	Errors           []domain.Failure  `json:"errors" msgpack:"errors"`
	Answers          map[string]string `json:"answers,omitempty" msgpack:"answers,omitempty"`
	RawMetrics       *risk.Metrics     `json:"raw_metrics,omitempty" msgpack:"raw_metrics,omitempty"`

	// AnswerSet keeps the question texts for text rendering
	AnswerSet answers.AnswerSet `json:"-" msgpack:"-"`
}

// OK reports whether answers were computed
func (r *Report) OK() bool {
	return r.ValidationStatus == StatusOK
}
