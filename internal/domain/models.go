// Package domain provides the core fund statement models shared by the
// extraction, aggregation and risk packages.
package domain

import (
	"sort"
	"time"
)

// DefaultCurrency is the reporting currency assumed when a statement does not declare one
const DefaultCurrency = "BRL"

// FormatTag identifies the XML schema variant a statement was read from
type FormatTag string

const (
	// FormatSimple is the flat ANBIMA "arquivoposicao" layout (header + asset groups)
	FormatSimple FormatTag = "simple"
	// FormatISO20022 is the namespaced semt.003 securities balance report
	FormatISO20022 FormatTag = "iso20022"
	// FormatUnknown is anything else
	FormatUnknown FormatTag = "unknown"
)

// Position represents one holding row within a statement.
// Pointer fields are nil when the source document did not carry a usable value.
type Position struct {
	InstrumentName     string   `json:"instrument_name" msgpack:"instrument_name"`
	Identifier         string   `json:"identifier,omitempty" msgpack:"identifier,omitempty"`
	AssetClass         string   `json:"asset_class,omitempty" msgpack:"asset_class,omitempty"`
	ClassificationCode string   `json:"classification_code,omitempty" msgpack:"classification_code,omitempty"`
	Currency           string   `json:"currency" msgpack:"currency"`
	Quantity           *float64 `json:"quantity,omitempty" msgpack:"quantity,omitempty"`
	UnitPrice          *float64 `json:"unit_price,omitempty" msgpack:"unit_price,omitempty"`
	HoldingValue       *float64 `json:"holding_value,omitempty" msgpack:"holding_value,omitempty"`
}

// Value returns the holding value, or 0 when it is unknown
func (p Position) Value() float64 {
	if p.HoldingValue == nil {
		return 0
	}
	return *p.HoldingValue
}

// FundStatement is the normalized content of one statement file.
// When ParseError is set every other field except Source and Format is zero.
type FundStatement struct {
	StatementDate *time.Time `json:"statement_date,omitempty" msgpack:"statement_date,omitempty"`
	NAVPerShare   *float64   `json:"nav_per_share,omitempty" msgpack:"nav_per_share,omitempty"`
	NetAssets     *float64   `json:"net_assets,omitempty" msgpack:"net_assets,omitempty"`
	UnitCount     *float64   `json:"unit_count,omitempty" msgpack:"unit_count,omitempty"`
	Source        string     `json:"source" msgpack:"source"`
	Format        FormatTag  `json:"format" msgpack:"format"`
	FundName      string     `json:"fund_name,omitempty" msgpack:"fund_name,omitempty"`
	FundID        string     `json:"fund_id,omitempty" msgpack:"fund_id,omitempty"`
	Currency      string     `json:"currency,omitempty" msgpack:"currency,omitempty"`
	ParseError    string     `json:"parse_error,omitempty" msgpack:"parse_error,omitempty"`
	Positions     []Position `json:"positions,omitempty" msgpack:"positions,omitempty"`
}

// Failed reports whether the statement is an error record
func (s FundStatement) Failed() bool {
	return s.ParseError != ""
}

// HasNAV reports whether the statement can contribute to the NAV time series
func (s FundStatement) HasNAV() bool {
	return !s.Failed() && s.StatementDate != nil && s.NAVPerShare != nil
}

// ErrorStatement builds an error record for a source
func ErrorStatement(source string, format FormatTag, cause string) FundStatement {
	return FundStatement{Source: source, Format: format, ParseError: cause}
}

// SortByDate stable-sorts statements ascending by statement date.
// Undated statements keep their relative order after all dated ones.
func SortByDate(statements []FundStatement) {
	sort.SliceStable(statements, func(i, j int) bool {
		a, b := statements[i].StatementDate, statements[j].StatementDate
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
}

// Document is one raw statement payload and the name it is reported under
type Document struct {
	Name string
	Data []byte
}

// Failure is a per-document problem reported next to the results. It never
// aborts the batch.
type Failure struct {
	Source string `json:"source" msgpack:"source"`
	Kind   string `json:"kind" msgpack:"kind"`
	Reason string `json:"reason" msgpack:"reason"`
}

// Float returns a pointer to v
func Float(v float64) *float64 {
	return &v
}

// Date returns a pointer to a UTC calendar date
func Date(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}
