package statements

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// GapReason tells a missing field apart from one that was present but unusable
type GapReason string

const (
	GapMissing   GapReason = "missing"
	GapMalformed GapReason = "malformed"
)

// FieldGap records a field that resolved to absent during extraction
type FieldGap struct {
	Field  string    `json:"field"`
	Reason GapReason `json:"reason"`
	Raw    string    `json:"raw,omitempty"`
}

var compactDate = regexp.MustCompile(`^\d{8}$`)

// fieldReader reads optional values from an element tree. Every lookup is
// independent: a missing or malformed field never stops the others.
type fieldReader struct {
	source string
	log    zerolog.Logger
	gaps   []FieldGap
}

func newFieldReader(source string, log zerolog.Logger) *fieldReader {
	return &fieldReader{source: source, log: log}
}

func (r *fieldReader) gap(field string, reason GapReason, raw string) {
	r.gaps = append(r.gaps, FieldGap{Field: field, Reason: reason, Raw: raw})
	r.log.Debug().
		Str("source", r.source).
		Str("field", field).
		Str("reason", string(reason)).
		Str("raw", raw).
		Msg("Field resolved to absent")
}

// find returns the first element matching any of the paths
func find(el *etree.Element, paths ...string) *etree.Element {
	if el == nil {
		return nil
	}
	for _, p := range paths {
		if found := el.FindElement(p); found != nil {
			return found
		}
	}
	return nil
}

// rawText returns the trimmed text of the first non-empty match
func rawText(el *etree.Element, paths ...string) (string, bool) {
	if el == nil {
		return "", false
	}
	for _, p := range paths {
		if found := el.FindElement(p); found != nil {
			if text := strings.TrimSpace(found.Text()); text != "" {
				return text, true
			}
		}
	}
	return "", false
}

// text reads a string field, recording a gap when required is set
func (r *fieldReader) text(el *etree.Element, field string, required bool, paths ...string) string {
	text, ok := rawText(el, paths...)
	if !ok && required {
		r.gap(field, GapMissing, "")
	}
	return text
}

// number reads a decimal-point number. Missing fields are recorded only when
// required; malformed ones always are.
func (r *fieldReader) number(el *etree.Element, field string, required bool, paths ...string) *float64 {
	text, ok := rawText(el, paths...)
	if !ok {
		if required {
			r.gap(field, GapMissing, "")
		}
		return nil
	}

	d, err := decimal.NewFromString(text)
	if err != nil {
		r.gap(field, GapMalformed, text)
		return nil
	}
	v := d.InexactFloat64()
	if math.IsInf(v, 0) || math.IsNaN(v) {
		r.gap(field, GapMalformed, text)
		return nil
	}
	return &v
}

// sum adds every readable value among the paths; nil when none is readable
func (r *fieldReader) sum(el *etree.Element, field string, paths ...string) *float64 {
	var total *decimal.Decimal
	for _, p := range paths {
		v := r.number(el, field, false, p)
		if v == nil {
			continue
		}
		d := decimal.NewFromFloat(*v)
		if total != nil {
			d = total.Add(d)
		}
		total = &d
	}
	if total == nil {
		return nil
	}
	v := total.InexactFloat64()
	return &v
}

// date reads a calendar date in YYYYMMDD, YYYY-MM-DD or ISO date-time form
func (r *fieldReader) date(el *etree.Element, field string, paths ...string) *time.Time {
	text, ok := rawText(el, paths...)
	if !ok {
		r.gap(field, GapMissing, "")
		return nil
	}

	t, err := ParseStatementDate(text)
	if err != nil {
		r.gap(field, GapMalformed, text)
		return nil
	}
	return &t
}

// ParseStatementDate accepts the compact 8-digit form (reformatted to
// YYYY-MM-DD first), plain ISO dates and ISO date-times (date part only).
func ParseStatementDate(text string) (time.Time, error) {
	text = strings.TrimSpace(text)
	if compactDate.MatchString(text) {
		text = text[0:4] + "-" + text[4:6] + "-" + text[6:8]
	}
	if len(text) > 10 && text[10] == 'T' {
		text = text[:10]
	}
	return time.Parse("2006-01-02", text)
}

// product derives quantity x unit price without binary rounding drift
func product(quantity, unitPrice *float64) *float64 {
	if quantity == nil || unitPrice == nil {
		return nil
	}
	v := decimal.NewFromFloat(*quantity).Mul(decimal.NewFromFloat(*unitPrice)).InexactFloat64()
	return &v
}
