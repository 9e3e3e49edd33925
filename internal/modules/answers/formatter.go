// Package answers renders risk metrics as the fixed 13-question
// questionnaire. Rendering is pure: the same metrics always produce the same
// strings.
package answers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aristath/fundrisk/internal/domain"
	"github.com/aristath/fundrisk/internal/modules/risk"
)

// Indeterminate is rendered for values that could not be computed
const Indeterminate = "indeterminado"

// Answer is one rendered question
type Answer struct {
	Key      string `json:"key" msgpack:"key"`
	Question string `json:"question" msgpack:"question"`
	Answer   string `json:"answer" msgpack:"answer"`
}

// AnswerSet is the rendered questionnaire plus the documents that were skipped
type AnswerSet struct {
	FundName      string           `json:"fund_name,omitempty" msgpack:"fund_name,omitempty"`
	StatementDate string           `json:"statement_date,omitempty" msgpack:"statement_date,omitempty"`
	Answers       []Answer         `json:"answers" msgpack:"answers"`
	Failures      []domain.Failure `json:"failures" msgpack:"failures"`
}

// Map returns the answers keyed q01..q13
func (s AnswerSet) Map() map[string]string {
	m := make(map[string]string, len(s.Answers))
	for _, a := range s.Answers {
		m[a.Key] = a.Answer
	}
	return m
}

// Get returns one answer by key
func (s AnswerSet) Get(key string) (string, bool) {
	for _, a := range s.Answers {
		if a.Key == key {
			return a.Answer, true
		}
	}
	return "", false
}

// Format maps metrics onto the questionnaire. The representative statement
// supplies the fund name and reference date.
func Format(m risk.Metrics, representative domain.FundStatement, failures []domain.Failure) AnswerSet {
	set := AnswerSet{
		FundName: representative.FundName,
		Answers:  make([]Answer, 0, len(Questions)),
		Failures: append([]domain.Failure{}, failures...),
	}
	if representative.StatementDate != nil {
		set.StatementDate = representative.StatementDate.Format("2006-01-02")
	}

	values := map[string]string{
		"q01": varAnswer(m),
		"q02": m.ModelClass,
		"q03": scenarioAnswer(m, risk.ScenarioIbovespa),
		"q04": scenarioAnswer(m, risk.ScenarioJurosPre),
		"q05": scenarioAnswer(m, risk.ScenarioCupomCambial),
		"q06": scenarioAnswer(m, risk.ScenarioDolar),
		"q07": scenarioAnswer(m, risk.ScenarioOutros),
		"q08": Indeterminate,
		"q09": Indeterminate,
		"q10": sensitivity(m.Sensitivities.InterestRate),
		"q11": sensitivity(m.Sensitivities.FX),
		"q12": sensitivity(m.Sensitivities.Equity),
		"q13": otherAnswer(m.Sensitivities),
	}
	if len(m.Returns) > 0 {
		values["q08"] = Percent4(m.MeanReturn)
	}
	if m.Method != risk.MethodNone && len(m.Series) > 0 {
		values["q09"] = Percent4(m.WorstReturn)
	}
	if values["q02"] == "" {
		values["q02"] = Indeterminate
	}

	for _, q := range Questions {
		set.Answers = append(set.Answers, Answer{Key: q.Key, Question: q.Text, Answer: values[q.Key]})
	}
	return set
}

// Percent4 renders a fraction as a percentage with 4 decimals
func Percent4(fraction float64) string {
	return percent(fraction*100, 4)
}

// Percent2 renders a value already expressed in percent with 2 decimals
func Percent2(value float64) string {
	return percent(value, 2)
}

func varAnswer(m risk.Metrics) string {
	if m.Method == risk.MethodNone {
		return Indeterminate
	}
	return fmt.Sprintf("%s (%d dias úteis; 1 dia: %s)", Percent4(m.VaRHorizon), m.HorizonDays, Percent4(m.VaR1D))
}

func scenarioAnswer(m risk.Metrics, f risk.ScenarioFactor) string {
	s, ok := m.Scenario(f)
	if !ok || s.Narrative == "" {
		return Indeterminate
	}
	return s.Narrative
}

func sensitivity(e risk.Estimate) string {
	if !e.Determinate {
		return Indeterminate
	}
	return Percent2(e.Value)
}

func otherAnswer(s risk.Sensitivities) string {
	if !s.Other.Determinate {
		return Indeterminate
	}
	factor := "nenhum"
	if s.OtherFactor != "" {
		factor = risk.FactorLabel(s.OtherFactor)
	}
	return fmt.Sprintf("%s (fator: %s)", Percent2(s.Other.Value), factor)
}

// percent never prints a negative zero such as "-0.00"
func percent(v float64, decimals int) string {
	s := strconv.FormatFloat(v, 'f', decimals, 64)
	if strings.Trim(s, "-0.") == "" {
		s = strings.TrimPrefix(s, "-")
	}
	return s + "%"
}

// Text renders the set as plain lines, failures last
func (s AnswerSet) Text() string {
	var b strings.Builder
	if s.FundName != "" {
		fmt.Fprintf(&b, "Fundo: %s\n", s.FundName)
	}
	if s.StatementDate != "" {
		fmt.Fprintf(&b, "Data de referência: %s\n", s.StatementDate)
	}
	for i, a := range s.Answers {
		fmt.Fprintf(&b, "%d. %s\n   %s\n", i+1, a.Question, a.Answer)
	}
	if len(s.Failures) > 0 {
		fmt.Fprintf(&b, "Arquivos ignorados (%d):\n", len(s.Failures))
		for _, f := range s.Failures {
			fmt.Fprintf(&b, "  - %s [%s]: %s\n", f.Source, f.Kind, f.Reason)
		}
	}
	return b.String()
}
