// Package risk derives VaR, return statistics, factor exposures,
// sensitivities and stress narratives from a series of fund statements.
package risk

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/aristath/fundrisk/internal/domain"
	"github.com/aristath/fundrisk/pkg/formulas"
)

// Engine computes risk metrics
type Engine struct {
	cfg        Config
	classifier *Classifier
	log        zerolog.Logger
}

// NewEngine creates a new risk engine. Missing configuration values fall
// back to DefaultConfig.
func NewEngine(cfg Config, log zerolog.Logger) *Engine {
	def := DefaultConfig()
	if cfg.Confidence <= 0 || cfg.Confidence >= 1 {
		cfg.Confidence = def.Confidence
	}
	if cfg.ZScore <= 0 {
		if cfg.Confidence == def.Confidence {
			cfg.ZScore = def.ZScore
		} else {
			cfg.ZScore = formulas.ZScore(cfg.Confidence)
		}
	}
	if cfg.HorizonDays <= 0 {
		cfg.HorizonDays = def.HorizonDays
	}
	if cfg.Model != ModelHistorical {
		cfg.Model = ModelParametric
	}
	if cfg.Coefficients == (Coefficients{}) {
		cfg.Coefficients = def.Coefficients
	}
	if cfg.Materiality == (Materiality{}) {
		cfg.Materiality = def.Materiality
	}
	if len(cfg.Rules) == 0 {
		cfg.Rules = def.Rules
	}

	return &Engine{
		cfg:        cfg,
		classifier: NewClassifier(cfg.Rules),
		log:        log.With().Str("component", "risk_engine").Logger(),
	}
}

// Config returns the effective configuration
func (e *Engine) Config() Config {
	return e.cfg
}

// Classifier returns the engine's position classifier
func (e *Engine) Classifier() *Classifier {
	return e.classifier
}

// Compute derives the metrics. Error records in the input are ignored.
func (e *Engine) Compute(statements []domain.FundStatement) Metrics {
	valid := make([]domain.FundStatement, 0, len(statements))
	for _, s := range statements {
		if !s.Failed() {
			valid = append(valid, s)
		}
	}

	series := BuildSeries(valid)
	navs := make([]float64, len(series))
	for i, p := range series {
		navs[i] = p.NAV
	}

	m := Metrics{
		Series:           series,
		Returns:          formulas.SimpleReturns(navs),
		ReturnConvention: ReturnConvention,
		Confidence:       e.cfg.Confidence,
		ZScore:           e.cfg.ZScore,
		HorizonDays:      e.cfg.HorizonDays,
		Model:            e.cfg.Model,
		ModelClass:       ModelClassLabel(e.cfg.Model, e.cfg.Confidence),
	}
	m.MeanReturn = formulas.Mean(m.Returns)

	switch {
	case len(m.Returns) >= 2:
		m.Method = MethodTimeSeries
		m.Variance = formulas.Variance(m.Returns)
		m.Volatility = formulas.StdDev(m.Returns)
		m.WorstReturn = formulas.Min(m.Returns)
	default:
		m.Method, m.Volatility, m.WorstReturn = e.crossSectional(valid, m.Returns)
		m.Variance = m.Volatility * m.Volatility
	}

	if m.Method != MethodNone && !formulas.AllFinite([]float64{m.Volatility, m.WorstReturn}) {
		e.log.Warn().
			Str("method", string(m.Method)).
			Msg("Non-finite volatility, VaR left indeterminate")
		m.Method, m.Variance, m.Volatility, m.WorstReturn = MethodNone, 0, 0, 0
	}

	m.HistoricalVaR1D = formulas.HistoricalVaR(m.Returns, m.Confidence)
	m.VaR1D = formulas.ParametricVaR(m.Volatility, m.ZScore)
	if m.Model == ModelHistorical {
		m.VaR1D = m.HistoricalVaR1D
	}
	m.VaRHorizon = formulas.ScaleToHorizon(m.VaR1D, m.HorizonDays)

	m.Composition = e.Composition(valid)
	m.Sensitivities = e.Sensitivities(m.Composition)
	m.Scenarios = e.Scenarios(m.Composition)

	e.log.Debug().
		Int("statements", len(valid)).
		Int("returns", len(m.Returns)).
		Str("method", string(m.Method)).
		Str("model", string(m.Model)).
		Float64("volatility", m.Volatility).
		Float64("var_1d", m.VaR1D).
		Float64("var_horizon", m.VaRHorizon).
		Bool("composition_determinate", m.Composition.Determinate).
		Msg("Risk metrics computed")

	return m
}

// BuildSeries collects (date, nav) pairs from statements carrying both and
// stable-sorts them ascending by date.
func BuildSeries(statements []domain.FundStatement) []NAVPoint {
	series := make([]NAVPoint, 0, len(statements))
	for _, s := range statements {
		if !s.HasNAV() || !formulas.AllFinite([]float64{*s.NAVPerShare}) {
			continue
		}
		series = append(series, NAVPoint{Date: *s.StatementDate, NAV: *s.NAVPerShare})
	}
	sort.SliceStable(series, func(i, j int) bool {
		return series[i].Date.Before(series[j].Date)
	})
	return series
}

// crossSectional estimates volatility from the dispersion of NAV levels
// across all statements when fewer than two returns exist.
func (e *Engine) crossSectional(statements []domain.FundStatement, returns []float64) (VolatilityMethod, float64, float64) {
	var navs []float64
	for _, s := range statements {
		if s.NAVPerShare != nil && formulas.AllFinite([]float64{*s.NAVPerShare}) {
			navs = append(navs, *s.NAVPerShare)
		}
	}
	if len(navs) == 0 {
		return MethodNone, 0, 0
	}

	vol := formulas.CrossSectionalVolatility(navs)

	// a single observed return is still the worst one observed
	if len(returns) > 0 {
		return MethodCrossSectional, vol, formulas.Min(returns)
	}

	worst := 0.0
	if mean := formulas.Mean(navs); mean > 0 {
		worst = (formulas.Min(navs) - mean) / mean
	}
	return MethodCrossSectional, vol, worst
}
