package risk

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// VolatilityMethod records how volatility was estimated
type VolatilityMethod string

const (
	// MethodTimeSeries uses the sample deviation of daily returns
	MethodTimeSeries VolatilityMethod = "time_series"
	// MethodCrossSectional uses the dispersion of NAV levels (fewer than two returns)
	MethodCrossSectional VolatilityMethod = "cross_sectional"
	// MethodNone means no NAV was available at all
	MethodNone VolatilityMethod = "none"
)

// ReturnConvention names the return definition applied to the NAV series
const ReturnConvention = "simple"

// VaRModel selects the figure reported as the headline VaR
type VaRModel string

const (
	// ModelParametric is z x sample volatility under a normal assumption
	ModelParametric VaRModel = "parametric"
	// ModelHistorical is the empirical loss quantile of the observed returns
	ModelHistorical VaRModel = "historical"
)

// ModelClassLabel is the Portuguese label of the model class behind the headline VaR
func ModelClassLabel(model VaRModel, confidence float64) string {
	if model == ModelHistorical {
		return "Histórico"
	}
	return fmt.Sprintf("Paramétrico (normal, %s%%)", strconv.FormatFloat(math.Round(confidence*10000)/100, 'f', -1, 64))
}

// Estimate is a value that may be indeterminate, e.g. exposures of a
// portfolio whose total holding value is zero.
type Estimate struct {
	Value       float64 `json:"value" msgpack:"value"`
	Determinate bool    `json:"determinate" msgpack:"determinate"`
}

// Known wraps a computed value
func Known(v float64) Estimate {
	return Estimate{Value: v, Determinate: true}
}

// Indeterminate marks a value that cannot be computed
func Indeterminate() Estimate {
	return Estimate{}
}

// NAVPoint is one observation of the NAV time series
type NAVPoint struct {
	Date time.Time `json:"date" msgpack:"date"`
	NAV  float64   `json:"nav" msgpack:"nav"`
}

// Composition is the factor breakdown of the most recent statement
type Composition struct {
	AsOf       *time.Time `json:"as_of,omitempty" msgpack:"as_of,omitempty"`
	Source     string     `json:"source,omitempty" msgpack:"source,omitempty"`
	TotalValue float64    `json:"total_value" msgpack:"total_value"`
	Positions  int        `json:"positions" msgpack:"positions"`
	// Determinate is false when the total holding value is not positive
	Determinate bool                `json:"determinate" msgpack:"determinate"`
	Exposures   map[Factor]Estimate `json:"exposures" msgpack:"exposures"`
}

// Exposure returns the estimate for one factor
func (c Composition) Exposure(f Factor) Estimate {
	return c.Exposures[f]
}

// Sensitivities are expected changes in net assets, in percent, for a
// 1 percentage point adverse move of each factor.
type Sensitivities struct {
	InterestRate Estimate `json:"interest_rate" msgpack:"interest_rate"`
	FX           Estimate `json:"fx" msgpack:"fx"`
	Equity       Estimate `json:"equity" msgpack:"equity"`
	Other        Estimate `json:"other" msgpack:"other"`
	// OtherFactor is the bucket behind Other (real estate or credit), empty
	// when neither carries exposure
	OtherFactor Factor `json:"other_factor,omitempty" msgpack:"other_factor,omitempty"`
}

// ScenarioFactor names the regulatory primitive risk factors
type ScenarioFactor string

const (
	ScenarioIbovespa     ScenarioFactor = "ibovespa"
	ScenarioJurosPre     ScenarioFactor = "juros_pre"
	ScenarioCupomCambial ScenarioFactor = "cupom_cambial"
	ScenarioDolar        ScenarioFactor = "dolar"
	ScenarioOutros       ScenarioFactor = "outros"
)

// Scenario is a stress narrative for one primitive risk factor
type Scenario struct {
	Factor    ScenarioFactor `json:"factor" msgpack:"factor"`
	Narrative string         `json:"narrative" msgpack:"narrative"`
	Exposure  Estimate       `json:"exposure" msgpack:"exposure"`
	Material  bool           `json:"material" msgpack:"material"`
}

// Metrics is the full risk engine output
type Metrics struct {
	Series           []NAVPoint       `json:"series" msgpack:"series"`
	Returns          []float64        `json:"returns" msgpack:"returns"`
	ReturnConvention string           `json:"return_convention" msgpack:"return_convention"`
	Method           VolatilityMethod `json:"volatility_method" msgpack:"volatility_method"`
	MeanReturn       float64          `json:"mean_return" msgpack:"mean_return"`
	Variance         float64          `json:"variance" msgpack:"variance"`
	Volatility       float64          `json:"volatility" msgpack:"volatility"`
	Confidence       float64          `json:"confidence" msgpack:"confidence"`
	ZScore           float64          `json:"z_score" msgpack:"z_score"`
	HorizonDays      int              `json:"horizon_days" msgpack:"horizon_days"`
	Model            VaRModel         `json:"model" msgpack:"model"`
	VaR1D            float64          `json:"var_1d" msgpack:"var_1d"`
	VaRHorizon       float64          `json:"var_horizon" msgpack:"var_horizon"`
	HistoricalVaR1D  float64          `json:"historical_var_1d" msgpack:"historical_var_1d"`
	ModelClass       string           `json:"model_class" msgpack:"model_class"`
	WorstReturn      float64          `json:"worst_return" msgpack:"worst_return"`
	Composition      Composition      `json:"composition" msgpack:"composition"`
	Sensitivities    Sensitivities    `json:"sensitivities" msgpack:"sensitivities"`
	Scenarios        []Scenario       `json:"scenarios" msgpack:"scenarios"`
}

// Scenario returns the narrative for a factor
func (m Metrics) Scenario(f ScenarioFactor) (Scenario, bool) {
	for _, s := range m.Scenarios {
		if s.Factor == f {
			return s, true
		}
	}
	return Scenario{}, false
}
