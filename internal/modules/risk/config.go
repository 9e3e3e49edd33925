package risk

// Coefficients are fixed heuristic elasticities of net assets to a
// 1 percentage point adverse move in each factor. They are calibration
// inputs, not statistics estimated from the statements.
type Coefficients struct {
	InterestRate float64 `json:"interest_rate"`
	FX           float64 `json:"fx"`
	Equity       float64 `json:"equity"`
	RealEstate   float64 `json:"real_estate"`
	Credit       float64 `json:"credit"`
}

// Materiality holds the exposure fractions above which a stress scenario
// narrative is annotated with the fund's exposure.
type Materiality struct {
	Equity       float64 `json:"equity"`
	InterestRate float64 `json:"interest_rate"`
	FX           float64 `json:"fx"`
	Other        float64 `json:"other"`
}

// Config holds risk engine configuration
type Config struct {
	// Confidence is the one-sided VaR confidence level
	Confidence float64
	// ZScore multiplies volatility for parametric VaR. Zero derives it from
	// Confidence through the normal quantile.
	ZScore float64
	// HorizonDays is the business-day horizon for square-root-of-time scaling
	HorizonDays int
	// Model picks the headline VaR; the other figure is still reported
	Model        VaRModel
	Coefficients Coefficients
	Materiality  Materiality
	Rules        []Rule
}

// DefaultConfig returns the standard engine configuration:
// 95% one-sided VaR with z = 1.645 scaled to 21 business days.
func DefaultConfig() Config {
	return Config{
		Confidence:  0.95,
		ZScore:      1.645,
		HorizonDays: 21,
		Model:       ModelParametric,
		Coefficients: Coefficients{
			InterestRate: 0.8,
			FX:           1.2,
			Equity:       0.9,
			RealEstate:   0.6,
			Credit:       0.7,
		},
		Materiality: Materiality{
			Equity:       0.10,
			InterestRate: 0.30,
			FX:           0.05,
			Other:        0,
		},
		Rules: DefaultRules(),
	}
}
