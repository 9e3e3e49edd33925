package risk

import (
	"github.com/aristath/fundrisk/internal/domain"
	"github.com/aristath/fundrisk/pkg/formulas"
)

// latestStatement returns the most recent dated statement, or the last
// statement when none is dated. Ties keep the later one in input order.
func latestStatement(statements []domain.FundStatement) (domain.FundStatement, bool) {
	if len(statements) == 0 {
		return domain.FundStatement{}, false
	}

	latest := -1
	for i, s := range statements {
		if s.StatementDate == nil {
			continue
		}
		if latest < 0 || !s.StatementDate.Before(*statements[latest].StatementDate) {
			latest = i
		}
	}
	if latest < 0 {
		latest = len(statements) - 1
	}
	return statements[latest], true
}

// Composition weights the positions of the most recent statement by holding
// value and sums the weights per factor bucket. A non-positive total holding
// value leaves every exposure indeterminate.
func (e *Engine) Composition(statements []domain.FundStatement) Composition {
	comp := Composition{Exposures: make(map[Factor]Estimate, len(Factors))}
	for _, f := range Factors {
		comp.Exposures[f] = Indeterminate()
	}

	latest, ok := latestStatement(statements)
	if !ok {
		return comp
	}
	comp.AsOf = latest.StatementDate
	comp.Source = latest.Source
	comp.Positions = len(latest.Positions)

	values := make([]float64, len(latest.Positions))
	for i, p := range latest.Positions {
		values[i] = p.Value()
	}
	comp.TotalValue = formulas.Sum(values)
	if comp.TotalValue <= 0 {
		e.log.Warn().
			Str("source", latest.Source).
			Float64("total_value", comp.TotalValue).
			Msg("Portfolio composition indeterminate")
		return comp
	}

	sums := make(map[Factor]float64, len(Factors))
	for i, p := range latest.Positions {
		sums[e.classifier.Classify(p)] += values[i] / comp.TotalValue
	}

	comp.Determinate = true
	for _, f := range Factors {
		comp.Exposures[f] = Known(sums[f])
	}
	return comp
}

// Sensitivities applies the configured elasticities to the exposures:
// rate = -exp(rate) x c, fx = exp(fx) x c, equity = exp(equity) x c, and
// "other" uses whichever of real estate and credit has the larger exposure.
func (e *Engine) Sensitivities(comp Composition) Sensitivities {
	if !comp.Determinate {
		return Sensitivities{
			InterestRate: Indeterminate(),
			FX:           Indeterminate(),
			Equity:       Indeterminate(),
			Other:        Indeterminate(),
		}
	}

	c := e.cfg.Coefficients
	s := Sensitivities{
		InterestRate: Known(-comp.Exposure(FactorInterestRatePre).Value * c.InterestRate),
		FX:           Known(comp.Exposure(FactorFXRate).Value * c.FX),
		Equity:       Known(comp.Exposure(FactorEquityIndex).Value * c.Equity),
		Other:        Known(0),
	}

	realEstate := comp.Exposure(FactorRealEstate).Value
	credit := comp.Exposure(FactorCredit).Value
	switch {
	case realEstate == 0 && credit == 0:
	case realEstate >= credit:
		s.OtherFactor = FactorRealEstate
		s.Other = Known(realEstate * c.RealEstate)
	default:
		s.OtherFactor = FactorCredit
		s.Other = Known(credit * c.Credit)
	}
	return s
}
