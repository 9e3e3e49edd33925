package risk

import "fmt"

type scenarioTemplate struct {
	factor    ScenarioFactor
	exposure  Factor
	threshold func(Materiality) float64
	generic   string
	annotated string
}

var scenarioTemplates = []scenarioTemplate{
	{
		factor:    ScenarioIbovespa,
		exposure:  FactorEquityIndex,
		threshold: func(m Materiality) float64 { return m.Equity },
		generic:   "Queda do IBOVESPA no cenário de estresse de baixa da BM&FBOVESPA",
		annotated: "Queda do IBOVESPA no cenário de estresse de baixa da BM&FBOVESPA (exposição do fundo a ações/índice: %.2f%% do PL)",
	},
	{
		factor:    ScenarioJurosPre,
		exposure:  FactorInterestRatePre,
		threshold: func(m Materiality) float64 { return m.InterestRate },
		generic:   "Alta da curva de juros pré-fixada no cenário de estresse da BM&FBOVESPA",
		annotated: "Alta da curva de juros pré-fixada no cenário de estresse da BM&FBOVESPA (exposição do fundo a juros pré: %.2f%% do PL)",
	},
	{
		factor:    ScenarioCupomCambial,
		exposure:  FactorFXRate,
		threshold: func(m Materiality) float64 { return m.FX },
		generic:   "Alta do cupom cambial no cenário de estresse da BM&FBOVESPA",
		annotated: "Alta do cupom cambial no cenário de estresse da BM&FBOVESPA (exposição cambial do fundo: %.2f%% do PL)",
	},
	{
		factor:    ScenarioDolar,
		exposure:  FactorFXRate,
		threshold: func(m Materiality) float64 { return m.FX },
		generic:   "Queda do dólar frente ao real no cenário de estresse da BM&FBOVESPA",
		annotated: "Queda do dólar frente ao real no cenário de estresse da BM&FBOVESPA (exposição cambial do fundo: %.2f%% do PL)",
	},
}

// FactorLabel is the Portuguese display name of a bucket
func FactorLabel(f Factor) string {
	switch f {
	case FactorInterestRatePre:
		return "Juros-Pré"
	case FactorFXRate:
		return "Câmbio"
	case FactorEquityIndex:
		return "IBOVESPA"
	case FactorRealEstate:
		return "Imobiliário"
	case FactorCredit:
		return "Crédito"
	default:
		return "Outros"
	}
}

// Scenarios builds one narrative per primitive risk factor. A narrative is
// annotated with the exposure only when the exposure is determinate and
// strictly above the factor's materiality threshold.
func (e *Engine) Scenarios(comp Composition) []Scenario {
	scenarios := make([]Scenario, 0, len(scenarioTemplates)+1)
	for _, t := range scenarioTemplates {
		exposure := comp.Exposure(t.exposure)
		s := Scenario{Factor: t.factor, Exposure: exposure, Narrative: t.generic}
		if exposure.Determinate && exposure.Value > t.threshold(e.cfg.Materiality) {
			s.Material = true
			s.Narrative = fmt.Sprintf(t.annotated, exposure.Value*100)
		}
		scenarios = append(scenarios, s)
	}

	return append(scenarios, e.otherScenario(comp))
}

// otherScenario targets the larger of the real-estate and credit buckets
func (e *Engine) otherScenario(comp Composition) Scenario {
	s := Scenario{
		Factor:    ScenarioOutros,
		Exposure:  Indeterminate(),
		Narrative: "Choque adverso no fator de risco Outros no cenário de estresse da BM&FBOVESPA",
	}
	if !comp.Determinate {
		return s
	}

	factor := FactorRealEstate
	exposure := comp.Exposure(FactorRealEstate)
	if credit := comp.Exposure(FactorCredit); credit.Value > exposure.Value {
		factor, exposure = FactorCredit, credit
	}
	s.Exposure = exposure

	if exposure.Value > e.cfg.Materiality.Other {
		s.Material = true
		s.Narrative = fmt.Sprintf(
			"Choque adverso no fator de risco Outros (%s) no cenário de estresse da BM&FBOVESPA (exposição do fundo: %.2f%% do PL)",
			FactorLabel(factor), exposure.Value*100,
		)
	}
	return s
}
