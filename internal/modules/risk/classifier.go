package risk

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/aristath/fundrisk/internal/domain"
)

// Factor is a coarse risk-factor bucket for a holding
type Factor string

const (
	FactorInterestRatePre Factor = "interest_rate_pre"
	FactorFXRate          Factor = "fx_rate"
	FactorEquityIndex     Factor = "equity_index"
	FactorRealEstate      Factor = "real_estate"
	FactorCredit          Factor = "credit"
	FactorOther           Factor = "other"
)

// Factors lists every bucket in reporting order
var Factors = []Factor{
	FactorInterestRatePre,
	FactorFXRate,
	FactorEquityIndex,
	FactorRealEstate,
	FactorCredit,
	FactorOther,
}

// RealEstateRegistryCode is the classification code of real-estate funds.
// It overrides any keyword match.
const RealEstateRegistryCode = "37"

// Candidate is the normalized view of a position the rules match against
type Candidate struct {
	Name       string   // upper case, accents folded
	Tokens     []string // alphanumeric words of Name
	Code       string
	AssetClass string
}

// Rule maps a predicate to a bucket. Rules are evaluated in order and the
// first match wins.
type Rule struct {
	Name   string
	Factor Factor
	Match  func(c Candidate) bool
}

// Classifier assigns positions to risk-factor buckets
type Classifier struct {
	rules []Rule
}

// NewClassifier creates a classifier over an ordered rule list
func NewClassifier(rules []Rule) *Classifier {
	return &Classifier{rules: rules}
}

// Rules returns a copy of the rule list
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Classify returns the bucket of the first matching rule, or FactorOther
func (c *Classifier) Classify(pos domain.Position) Factor {
	candidate := NewCandidate(pos)
	for _, rule := range c.rules {
		if rule.Match(candidate) {
			return rule.Factor
		}
	}
	return FactorOther
}

// NewCandidate normalizes a position for rule matching
func NewCandidate(pos domain.Position) Candidate {
	name := foldName(pos.InstrumentName)
	return Candidate{
		Name: name,
		Tokens: strings.FieldsFunc(name, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		}),
		Code:       strings.TrimSpace(pos.ClassificationCode),
		AssetClass: strings.ToLower(strings.TrimSpace(pos.AssetClass)),
	}
}

// foldName upper-cases and strips diacritics ("Imobiliário" -> "IMOBILIARIO")
func foldName(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToUpper(strings.TrimSpace(folded))
}

// Keywords matches whole words. Keywords of five letters or more also match
// as a word prefix (IMOBILIARIO matches IMOBILIARIOS); multi-word keywords
// match as a phrase.
func Keywords(words ...string) func(Candidate) bool {
	return func(c Candidate) bool {
		if len(c.Tokens) == 0 {
			return false
		}
		joined := " " + strings.Join(c.Tokens, " ") + " "
		for _, w := range words {
			if strings.Contains(w, " ") {
				if strings.Contains(joined, " "+w+" ") {
					return true
				}
				continue
			}
			for _, tok := range c.Tokens {
				if tok == w || (len(w) >= 5 && strings.HasPrefix(tok, w)) {
					return true
				}
			}
		}
		return false
	}
}

// CodeEquals matches the classification code exactly
func CodeEquals(code string) func(Candidate) bool {
	return func(c Candidate) bool {
		return c.Code == code
	}
}

// AssetClassIn matches the source asset group
func AssetClassIn(classes ...string) func(Candidate) bool {
	return func(c Candidate) bool {
		for _, class := range classes {
			if c.AssetClass == class {
				return true
			}
		}
		return false
	}
}

var b3Ticker = regexp.MustCompile(`^[A-Z]{4}\d{1,2}$`)

// B3Ticker matches exchange tickers such as PETR4 or BOVA11
func B3Ticker(c Candidate) bool {
	for _, tok := range c.Tokens {
		if b3Ticker.MatchString(tok) {
			return true
		}
	}
	return false
}

// DefaultRules is the standard rule list. Specific instrument families come
// before broad rate terms so that "DEBENTURE CDI" is credit and "FII" wins
// over everything but the registry code.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "real-estate registry code", Factor: FactorRealEstate, Match: CodeEquals(RealEstateRegistryCode)},
		{Name: "real-estate fund terms", Factor: FactorRealEstate, Match: Keywords(
			"FII", "IMOBILIARIO", "IMOBILIARIA", "IMOVEIS", "IMOVEL", "REAL ESTATE", "REIT",
		)},
		{Name: "credit receivable terms", Factor: FactorCredit, Match: Keywords(
			"FIDC", "RECEBIVEIS", "DIREITOS CREDITORIOS", "CREDITO", "CREDITORIOS", "DEBENTURE", "DEBENTURES", "CRI", "CRA", "CCB",
		)},
		{Name: "fx and dollar terms", Factor: FactorFXRate, Match: Keywords(
			"DOLAR", "USD", "CAMBIAL", "CAMBIO", "CUPOM CAMBIAL", "DDI", "FX", "EURO", "EUR",
		)},
		{Name: "equity index terms", Factor: FactorEquityIndex, Match: Keywords(
			"ACOES", "ACAO", "IBOVESPA", "IBOV", "IBRX", "INDICE", "EQUITY", "BOLSA", "IND", "WIN",
		)},
		{Name: "pre-fixed rate terms", Factor: FactorInterestRatePre, Match: Keywords(
			"SELIC", "TESOURO", "LTN", "NTN", "NTNF", "NTNB", "LFT", "PRE", "PREFIXADO", "DI", "DI1", "CDI", "JUROS", "CDB", "COMPROMISSADA",
		)},
		{Name: "exchange ticker", Factor: FactorEquityIndex, Match: B3Ticker},
		{Name: "government bond group", Factor: FactorInterestRatePre, Match: AssetClassIn("titpublico", "termorf")},
		{Name: "equity group", Factor: FactorEquityIndex, Match: AssetClassIn("acoes", "opcoesacoes")},
		{Name: "real-estate group", Factor: FactorRealEstate, Match: AssetClassIn("imoveis")},
		{Name: "private credit group", Factor: FactorCredit, Match: AssetClassIn("titprivado", "debenture")},
	}
}
