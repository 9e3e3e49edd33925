package statements

import (
	"math"
	"strings"

	"github.com/beevik/etree"
	"github.com/rs/zerolog"

	"github.com/aristath/fundrisk/internal/domain"
)

// SimpleExtractor reads the flat ANBIMA "arquivoposicao" layout:
//
//	<arquivoposicao_4_01>
//	  <fundo>
//	    <header> dtposicao, valorcota, patliq, quantidade, nome, cnpj ... </header>
//	    <titpublico>...</titpublico> <acoes>...</acoes> <cotas>...</cotas> ...
//	  </fundo>
//	</arquivoposicao_4_01>
type SimpleExtractor struct {
	log zerolog.Logger
}

// NewSimpleExtractor creates a new simple schema extractor
func NewSimpleExtractor(log zerolog.Logger) *SimpleExtractor {
	return &SimpleExtractor{log: log.With().Str("extractor", string(domain.FormatSimple)).Logger()}
}

// Format implements Extractor
func (e *SimpleExtractor) Format() domain.FormatTag {
	return domain.FormatSimple
}

// Extract implements Extractor
func (e *SimpleExtractor) Extract(root *etree.Element, source string) (domain.FundStatement, []FieldGap, error) {
	container, header := locateHeader(root)
	if header == nil {
		return domain.FundStatement{}, nil, ErrNoHeader
	}

	r := newFieldReader(source, e.log)
	statement := domain.FundStatement{
		Source:        source,
		Format:        domain.FormatSimple,
		FundName:      r.text(header, "fund_name", false, "nome"),
		FundID:        r.text(header, "fund_id", false, "cnpj", "isin"),
		StatementDate: r.date(header, "statement_date", "dtposicao"),
		NAVPerShare:   r.number(header, "nav_per_share", true, "valorcota"),
		NetAssets:     r.number(header, "net_assets", true, "patliq"),
		UnitCount:     r.number(header, "unit_count", false, "quantidade"),
		Currency:      r.text(header, "currency", false, "moeda"),
	}
	if statement.Currency == "" {
		statement.Currency = domain.DefaultCurrency
	}

	for _, group := range container.ChildElements() {
		if group == header {
			continue
		}
		if pos, ok := e.position(r, group, statement.Currency); ok {
			statement.Positions = append(statement.Positions, pos)
		}
	}

	return statement, r.gaps, nil
}

// locateHeader finds the fund container and its header. The container is
// <fundo> or <carteira> under the root, the root itself, or whatever element
// holds the first <header> found anywhere in the document.
func locateHeader(root *etree.Element) (container, header *etree.Element) {
	if root == nil {
		return nil, nil
	}
	if root.Tag == "header" {
		return root, root
	}

	for _, candidate := range []*etree.Element{root.SelectElement("fundo"), root.SelectElement("carteira"), root} {
		if candidate == nil {
			continue
		}
		if h := candidate.SelectElement("header"); h != nil {
			return candidate, h
		}
	}

	if h := root.FindElement(".//header"); h != nil {
		return h.Parent(), h
	}
	return nil, nil
}

func (e *SimpleExtractor) position(r *fieldReader, group *etree.Element, fundCurrency string) (domain.Position, bool) {
	assetClass := strings.ToLower(group.Tag)
	code, hasCode := rawText(group, "codativo", "cnpjfundo", "isin", "isininstituicao", "tpconta")

	name, hasName := rawText(group, "nome", "descricao")
	if !hasName && hasCode {
		name = strings.ToUpper(assetClass) + " " + code
	}

	pos := domain.Position{
		InstrumentName:     name,
		Identifier:         r.text(group, "identifier", false, "isin", "codativo", "cnpjfundo", "isininstituicao"),
		AssetClass:         assetClass,
		ClassificationCode: r.text(group, "classification_code", false, "classificacao", "codclass", "tipoativo", "codprov"),
		Currency:           r.text(group, "currency", false, "moeda"),
		Quantity:           r.sum(group, "quantity", "qtdisponivel", "qtgarantia"),
		UnitPrice:          r.number(group, "unit_price", false, "puposicao"),
		HoldingValue:       r.sum(group, "holding_value", "valorfindisp", "valorfinemgar"),
	}
	if pos.HoldingValue == nil {
		pos.HoldingValue = r.number(group, "holding_value", false, "valor", "saldo")
	}

	if !hasPositionFields(pos) {
		return domain.Position{}, false
	}

	finishPosition(&pos, fundCurrency)

	// <provisao> and similar entries carry credeb: C for receivables, D for
	// payables. Payables reduce net assets.
	if flag, ok := rawText(group, "credeb"); ok && strings.EqualFold(flag, "D") && pos.HoldingValue != nil {
		debit := -math.Abs(*pos.HoldingValue)
		pos.HoldingValue = &debit
	}
	return pos, true
}

// hasPositionFields reports whether anything was extracted for a position
func hasPositionFields(pos domain.Position) bool {
	return pos.InstrumentName != "" ||
		pos.Identifier != "" ||
		pos.ClassificationCode != "" ||
		pos.Quantity != nil ||
		pos.UnitPrice != nil ||
		pos.HoldingValue != nil
}

// finishPosition applies the defaults shared by every extractor
func finishPosition(pos *domain.Position, fundCurrency string) {
	if pos.HoldingValue == nil {
		pos.HoldingValue = product(pos.Quantity, pos.UnitPrice)
	}
	if pos.Currency == "" {
		pos.Currency = fundCurrency
	}
	if pos.InstrumentName == "" {
		switch {
		case pos.Identifier != "":
			pos.InstrumentName = pos.Identifier
		case pos.AssetClass != "":
			pos.InstrumentName = strings.ToUpper(pos.AssetClass)
		}
	}
}
