package statements

import (
	"strings"

	"github.com/beevik/etree"
	"github.com/rs/zerolog"

	"github.com/aristath/fundrisk/internal/domain"
)

// navPriceType is the PricDtls type code for the latest net asset value
const navPriceType = "NAVL"

// ISO20022Extractor reads semt.003 securities balance reports. Fund-level
// values come from the account balance (BalForAcct) and positions from the
// sub-account balances (BalForSubAcct).
type ISO20022Extractor struct {
	log zerolog.Logger
}

// NewISO20022Extractor creates a new ISO 20022 extractor
func NewISO20022Extractor(log zerolog.Logger) *ISO20022Extractor {
	return &ISO20022Extractor{log: log.With().Str("extractor", string(domain.FormatISO20022)).Logger()}
}

// Format implements Extractor
func (e *ISO20022Extractor) Format() domain.FormatTag {
	return domain.FormatISO20022
}

// Extract implements Extractor
func (e *ISO20022Extractor) Extract(root *etree.Element, source string) (domain.FundStatement, []FieldGap, error) {
	account := fundAccount(root)
	if account == nil {
		return domain.FundStatement{}, nil, ErrNoHeader
	}

	r := newFieldReader(source, e.log)
	navAmount := navAmountElement(account)
	if navAmount == nil {
		r.gap("nav_per_share", GapMissing, "")
	}

	statement := domain.FundStatement{
		Source:        source,
		Format:        domain.FormatISO20022,
		FundName:      r.text(account, "fund_name", false, "FinInstrmId/Desc", "FinInstrmId/Nm", "../AcctOwnr/Nm"),
		FundID:        r.text(root, "fund_id", false, ".//AcctOwnr/Id/PrtryId/Id", ".//SfkpgAcct/Id", ".//BalForAcct/FinInstrmId/OthrId/Id"),
		StatementDate: r.date(root, "statement_date", ".//StmtGnlDtls/StmtDtTm/Dt", ".//StmtGnlDtls/StmtDtTm/DtTm", ".//StmtDtTm/Dt"),
		NetAssets:     r.number(account, "net_assets", true, "TtlValOfFnds/Amt", "AcctBaseCcyAmts/HldgVal/Amt"),
		UnitCount:     r.number(account, "unit_count", false, "UnitsNb/Unit", "UnitsNb", "AggtBal/Qty/Qty/Unit"),
	}
	if navAmount != nil {
		statement.NAVPerShare = r.number(navAmount, "nav_per_share", true, ".")
		statement.Currency = strings.TrimSpace(navAmount.SelectAttrValue("Ccy", ""))
	}
	if statement.Currency == "" {
		statement.Currency = domain.DefaultCurrency
	}

	for _, sub := range root.FindElements(".//BalForSubAcct") {
		if pos, ok := e.position(r, sub, statement.Currency); ok {
			statement.Positions = append(statement.Positions, pos)
		}
	}

	return statement, r.gaps, nil
}

// fundAccount returns the first BalForAcct that is not nested in a sub-account
func fundAccount(root *etree.Element) *etree.Element {
	if root == nil {
		return nil
	}
	for _, acct := range root.FindElements(".//BalForAcct") {
		if !insideSubAccount(acct) {
			return acct
		}
	}
	return nil
}

func insideSubAccount(el *etree.Element) bool {
	for p := el.Parent(); p != nil; p = p.Parent() {
		if p.Tag == "BalForSubAcct" {
			return true
		}
	}
	return false
}

// navAmountElement picks the price detail typed NAVL among the account's
// price entries; other price types at the same path are ignored.
func navAmountElement(account *etree.Element) *etree.Element {
	for _, price := range account.SelectElements("PricDtls") {
		code, ok := rawText(price, "Tp/Cd")
		if !ok || !strings.EqualFold(code, navPriceType) {
			continue
		}
		if amt := find(price, "Val/Amt", "Val/Rate"); amt != nil {
			return amt
		}
	}
	return nil
}

func (e *ISO20022Extractor) position(r *fieldReader, sub *etree.Element, fundCurrency string) (domain.Position, bool) {
	pos := domain.Position{
		InstrumentName:     r.text(sub, "instrument_name", false, ".//FinInstrmId/Desc", ".//FinInstrmId/Nm"),
		Identifier:         r.text(sub, "identifier", false, ".//FinInstrmId/ISIN", ".//FinInstrmId/OthrId/Id"),
		ClassificationCode: r.text(sub, "classification_code", false, ".//ClssfctnTp/ClssfctnFinInstrm", ".//ClssfctnTp/AltrnClssfctn/Id"),
		Quantity:           r.number(sub, "quantity", false, ".//AggtBal/Qty/Qty/Unit", ".//AggtBal/Qty/Unit", ".//UnitsNb"),
		UnitPrice:          r.number(sub, "unit_price", false, ".//PricDtls/Val/Amt"),
	}

	if holding := find(sub, ".//AcctBaseCcyAmts/HldgVal/Amt", ".//HldgVal/Amt"); holding != nil {
		pos.HoldingValue = r.number(holding, "holding_value", false, ".")
		pos.Currency = strings.TrimSpace(holding.SelectAttrValue("Ccy", ""))
	}
	if pos.Currency == "" {
		pos.Currency = r.text(sub, "currency", false, ".//FinInstrmAttrbts/DnmtnCcy")
	}

	if !hasPositionFields(pos) {
		return domain.Position{}, false
	}

	finishPosition(&pos, fundCurrency)
	return pos, true
}
