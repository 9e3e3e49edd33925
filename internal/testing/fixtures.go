// Package testing provides XML statement fixtures shared by package tests.
package testing

import (
	"fmt"
	"strings"
	"time"

	"github.com/aristath/fundrisk/internal/domain"
)

// PositionFixture describes one holding row rendered into a statement.
// Empty strings are omitted from the rendered XML.
type PositionFixture struct {
	Group     string // simple schema asset group, e.g. "titpublico"
	Name      string
	Code      string
	ISIN      string
	Class     string
	Quantity  string
	UnitPrice string
	Value     string
}

// NewPositionFixtures returns a mixed book: pre-fixed government bonds,
// equities, a dollar fund, a real-estate fund and a credit fund.
func NewPositionFixtures() []PositionFixture {
	return []PositionFixture{
		{Group: "titpublico", Name: "LTN 2026 PREFIXADO", Code: "LTN", ISIN: "BRSTNCLTN7W3", Quantity: "1000", UnitPrice: "400", Value: "400000"},
		{Group: "acoes", Name: "ACOES IBOVESPA PETR4", Code: "PETR4", ISIN: "BRPETRACNPR6", Quantity: "5000", UnitPrice: "40", Value: "200000"},
		{Group: "cotas", Name: "FUNDO CAMBIAL DOLAR", Code: "11111111000111", Quantity: "1000", UnitPrice: "100", Value: "100000"},
		{Group: "cotas", Name: "FUNDO IMOBILIARIO XPTO FII", Code: "22222222000122", Class: "37", Quantity: "1500", UnitPrice: "100", Value: "150000"},
		{Group: "cotas", Name: "FIDC RECEBIVEIS SENIOR", Code: "33333333000133", Quantity: "500", UnitPrice: "100", Value: "50000"},
		{Group: "caixa", Name: "CAIXA", Value: "100000"},
	}
}

// SimpleStatementXML renders an ANBIMA arquivoposicao_4_01 document
func SimpleStatementXML(date time.Time, nav float64, positions ...PositionFixture) []byte {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString("<arquivoposicao_4_01><fundo><header>")
	b.WriteString("<isin>BRXPTOCTF000</isin><cnpj>12345678000199</cnpj><nome>FUNDO TESTE MULTIMERCADO</nome>")
	fmt.Fprintf(&b, "<dtposicao>%s</dtposicao>", date.Format("20060102"))
	fmt.Fprintf(&b, "<valorcota>%s</valorcota>", formatFloat(nav))
	b.WriteString("<quantidade>1000000</quantidade><patliq>1000000.00</patliq>")
	b.WriteString("</header>")

	for _, p := range positions {
		group := p.Group
		if group == "" {
			group = "outros"
		}
		fmt.Fprintf(&b, "<%s>", group)
		writeElem(&b, "nome", p.Name)
		writeElem(&b, "isin", p.ISIN)
		writeElem(&b, "codativo", p.Code)
		writeElem(&b, "classificacao", p.Class)
		writeElem(&b, "qtdisponivel", p.Quantity)
		writeElem(&b, "puposicao", p.UnitPrice)
		writeElem(&b, "valorfindisp", p.Value)
		fmt.Fprintf(&b, "</%s>", group)
	}

	b.WriteString("</fundo></arquivoposicao_4_01>")
	return []byte(b.String())
}

// ISO20022StatementXML renders a semt.003 securities balance report with a
// NAVL price plus a decoy price type, and one sub-account per position.
func ISO20022StatementXML(date time.Time, nav float64, positions ...PositionFixture) []byte {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<Document xmlns="urn:iso:std:iso:20022:tech:xsd:semt.003.001.04"><SctiesBalAcctgRpt>`)
	fmt.Fprintf(&b, "<StmtGnlDtls><StmtDtTm><Dt>%s</Dt></StmtDtTm></StmtGnlDtls>", date.Format("2006-01-02"))
	b.WriteString("<AcctOwnr><Id><PrtryId><Id>12345678000199</Id></PrtryId></Id></AcctOwnr>")
	b.WriteString("<BalForAcct>")
	b.WriteString("<FinInstrmId><ISIN>BRXPTOCTF000</ISIN><Desc>FUNDO TESTE ISO</Desc></FinInstrmId>")
	b.WriteString(`<PricDtls><Tp><Cd>MRKT</Cd></Tp><Val><Amt Ccy="BRL">9999.99</Amt></Val></PricDtls>`)
	fmt.Fprintf(&b, `<PricDtls><Tp><Cd>NAVL</Cd></Tp><Val><Amt Ccy="BRL">%s</Amt></Val></PricDtls>`, formatFloat(nav))
	b.WriteString(`<TtlValOfFnds><Amt Ccy="BRL">1000000.00</Amt></TtlValOfFnds>`)
	b.WriteString("<UnitsNb>1000000</UnitsNb>")
	b.WriteString("</BalForAcct>")

	for _, p := range positions {
		b.WriteString("<BalForSubAcct><FinInstrmId>")
		writeElem(&b, "ISIN", p.ISIN)
		writeElem(&b, "Desc", p.Name)
		b.WriteString("</FinInstrmId>")
		if p.Class != "" {
			fmt.Fprintf(&b, "<ClssfctnTp><ClssfctnFinInstrm>%s</ClssfctnFinInstrm></ClssfctnTp>", p.Class)
		}
		if p.Quantity != "" {
			fmt.Fprintf(&b, "<AggtBal><Qty><Qty><Unit>%s</Unit></Qty></Qty></AggtBal>", p.Quantity)
		}
		if p.UnitPrice != "" {
			fmt.Fprintf(&b, `<PricDtls><Tp><Cd>MRKT</Cd></Tp><Val><Amt Ccy="BRL">%s</Amt></Val></PricDtls>`, p.UnitPrice)
		}
		if p.Value != "" {
			fmt.Fprintf(&b, `<AcctBaseCcyAmts><HldgVal><Amt Ccy="BRL">%s</Amt></HldgVal></AcctBaseCcyAmts>`, p.Value)
		}
		b.WriteString("</BalForSubAcct>")
	}

	b.WriteString("</SctiesBalAcctgRpt></Document>")
	return []byte(b.String())
}

// NAVSeries renders one simple-schema statement per NAV, dated on
// consecutive weekdays starting at start. The last statement carries the
// position book.
func NAVSeries(start time.Time, navs ...float64) []domain.Document {
	docs := make([]domain.Document, 0, len(navs))
	date := start
	for i, nav := range navs {
		for date.Weekday() == time.Saturday || date.Weekday() == time.Sunday {
			date = date.AddDate(0, 0, 1)
		}
		var positions []PositionFixture
		if i == len(navs)-1 {
			positions = NewPositionFixtures()
		}
		docs = append(docs, domain.Document{
			Name: fmt.Sprintf("posicao_%s.xml", date.Format("20060102")),
			Data: SimpleStatementXML(date, nav, positions...),
		})
		date = date.AddDate(0, 0, 1)
	}
	return docs
}

// FlatNAVs returns n copies of nav
func FlatNAVs(n int, nav float64) []float64 {
	navs := make([]float64, n)
	for i := range navs {
		navs[i] = nav
	}
	return navs
}

func writeElem(b *strings.Builder, tag, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "<%s>%s</%s>", tag, value, tag)
}

func formatFloat(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.8f", v), "0"), ".")
}
