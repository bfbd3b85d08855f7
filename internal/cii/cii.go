// Package cii reads and writes UN/CEFACT Cross-Industry Invoice XML.
//
// The writer renders a totaled document; the reader parses the document
// core (parties, lines, allowances, charges) and leaves the Totals block
// empty so the calculator re-derives it. Totals read from the wire are
// never trusted.
package cii

import (
	"bytes"
	"time"

	"github.com/shopspring/decimal"
)

// CII namespaces (D16B onwards)
const (
	NsRSM = "urn:un:unece:uncefact:data:standard:CrossIndustryInvoice:100"
	NsRAM = "urn:un:unece:uncefact:data:standard:ReusableAggregateBusinessInformationEntity:100"
	NsUDT = "urn:un:unece:uncefact:data:standard:UnqualifiedDataType:100"
	NsQDT = "urn:un:unece:uncefact:data:standard:QualifiedDataType:100"
)

// GuidelineEN16931 is the specification identifier written into the
// document context (BT-24)
const GuidelineEN16931 = "urn:cen.eu:en16931:2017"

// Tax registration scheme ids on ram:SpecifiedTaxRegistration
const (
	schemeVAT      = "VA"
	schemeFiscal   = "FC"
	dateFormatCode = "102" // CCYYMMDD
)

// CanParse reports whether the content looks like a CII invoice
func CanParse(content []byte) bool {
	return bytes.Contains(content, []byte("CrossIndustryInvoice"))
}

func formatDate(t time.Time) string {
	return t.Format("20060102")
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("20060102", s)
}

func formatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func formatRate(d decimal.Decimal) string {
	return d.Round(2).String()
}
