// Package codes holds the closed code lists used across the invoice model:
// VAT category codes (UNTDID 5305 subset), exemption reason codes (CEF VATEX),
// document type codes (UNTDID 1001 subset) and due date type codes (UNTDID 2475).
package codes

// TaxCategory classifies how an amount is taxed (UNTDID 5305 subset)
type TaxCategory string

const (
	// CategoryStandardRate is "Standard rated" (S)
	CategoryStandardRate TaxCategory = "S"
	// CategoryZeroRated is "Zero rated goods" (Z)
	CategoryZeroRated TaxCategory = "Z"
	// CategoryExempt is "Exempt from tax" (E)
	CategoryExempt TaxCategory = "E"
	// CategoryReverseCharge is "VAT Reverse charge" (AE)
	CategoryReverseCharge TaxCategory = "AE"
	// CategoryIntraCommunity is "VAT exempt for EEA intra-community supply" (K)
	CategoryIntraCommunity TaxCategory = "K"
	// CategoryExport is "Free export item, tax not charged" (G)
	CategoryExport TaxCategory = "G"
	// CategoryNotSubject is "Services outside scope of tax" (O)
	CategoryNotSubject TaxCategory = "O"
	// CategoryIGIC is "Canary Islands general indirect tax" (L)
	CategoryIGIC TaxCategory = "L"
	// CategoryIPSI is "Tax for production, services and importation in Ceuta and Melilla" (M)
	CategoryIPSI TaxCategory = "M"
)

// TaxTypeVAT is the only tax scheme the model carries (UNTDID 5153)
const TaxTypeVAT = "VAT"

var categoryLabels = map[TaxCategory]string{
	CategoryStandardRate:   "Standard rated",
	CategoryZeroRated:      "Zero rated",
	CategoryExempt:         "Exempt from VAT",
	CategoryReverseCharge:  "VAT reverse charge",
	CategoryIntraCommunity: "Intra-community supply",
	CategoryExport:         "Export outside the EU",
	CategoryNotSubject:     "Not subject to VAT",
	CategoryIGIC:           "IGIC",
	CategoryIPSI:           "IPSI",
}

// Label returns the human description used in rule texts
func (c TaxCategory) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// Valid reports whether the category is a known code
func (c TaxCategory) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// ZeroRated reports whether the category is inherently zero rated.
// These categories always carry rate 0 in a totaled document no matter
// what rate the caller supplied.
func (c TaxCategory) ZeroRated() bool {
	switch c {
	case CategoryZeroRated, CategoryExempt, CategoryReverseCharge,
		CategoryIntraCommunity, CategoryExport:
		return true
	}
	return false
}

// RateSensitive reports whether breakdown entries for the category are
// keyed by (category, rate) rather than category alone. Only these
// categories may legitimately carry several simultaneous rates in one
// document.
func (c TaxCategory) RateSensitive() bool {
	switch c {
	case CategoryStandardRate, CategoryIGIC, CategoryIPSI:
		return true
	}
	return false
}

// ExemptionReasonCode is a CEF VATEX code carried on a tax breakdown entry
type ExemptionReasonCode string

const (
	ExemptionReverseCharge  ExemptionReasonCode = "VATEX-EU-AE"
	ExemptionIntraCommunity ExemptionReasonCode = "VATEX-EU-IC"
	ExemptionExport         ExemptionReasonCode = "VATEX-EU-G"
	ExemptionNotSubject     ExemptionReasonCode = "VATEX-EU-O"
)

// FixedExemption holds the legally fixed exemption annotation for a category
type FixedExemption struct {
	Code   ExemptionReasonCode
	Reason string
}

var fixedExemptions = map[TaxCategory]FixedExemption{
	CategoryReverseCharge:  {ExemptionReverseCharge, "Reverse charge"},
	CategoryIntraCommunity: {ExemptionIntraCommunity, "Intra-community supply"},
	CategoryExport:         {ExemptionExport, "Export outside the EU"},
	CategoryNotSubject:     {ExemptionNotSubject, "Not subject to VAT"},
}

// FixedExemptionFor returns the fixed exemption annotation for categories
// whose exemption wording is set by law. Category E is not in this table:
// its reason text comes from the caller.
func FixedExemptionFor(c TaxCategory) (FixedExemption, bool) {
	fe, ok := fixedExemptions[c]
	return fe, ok
}

// DocumentTypeCode identifies the document kind (UNTDID 1001 subset)
type DocumentTypeCode string

const (
	DocTypeInvoice          DocumentTypeCode = "380"
	DocTypeCreditNote       DocumentTypeCode = "381"
	DocTypeCorrectedInvoice DocumentTypeCode = "384"
	DocTypeSelfBilled       DocumentTypeCode = "389"
)

// DueDateTypeCode annotates when VAT becomes due (UNTDID 2475 subset)
type DueDateTypeCode string

const (
	DueDateInvoiceDate  DueDateTypeCode = "5"
	DueDateDeliveryDate DueDateTypeCode = "29"
	DueDatePaymentDate  DueDateTypeCode = "72"
)
