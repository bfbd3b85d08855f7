// Package einvoice provides a public API for calculating and validating
// EN 16931 electronic invoices.
//
// The package exposes the semantic invoice model, the totals calculator
// and the business rule engine, plus readers and writers for the CII
// (UN/CEFACT Cross-Industry Invoice) syntax and the Factur-X PDF
// container.
//
// Example usage:
//
//	proc := einvoice.NewProcessor()
//	result, err := proc.ProcessXML(xmlData)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Document.Totals.PayableAmount)
package einvoice

import (
	"github.com/rezonia/einvoice/internal/codes"
	"github.com/rezonia/einvoice/internal/model"
	"github.com/rezonia/einvoice/internal/rules"
	"github.com/rezonia/einvoice/internal/totals"
)

// Re-export core types for the public API
type (
	Document          = model.Document
	Line              = model.Line
	Price             = model.Price
	Party             = model.Party
	Address           = model.Address
	Delivery          = model.Delivery
	Payment           = model.Payment
	AllowanceCharge   = model.AllowanceCharge
	TaxAssignment     = model.TaxAssignment
	TaxBreakdownEntry = model.TaxBreakdownEntry
	TaxAmount         = model.TaxAmount
	Totals            = model.Totals
	BreakdownKey      = model.BreakdownKey

	TaxCategory = codes.TaxCategory

	Options   = totals.Options
	Result    = rules.Result
	Violation = rules.Violation
)

// Re-export tax category codes (UNTDID 5305 subset)
const (
	CategoryStandardRate   = codes.CategoryStandardRate
	CategoryZeroRated      = codes.CategoryZeroRated
	CategoryExempt         = codes.CategoryExempt
	CategoryReverseCharge  = codes.CategoryReverseCharge
	CategoryIntraCommunity = codes.CategoryIntraCommunity
	CategoryExport         = codes.CategoryExport
	CategoryNotSubject     = codes.CategoryNotSubject
	CategoryIGIC           = codes.CategoryIGIC
	CategoryIPSI           = codes.CategoryIPSI
)

// Re-export document type codes (UNTDID 1001 subset)
const (
	DocTypeInvoice          = codes.DocTypeInvoice
	DocTypeCreditNote       = codes.DocTypeCreditNote
	DocTypeCorrectedInvoice = codes.DocTypeCorrectedInvoice
	DocTypeSelfBilled       = codes.DocTypeSelfBilled
)

// TaxTypeVAT is the tax scheme code carried on every tax assignment
const TaxTypeVAT = codes.TaxTypeVAT

// Re-export error types
type (
	PreconditionError = model.PreconditionError
	ParseError        = model.ParseError
)

// Calculate computes line totals, the tax breakdown and document totals
// in place. See totals.Options for exemption reasons and tax currency
// restatement.
func Calculate(doc *Document, opts Options) error {
	return totals.Calculate(doc, opts)
}

// Validate runs the full business rule set against a calculated
// document and collects every violation.
func Validate(doc *Document) Result {
	return rules.Validate(doc)
}
