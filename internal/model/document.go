// Package model defines the in-memory invoice document aggregate.
//
// A Document is produced by an external parsing/schema layer (or built
// directly by the caller), handed to the totals calculator to fill in the
// Totals block, and then to the rule engine for a compliance verdict. The
// core never retains references to a Document across calls.
package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rezonia/einvoice/internal/codes"
)

// Document is the aggregate root of one invoice
type Document struct {
	ID        string                 `json:"id"`
	TypeCode  codes.DocumentTypeCode `json:"type_code"`
	IssueDate time.Time              `json:"issue_date"`
	Currency  string                 `json:"currency"`
	Notes     []string               `json:"notes,omitempty"`

	Seller            Party     `json:"seller"`
	Buyer             Party     `json:"buyer"`
	TaxRepresentative *Party    `json:"tax_representative,omitempty"`
	Delivery          *Delivery `json:"delivery,omitempty"`
	Payment           *Payment  `json:"payment,omitempty"`

	Lines []Line `json:"lines"`

	// Document level allowances and charges, distinguished by the
	// charge indicator on each entry
	AllowancesCharges []AllowanceCharge `json:"allowances_charges,omitempty"`

	// Totals is nil until the calculator has run
	Totals *Totals `json:"totals,omitempty"`
}

// DocumentAllowances returns the document level allowances in declaration order
func (d *Document) DocumentAllowances() []AllowanceCharge {
	return d.filterAllowancesCharges(false)
}

// DocumentCharges returns the document level charges in declaration order
func (d *Document) DocumentCharges() []AllowanceCharge {
	return d.filterAllowancesCharges(true)
}

func (d *Document) filterAllowancesCharges(charge bool) []AllowanceCharge {
	var out []AllowanceCharge
	for _, ac := range d.AllowancesCharges {
		if ac.ChargeIndicator == charge {
			out = append(out, ac)
		}
	}
	return out
}

// Party identifies a seller, buyer or tax representative
type Party struct {
	ID             string  `json:"id,omitempty"`
	GlobalID       string  `json:"global_id,omitempty"`
	GlobalIDScheme string  `json:"global_id_scheme,omitempty"`
	Name           string  `json:"name"`
	Address        Address `json:"address"`

	// VATID is the VAT identifier (BT-31/BT-48/BT-63),
	// TaxID the local tax registration identifier (BT-32)
	VATID string `json:"vat_id,omitempty"`
	TaxID string `json:"tax_id,omitempty"`
}

// HasTaxIdentifier reports whether the party carries any tax identification
func (p *Party) HasTaxIdentifier() bool {
	return p.VATID != "" || p.TaxID != ""
}

// Address is a postal address. Only the country code is mandatory.
type Address struct {
	Line1       string `json:"line1,omitempty"`
	Line2       string `json:"line2,omitempty"`
	PostCode    string `json:"post_code,omitempty"`
	City        string `json:"city,omitempty"`
	Subdivision string `json:"subdivision,omitempty"`
	Country     string `json:"country"`
}

// Delivery carries the ship-to party and delivery date
type Delivery struct {
	Name    string     `json:"name,omitempty"`
	Address *Address   `json:"address,omitempty"`
	Date    *time.Time `json:"date,omitempty"`
}

// Payment carries payment instructions and the amounts that feed the
// open amount: prepaid reduces it, rounding adjusts it
type Payment struct {
	MeansCode      string           `json:"means_code,omitempty"`
	Terms          string           `json:"terms,omitempty"`
	DueDate        *time.Time       `json:"due_date,omitempty"`
	IBAN           string           `json:"iban,omitempty"`
	BIC            string           `json:"bic,omitempty"`
	PrepaidAmount  *decimal.Decimal `json:"prepaid_amount,omitempty"`
	RoundingAmount *decimal.Decimal `json:"rounding_amount,omitempty"`
}

// TaxAssignment describes how one item is taxed
type TaxAssignment struct {
	TypeCode    string           `json:"type_code"`
	Category    codes.TaxCategory `json:"category"`
	RatePercent *decimal.Decimal `json:"rate_percent,omitempty"`
}

// Rate returns the applicable rate, zero when undefined
func (t *TaxAssignment) Rate() decimal.Decimal {
	if t.RatePercent == nil {
		return decimal.Zero
	}
	return *t.RatePercent
}

// Price is the unit pricing of a line. At least one of gross and net
// unit price must be present; when only the gross price is given the
// calculator derives the net price by netting the price level allowances.
type Price struct {
	GrossUnitPrice *decimal.Decimal `json:"gross_unit_price,omitempty"`
	NetUnitPrice   *decimal.Decimal `json:"net_unit_price,omitempty"`
	BasisQuantity  *decimal.Decimal `json:"basis_quantity,omitempty"`

	// Price level adjustments. Only allowances take part in gross to
	// net conversion; charges at this level are carried but not netted.
	AllowancesCharges []AllowanceCharge `json:"allowances_charges,omitempty"`
}

// Line is one invoice line
type Line struct {
	ID          string `json:"id"`
	Note        string `json:"note,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	Price    Price           `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
	Unit     string          `json:"unit,omitempty"`

	Tax               TaxAssignment     `json:"tax"`
	AllowancesCharges []AllowanceCharge `json:"allowances_charges,omitempty"`

	// NetTotal is computed; once the calculator has run it is always
	// derivable from price, quantity and line adjustments
	NetTotal decimal.Decimal `json:"net_total"`
}

// AllowanceCharge is a monetary adjustment at price, line or document
// level. An allowance subtracts, a charge adds.
type AllowanceCharge struct {
	ChargeIndicator bool             `json:"charge_indicator"`
	ActualAmount    decimal.Decimal  `json:"actual_amount"`
	BasisAmount     *decimal.Decimal `json:"basis_amount,omitempty"`
	Percent         *decimal.Decimal `json:"percent,omitempty"`
	ReasonCode      string           `json:"reason_code,omitempty"`
	Reason          string           `json:"reason,omitempty"`
	Tax             TaxAssignment    `json:"tax"`
}

// TaxAmount is a currency tagged tax total
type TaxAmount struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// TaxBreakdownEntry is one aggregated row of the tax breakdown, keyed by
// category or by (category, rate) for rate sensitive categories. Entries
// are created by the aggregation pass and never mutated afterwards.
type TaxBreakdownEntry struct {
	BasisAmount      decimal.Decimal  `json:"basis_amount"`
	CalculatedAmount decimal.Decimal  `json:"calculated_amount"`
	Category         codes.TaxCategory `json:"category"`
	RatePercent      *decimal.Decimal `json:"rate_percent,omitempty"`

	ExemptionReason     string                    `json:"exemption_reason,omitempty"`
	ExemptionReasonCode codes.ExemptionReasonCode `json:"exemption_reason_code,omitempty"`

	DueDateTypeCode codes.DueDateTypeCode `json:"due_date_type_code,omitempty"`
	TaxPointDate    *time.Time            `json:"tax_point_date,omitempty"`
}

// Rate returns the entry rate, zero when undefined
func (e *TaxBreakdownEntry) Rate() decimal.Decimal {
	if e.RatePercent == nil {
		return decimal.Zero
	}
	return *e.RatePercent
}

// Totals is the computed monetary summary of a document
type Totals struct {
	// LineTotal is the sum of line net amounts before document level
	// allowances and charges
	LineTotal      decimal.Decimal `json:"line_total"`
	AllowanceTotal decimal.Decimal `json:"allowance_total"`
	ChargeTotal    decimal.Decimal `json:"charge_total"`
	NetTotal       decimal.Decimal `json:"net_total"`

	TaxBreakdown []*TaxBreakdownEntry `json:"tax_breakdown"`

	// TaxTotals holds the tax total in the invoice currency and, when a
	// tax currency restatement was requested, a second entry in that
	// currency. Line amounts are never restated.
	TaxTotals   []TaxAmount `json:"tax_totals"`
	TaxCurrency string      `json:"tax_currency,omitempty"`

	GrossTotal    decimal.Decimal  `json:"gross_total"`
	Prepaid       *decimal.Decimal `json:"prepaid,omitempty"`
	Rounding      *decimal.Decimal `json:"rounding,omitempty"`
	PayableAmount decimal.Decimal  `json:"payable_amount"`
}

// TaxTotal returns the tax total in the invoice currency
func (t *Totals) TaxTotal() decimal.Decimal {
	if len(t.TaxTotals) == 0 {
		return decimal.Zero
	}
	return t.TaxTotals[0].Amount
}
