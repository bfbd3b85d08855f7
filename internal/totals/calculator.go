// Package totals computes the monetary totals of an invoice document:
// line net amounts, the tax breakdown and the document level aggregates.
//
// Calculate is a pure transformation over the document it is given. It
// raises precondition errors for malformed numeric input (a missing unit
// price, a zero basis quantity) and never for business rule violations;
// those are the rule engine's concern.
package totals

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rezonia/einvoice/internal/codes"
	dec "github.com/rezonia/einvoice/internal/decimal"
	"github.com/rezonia/einvoice/internal/model"
)

// Options carries the caller supplied tables and the optional tax
// currency restatement.
type Options struct {
	// ExemptionReasons maps a category to its free text exemption
	// reason. Only consulted for categories whose wording is not
	// legally fixed, today only category E. A nil map with category E
	// present in the document is a precondition failure even when the
	// map would not have contained an E entry anyway.
	ExemptionReasons map[codes.TaxCategory]string

	// DueDateTypeCodes annotates breakdown entries of rate sensitive
	// categories, keyed by (category, rate)
	DueDateTypeCodes map[model.BreakdownKey]codes.DueDateTypeCode

	// TaxCurrency plus ExchangeRate restate the aggregate tax total in
	// a second currency. Line amounts are never restated.
	TaxCurrency  string
	ExchangeRate *decimal.Decimal
}

// Calculate fills in the computed fields of doc: line net totals,
// canonicalized tax rates, the tax breakdown and the Totals block.
// Applying it twice yields identical totals.
func Calculate(doc *model.Document, opts Options) error {
	if err := computeLines(doc); err != nil {
		return err
	}

	canonicalizeRates(doc)

	breakdown, err := aggregate(doc, opts)
	if err != nil {
		return err
	}

	for _, e := range breakdown {
		if e.RatePercent != nil && !e.RatePercent.IsZero() {
			e.CalculatedAmount = dec.Percent(e.BasisAmount, *e.RatePercent)
		} else {
			e.CalculatedAmount = dec.Zero
		}
	}

	doc.Totals = buildTotals(doc, breakdown, opts)
	return nil
}

// computeLines derives net unit prices and line net totals
func computeLines(doc *model.Document) error {
	for i := range doc.Lines {
		line := &doc.Lines[i]

		// Gross to net conversion nets price level allowances only;
		// price level charges are deliberately left out of the unit
		// price. Preserved as observed behavior.
		if line.Price.GrossUnitPrice != nil {
			net := *line.Price.GrossUnitPrice
			for _, ac := range line.Price.AllowancesCharges {
				if !ac.ChargeIndicator {
					net = net.Sub(ac.ActualAmount)
				}
			}
			line.Price.NetUnitPrice = &net
		}

		if line.Price.NetUnitPrice == nil {
			return model.NewPreconditionError(
				fmt.Sprintf("lines[%s].price", line.ID),
				"no net or gross unit price supplied", nil)
		}

		basisQty := decimal.NewFromInt(1)
		if line.Price.BasisQuantity != nil {
			if line.Price.BasisQuantity.IsZero() {
				return model.NewPreconditionError(
					fmt.Sprintf("lines[%s].price.basis_quantity", line.ID),
					"basis quantity must not be zero", nil)
			}
			basisQty = *line.Price.BasisQuantity
		}

		amount := line.Price.NetUnitPrice.Mul(line.Quantity).Div(basisQty)
		for _, ac := range line.AllowancesCharges {
			if ac.ChargeIndicator {
				amount = amount.Add(ac.ActualAmount)
			} else {
				amount = amount.Sub(ac.ActualAmount)
			}
		}
		line.NetTotal = dec.Round2(amount)
	}
	return nil
}

// canonicalizeRates forces rate 0 onto every tax assignment whose
// category is inherently zero rated, regardless of the supplied rate
func canonicalizeRates(doc *model.Document) {
	for i := range doc.Lines {
		canonicalize(&doc.Lines[i].Tax)
	}
	for i := range doc.AllowancesCharges {
		canonicalize(&doc.AllowancesCharges[i].Tax)
	}
}

func canonicalize(t *model.TaxAssignment) {
	if t.Category.ZeroRated() {
		zero := dec.Zero
		t.RatePercent = &zero
	}
}

// aggregate builds the tax breakdown: lines first, then document
// allowances, then document charges
func aggregate(doc *model.Document, opts Options) ([]*model.TaxBreakdownEntry, error) {
	var order []*model.TaxBreakdownEntry
	entries := make(map[model.BreakdownKey]*model.TaxBreakdownEntry)

	locate := func(tax *model.TaxAssignment) (*model.TaxBreakdownEntry, error) {
		key := tax.Key()
		if e, ok := entries[key]; ok {
			return e, nil
		}
		e, err := newEntry(tax, key, opts)
		if err != nil {
			return nil, err
		}
		entries[key] = e
		order = append(order, e)
		return e, nil
	}

	for i := range doc.Lines {
		line := &doc.Lines[i]
		e, err := locate(&line.Tax)
		if err != nil {
			return nil, err
		}
		e.BasisAmount = e.BasisAmount.Add(line.NetTotal)
	}

	for _, ac := range doc.DocumentAllowances() {
		e, err := locate(&ac.Tax)
		if err != nil {
			return nil, err
		}
		e.BasisAmount = e.BasisAmount.Sub(ac.ActualAmount)
	}

	for _, ac := range doc.DocumentCharges() {
		e, err := locate(&ac.Tax)
		if err != nil {
			return nil, err
		}
		e.BasisAmount = e.BasisAmount.Add(ac.ActualAmount)
	}

	return order, nil
}

func newEntry(tax *model.TaxAssignment, key model.BreakdownKey, opts Options) (*model.TaxBreakdownEntry, error) {
	e := &model.TaxBreakdownEntry{
		BasisAmount: dec.Zero,
		Category:    tax.Category,
		RatePercent: tax.RatePercent,
	}

	if fe, ok := codes.FixedExemptionFor(tax.Category); ok {
		e.ExemptionReasonCode = fe.Code
		e.ExemptionReason = fe.Reason
	} else if tax.Category == codes.CategoryExempt {
		if opts.ExemptionReasons == nil {
			return nil, model.NewPreconditionError("exemption_reasons",
				"category E present but no exemption reason table supplied", nil)
		}
		e.ExemptionReason = opts.ExemptionReasons[tax.Category]
	}

	if tax.Category.RateSensitive() {
		if code, ok := opts.DueDateTypeCodes[key]; ok {
			e.DueDateTypeCode = code
		}
	}

	return e, nil
}

// buildTotals computes the document level aggregates, rounding at each
// formula boundary
func buildTotals(doc *model.Document, breakdown []*model.TaxBreakdownEntry, opts Options) *model.Totals {
	lineSum := dec.Zero
	for i := range doc.Lines {
		lineSum = lineSum.Add(doc.Lines[i].NetTotal)
	}
	lineSum = dec.Round2(lineSum)

	allowanceTotal := dec.Zero
	for _, ac := range doc.DocumentAllowances() {
		allowanceTotal = allowanceTotal.Add(ac.ActualAmount)
	}
	chargeTotal := dec.Zero
	for _, ac := range doc.DocumentCharges() {
		chargeTotal = chargeTotal.Add(ac.ActualAmount)
	}

	netTotal := dec.Round2(lineSum.Sub(allowanceTotal).Add(chargeTotal))

	taxTotal := dec.Zero
	for _, e := range breakdown {
		taxTotal = taxTotal.Add(e.CalculatedAmount)
	}
	taxTotal = dec.Round2(taxTotal)

	t := &model.Totals{
		LineTotal:      lineSum,
		AllowanceTotal: allowanceTotal,
		ChargeTotal:    chargeTotal,
		NetTotal:       netTotal,
		TaxBreakdown:   breakdown,
		TaxTotals: []model.TaxAmount{
			{Amount: taxTotal, Currency: doc.Currency},
		},
	}

	if opts.TaxCurrency != "" && opts.TaxCurrency != doc.Currency && opts.ExchangeRate != nil {
		t.TaxCurrency = opts.TaxCurrency
		t.TaxTotals = append(t.TaxTotals, model.TaxAmount{
			Amount:   dec.Round2(taxTotal.Mul(*opts.ExchangeRate)),
			Currency: opts.TaxCurrency,
		})
	}

	t.GrossTotal = dec.Round2(netTotal.Add(taxTotal))

	prepaid := dec.Zero
	rounding := dec.Zero
	if doc.Payment != nil {
		if doc.Payment.PrepaidAmount != nil {
			prepaid = *doc.Payment.PrepaidAmount
			t.Prepaid = doc.Payment.PrepaidAmount
		}
		if doc.Payment.RoundingAmount != nil {
			rounding = *doc.Payment.RoundingAmount
			t.Rounding = doc.Payment.RoundingAmount
		}
	}
	t.PayableAmount = t.GrossTotal.Sub(prepaid).Add(rounding)

	return t
}
