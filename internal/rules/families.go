package rules

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rezonia/einvoice/internal/codes"
	dec "github.com/rezonia/einvoice/internal/decimal"
	"github.com/rezonia/einvoice/internal/model"
)

// rateConstraint is the sign a category demands of its item rates
type rateConstraint int

const (
	ratePositive rateConstraint = iota
	rateZero
	rateAbsent
)

// sellerIDSet is the identifier set that satisfies the seller identity
// rule of a category family
type sellerIDSet int

const (
	// seller VAT id, seller tax registration id or representative VAT id
	sellerAnyTaxID sellerIDSet = iota
	// seller VAT id or representative VAT id only
	sellerVATOnly
	// no seller identity rule for this family
	sellerNone
)

// exemptionMode says whether breakdown entries of the family must or must
// not carry an exemption annotation
type exemptionMode int

const (
	exemptionForbidden exemptionMode = iota
	exemptionRequired
)

// family parameterizes the rule shapes for one tax category. One family
// per category, instantiated into concrete rules at registry build time.
type family struct {
	category  codes.TaxCategory
	prefix    string
	rate      rateConstraint
	seller    sellerIDSet
	exemption exemptionMode
}

var families = []family{
	{codes.CategoryStandardRate, "BR-S", ratePositive, sellerAnyTaxID, exemptionForbidden},
	{codes.CategoryZeroRated, "BR-Z", rateZero, sellerAnyTaxID, exemptionForbidden},
	{codes.CategoryExempt, "BR-E", rateZero, sellerAnyTaxID, exemptionRequired},
	{codes.CategoryReverseCharge, "BR-AE", rateZero, sellerAnyTaxID, exemptionRequired},
	{codes.CategoryIntraCommunity, "BR-IC", rateZero, sellerVATOnly, exemptionRequired},
	{codes.CategoryExport, "BR-G", rateZero, sellerVATOnly, exemptionRequired},
	{codes.CategoryNotSubject, "BR-O", rateAbsent, sellerNone, exemptionRequired},
	{codes.CategoryIGIC, "BR-IG", ratePositive, sellerAnyTaxID, exemptionForbidden},
	{codes.CategoryIPSI, "BR-IP", ratePositive, sellerAnyTaxID, exemptionForbidden},
}

// buildRegistry instantiates every family's rule shapes plus the generic
// calculated amount re-derivation BR-CO-17, in stable order
func buildRegistry() []Rule {
	var out []Rule
	for _, f := range families {
		out = append(out, f.rules()...)
	}
	out = append(out, Rule{
		Code: "BR-CO-17",
		Text: "VAT category tax amount (BT-117) = VAT category taxable amount (BT-116) x (VAT rate (BT-119) / 100), rounded to two decimals.",
		Eval: evalCalculatedAmounts,
	})
	return out
}

// rules instantiates the shapes enabled for the family. Shape numbers
// follow the standard's numbering: 1 breakdown presence, 2 seller
// identity, 5 rate, 8 taxable amount, 9 tax amount, 10 exemption reason.
func (f family) rules() []Rule {
	out := []Rule{
		{
			Code: f.prefix + "-1",
			Text: fmt.Sprintf("An Invoice that contains an Invoice line (BG-25), a Document level allowance (BG-20) or a Document level charge (BG-21) where the VAT category code (BT-151, BT-95, BT-102) is %q shall contain in the VAT breakdown (BG-23) at least one VAT category code (BT-118) equal with %q.",
				f.category.Label(), f.category.Label()),
			Eval: f.evalPresence,
		},
	}

	if f.seller != sellerNone {
		ids := "the Seller VAT identifier (BT-31), the Seller tax registration identifier (BT-32) and/or the Seller tax representative VAT identifier (BT-63)"
		if f.seller == sellerVATOnly {
			ids = "the Seller VAT identifier (BT-31) or the Seller tax representative VAT identifier (BT-63)"
		}
		out = append(out, Rule{
			Code: f.prefix + "-2",
			Text: fmt.Sprintf("An Invoice that contains an Invoice line (BG-25), a Document level allowance (BG-20) or a Document level charge (BG-21) where the VAT category code (BT-151, BT-95, BT-102) is %q shall contain %s.",
				f.category.Label(), ids),
			Eval: f.evalSellerIdentity,
		})
	}

	var rateText string
	switch f.rate {
	case ratePositive:
		rateText = fmt.Sprintf("In an Invoice line (BG-25), a Document level allowance (BG-20) or a Document level charge (BG-21) where the VAT category code (BT-151, BT-95, BT-102) is %q the VAT rate (BT-152, BT-96, BT-103) shall be greater than zero.", f.category.Label())
	case rateZero:
		rateText = fmt.Sprintf("In an Invoice line (BG-25), a Document level allowance (BG-20) or a Document level charge (BG-21) where the VAT category code (BT-151, BT-95, BT-102) is %q the VAT rate (BT-152, BT-96, BT-103) shall be 0 (zero).", f.category.Label())
	case rateAbsent:
		rateText = fmt.Sprintf("An Invoice line (BG-25), a Document level allowance (BG-20) or a Document level charge (BG-21) where the VAT category code (BT-151, BT-95, BT-102) is %q shall not contain a VAT rate (BT-152, BT-96, BT-103).", f.category.Label())
	}
	out = append(out, Rule{
		Code: f.prefix + "-5",
		Text: rateText,
		Eval: f.evalRateSign,
	})

	out = append(out, Rule{
		Code: f.prefix + "-8",
		Text: fmt.Sprintf("In a VAT breakdown (BG-23) where the VAT category code (BT-118) is %q the VAT category taxable amount (BT-116) shall equal the sum of Invoice line net amounts (BT-131) minus the sum of Document level allowance amounts (BT-92) plus the sum of Document level charge amounts (BT-99) of the corresponding VAT category.",
			f.category.Label()),
		Eval: f.evalBasis,
	})

	var calcText string
	if f.rate == ratePositive {
		calcText = fmt.Sprintf("The VAT category tax amount (BT-117) in a VAT breakdown (BG-23) where the VAT category code (BT-118) is %q shall equal the VAT category taxable amount (BT-116) multiplied by the VAT rate (BT-119).", f.category.Label())
	} else {
		calcText = fmt.Sprintf("The VAT category tax amount (BT-117) in a VAT breakdown (BG-23) where the VAT category code (BT-118) is %q shall equal 0 (zero).", f.category.Label())
	}
	out = append(out, Rule{
		Code: f.prefix + "-9",
		Text: calcText,
		Eval: f.evalCalculated,
	})

	var exemptionText string
	if f.exemption == exemptionRequired {
		exemptionText = fmt.Sprintf("A VAT breakdown (BG-23) with the VAT category code (BT-118) %q shall have a VAT exemption reason code (BT-121) and/or a VAT exemption reason text (BT-120).", f.category.Label())
	} else {
		exemptionText = fmt.Sprintf("A VAT breakdown (BG-23) with the VAT category code (BT-118) %q shall not have a VAT exemption reason code (BT-121) or VAT exemption reason text (BT-120).", f.category.Label())
	}
	out = append(out, Rule{
		Code: f.prefix + "-10",
		Text: exemptionText,
		Eval: f.evalExemption,
	})

	return out
}

// taxedItem is one taxable element of the document: an invoice line, a
// document level allowance or a document level charge
type taxedItem struct {
	tax       *model.TaxAssignment
	amount    decimal.Decimal
	allowance bool
	charge    bool
}

func taxedItems(doc *model.Document) []taxedItem {
	var items []taxedItem
	for i := range doc.Lines {
		line := &doc.Lines[i]
		items = append(items, taxedItem{tax: &line.Tax, amount: line.NetTotal})
	}
	for i := range doc.AllowancesCharges {
		ac := &doc.AllowancesCharges[i]
		items = append(items, taxedItem{
			tax:       &ac.Tax,
			amount:    ac.ActualAmount,
			allowance: !ac.ChargeIndicator,
			charge:    ac.ChargeIndicator,
		})
	}
	return items
}

func breakdownEntries(doc *model.Document, category codes.TaxCategory) []*model.TaxBreakdownEntry {
	if doc.Totals == nil {
		return nil
	}
	var out []*model.TaxBreakdownEntry
	for _, e := range doc.Totals.TaxBreakdown {
		if e.Category == category {
			out = append(out, e)
		}
	}
	return out
}

// evalPresence: every breakdown key observed on the items must have a
// matching breakdown entry. One violation per missing key.
func (f family) evalPresence(doc *model.Document) int {
	present := make(map[model.BreakdownKey]bool)
	if doc.Totals != nil {
		for _, e := range doc.Totals.TaxBreakdown {
			present[e.Key()] = true
		}
	}

	missing := make(map[model.BreakdownKey]bool)
	for _, it := range taxedItems(doc) {
		if it.tax.Category != f.category {
			continue
		}
		key := it.tax.Key()
		if !present[key] {
			missing[key] = true
		}
	}
	return len(missing)
}

// evalSellerIdentity: when the category appears on any item, the seller
// identifier set of the family must be satisfied. At most one violation.
func (f family) evalSellerIdentity(doc *model.Document) int {
	found := false
	for _, it := range taxedItems(doc) {
		if it.tax.Category == f.category {
			found = true
			break
		}
	}
	if !found {
		return 0
	}

	if f.seller == sellerAnyTaxID && doc.Seller.HasTaxIdentifier() {
		return 0
	}
	if f.seller == sellerVATOnly && doc.Seller.VATID != "" {
		return 0
	}
	if doc.TaxRepresentative != nil && doc.TaxRepresentative.VATID != "" {
		return 0
	}
	return 1
}

// evalRateSign: one violation per item whose rate breaks the family's
// sign constraint. An undefined rate never satisfies a positive rate
// family.
func (f family) evalRateSign(doc *model.Document) int {
	violations := 0
	for _, it := range taxedItems(doc) {
		if it.tax.Category != f.category {
			continue
		}
		switch f.rate {
		case ratePositive:
			if it.tax.RatePercent == nil || !it.tax.RatePercent.IsPositive() {
				violations++
			}
		case rateZero:
			if !it.tax.Rate().IsZero() {
				violations++
			}
		case rateAbsent:
			if it.tax.RatePercent != nil {
				violations++
			}
		}
	}
	return violations
}

// evalBasis: every breakdown entry of the category must reconcile with
// the matching items, independently per (category, rate) key
func (f family) evalBasis(doc *model.Document) int {
	violations := 0
	items := taxedItems(doc)
	for _, e := range breakdownEntries(doc, f.category) {
		key := e.Key()
		expected := dec.Zero
		for _, it := range items {
			if it.tax.Category != f.category || it.tax.Key() != key {
				continue
			}
			switch {
			case it.allowance:
				expected = expected.Sub(it.amount)
			case it.charge:
				expected = expected.Add(it.amount)
			default:
				expected = expected.Add(it.amount)
			}
		}
		if !dec.Equal2(e.BasisAmount, expected) {
			violations++
		}
	}
	return violations
}

// evalCalculated: tax amount re-derivation per breakdown entry
func (f family) evalCalculated(doc *model.Document) int {
	violations := 0
	for _, e := range breakdownEntries(doc, f.category) {
		if f.rate == ratePositive {
			if !dec.Equal2(e.CalculatedAmount, dec.Percent(e.BasisAmount, e.Rate())) {
				violations++
			}
		} else if !e.CalculatedAmount.IsZero() {
			violations++
		}
	}
	return violations
}

// evalExemption: exemption annotation presence per breakdown entry
func (f family) evalExemption(doc *model.Document) int {
	violations := 0
	for _, e := range breakdownEntries(doc, f.category) {
		annotated := e.ExemptionReasonCode != "" || e.ExemptionReason != ""
		if f.exemption == exemptionRequired && !annotated {
			violations++
		}
		if f.exemption == exemptionForbidden && annotated {
			violations++
		}
	}
	return violations
}

// evalCalculatedAmounts is BR-CO-17: the generic re-derivation of every
// breakdown entry's tax amount, independent of the per-category rules
func evalCalculatedAmounts(doc *model.Document) int {
	if doc.Totals == nil {
		return 0
	}
	violations := 0
	for _, e := range doc.Totals.TaxBreakdown {
		if !dec.Equal2(e.CalculatedAmount, dec.Percent(e.BasisAmount, e.Rate())) {
			violations++
		}
	}
	return violations
}
