package rules_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/einvoice/internal/codes"
	"github.com/rezonia/einvoice/internal/model"
	"github.com/rezonia/einvoice/internal/rules"
	"github.com/rezonia/einvoice/internal/totals"
)

func ptr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func line(id, netPrice, qty string, category codes.TaxCategory, rate *decimal.Decimal) model.Line {
	return model.Line{
		ID:       id,
		Name:     "Item " + id,
		Price:    model.Price{NetUnitPrice: ptr(netPrice)},
		Quantity: decimal.RequireFromString(qty),
		Tax: model.TaxAssignment{
			TypeCode:    codes.TaxTypeVAT,
			Category:    category,
			RatePercent: rate,
		},
	}
}

func allowanceCharge(charge bool, amount string, category codes.TaxCategory, rate *decimal.Decimal) model.AllowanceCharge {
	return model.AllowanceCharge{
		ChargeIndicator: charge,
		ActualAmount:    decimal.RequireFromString(amount),
		Tax: model.TaxAssignment{
			TypeCode:    codes.TaxTypeVAT,
			Category:    category,
			RatePercent: rate,
		},
	}
}

func testDocument(lines ...model.Line) *model.Document {
	return &model.Document{
		ID:        "471102",
		TypeCode:  codes.DocTypeInvoice,
		IssueDate: time.Date(2024, 11, 15, 0, 0, 0, 0, time.UTC),
		Currency:  "EUR",
		Seller: model.Party{
			Name:    "Lieferant GmbH",
			Address: model.Address{City: "Berlin", Country: "DE"},
			VATID:   "DE136695976",
		},
		Buyer: model.Party{
			Name:    "Kunden AG",
			Address: model.Address{City: "Frankfurt", Country: "DE"},
		},
		Lines: lines,
	}
}

// exportDocument is the shared fixture: two export lines of net 5 each
// plus a document level allowance and charge of 1 each, all category G
func exportDocument(t *testing.T) *model.Document {
	t.Helper()
	doc := testDocument(
		line("1", "5", "1", codes.CategoryExport, ptr("0")),
		line("2", "5", "1", codes.CategoryExport, ptr("0")),
	)
	doc.AllowancesCharges = []model.AllowanceCharge{
		allowanceCharge(false, "1", codes.CategoryExport, ptr("0")),
		allowanceCharge(true, "1", codes.CategoryExport, ptr("0")),
	}
	require.NoError(t, totals.Calculate(doc, totals.Options{}))
	return doc
}

func standardDocument(t *testing.T) *model.Document {
	t.Helper()
	doc := testDocument(line("1", "151.5", "1", codes.CategoryStandardRate, ptr("19")))
	require.NoError(t, totals.Calculate(doc, totals.Options{}))
	return doc
}

func codesOf(result rules.Result) []string {
	var out []string
	for _, v := range result.Errors {
		out = append(out, v.RuleCode)
	}
	return out
}

func TestValidate_ExportValid(t *testing.T) {
	doc := exportDocument(t)

	require.Len(t, doc.Totals.TaxBreakdown, 1)
	entry := doc.Totals.TaxBreakdown[0]
	assert.Equal(t, "10.00", entry.BasisAmount.StringFixed(2))
	assert.True(t, entry.Rate().IsZero())
	assert.True(t, entry.CalculatedAmount.IsZero())

	result := rules.Validate(doc)
	assert.True(t, result.Valid)
	assert.Nil(t, result.Errors)
}

func TestValidate_ValidResultOmitsErrors(t *testing.T) {
	result := rules.Validate(exportDocument(t))

	data, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t, `{"valid":true}`, string(data))
}

func TestValidate_ExportMiscategorizedBreakdown(t *testing.T) {
	doc := exportDocument(t)

	// Misclassify the breakdown row: the export items lose their entry
	// and the reverse charge entry reconciles against nothing
	doc.Totals.TaxBreakdown[0].Category = codes.CategoryReverseCharge

	result := rules.Validate(doc)
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, []string{"BR-AE-8", "BR-G-1"}, codesOf(result))
}

func TestValidate_StandardRateWrongBasis(t *testing.T) {
	doc := standardDocument(t)

	// Tamper the basis, keeping the tax amount consistent with it so
	// only the reconciliation rule fires
	entry := doc.Totals.TaxBreakdown[0]
	entry.BasisAmount = decimal.RequireFromString("130")
	entry.CalculatedAmount = decimal.RequireFromString("24.70")

	result := rules.Validate(doc)
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "BR-S-8", result.Errors[0].RuleCode)
}

func TestValidate_StandardRateWrongTaxAmount(t *testing.T) {
	doc := standardDocument(t)

	entry := doc.Totals.TaxBreakdown[0]
	assert.Equal(t, "28.79", entry.CalculatedAmount.StringFixed(2))
	entry.CalculatedAmount = decimal.RequireFromString("10")

	result := rules.Validate(doc)
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, []string{"BR-S-9", "BR-CO-17"}, codesOf(result))
}

func TestValidate_SellerIdentity(t *testing.T) {
	t.Run("missing identifiers", func(t *testing.T) {
		doc := standardDocument(t)
		doc.Seller.VATID = ""
		doc.Seller.TaxID = ""

		result := rules.Validate(doc)
		assert.False(t, result.Valid)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, "BR-S-2", result.Errors[0].RuleCode)
	})

	t.Run("local tax id suffices for standard rate", func(t *testing.T) {
		doc := standardDocument(t)
		doc.Seller.VATID = ""
		doc.Seller.TaxID = "201/113/40209"

		result := rules.Validate(doc)
		assert.True(t, result.Valid)
	})

	t.Run("representative VAT id suffices", func(t *testing.T) {
		doc := standardDocument(t)
		doc.Seller.VATID = ""
		doc.TaxRepresentative = &model.Party{
			Name:    "Vertreter GmbH",
			Address: model.Address{Country: "DE"},
			VATID:   "DE194906450",
		}

		result := rules.Validate(doc)
		assert.True(t, result.Valid)
	})

	t.Run("local tax id does not suffice for export", func(t *testing.T) {
		doc := exportDocument(t)
		doc.Seller.VATID = ""
		doc.Seller.TaxID = "201/113/40209"

		result := rules.Validate(doc)
		assert.False(t, result.Valid)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, "BR-G-2", result.Errors[0].RuleCode)
	})
}

func TestValidate_RateSign(t *testing.T) {
	t.Run("undefined rate violates positive rate family", func(t *testing.T) {
		doc := testDocument(line("1", "100", "1", codes.CategoryStandardRate, nil))
		require.NoError(t, totals.Calculate(doc, totals.Options{}))

		result := rules.Validate(doc)
		assert.Contains(t, codesOf(result), "BR-S-5")
	})

	t.Run("zero rate violates positive rate family", func(t *testing.T) {
		doc := testDocument(line("1", "100", "1", codes.CategoryIGIC, ptr("0")))
		require.NoError(t, totals.Calculate(doc, totals.Options{}))

		result := rules.Validate(doc)
		assert.Contains(t, codesOf(result), "BR-IG-5")
	})

	t.Run("one violation per offending item", func(t *testing.T) {
		doc := testDocument(
			line("1", "100", "1", codes.CategoryStandardRate, nil),
			line("2", "100", "1", codes.CategoryStandardRate, nil),
		)
		require.NoError(t, totals.Calculate(doc, totals.Options{}))

		result := rules.Validate(doc)
		count := 0
		for _, code := range codesOf(result) {
			if code == "BR-S-5" {
				count++
			}
		}
		assert.Equal(t, 2, count)
	})

	t.Run("not subject to VAT must not carry a rate", func(t *testing.T) {
		doc := testDocument(line("1", "100", "1", codes.CategoryNotSubject, ptr("0")))
		require.NoError(t, totals.Calculate(doc, totals.Options{}))

		result := rules.Validate(doc)
		assert.Contains(t, codesOf(result), "BR-O-5")
	})

	t.Run("not subject to VAT without rate is fine", func(t *testing.T) {
		doc := testDocument(line("1", "100", "1", codes.CategoryNotSubject, nil))
		require.NoError(t, totals.Calculate(doc, totals.Options{}))

		result := rules.Validate(doc)
		assert.True(t, result.Valid)
	})
}

func TestValidate_ExemptionAnnotation(t *testing.T) {
	t.Run("standard rate must not carry one", func(t *testing.T) {
		doc := standardDocument(t)
		doc.Totals.TaxBreakdown[0].ExemptionReason = "should not be here"

		result := rules.Validate(doc)
		assert.False(t, result.Valid)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, "BR-S-10", result.Errors[0].RuleCode)
	})

	t.Run("export must carry one", func(t *testing.T) {
		doc := exportDocument(t)
		doc.Totals.TaxBreakdown[0].ExemptionReason = ""
		doc.Totals.TaxBreakdown[0].ExemptionReasonCode = ""

		result := rules.Validate(doc)
		assert.False(t, result.Valid)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, "BR-G-10", result.Errors[0].RuleCode)
	})

	t.Run("reason text alone suffices", func(t *testing.T) {
		doc := exportDocument(t)
		doc.Totals.TaxBreakdown[0].ExemptionReasonCode = ""

		result := rules.Validate(doc)
		assert.True(t, result.Valid)
	})
}

func TestValidate_BasisPerRateKey(t *testing.T) {
	doc := testDocument(
		line("1", "100", "1", codes.CategoryStandardRate, ptr("19")),
		line("2", "200", "1", codes.CategoryStandardRate, ptr("7")),
	)
	require.NoError(t, totals.Calculate(doc, totals.Options{}))
	require.Len(t, doc.Totals.TaxBreakdown, 2)

	// Tamper only the 7% entry; the 19% key must stay clean
	entry := doc.Totals.TaxBreakdown[1]
	entry.BasisAmount = decimal.RequireFromString("150")
	entry.CalculatedAmount = decimal.RequireFromString("10.50")

	result := rules.Validate(doc)
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "BR-S-8", result.Errors[0].RuleCode)
}

func TestValidate_MessageFormat(t *testing.T) {
	doc := standardDocument(t)
	doc.Seller.VATID = ""

	result := rules.Validate(doc)
	require.Len(t, result.Errors, 1)

	msg := result.Errors[0].Message
	assert.Regexp(t, `^\[BR-S-2\] `, msg)
	assert.Contains(t, msg, "BT-31")
	assert.Contains(t, msg, "BT-63")
	assert.Contains(t, msg, "Standard rated")
}

func TestValidate_MixedCategories(t *testing.T) {
	doc := testDocument(
		line("1", "100", "1", codes.CategoryStandardRate, ptr("19")),
		line("2", "50", "1", codes.CategoryReverseCharge, ptr("19")),
		line("3", "25", "1", codes.CategoryIGIC, ptr("7")),
	)
	require.NoError(t, totals.Calculate(doc, totals.Options{}))

	result := rules.Validate(doc)
	assert.True(t, result.Valid, "violations: %v", result.Errors)
	assert.Len(t, doc.Totals.TaxBreakdown, 3)
}

func TestRegistry_StableAndShared(t *testing.T) {
	first := rules.Registry()
	second := rules.Registry()

	require.NotEmpty(t, first)
	assert.Equal(t, len(first), len(second))
	assert.Same(t, &first[0], &second[0])

	// Family rules precede BR-CO-17
	assert.Equal(t, "BR-S-1", first[0].Code)
	assert.Equal(t, "BR-CO-17", first[len(first)-1].Code)
}
