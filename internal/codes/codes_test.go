package codes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rezonia/einvoice/internal/codes"
)

func TestZeroRated(t *testing.T) {
	zero := []codes.TaxCategory{
		codes.CategoryZeroRated,
		codes.CategoryExempt,
		codes.CategoryReverseCharge,
		codes.CategoryIntraCommunity,
		codes.CategoryExport,
	}
	for _, c := range zero {
		assert.True(t, c.ZeroRated(), "category %s should be zero rated", c)
	}

	// O is out of scope of VAT rather than zero rated
	assert.False(t, codes.CategoryNotSubject.ZeroRated())
	assert.False(t, codes.CategoryStandardRate.ZeroRated())
	assert.False(t, codes.CategoryIGIC.ZeroRated())
	assert.False(t, codes.CategoryIPSI.ZeroRated())
}

func TestRateSensitive(t *testing.T) {
	assert.True(t, codes.CategoryStandardRate.RateSensitive())
	assert.True(t, codes.CategoryIGIC.RateSensitive())
	assert.True(t, codes.CategoryIPSI.RateSensitive())

	assert.False(t, codes.CategoryExport.RateSensitive())
	assert.False(t, codes.CategoryExempt.RateSensitive())
	assert.False(t, codes.CategoryNotSubject.RateSensitive())
}

func TestFixedExemptionFor(t *testing.T) {
	fe, ok := codes.FixedExemptionFor(codes.CategoryExport)
	assert.True(t, ok)
	assert.Equal(t, codes.ExemptionExport, fe.Code)
	assert.Equal(t, "Export outside the EU", fe.Reason)

	// E has no fixed wording, the caller supplies its reason
	_, ok = codes.FixedExemptionFor(codes.CategoryExempt)
	assert.False(t, ok)

	_, ok = codes.FixedExemptionFor(codes.CategoryStandardRate)
	assert.False(t, ok)
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Standard rated", codes.CategoryStandardRate.Label())
	assert.Equal(t, "VAT reverse charge", codes.CategoryReverseCharge.Label())
	assert.Equal(t, "X", codes.TaxCategory("X").Label())
	assert.False(t, codes.TaxCategory("X").Valid())
	assert.True(t, codes.CategoryIPSI.Valid())
}
