package model

import (
	"github.com/shopspring/decimal"

	"github.com/rezonia/einvoice/internal/codes"
)

// BreakdownKey identifies one tax breakdown entry. Rate sensitive
// categories key by (category, rate); all other categories collapse to a
// single entry regardless of the rates observed on their items.
type BreakdownKey struct {
	Category codes.TaxCategory
	Rate     string
}

// KeyFor derives the breakdown key for a category and rate
func KeyFor(category codes.TaxCategory, rate decimal.Decimal) BreakdownKey {
	if category.RateSensitive() {
		return BreakdownKey{Category: category, Rate: rate.Round(2).StringFixed(2)}
	}
	return BreakdownKey{Category: category}
}

// Key returns the breakdown key of a tax assignment
func (t *TaxAssignment) Key() BreakdownKey {
	return KeyFor(t.Category, t.Rate())
}

// Key returns the breakdown key of a breakdown entry
func (e *TaxBreakdownEntry) Key() BreakdownKey {
	return KeyFor(e.Category, e.Rate())
}
