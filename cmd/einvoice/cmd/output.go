package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"github.com/rezonia/einvoice/internal/cii"
	"github.com/rezonia/einvoice/internal/codes"
	"github.com/rezonia/einvoice/internal/model"
	"github.com/rezonia/einvoice/internal/totals"
)

// readDocument loads an invoice from disk, accepting CII XML or the
// JSON document encoding.
func readDocument(path string) (*model.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if cii.CanParse(data) {
		return cii.Parse(data)
	}

	var doc model.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%s: not CII XML and not a JSON document: %w", path, err)
	}
	return &doc, nil
}

func writeJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func printTotals(doc *model.Document) {
	t := doc.Totals
	fmt.Printf("Invoice %s (%s)\n", doc.ID, doc.Currency)
	fmt.Printf("  Line total:      %12s\n", t.LineTotal.StringFixed(2))
	fmt.Printf("  Allowances:      %12s\n", t.AllowanceTotal.StringFixed(2))
	fmt.Printf("  Charges:         %12s\n", t.ChargeTotal.StringFixed(2))
	fmt.Printf("  Net total:       %12s\n", t.NetTotal.StringFixed(2))
	for _, entry := range t.TaxBreakdown {
		fmt.Printf("  Tax %-2s %6s%%:   %12s  (basis %s)\n",
			entry.Category, entry.Rate().StringFixed(1),
			entry.CalculatedAmount.StringFixed(2), entry.BasisAmount.StringFixed(2))
	}
	for _, tt := range t.TaxTotals {
		fmt.Printf("  Tax total:       %12s %s\n", tt.Amount.StringFixed(2), tt.Currency)
	}
	fmt.Printf("  Gross total:     %12s\n", t.GrossTotal.StringFixed(2))
	if t.Prepaid != nil {
		fmt.Printf("  Prepaid:         %12s\n", t.Prepaid.StringFixed(2))
	}
	if t.Rounding != nil {
		fmt.Printf("  Rounding:        %12s\n", t.Rounding.StringFixed(2))
	}
	fmt.Printf("  Payable:         %12s\n", t.PayableAmount.StringFixed(2))
}

// calcOptions assembles calculator options from the calc flags shared
// by the calc and validate commands.
func calcOptions(exemptionReasons map[string]string, taxCurrency, exchangeRate string) (totals.Options, error) {
	opts := totals.Options{TaxCurrency: taxCurrency}

	if len(exemptionReasons) > 0 {
		opts.ExemptionReasons = make(map[codes.TaxCategory]string, len(exemptionReasons))
		for cat, reason := range exemptionReasons {
			opts.ExemptionReasons[codes.TaxCategory(cat)] = reason
		}
	}

	if exchangeRate != "" {
		rate, err := decimal.NewFromString(exchangeRate)
		if err != nil {
			return opts, fmt.Errorf("invalid exchange rate %q: %w", exchangeRate, err)
		}
		opts.ExchangeRate = &rate
	}

	return opts, nil
}
