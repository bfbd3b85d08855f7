package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/rezonia/einvoice/internal/cii"
	"github.com/rezonia/einvoice/internal/totals"
)

var (
	calcExemptionReasons map[string]string
	calcTaxCurrency      string
	calcExchangeRate     string
	calcOutputXML        string
)

var calcCmd = &cobra.Command{
	Use:   "calc <file>",
	Short: "Calculate invoice totals",
	Long: `Calculate line totals, the tax breakdown and document totals for an
invoice, reading CII XML or a JSON document.

Examples:
  einvoice calc invoice.json
  einvoice calc invoice.xml -f table
  einvoice calc invoice.json --exemption-reason E="Exempt under §4 UStG"
  einvoice calc invoice.json --tax-currency CHF --exchange-rate 0.93
  einvoice calc invoice.json --out-xml invoice.xml`,
	Args: cobra.ExactArgs(1),
	RunE: runCalc,
}

func init() {
	rootCmd.AddCommand(calcCmd)

	calcCmd.Flags().StringToStringVar(&calcExemptionReasons, "exemption-reason", nil, "Exemption reason text per category, e.g. E=\"Exempt supply\"")
	calcCmd.Flags().StringVar(&calcTaxCurrency, "tax-currency", "", "Currency for the restated tax total (BT-6)")
	calcCmd.Flags().StringVar(&calcExchangeRate, "exchange-rate", "", "Exchange rate for the restated tax total")
	calcCmd.Flags().StringVar(&calcOutputXML, "out-xml", "", "Also write the calculated invoice as CII XML to this file")
}

func runCalc(cmd *cobra.Command, args []string) error {
	doc, err := readDocument(args[0])
	if err != nil {
		return err
	}

	opts, err := calcOptions(calcExemptionReasons, calcTaxCurrency, calcExchangeRate)
	if err != nil {
		return err
	}

	if err := totals.Calculate(doc, opts); err != nil {
		return err
	}

	if calcOutputXML != "" {
		xml, err := cii.Write(doc)
		if err != nil {
			return err
		}
		if err := os.WriteFile(calcOutputXML, xml, 0o644); err != nil {
			return err
		}
	}

	if outputFormat == "json" {
		return writeJSON(doc)
	}

	printTotals(doc)
	return nil
}
