package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rezonia/einvoice/internal/model"
	"github.com/rezonia/einvoice/internal/rules"
	"github.com/rezonia/einvoice/internal/totals"
)

var validateCmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Validate invoice files against the business rules",
	Long: `Validate one or more invoice files against the category business rules.

Checks performed per tax category:
  - Breakdown presence for every category used on items
  - Seller tax identification (VAT ID, local tax ID, representative)
  - Rate constraints (positive, zero or absent per category)
  - Basis amount reconciliation against the taxable items
  - Calculated tax amount (basis times rate)
  - Exemption reason annotation (required or forbidden per category)

Totals are recalculated first when the file carries none.

Examples:
  einvoice validate invoice.xml
  einvoice validate *.xml -f table`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

// FileValidation is one file's validation verdict for CLI output
type FileValidation struct {
	File   string            `json:"file"`
	Valid  bool              `json:"valid"`
	Errors []rules.Violation `json:"errors,omitempty"`
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	results := make([]*FileValidation, 0, len(args))
	allValid := true

	for _, file := range args {
		result := validateFile(file)
		results = append(results, result)
		if !result.Valid {
			allValid = false
		}
	}

	if outputFormat == "json" {
		if err := writeJSON(results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if r.Valid {
				fmt.Printf("✓ %s: VALID\n", r.File)
				continue
			}
			fmt.Printf("✗ %s: INVALID\n", r.File)
			for _, v := range r.Errors {
				fmt.Printf("  - %s\n", v.Message)
			}
		}
	}

	if !allValid {
		return fmt.Errorf("validation failed for some files")
	}
	return nil
}

func validateFile(path string) *FileValidation {
	doc, err := readDocument(path)
	if err != nil {
		return &FileValidation{
			File:  path,
			Valid: false,
			Errors: []rules.Violation{
				{Message: fmt.Sprintf("failed to read invoice: %v", err)},
			},
		}
	}

	if doc.Totals == nil {
		if err := calculateForValidation(doc); err != nil {
			return &FileValidation{
				File:  path,
				Valid: false,
				Errors: []rules.Violation{
					{Message: fmt.Sprintf("calculation failed: %v", err)},
				},
			}
		}
	}

	result := rules.Validate(doc)
	return &FileValidation{
		File:   path,
		Valid:  result.Valid,
		Errors: result.Errors,
	}
}

func calculateForValidation(doc *model.Document) error {
	return totals.Calculate(doc, totals.Options{})
}
