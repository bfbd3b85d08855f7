package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rezonia/einvoice/internal/cii"
	"github.com/rezonia/einvoice/internal/container"
)

var (
	extractOutput string
	extractAsJSON bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <invoice.pdf>",
	Short: "Extract the embedded invoice XML from a Factur-X PDF",
	Long: `Extract the embedded invoice XML (factur-x.xml or zugferd-invoice.xml)
from a Factur-X / ZUGFeRD PDF.

Examples:
  einvoice extract invoice.pdf
  einvoice extract invoice.pdf -o factur-x.xml
  einvoice extract invoice.pdf --json`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "Write the XML to this file instead of stdout")
	extractCmd.Flags().BoolVar(&extractAsJSON, "json", false, "Parse the XML and print the JSON document instead")
}

func runExtract(cmd *cobra.Command, args []string) error {
	xml, err := container.Extract(args[0])
	if err != nil {
		return err
	}

	if extractAsJSON {
		doc, err := cii.Parse(xml)
		if err != nil {
			return err
		}
		return writeJSON(doc)
	}

	if extractOutput != "" {
		return os.WriteFile(extractOutput, xml, 0o644)
	}

	fmt.Print(string(xml))
	return nil
}
