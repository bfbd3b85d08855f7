package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/rezonia/einvoice/internal/container"
)

var embedOutput string

var embedCmd = &cobra.Command{
	Use:   "embed <invoice.pdf> <invoice.xml>",
	Short: "Embed invoice XML into a PDF as a Factur-X container",
	Long: `Attach invoice XML to a PDF under the name factur-x.xml, producing a
Factur-X container.

Examples:
  einvoice embed invoice.pdf factur-x.xml -o facturx.pdf`,
	Args: cobra.ExactArgs(2),
	RunE: runEmbed,
}

func init() {
	rootCmd.AddCommand(embedCmd)

	embedCmd.Flags().StringVarP(&embedOutput, "output", "o", "", "Output PDF path (default: overwrite the input)")
}

func runEmbed(cmd *cobra.Command, args []string) error {
	pdfPath, xmlPath := args[0], args[1]

	xml, err := os.ReadFile(xmlPath)
	if err != nil {
		return err
	}

	outPath := embedOutput
	if outPath == "" {
		outPath = pdfPath
	}

	return container.Embed(pdfPath, xml, outPath)
}
