package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/rezonia/einvoice/internal/logger"
)

var (
	version = "1.0.0"

	// Global flags
	verbose      bool
	outputFormat string
	logFormat    string
)

var rootCmd = &cobra.Command{
	Use:   "einvoice",
	Short: "Calculate and validate EN 16931 electronic invoices",
	Long: `einvoice is a CLI tool for working with EN 16931 electronic invoices.

Supports:
  - Totals calculation: line extensions, tax breakdown, payable amount
  - Business rule validation per tax category (S, Z, E, AE, K, G, O, L, M)
  - CII (UN/CEFACT Cross-Industry Invoice) XML reading and writing
  - Factur-X: extracting and embedding invoice XML in PDF containers

Examples:
  # Calculate totals for a JSON invoice
  einvoice calc invoice.json

  # Validate a CII XML invoice
  einvoice validate invoice.xml

  # Pull the embedded XML out of a Factur-X PDF
  einvoice extract invoice.pdf

  # Start the HTTP API
  einvoice serve --address :8080`,
	Version: version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "json", "Output format (json, table)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format (json, console) (env: EINVOICE_LOG_FORMAT)")

	cobra.OnInitialize(initConfig)
}

func initConfig() {
	if logFormat == "" {
		logFormat = os.Getenv("EINVOICE_LOG_FORMAT")
	}

	cfg := logger.DefaultConfig()
	if logFormat != "" {
		cfg.Format = logFormat
	}
	if verbose {
		cfg.Level = "debug"
	}
	_ = logger.Setup(cfg)
}
