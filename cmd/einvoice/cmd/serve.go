package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/einvoice/internal/server"
)

var (
	serverAddr   string
	serverDebug  bool
	readTimeout  time.Duration
	writeTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP API server for calculating and validating invoices.

The API provides endpoints for:
  - POST /api/v1/totals    - Calculate totals for a JSON document
  - POST /api/v1/validate  - Validate a JSON document or CII XML
  - POST /api/v1/extract   - Extract the invoice from a Factur-X PDF
  - GET  /health           - Health check

Examples:
  # Start server on default port
  einvoice serve

  # Start on custom port in debug mode
  einvoice serve --address :9090 --debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverAddr, "address", ":8080", "Server listen address")
	serveCmd.Flags().BoolVar(&serverDebug, "debug", false, "Enable debug mode")
	serveCmd.Flags().DurationVar(&readTimeout, "read-timeout", 30*time.Second, "HTTP read timeout")
	serveCmd.Flags().DurationVar(&writeTimeout, "write-timeout", time.Minute, "HTTP write timeout")
}

func runServe(cmd *cobra.Command, args []string) error {
	config := &server.Config{
		Address:      serverAddr,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		Debug:        serverDebug,
	}

	srv := server.NewServer(config)
	return srv.Run()
}
