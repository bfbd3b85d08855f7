package server

import (
	"github.com/rezonia/einvoice/internal/model"
	"github.com/rezonia/einvoice/internal/rules"
)

// TotalsRequest is the request body for the totals endpoint
type TotalsRequest struct {
	Document         *model.Document   `json:"document"`
	ExemptionReasons map[string]string `json:"exemption_reasons,omitempty"`
	TaxCurrency      string            `json:"tax_currency,omitempty"`
	ExchangeRate     string            `json:"exchange_rate,omitempty"`
}

// TotalsResponse is the response for the totals endpoint
type TotalsResponse struct {
	Document *model.Document `json:"document"`
}

// ValidationResponse is the response for the validate endpoint
type ValidationResponse struct {
	Valid  bool              `json:"valid"`
	Errors []rules.Violation `json:"errors,omitempty"`
}

// ExtractResponse is the response for the extract endpoint
type ExtractResponse struct {
	Document *model.Document `json:"document"`
	XML      string          `json:"xml,omitempty"`
}

// ErrorResponse is the standard error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
