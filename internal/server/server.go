// Package server exposes the calculation and validation engine over HTTP.
package server

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/rezonia/einvoice/internal/cii"
	"github.com/rezonia/einvoice/internal/codes"
	"github.com/rezonia/einvoice/internal/container"
	"github.com/rezonia/einvoice/internal/model"
	"github.com/rezonia/einvoice/internal/rules"
	"github.com/rezonia/einvoice/internal/totals"
)

// Config holds server configuration
type Config struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Debug        bool
}

// Server represents the HTTP API server
type Server struct {
	config *Config
	router *gin.Engine
}

// NewServer creates a new API server
func NewServer(config *Config) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if config.Debug {
		router.Use(gin.Logger())
	}

	s := &Server{
		config: config,
		router: router,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/totals", s.handleTotals)
		v1.POST("/validate", s.handleValidate)
		v1.POST("/extract", s.handleExtract)
	}
}

// Run starts the HTTP server
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	log.Info().Str("address", s.config.Address).Msg("starting server")
	return srv.ListenAndServe()
}

// Handler returns the http.Handler for use with custom servers
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleTotals(c *gin.Context) {
	var req TotalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Details: err.Error()})
		return
	}
	if req.Document == nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing document"})
		return
	}

	opts, err := req.options()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid options", Details: err.Error()})
		return
	}

	if err := totals.Calculate(req.Document, opts); err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "calculation failed", Details: err.Error()})
		return
	}

	c.JSON(http.StatusOK, TotalsResponse{Document: req.Document})
}

func (s *Server) handleValidate(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to read request body"})
		return
	}
	if len(body) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "empty request body"})
		return
	}

	doc, err := s.decodeDocument(body)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "failed to decode invoice", Details: err.Error()})
		return
	}

	if doc.Totals == nil {
		if err := totals.Calculate(doc, totals.Options{}); err != nil {
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "calculation failed", Details: err.Error()})
			return
		}
	}

	result := rules.Validate(doc)
	c.JSON(http.StatusOK, ValidationResponse{
		Valid:  result.Valid,
		Errors: result.Errors,
	})
}

func (s *Server) handleExtract(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to read request body"})
		return
	}
	if len(body) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "empty request body"})
		return
	}
	if !isPDF(body) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "expected a PDF request body"})
		return
	}

	tmpDir, err := os.MkdirTemp("", "einvoice-extract-")
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to stage upload"})
		return
	}
	defer os.RemoveAll(tmpDir)

	pdfPath := filepath.Join(tmpDir, "upload.pdf")
	if err := os.WriteFile(pdfPath, body, 0o600); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to stage upload"})
		return
	}

	xml, err := container.Extract(pdfPath)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "extraction failed", Details: err.Error()})
		return
	}

	doc, err := cii.Parse(xml)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "failed to parse embedded XML", Details: err.Error()})
		return
	}

	c.JSON(http.StatusOK, ExtractResponse{
		Document: doc,
		XML:      string(xml),
	})
}

// decodeDocument accepts either CII XML or a JSON-encoded document.
func (s *Server) decodeDocument(body []byte) (*model.Document, error) {
	if cii.CanParse(body) {
		return cii.Parse(body)
	}
	var doc model.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *TotalsRequest) options() (totals.Options, error) {
	opts := totals.Options{TaxCurrency: r.TaxCurrency}

	if len(r.ExemptionReasons) > 0 {
		opts.ExemptionReasons = make(map[codes.TaxCategory]string, len(r.ExemptionReasons))
		for cat, reason := range r.ExemptionReasons {
			opts.ExemptionReasons[codes.TaxCategory(cat)] = reason
		}
	}

	if r.ExchangeRate != "" {
		rate, err := decimal.NewFromString(r.ExchangeRate)
		if err != nil {
			return opts, err
		}
		opts.ExchangeRate = &rate
	}

	return opts, nil
}

func isPDF(data []byte) bool {
	return len(data) >= 4 && data[0] == '%' && data[1] == 'P' && data[2] == 'D' && data[3] == 'F'
}
