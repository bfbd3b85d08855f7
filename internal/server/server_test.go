package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/einvoice/internal/cii"
	"github.com/rezonia/einvoice/internal/codes"
	"github.com/rezonia/einvoice/internal/model"
	"github.com/rezonia/einvoice/internal/totals"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return NewServer(&Config{
		Address:      ":0",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	})
}

func testDocument() *model.Document {
	price := decimal.NewFromFloat(151.5)
	rate := decimal.NewFromInt(19)
	return &model.Document{
		ID:       "TEST-2024-001",
		TypeCode: codes.DocTypeInvoice,
		Currency: "EUR",
		Seller: model.Party{
			Name:  "Seller GmbH",
			VATID: "DE123456789",
		},
		Buyer: model.Party{Name: "Buyer AG"},
		Lines: []model.Line{
			{
				ID:       "1",
				Name:     "Widget",
				Quantity: decimal.NewFromInt(1),
				Price:    model.Price{NetUnitPrice: &price},
				Tax: model.TaxAssignment{
					TypeCode:    codes.TaxTypeVAT,
					Category:    codes.CategoryStandardRate,
					RatePercent: &rate,
				},
			},
		},
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestTotalsEndpoint(t *testing.T) {
	s := newTestServer(t)

	body, err := json.Marshal(TotalsRequest{Document: testDocument()})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/totals", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	s.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp TotalsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Document.Totals)
	assert.Equal(t, "151.5", resp.Document.Totals.NetTotal.String())
	assert.Equal(t, "180.29", resp.Document.Totals.PayableAmount.String())
}

func TestTotalsEndpoint_MissingDocument(t *testing.T) {
	s := newTestServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/totals", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestValidateEndpoint_JSON(t *testing.T) {
	s := newTestServer(t)

	doc := testDocument()
	require.NoError(t, totals.Calculate(doc, totals.Options{}))

	body, err := json.Marshal(doc)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/validate", bytes.NewReader(body))
	s.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp ValidationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Valid)
	assert.Empty(t, resp.Errors)
}

func TestValidateEndpoint_ReportsViolations(t *testing.T) {
	s := newTestServer(t)

	doc := testDocument()
	doc.Seller.VATID = ""
	require.NoError(t, totals.Calculate(doc, totals.Options{}))

	body, err := json.Marshal(doc)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/validate", bytes.NewReader(body))
	s.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp ValidationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Valid)
	require.NotEmpty(t, resp.Errors)
	assert.Equal(t, "BR-S-2", resp.Errors[0].RuleCode)
}

func TestValidateEndpoint_XML(t *testing.T) {
	s := newTestServer(t)

	doc := testDocument()
	require.NoError(t, totals.Calculate(doc, totals.Options{}))
	xml, err := cii.Write(doc)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/validate", bytes.NewReader(xml))
	s.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp ValidationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Valid)
}

func TestValidateEndpoint_EmptyBody(t *testing.T) {
	s := newTestServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/validate", nil)
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExtractEndpoint_RejectsNonPDF(t *testing.T) {
	s := newTestServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract", bytes.NewReader([]byte("<xml/>")))
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
