package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/fwledger/pkg/generate"
	"github.com/ssargent/fwledger/pkg/ledger"
	"github.com/ssargent/fwledger/pkg/logging"
	"github.com/ssargent/fwledger/pkg/metrics"
)

func setupTestServer(t *testing.T, apiKey string) (http.Handler, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.txt")
	_, err := generate.Generate(context.Background(), path, 5, generate.Options{Seed: 1})
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	svc := ledger.Open(path, ledger.WithMetrics(m))
	server := NewServer(svc, ServerConfig{Bind: "127.0.0.1", APIKey: apiKey}, m, reg, logging.Discard())
	return server.Router(), path
}

func do(t *testing.T, h http.Handler, method, target string, body interface{}) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var response APIResponse
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(bytes.NewReader(w.Body.Bytes())).Decode(&response))
	}
	return w, response
}

func TestServer_handleHealth(t *testing.T) {
	h, path := setupTestServer(t, "")

	w, response := do(t, h, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, response.Success)
	data := response.Data.(map[string]interface{})
	assert.Equal(t, "healthy", data["status"])
	assert.Equal(t, path, data["ledger"])
}

func TestServer_handleGetField(t *testing.T) {
	h, _ := setupTestServer(t, "")

	w, response := do(t, h, "GET", "/api/v1/records/1/amount", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, response.Success)
	data := response.Data.(map[string]interface{})
	assert.Equal(t, "000000000100", data["value"])
	assert.Equal(t, float64(1), data["index"])

	w, response = do(t, h, "GET", "/api/v1/records/0/control_sum", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "000000001500", response.Data.(map[string]interface{})["value"])
}

func TestServer_handleGetField_Warning(t *testing.T) {
	h, _ := setupTestServer(t, "")

	w, response := do(t, h, "GET", "/api/v1/records/0/amount", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, response.Success)
	assert.Nil(t, response.Data)
	require.NotNil(t, response.Warning)
	assert.Equal(t, ledger.WarnHeaderFieldMismatch, response.Warning.Kind)
}

func TestServer_ErrorStatus(t *testing.T) {
	h, _ := setupTestServer(t, "")

	tests := []struct {
		name   string
		method string
		target string
		body   interface{}
		status int
	}{
		{"unknown field", "GET", "/api/v1/records/1/invalid_field", nil, http.StatusNotFound},
		{"index out of range", "GET", "/api/v1/records/42/amount", nil, http.StatusBadRequest},
		{"index not a number", "GET", "/api/v1/records/one/amount", nil, http.StatusBadRequest},
		{"invalid amount", "PUT", "/api/v1/records/1/amount", SetFieldRequest{Value: "abc"}, http.StatusUnprocessableEntity},
		{"value too long", "PUT", "/api/v1/records/1/currency", SetFieldRequest{Value: "EURO"}, http.StatusUnprocessableEntity},
		{"negative transaction", "POST", "/api/v1/transactions", AppendTransactionRequest{Amount: -1, Currency: "PLN"}, http.StatusUnprocessableEntity},
		{"missing currency", "POST", "/api/v1/transactions", AppendTransactionRequest{Amount: 1}, http.StatusBadRequest},
		{"unknown currency", "POST", "/api/v1/transactions", AppendTransactionRequest{Amount: 1, Currency: "GBP"}, http.StatusUnprocessableEntity},
		{"short currency", "POST", "/api/v1/transactions", AppendTransactionRequest{Amount: 1, Currency: "x"}, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, response := do(t, h, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.False(t, response.Success)
			assert.NotEmpty(t, response.Error)
		})
	}
}

func TestServer_handleSetField(t *testing.T) {
	h, _ := setupTestServer(t, "")

	w, response := do(t, h, "PUT", "/api/v1/records/1/amount", SetFieldRequest{Value: "1500"})
	require.Equal(t, http.StatusOK, w.Code)
	data := response.Data.(map[string]interface{})
	assert.Equal(t, "000000150000", data["value"])
	aggregates := data["aggregates"].(map[string]interface{})
	assert.Equal(t, float64(151400), aggregates["control_sum"])

	w, response = do(t, h, "PUT", "/api/v1/records/1/counter", SetFieldRequest{Value: "9"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, response.Warning)
	assert.Equal(t, ledger.WarnClosedField, response.Warning.Kind)

	w, _ = do(t, h, "PUT", "/api/v1/records/1/amount", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_handleAppendTransaction(t *testing.T) {
	h, path := setupTestServer(t, "")

	w, response := do(t, h, "POST", "/api/v1/transactions", AppendTransactionRequest{Amount: 100, Currency: "PLN"})
	require.Equal(t, http.StatusOK, w.Code)
	data := response.Data.(map[string]interface{})
	assert.Equal(t, "000006", data["counter"])

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 8*120, len(content))

	w, _ = do(t, h, "GET", "/api/v1/validate", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_handleAppendTransaction_CurrencyCase(t *testing.T) {
	h, path := setupTestServer(t, "")

	w, _ := do(t, h, "POST", "/api/v1/transactions", AppendTransactionRequest{Amount: 1, Currency: "pln"})
	require.Equal(t, http.StatusOK, w.Code)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(string(content), "\n")
	assert.Equal(t, "PLN", lines[6][20:23])
}

func TestServer_handleValidate_Conflict(t *testing.T) {
	h, path := setupTestServer(t, "")
	require.NoError(t, os.WriteFile(path, []byte("01 short\n"), 0644))

	w, response := do(t, h, "GET", "/api/v1/validate", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, response.Error, "structural violation")
}

func TestServer_MissingLedger(t *testing.T) {
	h, path := setupTestServer(t, "")
	require.NoError(t, os.Remove(path))

	w, _ := do(t, h, "GET", "/api/v1/records/1/amount", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_Metrics(t *testing.T) {
	h, _ := setupTestServer(t, "")
	do(t, h, "GET", "/api/v1/records/1/amount", nil)

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "fwledger_operations_total")
	assert.Contains(t, w.Body.String(), "fwledger_http_requests_total")
}
