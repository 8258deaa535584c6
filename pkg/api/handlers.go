package api

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ssargent/fwledger/pkg/ledger"
	"github.com/ssargent/fwledger/pkg/metrics"
)

// maxBodyBytes bounds request bodies; the largest field is under 100 bytes.
const maxBodyBytes = 4096

// Server holds the API server state
type Server struct {
	ledger   LedgerService
	config   ServerConfig
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	logger   *slog.Logger

	// The ledger file has one writer at a time; every ledger request holds it.
	mutex sync.Mutex
}

// NewServer creates a new API server. gatherer backs /metrics and defaults
// to the global registry.
func NewServer(svc LedgerService, config ServerConfig, m *metrics.Metrics, gatherer prometheus.Gatherer, logger *slog.Logger) *Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		ledger:   svc,
		config:   config,
		metrics:  m,
		gatherer: gatherer,
		logger:   logger,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sendSuccess(w, map[string]string{"status": "healthy", "ledger": s.ledger.Path()})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := s.ledger.Validate(r.Context()); err != nil {
		sendLedgerError(w, err)
		return
	}
	sendSuccess(w, map[string]string{"status": "valid"})
}

func (s *Server) handleGetField(w http.ResponseWriter, r *http.Request) {
	index, ok := indexParam(w, r)
	if !ok {
		return
	}
	field := chi.URLParam(r, "field")

	s.mutex.Lock()
	defer s.mutex.Unlock()

	outcome, err := s.ledger.GetField(r.Context(), index, field)
	if err != nil {
		sendLedgerError(w, err)
		return
	}
	sendOutcome(w, outcome, FieldResponse{Index: index, Field: field, Value: outcome.Value})
}

func (s *Server) handleSetField(w http.ResponseWriter, r *http.Request) {
	index, ok := indexParam(w, r)
	if !ok {
		return
	}
	field := chi.URLParam(r, "field")

	var req SetFieldRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		sendError(w, "Invalid JSON in request body", http.StatusBadRequest)
		return
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	outcome, err := s.ledger.SetField(r.Context(), index, field, req.Value)
	if err != nil {
		sendLedgerError(w, err)
		return
	}
	sendOutcome(w, outcome, FieldResponse{Index: index, Field: field, Value: outcome.Value, Aggregates: outcome.Aggregates})
}

func (s *Server) handleAppendTransaction(w http.ResponseWriter, r *http.Request) {
	var req AppendTransactionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		sendError(w, "Invalid JSON in request body", http.StatusBadRequest)
		return
	}
	if req.Currency == "" {
		sendError(w, "currency is required", http.StatusBadRequest)
		return
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	outcome, err := s.ledger.AppendTransaction(r.Context(), req.Amount, req.Currency)
	if err != nil {
		sendLedgerError(w, err)
		return
	}
	sendOutcome(w, outcome, TransactionResponse{Counter: outcome.Value, Aggregates: outcome.Aggregates})
}

func indexParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		sendError(w, "index must be an integer", http.StatusBadRequest)
		return 0, false
	}
	return index, true
}

// sendOutcome sends data for a fulfilled request, or the warning alone for
// a deliberate no-op
func sendOutcome(w http.ResponseWriter, outcome ledger.Outcome, data interface{}) {
	if !outcome.HasValue() {
		sendJSON(w, http.StatusOK, APIResponse{Success: true, Warning: outcome.Warning})
		return
	}
	sendSuccess(w, data)
}

func sendLedgerError(w http.ResponseWriter, err error) {
	sendError(w, err.Error(), statusFor(err))
}

// statusFor maps ledger error kinds to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, ledger.ErrFieldNotFound), errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrValueTooLong), errors.Is(err, ledger.ErrInvalidAmount), errors.Is(err, ledger.ErrInvalidCurrency):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ledger.ErrIndexOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrStructuralViolation):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
