package api

import (
	"fmt"

	"github.com/ssargent/fwledger/pkg/ledger"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool            `json:"success"`
	Data    interface{}     `json:"data,omitempty"`
	Warning *ledger.Warning `json:"warning,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// FieldResponse is the data returned by the record endpoints
type FieldResponse struct {
	Index      int                `json:"index"`
	Field      string             `json:"field"`
	Value      string             `json:"value,omitempty"`
	Aggregates *ledger.Aggregates `json:"aggregates,omitempty"`
}

// SetFieldRequest is the body of PUT /records/{index}/{field}
type SetFieldRequest struct {
	Value string `json:"value"`
}

// AppendTransactionRequest is the body of POST /transactions
type AppendTransactionRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// TransactionResponse is the data returned after a transaction was added
type TransactionResponse struct {
	Counter    string             `json:"counter"`
	Aggregates *ledger.Aggregates `json:"aggregates,omitempty"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Bind   string
	Port   int
	APIKey string // X-API-Key required on /api/v1 when set
}

// Address returns the listen address
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Bind, c.Port)
}
