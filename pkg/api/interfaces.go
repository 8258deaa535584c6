// Package api provides interfaces for dependency injection
package api

import (
	"context"

	"github.com/ssargent/fwledger/pkg/ledger"
)

// LedgerService defines the ledger operations the server exposes
type LedgerService interface {
	GetField(ctx context.Context, index int, field string) (ledger.Outcome, error)
	SetField(ctx context.Context, index int, field, value string) (ledger.Outcome, error)
	AppendTransaction(ctx context.Context, amount int64, currency string) (ledger.Outcome, error)
	Validate(ctx context.Context) error
	Path() string
}

// ServerStarter defines the interface for starting the API server
type ServerStarter interface {
	// StartServer serves until ctx is cancelled or the listener fails
	StartServer(ctx context.Context, server *Server) error
}

// ServerFactory creates server instances
type ServerFactory interface {
	// CreateServerStarter creates a server starter
	CreateServerStarter() ServerStarter
}
