package ledger

import (
	"github.com/ssargent/fwledger/pkg/codec"
	"github.com/ssargent/fwledger/pkg/layout"
	"github.com/ssargent/fwledger/pkg/store"
	"github.com/ssargent/fwledger/pkg/validate"
)

// Error kinds surfaced by the operations. They abort the operation before
// anything is persisted.
var (
	ErrFieldNotFound       = layout.ErrFieldNotFound
	ErrValueTooLong        = codec.ErrValueTooLong
	ErrInvalidAmount       = codec.ErrInvalidAmount
	ErrInvalidCurrency     = codec.ErrInvalidCurrency
	ErrIndexOutOfRange     = store.ErrIndexOutOfRange
	ErrStructuralViolation = validate.ErrStructuralViolation
)

// Status tells a completed request from a deliberate no-op.
type Status int

const (
	// StatusOK means the request was fulfilled.
	StatusOK Status = iota
	// StatusWarning means nothing was read or written on purpose.
	StatusWarning
)

func (s Status) String() string {
	if s == StatusWarning {
		return "warning"
	}
	return "ok"
}

// MarshalText renders the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// WarningKind names the soft-fail conditions.
type WarningKind string

const (
	// WarnClosedField: a set targeted a field that never changes once written.
	WarnClosedField WarningKind = "closed_field"
	// WarnHeaderFieldMismatch: a transaction-only field was addressed at the header index.
	WarnHeaderFieldMismatch WarningKind = "header_field_mismatch"
	// WarnRecordKindMismatch: a header-only field was written at a transaction index.
	WarnRecordKindMismatch WarningKind = "record_kind_mismatch"
)

// Warning describes why an operation did nothing.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Message string      `json:"message"`
}

// Aggregates are the footer values after a mutation.
type Aggregates struct {
	Counter    int64 `json:"total_counter"`
	ControlSum int64 `json:"control_sum"`
}

// Outcome is the result of an operation that did not fail.
//
// Value is set by GetField (the decoded field), SetField (the encoded value
// written) and AppendTransaction (the new transaction counter). Aggregates is
// set whenever the footer was rewritten.
type Outcome struct {
	Status     Status      `json:"status"`
	Value      string      `json:"value,omitempty"`
	Warning    *Warning    `json:"warning,omitempty"`
	Aggregates *Aggregates `json:"aggregates,omitempty"`
}

// HasValue reports whether the outcome carries a value.
func (o Outcome) HasValue() bool {
	return o.Status == StatusOK
}

func warned(kind WarningKind, message string) Outcome {
	return Outcome{Status: StatusWarning, Warning: &Warning{Kind: kind, Message: message}}
}
