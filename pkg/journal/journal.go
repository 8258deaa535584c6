// Package journal receives the outcomes reported by ledger operations and
// decides where they go: a slog logger, a pebble-backed audit trail, or both.
package journal

import (
	"context"
	"log/slog"
	"time"
)

// Level is the severity of a reported outcome
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Operation names reported by the ledger
const (
	OpGetField          = "get_field"
	OpSetField          = "set_field"
	OpAppendTransaction = "add_transaction"
	OpValidate          = "validate"
	OpGenerate          = "generate"
)

// Event is one reported outcome
type Event struct {
	ID        string    `json:"id,omitempty"`
	Time      time.Time `json:"time"`
	Operation string    `json:"operation"`
	Level     Level     `json:"level"`
	Path      string    `json:"path,omitempty"`
	Index     *int      `json:"index,omitempty"`
	Field     string    `json:"field,omitempty"`
	Value     string    `json:"value,omitempty"`
	Message   string    `json:"message"`
}

// Reporter accepts outcome events. Reporting never fails the operation that
// produced the event.
type Reporter interface {
	Report(ctx context.Context, e Event)
}

// Discard drops every event
var Discard Reporter = discard{}

type discard struct{}

func (discard) Report(context.Context, Event) {}

// Multi fans an event out to every reporter in order
func Multi(reporters ...Reporter) Reporter {
	return multi(reporters)
}

type multi []Reporter

func (m multi) Report(ctx context.Context, e Event) {
	for _, r := range m {
		r.Report(ctx, e)
	}
}

// LogReporter writes events to a slog logger
type LogReporter struct {
	logger *slog.Logger
}

// NewLogReporter creates a reporter backed by logger
func NewLogReporter(logger *slog.Logger) *LogReporter {
	return &LogReporter{logger: logger}
}

// Report logs the event at the slog level matching its Level
func (r *LogReporter) Report(ctx context.Context, e Event) {
	attrs := []any{slog.String("operation", e.Operation)}
	if e.Path != "" {
		attrs = append(attrs, slog.String("path", e.Path))
	}
	if e.Index != nil {
		attrs = append(attrs, slog.Int("index", *e.Index))
	}
	if e.Field != "" {
		attrs = append(attrs, slog.String("field", e.Field))
	}
	if e.Value != "" {
		attrs = append(attrs, slog.String("value", e.Value))
	}

	switch e.Level {
	case LevelError:
		r.logger.ErrorContext(ctx, e.Message, attrs...)
	case LevelWarning:
		r.logger.WarnContext(ctx, e.Message, attrs...)
	default:
		r.logger.InfoContext(ctx, e.Message, attrs...)
	}
}

// IndexOf returns a pointer suitable for Event.Index
func IndexOf(i int) *int {
	return &i
}
