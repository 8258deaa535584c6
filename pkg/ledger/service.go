// Package ledger implements the operations on a fixed-width ledger file:
// reading a field, writing a field and appending a transaction, while
// keeping the footer counter and control sum consistent with the body.
//
// Every operation loads the whole file, works on the in-memory copy and
// persists it in one pass. Nothing is written when an operation fails.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ssargent/fwledger/pkg/codec"
	"github.com/ssargent/fwledger/pkg/journal"
	"github.com/ssargent/fwledger/pkg/layout"
	"github.com/ssargent/fwledger/pkg/metrics"
	"github.com/ssargent/fwledger/pkg/store"
	"github.com/ssargent/fwledger/pkg/validate"
)

// Store loads and persists a whole ledger
type Store interface {
	Load() (*store.Ledger, error)
	Persist(l *store.Ledger) error
	Path() string
}

// Option configures a Service
type Option func(*Service)

// WithReporter sets where outcomes are reported
func WithReporter(r journal.Reporter) Option {
	return func(s *Service) {
		s.reporter = r
	}
}

// WithMetrics sets the metrics operations are recorded on
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// Service runs ledger operations against one store
type Service struct {
	store    Store
	codec    *codec.FieldCodec
	reporter journal.Reporter
	metrics  *metrics.Metrics
}

// New creates a service over s
func New(s Store, opts ...Option) *Service {
	svc := &Service{
		store:    s,
		codec:    codec.NewFieldCodec(),
		reporter: journal.Discard,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Open creates a service over the ledger file at path
func Open(path string, opts ...Option) *Service {
	return New(store.NewFileStore(store.FileStoreConfig{Path: path}), opts...)
}

// Path returns the path of the underlying ledger
func (s *Service) Path() string {
	return s.store.Path()
}

// GetField reads a field of the record at index.
//
// Aggregate fields (total_counter, control_sum) are read from the footer
// whatever the index. Asking for a transaction field at index 0 returns a
// header-field-mismatch warning and no value. Any other field is decoded
// from the addressed line as it stands.
func (s *Service) GetField(ctx context.Context, index int, field string) (Outcome, error) {
	start := time.Now()
	event := journal.Event{Operation: journal.OpGetField, Index: journal.IndexOf(index), Field: field}

	f, err := layout.Read(field)
	if err != nil {
		return s.fail(ctx, start, event, err)
	}
	event.Field = f.Name

	l, err := s.store.Load()
	if err != nil {
		return s.fail(ctx, start, event, err)
	}

	var line string
	switch {
	case f.Aggregate():
		line, err = l.Footer()
	case f.Owner == layout.KindTransaction && index == 0:
		return s.warn(ctx, start, event, WarnHeaderFieldMismatch, "header index passed for a transaction field")
	default:
		line, err = l.Line(index)
	}
	if err != nil {
		return s.fail(ctx, start, event, err)
	}

	value, err := s.codec.Decode(line, f)
	if err != nil {
		return s.fail(ctx, start, event, err)
	}

	event.Value = value
	event.Message = "field read"
	return s.succeed(ctx, start, event, Outcome{Status: StatusOK, Value: value}), nil
}

// SetField writes value into a field of the record at index.
//
// Closed fields are never modified: the call is a no-op reported as a
// warning. When the field is the amount, the footer control sum is moved by
// the difference between the new and the old amount.
func (s *Service) SetField(ctx context.Context, index int, field, value string) (Outcome, error) {
	start := time.Now()
	event := journal.Event{Operation: journal.OpSetField, Index: journal.IndexOf(index), Field: field, Value: value}

	if layout.IsClosed(field) {
		return s.warn(ctx, start, event, WarnClosedField, fmt.Sprintf("%s field is forbidden for changes", field))
	}

	f, err := layout.Write(field)
	if err != nil {
		return s.fail(ctx, start, event, err)
	}
	event.Field = f.Name

	l, err := s.store.Load()
	if err != nil {
		return s.fail(ctx, start, event, err)
	}

	line, err := l.Line(index)
	if err != nil {
		return s.fail(ctx, start, event, err)
	}

	switch {
	case f.Owner == layout.KindTransaction && index == 0:
		return s.warn(ctx, start, event, WarnHeaderFieldMismatch, "header index passed for a transaction field")
	case f.Owner == layout.KindHeader && index != 0:
		return s.warn(ctx, start, event, WarnRecordKindMismatch, "transaction index passed for a header field")
	}

	encoded, err := s.codec.Encode(f, value)
	if err != nil {
		return s.fail(ctx, start, event, err)
	}
	updated, err := s.codec.Apply(line, f, encoded)
	if err != nil {
		return s.fail(ctx, start, event, err)
	}
	if err := l.Replace(index, updated); err != nil {
		return s.fail(ctx, start, event, err)
	}

	outcome := Outcome{Status: StatusOK, Value: encoded}
	if f.Type == layout.Amount {
		agg, err := s.shiftControlSum(l, line, encoded)
		if err != nil {
			return s.fail(ctx, start, event, err)
		}
		outcome.Aggregates = agg
	}

	if err := s.store.Persist(l); err != nil {
		return s.fail(ctx, start, event, err)
	}

	if outcome.Aggregates != nil {
		s.metrics.UpdateAggregates(outcome.Aggregates.Counter, outcome.Aggregates.ControlSum)
	}
	event.Value = encoded
	event.Message = fmt.Sprintf("field '%s' updated successfully for record %d", f.Name, index)
	return s.succeed(ctx, start, event, outcome), nil
}

// shiftControlSum applies new-old amount of the edited line to the footer.
func (s *Service) shiftControlSum(l *store.Ledger, oldLine, encoded string) (*Aggregates, error) {
	oldAmount, err := s.codec.DecodeInt(oldLine, layout.TransactionAmount)
	if err != nil {
		return nil, err
	}
	newAmount, err := codec.ParseInt(encoded)
	if err != nil {
		return nil, err
	}

	footer, err := l.Footer()
	if err != nil {
		return nil, err
	}
	counter, err := s.codec.DecodeInt(footer, layout.FooterCounter)
	if err != nil {
		return nil, err
	}
	current, err := s.codec.DecodeInt(footer, layout.FooterControlSum)
	if err != nil {
		return nil, err
	}

	sum := current + newAmount - oldAmount
	footer, err = s.writeInt(footer, layout.FooterControlSum, sum)
	if err != nil {
		return nil, err
	}
	if err := l.ReplaceFooter(footer); err != nil {
		return nil, err
	}
	return &Aggregates{Counter: counter, ControlSum: sum}, nil
}

// AppendTransaction adds a transaction of amount whole units, inserted right
// before the footer, and moves the footer counter and control sum with it.
// The currency must be one of codec.Currencies, in any case.
func (s *Service) AppendTransaction(ctx context.Context, amount int64, currency string) (Outcome, error) {
	start := time.Now()
	event := journal.Event{Operation: journal.OpAppendTransaction, Value: fmt.Sprintf("%d %s", amount, currency)}

	scaled, err := codec.ScaleWhole(amount)
	if err != nil {
		return s.fail(ctx, start, event, err)
	}
	if currency, err = codec.Currency(currency); err != nil {
		return s.fail(ctx, start, event, err)
	}

	l, err := s.store.Load()
	if err != nil {
		return s.fail(ctx, start, event, err)
	}

	footer, err := l.Footer()
	if err != nil {
		return s.fail(ctx, start, event, err)
	}
	counter, err := s.codec.DecodeInt(footer, layout.FooterCounter)
	if err != nil {
		return s.fail(ctx, start, event, err)
	}
	sum, err := s.codec.DecodeInt(footer, layout.FooterControlSum)
	if err != nil {
		return s.fail(ctx, start, event, err)
	}

	agg := Aggregates{Counter: counter + 1, ControlSum: sum + scaled}

	line, err := s.transactionLine(agg.Counter, scaled, currency)
	if err != nil {
		return s.fail(ctx, start, event, err)
	}
	if footer, err = s.writeInt(footer, layout.FooterCounter, agg.Counter); err != nil {
		return s.fail(ctx, start, event, err)
	}
	if footer, err = s.writeInt(footer, layout.FooterControlSum, agg.ControlSum); err != nil {
		return s.fail(ctx, start, event, err)
	}

	if err := l.InsertBeforeFooter(line); err != nil {
		return s.fail(ctx, start, event, err)
	}
	if err := l.ReplaceFooter(footer); err != nil {
		return s.fail(ctx, start, event, err)
	}
	if err := s.store.Persist(l); err != nil {
		return s.fail(ctx, start, event, err)
	}

	s.metrics.UpdateAggregates(agg.Counter, agg.ControlSum)
	counterText := line[layout.TransactionCounter.Start:layout.TransactionCounter.End]
	event.Message = fmt.Sprintf("added a new transaction, updated counter: %s, new total sum: %d", counterText, agg.ControlSum)
	return s.succeed(ctx, start, event, Outcome{Status: StatusOK, Value: counterText, Aggregates: &agg}), nil
}

// transactionLine builds a full transaction line: prefix, counter, amount,
// currency and a space-padded reserved tail.
func (s *Service) transactionLine(counter, scaled int64, currency string) (string, error) {
	line := layout.KindTransaction.Prefix() + strings.Repeat(" ", layout.ContentWidth-layout.PrefixWidth)

	line, err := s.writeInt(line, layout.TransactionCounter, counter)
	if err != nil {
		return "", err
	}
	if line, err = s.writeInt(line, layout.TransactionAmount, scaled); err != nil {
		return "", err
	}
	encoded, err := s.codec.Encode(layout.TransactionCurrency, currency)
	if err != nil {
		return "", err
	}
	return s.codec.Apply(line, layout.TransactionCurrency, encoded)
}

func (s *Service) writeInt(line string, f layout.Field, n int64) (string, error) {
	start, end := f.Span()
	encoded, err := codec.FormatInt(n, end-start)
	if err != nil {
		return "", fmt.Errorf("%s: %w", f.Name, err)
	}
	return s.codec.Apply(line, f, encoded)
}

// Validate checks the structure of the ledger file
func (s *Service) Validate(ctx context.Context) error {
	start := time.Now()
	event := journal.Event{Operation: journal.OpValidate}

	l, err := s.store.Load()
	if err != nil {
		_, err = s.fail(ctx, start, event, err)
		return err
	}
	if err := validate.Ledger(l); err != nil {
		var serr *validate.StructuralError
		if errors.As(err, &serr) {
			event.Index = journal.IndexOf(serr.Index)
		}
		event.Message = "validation failed: " + err.Error()
		_, err = s.fail(ctx, start, event, err)
		return err
	}

	event.Value = strconv.Itoa(l.Transactions())
	event.Message = "file validation passed"
	s.succeed(ctx, start, event, Outcome{Status: StatusOK})
	return nil
}

func (s *Service) succeed(ctx context.Context, start time.Time, event journal.Event, outcome Outcome) Outcome {
	event.Time = time.Now()
	event.Level = journal.LevelInfo
	event.Path = s.store.Path()
	s.reporter.Report(ctx, event)
	s.metrics.RecordOperation(event.Operation, metrics.StatusSuccess, time.Since(start))
	return outcome
}

func (s *Service) warn(ctx context.Context, start time.Time, event journal.Event, kind WarningKind, message string) (Outcome, error) {
	event.Time = time.Now()
	event.Level = journal.LevelWarning
	event.Path = s.store.Path()
	event.Message = message
	s.reporter.Report(ctx, event)
	s.metrics.RecordOperation(event.Operation, metrics.StatusWarning, time.Since(start))
	return warned(kind, message), nil
}

func (s *Service) fail(ctx context.Context, start time.Time, event journal.Event, err error) (Outcome, error) {
	event.Time = time.Now()
	event.Level = journal.LevelError
	event.Path = s.store.Path()
	if event.Message == "" {
		event.Message = err.Error()
	}
	s.reporter.Report(ctx, event)
	s.metrics.RecordOperation(event.Operation, metrics.StatusError, time.Since(start))
	return Outcome{}, err
}
