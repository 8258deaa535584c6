package ledger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/fwledger/pkg/generate"
	"github.com/ssargent/fwledger/pkg/journal"
	"github.com/ssargent/fwledger/pkg/metrics"
	"github.com/ssargent/fwledger/pkg/store"
	"github.com/ssargent/fwledger/pkg/validate"
)

type recorder struct {
	events []journal.Event
}

func (r *recorder) Report(_ context.Context, e journal.Event) {
	r.events = append(r.events, e)
}

func (r *recorder) last() journal.Event {
	return r.events[len(r.events)-1]
}

// countingStore wraps a file store and counts persists
type countingStore struct {
	*store.FileStore
	persists int
}

func (s *countingStore) Persist(l *store.Ledger) error {
	s.persists++
	return s.FileStore.Persist(l)
}

func setupLedger(t *testing.T, n int) (*Service, *countingStore, *recorder, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test_file.txt")
	_, err := generate.Generate(context.Background(), path, n, generate.Options{Seed: 1})
	require.NoError(t, err)

	cs := &countingStore{FileStore: store.NewFileStore(store.FileStoreConfig{Path: path})}
	r := &recorder{}
	svc := New(cs, WithReporter(r), WithMetrics(metrics.NewMetrics(prometheus.NewRegistry())))
	return svc, cs, r, path
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.SplitAfter(string(data), "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// assertInvariants checks counter, control sum, ordinals and widths.
func assertInvariants(t *testing.T, path string) {
	t.Helper()
	lines := readLines(t, path)
	footer := lines[len(lines)-1]

	var sum int64
	for i, line := range lines[1 : len(lines)-1] {
		assert.Equal(t, fmt.Sprintf("%06d", i+1), line[2:8], "ordinal of transaction %d", i+1)
		amount, err := strconv.ParseInt(line[8:20], 10, 64)
		require.NoError(t, err)
		sum += amount
	}
	for i, line := range lines {
		assert.Len(t, line, 120, "line %d", i)
	}

	count, err := strconv.ParseInt(footer[2:8], 10, 64)
	require.NoError(t, err)
	controlSum, err := strconv.ParseInt(footer[8:20], 10, 64)
	require.NoError(t, err)

	assert.Equal(t, int64(len(lines)-2), count, "footer counter")
	assert.Equal(t, sum, controlSum, "footer control sum")
}

func TestGetField(t *testing.T) {
	svc, _, _, _ := setupLedger(t, 5)
	ctx := context.Background()

	tests := []struct {
		name  string
		index int
		field string
		want  string
	}{
		{"amount", 1, "amount", "000000000100"},
		{"counter", 3, "counter", "000003"},
		{"currency", 5, "currency", "USD"},
		{"prefix", 2, "field_id", "02"},
		{"prefix spelled out", 0, "Field ID", "01"},
		{"total counter ignores index", 4, "total_counter", "000005"},
		{"control sum ignores index", 0, "control_sum", "000000001500"},
		{"control sum beyond range", 999, "control_sum", "000000001500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := svc.GetField(ctx, tt.index, tt.field)
			require.NoError(t, err)
			assert.Equal(t, StatusOK, out.Status)
			assert.True(t, out.HasValue())
			assert.Equal(t, tt.want, out.Value)
		})
	}
}

func TestGetField_HeaderFields(t *testing.T) {
	svc, _, _, _ := setupLedger(t, 1)

	out, err := svc.GetField(context.Background(), 0, "name")
	require.NoError(t, err)
	assert.NotEmpty(t, out.Value)

	// a header field at a transaction index reads the same byte range
	out, err = svc.GetField(context.Background(), 1, "name")
	require.NoError(t, err)
	assert.Equal(t, StatusOK, out.Status)
	assert.Nil(t, out.Warning)
	assert.Equal(t, "000001000000000100USD", out.Value)

	_, err = svc.GetField(context.Background(), 2, "surname")
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestGetField_HeaderIndexForTransactionField(t *testing.T) {
	svc, cs, r, path := setupLedger(t, 5)
	before := readFile(t, path)

	for _, field := range []string{"counter", "amount", "currency"} {
		out, err := svc.GetField(context.Background(), 0, field)
		require.NoError(t, err, field)
		assert.Equal(t, StatusWarning, out.Status)
		assert.False(t, out.HasValue())
		assert.Empty(t, out.Value)
		require.NotNil(t, out.Warning)
		assert.Equal(t, WarnHeaderFieldMismatch, out.Warning.Kind)
		assert.Equal(t, journal.LevelWarning, r.last().Level)
	}

	assert.Zero(t, cs.persists)
	assert.Equal(t, before, readFile(t, path))
}

func TestGetField_Errors(t *testing.T) {
	svc, _, r, _ := setupLedger(t, 5)

	_, err := svc.GetField(context.Background(), 1, "invalid_field")
	assert.ErrorIs(t, err, ErrFieldNotFound)
	assert.Equal(t, journal.LevelError, r.last().Level)

	for _, index := range []int{-1, 6, 7} {
		_, err = svc.GetField(context.Background(), index, "amount")
		assert.ErrorIs(t, err, ErrIndexOutOfRange, "index %d", index)
	}

	_, err = svc.GetField(context.Background(), 1, "reserved_space")
	assert.ErrorIs(t, err, ErrFieldNotFound)
}

func TestGetField_MissingFile(t *testing.T) {
	svc := Open(filepath.Join(t.TempDir(), "missing.txt"))
	_, err := svc.GetField(context.Background(), 1, "amount")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSetField_Amount(t *testing.T) {
	svc, cs, r, path := setupLedger(t, 5)

	out, err := svc.SetField(context.Background(), 1, "amount", "1500")
	require.NoError(t, err)
	assert.Equal(t, StatusOK, out.Status)
	assert.Equal(t, "000000150000", out.Value)
	require.NotNil(t, out.Aggregates)
	assert.Equal(t, int64(5), out.Aggregates.Counter)
	assert.Equal(t, int64(1500-100+150000), out.Aggregates.ControlSum)
	assert.Equal(t, 1, cs.persists)

	lines := readLines(t, path)
	assert.Equal(t, "000000150000", lines[1][8:20])
	assert.Len(t, lines[1], 120)
	assert.Equal(t, fmt.Sprintf("%012d", 1500-100+150000), lines[6][8:20])
	assert.Equal(t, "field 'amount' updated successfully for record 1", r.last().Message)
	assertInvariants(t, path)
}

func TestSetField_ControlSumDelta(t *testing.T) {
	svc, _, _, path := setupLedger(t, 5)
	lines := readLines(t, path)
	initial, err := strconv.ParseInt(lines[6][8:20], 10, 64)
	require.NoError(t, err)
	old, err := strconv.ParseInt(lines[2][8:20], 10, 64)
	require.NoError(t, err)

	_, err = svc.SetField(context.Background(), 2, "amount", "200.00")
	require.NoError(t, err)

	updated := readLines(t, path)
	got, err := strconv.ParseInt(updated[6][8:20], 10, 64)
	require.NoError(t, err)
	assert.Equal(t, initial+20000-old, got)
	assertInvariants(t, path)
}

func TestSetField_RoundTrip(t *testing.T) {
	svc, _, _, path := setupLedger(t, 5)
	ctx := context.Background()

	for index := 1; index <= 5; index++ {
		value := fmt.Sprintf("%d.%02d", index*37, index)
		set, err := svc.SetField(ctx, index, "amount", value)
		require.NoError(t, err)

		got, err := svc.GetField(ctx, index, "amount")
		require.NoError(t, err)
		assert.Equal(t, set.Value, got.Value)
		assert.Len(t, got.Value, 12)
	}
	assertInvariants(t, path)
}

func TestSetField_OtherFields(t *testing.T) {
	svc, _, _, path := setupLedger(t, 3)
	ctx := context.Background()

	_, err := svc.SetField(ctx, 2, "currency", "EUR")
	require.NoError(t, err)
	_, err = svc.SetField(ctx, 0, "surname", "Kowalski")
	require.NoError(t, err)
	_, err = svc.SetField(ctx, 1, "reserved_space", "memo")
	require.NoError(t, err)

	lines := readLines(t, path)
	assert.Equal(t, "EUR", lines[2][20:23])
	assert.Equal(t, "Kowalski", strings.TrimSpace(lines[0][30:60]))
	assert.Equal(t, "memo", strings.TrimSpace(lines[1][23:119]))
	assertInvariants(t, path)
	assert.NoError(t, svc.Validate(ctx))
}

func TestSetField_LastTransaction(t *testing.T) {
	svc, _, _, path := setupLedger(t, 5)

	_, err := svc.SetField(context.Background(), 5, "amount", "1")
	require.NoError(t, err)
	assertInvariants(t, path)
}

func TestSetField_ClosedFieldIsNoop(t *testing.T) {
	svc, cs, r, path := setupLedger(t, 5)
	before := readFile(t, path)

	for _, field := range []string{"Counter", "Field ID", "counter", "field_id"} {
		out, err := svc.SetField(context.Background(), 1, field, "000009")
		require.NoError(t, err, field)
		assert.Equal(t, StatusWarning, out.Status)
		require.NotNil(t, out.Warning)
		assert.Equal(t, WarnClosedField, out.Warning.Kind)
		assert.Equal(t, journal.LevelWarning, r.last().Level)
	}

	assert.Zero(t, cs.persists)
	assert.Equal(t, before, readFile(t, path))
}

func TestSetField_KindMismatchIsNoop(t *testing.T) {
	svc, cs, _, path := setupLedger(t, 2)
	before := readFile(t, path)

	out, err := svc.SetField(context.Background(), 0, "amount", "10")
	require.NoError(t, err)
	assert.Equal(t, WarnHeaderFieldMismatch, out.Warning.Kind)

	out, err = svc.SetField(context.Background(), 1, "name", "John")
	require.NoError(t, err)
	assert.Equal(t, WarnRecordKindMismatch, out.Warning.Kind)

	assert.Zero(t, cs.persists)
	assert.Equal(t, before, readFile(t, path))
}

func TestSetField_Errors(t *testing.T) {
	tests := []struct {
		name    string
		index   int
		field   string
		value   string
		wantErr error
	}{
		{"non numeric amount", 1, "amount", "abc", ErrInvalidAmount},
		{"invalid value", 1, "amount", "invalid_value", ErrInvalidAmount},
		{"negative amount", 1, "amount", "-3", ErrInvalidAmount},
		{"amount too long", 1, "amount", "10000000000", ErrValueTooLong},
		{"currency too long", 1, "currency", "EURO", ErrValueTooLong},
		{"name too long", 0, "name", strings.Repeat("x", 29), ErrValueTooLong},
		{"unknown field", 1, "invalid_field", "x", ErrFieldNotFound},
		{"aggregate is not writable", 1, "control_sum", "1", ErrFieldNotFound},
		{"footer index", 6, "amount", "1", ErrIndexOutOfRange},
		{"negative index", -1, "amount", "1", ErrIndexOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, cs, _, path := setupLedger(t, 5)
			before := readFile(t, path)

			_, err := svc.SetField(context.Background(), tt.index, tt.field, tt.value)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, cs.persists)
			assert.Equal(t, before, readFile(t, path))
		})
	}
}

func TestAppendTransaction(t *testing.T) {
	svc, cs, r, path := setupLedger(t, 5)

	out, err := svc.AppendTransaction(context.Background(), 100, "PLN")
	require.NoError(t, err)
	assert.Equal(t, "000006", out.Value)
	require.NotNil(t, out.Aggregates)
	assert.Equal(t, int64(6), out.Aggregates.Counter)
	assert.Equal(t, int64(1500+10000), out.Aggregates.ControlSum)
	assert.Equal(t, 1, cs.persists)

	lines := readLines(t, path)
	require.Len(t, lines, 8) // 6 original lines + 1 new transaction + 1 footer line

	transaction := lines[len(lines)-2]
	assert.Len(t, transaction, 120)
	assert.Equal(t, "02", transaction[0:2])
	assert.Equal(t, "000006", transaction[2:8])
	assert.Equal(t, "000000010000", transaction[8:20])
	assert.Equal(t, "PLN", transaction[20:23])
	assert.Equal(t, strings.Repeat(" ", 96)+"\n", transaction[23:])

	footer := lines[len(lines)-1]
	assert.Equal(t, "000006", footer[2:8])
	assert.Equal(t, "000000011500", footer[8:20])

	assert.Contains(t, r.last().Message, "updated counter: 000006")
	assertInvariants(t, path)
	assert.NoError(t, svc.Validate(context.Background()))
}

func TestAppendTransaction_Sequence(t *testing.T) {
	svc, _, _, path := setupLedger(t, 1)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, err := svc.AppendTransaction(ctx, int64(i*13), "EUR")
		require.NoError(t, err)
		if i%3 == 0 {
			_, err = svc.SetField(ctx, 1, "amount", fmt.Sprintf("%d.5", i))
			require.NoError(t, err)
		}
	}

	assertInvariants(t, path)
	out, err := svc.GetField(ctx, 0, "total_counter")
	require.NoError(t, err)
	assert.Equal(t, "000011", out.Value)
}

func TestAppendTransaction_KeepsFooterWithoutTerminator(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.txt")
	l, err := generate.Build(2, generate.Options{Seed: 9})
	require.NoError(t, err)
	data := strings.TrimSuffix(l.String(), "\n") + " "
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	svc := Open(path)
	require.NoError(t, svc.Validate(context.Background()))

	_, err = svc.AppendTransaction(context.Background(), 5, "USD")
	require.NoError(t, err)

	lines := readLines(t, path)
	footer := lines[len(lines)-1]
	assert.Len(t, footer, 120)
	assert.False(t, strings.HasSuffix(footer, "\n"))
	assert.Equal(t, "000003", footer[2:8])
	assert.NoError(t, svc.Validate(context.Background()))
}

func TestAppendTransaction_CurrencyCase(t *testing.T) {
	svc, _, _, path := setupLedger(t, 1)

	_, err := svc.AppendTransaction(context.Background(), 3, "eur")
	require.NoError(t, err)

	lines := readLines(t, path)
	assert.Equal(t, "EUR", lines[2][20:23])
	assertInvariants(t, path)
}

func TestAppendTransaction_Errors(t *testing.T) {
	tests := []struct {
		name     string
		amount   int64
		currency string
		wantErr  error
	}{
		{"negative amount", -1, "PLN", ErrInvalidAmount},
		{"amount too large", 10_000_000_000, "PLN", ErrValueTooLong},
		{"currency too long", 1, "EURO", ErrInvalidCurrency},
		{"unknown currency", 1, "GBP", ErrInvalidCurrency},
		{"short currency", 1, "x", ErrInvalidCurrency},
		{"empty currency", 1, "", ErrInvalidCurrency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, cs, _, path := setupLedger(t, 5)
			before := readFile(t, path)

			_, err := svc.AppendTransaction(context.Background(), tt.amount, tt.currency)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, cs.persists)
			assert.Equal(t, before, readFile(t, path))
		})
	}
}

func TestAppendTransaction_CounterOverflow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "full.txt")
	l, err := generate.Build(1, generate.Options{Seed: 2})
	require.NoError(t, err)
	footer, err := l.Footer()
	require.NoError(t, err)
	require.NoError(t, l.ReplaceFooter(footer[:2]+"999999"+footer[8:]))
	require.NoError(t, store.NewFileStore(store.FileStoreConfig{Path: path}).Persist(l))

	_, err = Open(path).AppendTransaction(context.Background(), 1, "USD")
	assert.ErrorIs(t, err, ErrValueTooLong)
}

func TestValidate(t *testing.T) {
	svc, _, r, path := setupLedger(t, 5)
	require.NoError(t, svc.Validate(context.Background()))
	assert.Equal(t, "file validation passed", r.last().Message)

	lines := readLines(t, path)
	lines[3] = "04" + lines[3][2:]
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "")), 0644))

	err := svc.Validate(context.Background())
	assert.ErrorIs(t, err, ErrStructuralViolation)
	var serr *validate.StructuralError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, 3, serr.Index)
	assert.Equal(t, journal.LevelError, r.last().Level)
	require.NotNil(t, r.last().Index)
	assert.Equal(t, 3, *r.last().Index)
}

func TestOutcomeStatusText(t *testing.T) {
	text, err := StatusWarning.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "warning", string(text))
	assert.Equal(t, "ok", StatusOK.String())
}
