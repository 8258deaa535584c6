// Package generate produces well-formed example ledgers.
package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/ssargent/fwledger/pkg/codec"
	"github.com/ssargent/fwledger/pkg/journal"
	"github.com/ssargent/fwledger/pkg/layout"
	"github.com/ssargent/fwledger/pkg/store"
)

const (
	MinTransactions = 1
	MaxTransactions = 20000
	DefaultCurrency = "USD"
)

// ErrTransactionCount is returned for counts outside [MinTransactions, MaxTransactions].
var ErrTransactionCount = errors.New("transaction count must be between 1 and 20000")

// Options configures generation
type Options struct {
	Seed     uint64 // Faker seed, 0 picks a random one
	Currency string // Currency of every transaction, DefaultCurrency when empty
	Reporter journal.Reporter
}

// Holder is the person named in the header
type Holder struct {
	Name       string
	Surname    string
	Patronymic string
	Address    string
}

// Build creates a ledger with n transactions. Transaction i has counter i
// and amount i (stored scaled, i*100); the footer carries n and the sum.
func Build(n int, opts Options) (*store.Ledger, error) {
	if n < MinTransactions || n > MaxTransactions {
		return nil, fmt.Errorf("%w: got %d", ErrTransactionCount, n)
	}
	currency := opts.Currency
	if currency == "" {
		currency = DefaultCurrency
	}
	currency, err := codec.Currency(currency)
	if err != nil {
		return nil, err
	}

	c := codec.NewFieldCodec()
	header, err := headerLine(c, fakeHolder(opts.Seed))
	if err != nil {
		return nil, err
	}

	lines := make([]store.Line, 0, n+2)
	lines = append(lines, store.NewLine(header))

	var controlSum int64
	for i := 1; i <= n; i++ {
		scaled := int64(i) * codec.AmountScale
		controlSum += scaled

		line, err := record(c, layout.KindTransaction, []field{
			{layout.TransactionCounter, int64(i), ""},
			{layout.TransactionAmount, scaled, ""},
			{layout.TransactionCurrency, 0, currency},
		})
		if err != nil {
			return nil, err
		}
		lines = append(lines, store.NewLine(line))
	}

	footer, err := record(c, layout.KindFooter, []field{
		{layout.FooterCounter, int64(n), ""},
		{layout.FooterControlSum, controlSum, ""},
	})
	if err != nil {
		return nil, err
	}
	lines = append(lines, store.NewLine(footer))

	return store.NewLedger(lines), nil
}

// Generate builds a ledger with n transactions and writes it to path
func Generate(ctx context.Context, path string, n int, opts Options) (*store.Ledger, error) {
	reporter := opts.Reporter
	if reporter == nil {
		reporter = journal.Discard
	}

	l, err := Build(n, opts)
	if err != nil {
		reporter.Report(ctx, journal.Event{Operation: journal.OpGenerate, Level: journal.LevelError, Path: path, Message: err.Error()})
		return nil, err
	}

	if err := store.NewFileStore(store.FileStoreConfig{Path: path}).Persist(l); err != nil {
		reporter.Report(ctx, journal.Event{Operation: journal.OpGenerate, Level: journal.LevelError, Path: path, Message: err.Error()})
		return nil, err
	}

	footer, err := l.Footer()
	if err != nil {
		return nil, err
	}
	total := strings.TrimSpace(footer[layout.FooterControlSum.Start:layout.FooterControlSum.End])
	reporter.Report(ctx, journal.Event{
		Operation: journal.OpGenerate,
		Level:     journal.LevelInfo,
		Path:      path,
		Value:     total,
		Message:   fmt.Sprintf("example file with %d transactions generated successfully, total_amount: %s", n, total),
	})
	return l, nil
}

func fakeHolder(seed uint64) Holder {
	f := gofakeit.New(seed)
	return Holder{
		Name:       f.FirstName(),
		Surname:    f.LastName(),
		Patronymic: f.FirstName(),
		Address:    f.Street() + ", " + f.City(),
	}
}

type field struct {
	layout layout.Field
	number int64
	text   string
}

func headerLine(c *codec.FieldCodec, h Holder) (string, error) {
	line := layout.KindHeader.Prefix() + strings.Repeat(" ", layout.ContentWidth-layout.PrefixWidth)
	for _, f := range []field{
		{layout.HeaderName, 0, h.Name},
		{layout.HeaderSurname, 0, h.Surname},
		{layout.HeaderPatronymic, 0, h.Patronymic},
		{layout.HeaderAddress, 0, h.Address},
	} {
		start, end := f.layout.Span()
		encoded, err := c.Encode(f.layout, truncate(f.text, end-start))
		if err != nil {
			return "", err
		}
		if line, err = c.Apply(line, f.layout, encoded); err != nil {
			return "", err
		}
	}
	return line, nil
}

func record(c *codec.FieldCodec, kind layout.Kind, fields []field) (string, error) {
	line := kind.Prefix() + strings.Repeat(" ", layout.ContentWidth-layout.PrefixWidth)
	for _, f := range fields {
		var (
			encoded string
			err     error
		)
		if f.text != "" {
			encoded, err = c.Encode(f.layout, f.text)
		} else {
			start, end := f.layout.Span()
			encoded, err = codec.FormatInt(f.number, end-start)
		}
		if err != nil {
			return "", err
		}
		if line, err = c.Apply(line, f.layout, encoded); err != nil {
			return "", err
		}
	}
	return line, nil
}

// truncate cuts s to width runes; the codec folds what is left to ASCII.
func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) > width {
		r = r[:width]
	}
	return strings.TrimSpace(string(r))
}
