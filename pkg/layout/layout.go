// Package layout is the single source of truth for where each named field
// lives inside a fixed-width ledger line.
//
// Two tables are kept: the read table used by field lookups and the write
// table used by field updates. They overlap but are not identical. Only the
// write table exposes reserved_space, and only the read table exposes the
// footer aggregates total_counter and control_sum.
package layout

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// LineWidth is the width of a line including its terminator.
	LineWidth = 120
	// ContentWidth is the number of bytes before the terminator.
	ContentWidth = LineWidth - 1
	// PrefixWidth is the width of the record kind prefix.
	PrefixWidth = 2
)

// ErrFieldNotFound is returned for field names missing from a table.
var ErrFieldNotFound = errors.New("field not found")

// Kind identifies a record by its two-byte prefix.
type Kind int

const (
	KindUnknown Kind = iota
	KindHeader
	KindTransaction
	KindFooter
)

// Prefix returns the two-byte prefix written at [0,2) for the kind.
func (k Kind) Prefix() string {
	switch k {
	case KindHeader:
		return "01"
	case KindTransaction:
		return "02"
	case KindFooter:
		return "03"
	default:
		return ""
	}
}

func (k Kind) String() string {
	switch k {
	case KindHeader:
		return "header"
	case KindTransaction:
		return "transaction"
	case KindFooter:
		return "footer"
	default:
		return "unknown"
	}
}

// KindOf classifies a line by its prefix.
func KindOf(line string) Kind {
	if len(line) < PrefixWidth {
		return KindUnknown
	}
	switch line[:PrefixWidth] {
	case "01":
		return KindHeader
	case "02":
		return KindTransaction
	case "03":
		return KindFooter
	default:
		return KindUnknown
	}
}

// Mutability tells whether a field may be changed once written.
type Mutability int

const (
	Open Mutability = iota
	Closed
)

// Type is the semantic type of a field and selects its encoding.
type Type int

const (
	Text Type = iota
	Counter
	Amount
	Code
)

// Field describes one named byte range [Start,End) of a line.
//
// Owner is the record kind the field belongs to. KindUnknown means the field
// is shared by every record kind (the prefix). A field owned by KindFooter is
// an aggregate and is always resolved against the footer line.
type Field struct {
	Name       string
	Start      int
	End        int
	Mutability Mutability
	Type       Type
	Owner      Kind
}

// Width is the declared width of the field.
func (f Field) Width() int {
	return f.End - f.Start
}

// Span returns the usable byte range of the field. Ranges declared up to
// LineWidth stop at ContentWidth so the terminator is never overwritten.
func (f Field) Span() (start, end int) {
	end = f.End
	if end > ContentWidth {
		end = ContentWidth
	}
	return f.Start, end
}

// Closed reports whether the field rejects modification.
func (f Field) Closed() bool {
	return f.Mutability == Closed
}

// Aggregate reports whether the field lives on the footer.
func (f Field) Aggregate() bool {
	return f.Owner == KindFooter
}

// Field names.
const (
	FieldID       = "field_id"
	Name          = "name"
	Surname       = "surname"
	Patronymic    = "patronymic"
	Address       = "address"
	CounterField  = "counter"
	AmountField   = "amount"
	Currency      = "currency"
	ReservedSpace = "reserved_space"
	TotalCounter  = "total_counter"
	ControlSum    = "control_sum"
)

var (
	fieldID      = Field{Name: FieldID, Start: 0, End: 2, Mutability: Closed, Type: Code, Owner: KindUnknown}
	name         = Field{Name: Name, Start: 2, End: 30, Type: Text, Owner: KindHeader}
	surname      = Field{Name: Surname, Start: 30, End: 60, Type: Text, Owner: KindHeader}
	patronymic   = Field{Name: Patronymic, Start: 60, End: 90, Type: Text, Owner: KindHeader}
	address      = Field{Name: Address, Start: 90, End: 120, Type: Text, Owner: KindHeader}
	counter      = Field{Name: CounterField, Start: 2, End: 8, Mutability: Closed, Type: Counter, Owner: KindTransaction}
	amount       = Field{Name: AmountField, Start: 8, End: 20, Type: Amount, Owner: KindTransaction}
	currency     = Field{Name: Currency, Start: 20, End: 23, Type: Code, Owner: KindTransaction}
	reserved     = Field{Name: ReservedSpace, Start: 23, End: 120, Type: Text, Owner: KindTransaction}
	totalCounter = Field{Name: TotalCounter, Start: 2, End: 8, Mutability: Closed, Type: Counter, Owner: KindFooter}
	controlSum   = Field{Name: ControlSum, Start: 8, End: 20, Mutability: Closed, Type: Amount, Owner: KindFooter}
)

var readTable = map[string]Field{
	FieldID:      fieldID,
	Name:         name,
	Surname:      surname,
	Patronymic:   patronymic,
	Address:      address,
	CounterField: counter,
	AmountField:  amount,
	Currency:     currency,
	TotalCounter: totalCounter,
	ControlSum:   controlSum,
}

var writeTable = map[string]Field{
	FieldID:       fieldID,
	CounterField:  counter,
	AmountField:   amount,
	Currency:      currency,
	ReservedSpace: reserved,
	Name:          name,
	Surname:       surname,
	Patronymic:    patronymic,
	Address:       address,
}

// Footer aggregate ranges, used when the footer is rewritten as a whole.
var (
	FooterCounter    = totalCounter
	FooterControlSum = controlSum
)

// Transaction ranges, used when a new transaction line is built.
var (
	TransactionCounter  = counter
	TransactionAmount   = amount
	TransactionCurrency = currency
)

// Header ranges, used by the generator.
var (
	HeaderName       = name
	HeaderSurname    = surname
	HeaderPatronymic = patronymic
	HeaderAddress    = address
)

// Normalize maps a user supplied field name to its canonical form, so that
// "Field ID" and "field_id" name the same field.
func Normalize(field string) string {
	field = strings.ToLower(strings.TrimSpace(field))
	return strings.Join(strings.Fields(field), "_")
}

// Read resolves a field in the read table.
func Read(field string) (Field, error) {
	return lookup(readTable, field)
}

// Write resolves a field in the write table.
func Write(field string) (Field, error) {
	return lookup(writeTable, field)
}

// IsClosed reports whether the named field is closed in the write table.
// Unknown names are not closed.
func IsClosed(field string) bool {
	f, ok := writeTable[Normalize(field)]
	return ok && f.Closed()
}

func lookup(table map[string]Field, field string) (Field, error) {
	f, ok := table[Normalize(field)]
	if !ok {
		return Field{}, fmt.Errorf("%w: %q", ErrFieldNotFound, field)
	}
	return f, nil
}
