package codec

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/ssargent/fwledger/pkg/layout"
)

// Errors
var (
	ErrValueTooLong  = errors.New("value too long")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrNotNumeric    = errors.New("field is not numeric")
	ErrLineTooShort  = errors.New("line too short for field")

	ErrInvalidCurrency = errors.New("invalid currency")
)

// Currencies a transaction may be recorded in
var Currencies = []string{"PLN", "USD", "EUR"}

// AmountScale is the factor between a monetary value and its stored form.
const AmountScale = 100

// FieldCodec encodes and decodes fields within a single line
type FieldCodec struct{}

// NewFieldCodec creates a new field codec instance
func NewFieldCodec() *FieldCodec {
	return &FieldCodec{}
}

// Decode extracts the trimmed text held by f in line.
// Numeric fields come back as text; use ParseInt to read them.
func (c *FieldCodec) Decode(line string, f layout.Field) (string, error) {
	start, end, err := span(line, f)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line[start:end]), nil
}

// DecodeInt reads a counter or amount field as an integer.
func (c *FieldCodec) DecodeInt(line string, f layout.Field) (int64, error) {
	raw, err := c.Decode(line, f)
	if err != nil {
		return 0, err
	}
	n, err := ParseInt(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", f.Name, err)
	}
	return n, nil
}

// Encode renders value into exactly the usable width of f.
func (c *FieldCodec) Encode(f layout.Field, value string) (string, error) {
	start, end := f.Span()
	width := end - start

	switch f.Type {
	case layout.Amount:
		encoded, _, err := EncodeAmount(value, width)
		return encoded, err
	case layout.Counter:
		n, err := ParseInt(value)
		if err != nil {
			return "", fmt.Errorf("%s: %w", f.Name, err)
		}
		return FormatInt(n, width)
	default:
		return padText(f.Name, value, width)
	}
}

// Apply writes an encoded value into the range of f, leaving the rest of
// the line untouched.
func (c *FieldCodec) Apply(line string, f layout.Field, encoded string) (string, error) {
	start, end, err := span(line, f)
	if err != nil {
		return "", err
	}
	if len(encoded) != end-start {
		return "", fmt.Errorf("%w: %s holds %d bytes, got %d", ErrValueTooLong, f.Name, end-start, len(encoded))
	}
	return line[:start] + encoded + line[end:], nil
}

// EncodeAmount parses a human readable amount ("1500", "200.00") and returns
// its scaled, zero-padded form together with the scaled value.
func EncodeAmount(value string, width int) (string, int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return "", 0, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, value)
	}
	if d.IsNegative() {
		return "", 0, fmt.Errorf("%w: %q is negative", ErrInvalidAmount, value)
	}

	// Digit count from coefficient and exponent, before anything is rescaled.
	scaled := decimal.Zero
	if !d.IsZero() {
		digits := int64(d.NumDigits()) + int64(d.Exponent()) + 2
		if digits > int64(width) {
			return "", 0, fmt.Errorf("%w: amount %q needs %d digits, field holds %d", ErrValueTooLong, value, digits, width)
		}
		// below 0.1 once scaled, which rounds to zero
		if digits >= 0 {
			scaled = d.Shift(2).Round(0)
		}
	}
	if digits := len(scaled.String()); digits > width {
		return "", 0, fmt.Errorf("%w: amount %q needs %d digits, field holds %d", ErrValueTooLong, value, digits, width)
	}

	n := scaled.IntPart()
	encoded, err := FormatInt(n, width)
	if err != nil {
		return "", 0, err
	}
	return encoded, n, nil
}

// Currency upper-cases value and checks it is one of Currencies.
func Currency(value string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(value))
	if !slices.Contains(Currencies, code) {
		return "", fmt.Errorf("%w %q: must be one of %s", ErrInvalidCurrency, value, strings.Join(Currencies, ", "))
	}
	return code, nil
}

// ScaleWhole converts a whole-unit amount into its scaled form.
func ScaleWhole(amount int64) (int64, error) {
	if amount < 0 {
		return 0, fmt.Errorf("%w: %d is negative", ErrInvalidAmount, amount)
	}
	const limit = int64(^uint64(0)>>1) / AmountScale
	if amount > limit {
		return 0, fmt.Errorf("%w: %d does not fit", ErrValueTooLong, amount)
	}
	return amount * AmountScale, nil
}

// FormatInt zero-pads a non-negative integer to width.
func FormatInt(n int64, width int) (string, error) {
	if n < 0 {
		return "", fmt.Errorf("%w: %d is negative", ErrInvalidAmount, n)
	}
	s := strconv.FormatInt(n, 10)
	if len(s) > width {
		return "", fmt.Errorf("%w: %d needs %d digits, field holds %d", ErrValueTooLong, n, len(s), width)
	}
	return strings.Repeat("0", width-len(s)) + s, nil
}

// ParseInt reads a zero-padded integer. Blank text reads as zero.
func ParseInt(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNotNumeric, s)
	}
	return n, nil
}

func padText(name, value string, width int) (string, error) {
	value = foldASCII(value)
	if len(value) > width {
		return "", fmt.Errorf("%w: %s holds %d characters, got %d", ErrValueTooLong, name, width, len(value))
	}
	return value + strings.Repeat(" ", width-len(value)), nil
}

// foldASCII strips diacritics and replaces what is left outside printable
// ASCII, so byte offsets and character offsets agree.
func foldASCII(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r > unicode.MaxASCII:
			return '?'
		case unicode.IsControl(r):
			return ' '
		default:
			return r
		}
	}, s)
}

func span(line string, f layout.Field) (int, int, error) {
	start, end := f.Span()
	if len(line) < end {
		return 0, 0, fmt.Errorf("%w: %s ends at %d, line has %d bytes", ErrLineTooShort, f.Name, end, len(line))
	}
	return start, end, nil
}
