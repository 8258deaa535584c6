// Package codec encodes and decodes single fields of a fixed-width ledger line.
//
// The codec works on one line at a time and never touches other lines. The
// byte ranges come from the layout package; the codec only knows how to turn
// a value into exactly that many bytes and back.
//
// # Line Format
//
// Every line is 119 content bytes followed by a "\n" terminator:
//
//	Header:      [01][name 28][surname 30][patronymic 30][address 29]
//	Transaction: [02][counter 6][amount 12][currency 3][reserved 96]
//	Footer:      [03][total_counter 6][control_sum 12][reserved 99]
//
// # Field Encodings
//
//   - Text and code fields are left-justified and padded with spaces.
//     Accented letters are folded to ASCII first so that one character is
//     always one byte; anything still outside ASCII becomes '?'.
//   - Counters are zero-padded decimal integers.
//   - Amounts are stored scaled by 100 as zero-padded decimal integers.
//     "12.5" is stored as 000000001250. Scaling rounds half away from zero.
//
// # Usage
//
//	c := codec.NewFieldCodec()
//
//	encoded, err := c.Encode(layout.TransactionAmount, "1500")
//	if err != nil {
//	    return err
//	}
//
//	line, err = c.Apply(line, layout.TransactionAmount, encoded)
//	if err != nil {
//	    return err
//	}
//
// # Error Handling
//
// Encode returns ErrValueTooLong when a value does not fit its field and
// ErrInvalidAmount when an amount does not parse as a non-negative number.
// Decoding numeric text fails with ErrNotNumeric. Both Decode and Apply fail
// with ErrLineTooShort when the line does not reach the end of the field.
//
// # Thread Safety
//
// FieldCodec holds no state and is safe for concurrent use.
package codec
