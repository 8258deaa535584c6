package store

import (
	"fmt"
	"strings"
)

// Ledger is the in-memory copy of a ledger file: a header, zero or more
// transactions and a trailing footer.
//
// Ordinary indices address the header and the transactions; the footer is
// only reachable through Footer and ReplaceFooter.
type Ledger struct {
	lines []Line
}

// NewLedger creates a ledger from lines. The slice is copied.
func NewLedger(lines []Line) *Ledger {
	return &Ledger{lines: append([]Line(nil), lines...)}
}

// Parse splits raw file content into a ledger. Every line keeps its
// terminator; a final line written without one is kept as is.
func Parse(data string) *Ledger {
	l := &Ledger{}
	for _, raw := range strings.SplitAfter(data, Terminator) {
		if raw == "" {
			continue
		}
		if strings.HasSuffix(raw, Terminator) {
			l.lines = append(l.lines, Line{Content: strings.TrimSuffix(raw, Terminator), Terminator: Terminator})
		} else {
			l.lines = append(l.lines, Line{Content: raw})
		}
	}
	return l
}

// Len returns the number of lines, footer included
func (l *Ledger) Len() int {
	return len(l.lines)
}

// Transactions returns the number of lines between header and footer
func (l *Ledger) Transactions() int {
	if len(l.lines) < 2 {
		return 0
	}
	return len(l.lines) - 2
}

// Lines returns a copy of every line
func (l *Ledger) Lines() []Line {
	return append([]Line(nil), l.lines...)
}

// Line returns the content of the line at index, 0 <= index < Len()-1.
func (l *Ledger) Line(index int) (string, error) {
	if err := l.checkIndex(index); err != nil {
		return "", err
	}
	return l.lines[index].Content, nil
}

// Replace swaps the content of the line at index, keeping its terminator.
func (l *Ledger) Replace(index int, content string) error {
	if err := l.checkIndex(index); err != nil {
		return err
	}
	l.lines[index].Content = content
	return nil
}

// Footer returns the content of the last line
func (l *Ledger) Footer() (string, error) {
	if len(l.lines) < 2 {
		return "", ErrMissingFooter
	}
	return l.lines[len(l.lines)-1].Content, nil
}

// ReplaceFooter swaps the content of the last line, keeping its terminator
func (l *Ledger) ReplaceFooter(content string) error {
	if len(l.lines) < 2 {
		return ErrMissingFooter
	}
	l.lines[len(l.lines)-1].Content = content
	return nil
}

// InsertBeforeFooter adds a terminated line at the position the footer
// occupied, shifting the footer down by one.
func (l *Ledger) InsertBeforeFooter(content string) error {
	if len(l.lines) < 2 {
		return ErrMissingFooter
	}
	last := len(l.lines) - 1
	l.lines = append(l.lines, Line{})
	copy(l.lines[last+1:], l.lines[last:])
	l.lines[last] = NewLine(content)
	return nil
}

// String returns the ledger exactly as it is written to disk
func (l *Ledger) String() string {
	var b strings.Builder
	for _, line := range l.lines {
		b.WriteString(line.String())
	}
	return b.String()
}

func (l *Ledger) checkIndex(index int) error {
	if index < 0 || index >= len(l.lines)-1 {
		return fmt.Errorf("%w: index %d, ledger has %d records before the footer", ErrIndexOutOfRange, index, max(len(l.lines)-1, 0))
	}
	return nil
}
