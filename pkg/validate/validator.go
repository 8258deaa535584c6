// Package validate checks the structure of a ledger: record prefixes and
// line lengths. Counter and control-sum correctness are not checked here.
package validate

import (
	"errors"
	"fmt"

	"github.com/ssargent/fwledger/pkg/layout"
	"github.com/ssargent/fwledger/pkg/store"
)

// ErrStructuralViolation is matched by every StructuralError.
var ErrStructuralViolation = errors.New("structural violation")

// StructuralError reports the first line that breaks the file structure.
type StructuralError struct {
	Index  int
	Kind   layout.Kind
	Reason string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("structural violation at line %d (%s): %s", e.Index, e.Kind, e.Reason)
}

// Is makes errors.Is(err, ErrStructuralViolation) hold.
func (e *StructuralError) Is(target error) bool {
	return target == ErrStructuralViolation
}

// Ledger verifies that line 0 is a header, the last line a footer and
// every line in between a transaction, each exactly layout.LineWidth long.
func Ledger(l *store.Ledger) error {
	lines := l.Lines()
	if len(lines) < 2 {
		return &StructuralError{Index: len(lines), Kind: expected(len(lines), 2), Reason: "ledger needs a header and a footer"}
	}

	for i, line := range lines {
		if err := check(i, line, expected(i, len(lines))); err != nil {
			return err
		}
	}
	return nil
}

func expected(index, count int) layout.Kind {
	switch index {
	case 0:
		return layout.KindHeader
	case count - 1:
		return layout.KindFooter
	default:
		return layout.KindTransaction
	}
}

func check(index int, line store.Line, want layout.Kind) error {
	if got := layout.KindOf(line.Content); got != want {
		return &StructuralError{Index: index, Kind: want, Reason: fmt.Sprintf("expected prefix %q", want.Prefix())}
	}
	if line.Len() != layout.LineWidth {
		return &StructuralError{Index: index, Kind: want, Reason: fmt.Sprintf("line is %d bytes, want %d", line.Len(), layout.LineWidth)}
	}
	return nil
}
