package store

import (
	"errors"
	"os"
)

// Terminator ends every line except, possibly, the last one.
const Terminator = "\n"

// Line is one record of the ledger file
type Line struct {
	Content    string // Bytes before the terminator
	Terminator string // Terminator, empty for a final line written without one
}

// NewLine creates a terminated line
func NewLine(content string) Line {
	return Line{Content: content, Terminator: Terminator}
}

// Len returns the line length including its terminator
func (l Line) Len() int {
	return len(l.Content) + len(l.Terminator)
}

// String returns the line as stored on disk
func (l Line) String() string {
	return l.Content + l.Terminator
}

// FileStoreConfig holds configuration for the file backed store
type FileStoreConfig struct {
	Path       string      // Path to the ledger file
	Fsync      bool        // Fsync the temp file before it replaces the ledger
	BufferSize int         // Write buffer size
	Perm       os.FileMode // Mode for newly created ledger files
}

// Errors
var (
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrMissingFooter   = errors.New("ledger has no footer")
)
