package store

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/segmentio/ksuid"
)

// FileStore loads a ledger file whole and writes it back whole
type FileStore struct {
	config FileStoreConfig
}

// NewFileStore creates a new file store with the given configuration
func NewFileStore(config FileStoreConfig) *FileStore {
	if config.BufferSize <= 0 {
		config.BufferSize = 64 * 1024 // 64KB buffer
	}
	if config.Perm == 0 {
		config.Perm = 0644
	}
	return &FileStore{config: config}
}

// Path returns the file path
func (s *FileStore) Path() string {
	return s.config.Path
}

// Load reads every line of the ledger file into memory
func (s *FileStore) Load() (*Ledger, error) {
	data, err := os.ReadFile(s.config.Path)
	if err != nil {
		return nil, err
	}
	return Parse(string(data)), nil
}

// Persist replaces the ledger file with the content of l. The new content is
// written to a temporary file in the same directory and renamed over the old
// one, so readers see either the old or the new ledger and never a mix.
func (s *FileStore) Persist(l *Ledger) error {
	dir := filepath.Dir(s.config.Path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	perm := s.config.Perm
	if info, err := os.Stat(s.config.Path); err == nil {
		perm = info.Mode().Perm()
	}

	tmpPath := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(s.config.Path), ksuid.New().String()))
	file, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, perm)
	if err != nil {
		return err
	}

	if err := s.write(file, l); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, s.config.Path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", s.config.Path, err)
	}
	return nil
}

func (s *FileStore) write(file *os.File, l *Ledger) error {
	writer := bufio.NewWriterSize(file, s.config.BufferSize)
	for _, line := range l.lines {
		if _, err := writer.WriteString(line.String()); err != nil {
			return err
		}
	}
	if err := writer.Flush(); err != nil {
		return err
	}
	if s.config.Fsync {
		return file.Sync()
	}
	return nil
}
