package repository

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bouya4a-commits/cyber-quiz-telecomparis/internal/util"
	"github.com/bouya4a-commits/cyber-quiz-telecomparis/pkg/logger"

	"go.uber.org/zap"
)

// ResultStore is the append-only results file. Appends are serialized by mu
// and written with a single write on an O_APPEND descriptor, so a reader
// holding the read lock never sees a partial line.
type ResultStore struct {
	path   string
	mu     sync.RWMutex
	schema Schema
}

func NewResultStore(path string, schema Schema) *ResultStore {
	return &ResultStore{path: path, schema: schema}
}

func (s *ResultStore) Path() string {
	return s.path
}

// Schema is the layout in effect: the header of an existing file wins over
// the configured one.
func (s *ResultStore) Schema() Schema {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.schema
}

// EnsureInitialized creates the file with its header row when it is absent or
// empty. On an existing file it only reads the header; rows are never touched.
func (s *ResultStore) EnsureInitialized() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureLocked()
}

func (s *ResultStore) ensureLocked() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return storageErr(err)
		}
	}

	f, err := os.OpenFile(s.path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return storageErr(err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return storageErr(err)
	}
	if info.Size() == 0 {
		if _, err := f.Write(s.schema.HeaderLine()); err != nil {
			return storageErr(err)
		}
		return storageErr(f.Sync())
	}

	headerLine, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && headerLine == "" {
		return storageErr(err)
	}
	header, err := csv.NewReader(strings.NewReader(headerLine)).Read()
	if err != nil {
		return fmt.Errorf("%w: %v", util.ErrSchemaMismatch, err)
	}
	schema, err := SchemaFromHeader(header)
	if err != nil {
		return err
	}
	if !strings.HasSuffix(headerLine, "\n") {
		// Header-only file without its newline: terminate it or the first row
		// would be read back as part of the header.
		if _, err := f.WriteAt([]byte{'\n'}, info.Size()); err != nil {
			return storageErr(err)
		}
		if err := f.Sync(); err != nil {
			return storageErr(err)
		}
	}
	if schema.AnswerColumns != s.schema.AnswerColumns {
		logger.Log.Warn("results file header overrides configured answer columns",
			zap.String("path", s.path),
			zap.Int("configured", s.schema.AnswerColumns),
			zap.Int("header", schema.AnswerColumns))
	}
	s.schema = schema
	return nil
}

// Append durably writes one encoded row. The row must be a single
// newline-terminated line.
func (s *ResultStore) Append(ctx context.Context, line []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(line) == 0 || line[len(line)-1] != '\n' || bytes.IndexByte(line[:len(line)-1], '\n') >= 0 {
		return fmt.Errorf("%w: row must be exactly one line", util.ErrMalformedRecord)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_RDWR|os.O_APPEND, 0644)
	if errors.Is(err, os.ErrNotExist) {
		if err := s.ensureLocked(); err != nil {
			return err
		}
		f, err = os.OpenFile(s.path, os.O_RDWR|os.O_APPEND, 0644)
	}
	if err != nil {
		return storageErr(err)
	}

	terminated, err := endsWithNewline(f)
	if err != nil {
		f.Close()
		return storageErr(err)
	}
	if !terminated {
		// An interrupted write left a fragment: close it off as its own
		// (malformed) line so this row stays decodable.
		line = append([]byte{'\n'}, line...)
	}

	if _, err := f.Write(line); err != nil {
		f.Close()
		return storageErr(err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return storageErr(err)
	}
	return storageErr(f.Close())
}

func endsWithNewline(f *os.File) (bool, error) {
	info, err := f.Stat()
	if err != nil {
		return false, err
	}
	if info.Size() == 0 {
		return true, nil
	}
	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil {
		return false, err
	}
	return last[0] == '\n', nil
}

// ReadAll returns the data rows in file order, header excluded. Blank lines
// are dropped, and so is an unterminated trailing fragment left by an
// interrupted write.
func (s *ResultStore) ReadAll(ctx context.Context) ([]string, error) {
	content, err := s.Raw(ctx)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(string(content), "\n")
	if last := lines[len(lines)-1]; last != "" {
		logger.Log.Warn("dropping unterminated trailing row", zap.String("path", s.path), zap.Int("bytes", len(last)))
	}
	lines = lines[:len(lines)-1]

	rows := make([]string, 0, len(lines))
	for i, line := range lines {
		if i == 0 {
			continue
		}
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, line)
	}
	return rows, nil
}

// Raw is a consistent snapshot of the whole file, header included.
func (s *ResultStore) Raw(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	content, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return s.schema.HeaderLine(), nil
	}
	if err != nil {
		return nil, storageErr(err)
	}
	return content, nil
}

// ResetKeepingHeader discards every data row. When before is set it receives
// the full content first, under the same lock, and an error from it aborts the
// reset. The header is rewritten through a temp file and rename so a crash
// leaves either the old or the empty store.
func (s *ResultStore) ResetKeepingHeader(ctx context.Context, before func(snapshot []byte) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if before != nil {
		content, err := os.ReadFile(s.path)
		if errors.Is(err, os.ErrNotExist) {
			content = s.schema.HeaderLine()
		} else if err != nil {
			return storageErr(err)
		}
		if err := before(content); err != nil {
			return err
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".reset-*")
	if err != nil {
		return storageErr(err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(s.schema.HeaderLine()); err != nil {
		tmp.Close()
		return storageErr(err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return storageErr(err)
	}
	if err := tmp.Close(); err != nil {
		return storageErr(err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return storageErr(err)
	}
	return storageErr(os.Rename(tmpName, s.path))
}

// Ping checks that the file is readable.
func (s *ResultStore) Ping() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, err := os.Open(s.path)
	if err != nil {
		return storageErr(err)
	}
	return storageErr(f.Close())
}

func storageErr(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", util.ErrStorageUnavailable, err)
}
