// Package db provides RowStore implementations: the flat CSV file the
// dashboard has always used, and a sqlite alternative behind the same
// interface.
package db

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/cmra-project/group-dashboard/internal/schema"
	"github.com/cmra-project/group-dashboard/internal/services"
)

// CSVStore persists rows in a comma-separated file with a fixed header row.
// Append adds one data row; Clear rewrites the file to header-only. A missing
// file reads as an empty dataset. The mutex serializes writers within this
// process only; cross-process isolation is explicitly not provided.
type CSVStore struct {
	path string
	mu   sync.Mutex
}

func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

func (s *CSVStore) ReadAll() ([]*services.NormalizedRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(schema.CSVHeaders)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	rows := make([]*services.NormalizedRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		row, err := services.RowFromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", s.path, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *CSVStore) Append(row *services.NormalizedRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); errors.Is(err, fs.ErrNotExist) {
		if err := s.writeAll(nil); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(services.RowToRecord(row)); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func (s *CSVStore) ReplaceAll(rows []*services.NormalizedRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeAll(rows)
}

func (s *CSVStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeAll(nil)
}

func (s *CSVStore) writeAll(rows []*services.NormalizedRow) error {
	f, err := os.Create(s.path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(schema.CSVHeaders); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(services.RowToRecord(row)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
