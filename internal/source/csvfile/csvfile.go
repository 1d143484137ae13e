// Package csvfile reads contract records from a CRM CSV export.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"runrate/internal/core"
	"runrate/internal/source"
)

// Reader loads contracts from a CSV file on every call; caching is the
// caller's concern.
type Reader struct {
	path string
}

var _ source.ContractReader = (*Reader)(nil)

func New(path string) *Reader {
	return &Reader{path: path}
}

// Key returns the file path.
func (r *Reader) Key() string {
	return r.path
}

// ReadContracts implements source.ContractReader
func (r *Reader) ReadContracts(ctx context.Context) ([]core.Contract, error) {
	f, err := os.Open(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("open %s: %w", r.path, source.ErrNotFound)
		}
		return nil, fmt.Errorf("open %s: %w", r.path, err)
	}
	defer f.Close()

	contracts, err := Decode(r.path, f)
	if err != nil {
		return nil, err
	}
	slog.DebugContext(ctx, "CSV contracts decoded", "path", r.path, "rows", len(contracts))
	return contracts, nil
}

// Decode parses a CSV stream whose first record is the header row.
func Decode(name string, in io.Reader) ([]core.Contract, error) {
	cr := csv.NewReader(in)
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			return nil, &source.ParseError{Source: name, Line: pe.Line, Err: pe.Err}
		}
		return nil, &source.ParseError{Source: name, Err: err}
	}
	if len(records) == 0 {
		return nil, &source.ParseError{Source: name, Err: errors.New("empty file, no header row")}
	}
	return source.DecodeRows(name, records[0], records[1:], 2)
}
