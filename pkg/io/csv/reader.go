// Package csv reads tabular sensor data from CSV files.
package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	dataio "github.com/hed1ad/factoryguard/pkg/io"
)

var _ dataio.Reader = (*Reader)(nil)

// Reader reads data from CSV files. The first record is always treated as a
// header; when columns are selected by name, only those cells are parsed and
// rows whose selected cells are not numeric are skipped. Without a selection
// every column must parse.
type Reader struct {
	file    *os.File
	reader  *csv.Reader
	headers []string

	wantColumns []string
	columns     []int // resolved header indices, in selection order
}

// Option configures a CSV reader.
type Option func(*Reader)

// WithColumns selects columns by header name. Read and Stream return rows
// holding just those columns, in the given order.
func WithColumns(names ...string) Option {
	return func(r *Reader) {
		r.wantColumns = names
	}
}

// NewReader creates a new CSV reader.
func NewReader(filename string, opts ...Option) (*Reader, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	r := &Reader{
		file:   file,
		reader: csv.NewReader(file),
	}

	for _, opt := range opts {
		opt(r)
	}

	headers, err := r.reader.Read()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("read header: %w", err)
	}
	r.headers = headers

	if err := r.resolveColumns(); err != nil {
		file.Close()
		return nil, err
	}

	return r, nil
}

func (r *Reader) resolveColumns() error {
	for _, name := range r.wantColumns {
		idx := -1
		for i, h := range r.headers {
			if h == name {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("column %q not found in header %v", name, r.headers)
		}
		r.columns = append(r.columns, idx)
	}
	return nil
}

// Headers returns the column headers.
func (r *Reader) Headers() []string {
	return r.headers
}

// Read returns all data as a 2D float slice.
func (r *Reader) Read() ([][]float64, error) {
	var data [][]float64

	for {
		record, err := r.reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		row, err := r.parseRow(record)
		if err != nil {
			continue // Skip malformed rows
		}
		data = append(data, row)
	}

	return data, nil
}

// Stream returns a channel of rows for sequential processing.
func (r *Reader) Stream(ctx context.Context) (<-chan []float64, error) {
	out := make(chan []float64, 100)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				record, err := r.reader.Read()
				if err == io.EOF {
					return
				}
				if err != nil {
					continue
				}

				row, err := r.parseRow(record)
				if err != nil {
					continue
				}

				select {
				case out <- row:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// Close releases resources.
func (r *Reader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// parseRow converts the selected cells of a record to floats.
func (r *Reader) parseRow(record []string) ([]float64, error) {
	if len(record) == 0 {
		return nil, errors.New("empty row")
	}

	if len(r.columns) == 0 {
		row := make([]float64, len(record))
		for i, val := range record {
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return nil, err
			}
			row[i] = f
		}
		return row, nil
	}

	row := make([]float64, len(r.columns))
	for i, idx := range r.columns {
		if idx >= len(record) {
			return nil, fmt.Errorf("row has %d cells, column %d selected", len(record), idx)
		}
		f, err := strconv.ParseFloat(record[idx], 64)
		if err != nil {
			return nil, err
		}
		row[i] = f
	}
	return row, nil
}
