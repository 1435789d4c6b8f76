package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadCSV parses a delimited export into a table. The first record is the
// header; names are normalized to the lower_snake_case convention the
// classifier prefixes use. Empty cells become nil (missing), matching the
// optional-text contract of the pipeline.
func ReadCSV(r io.Reader, sep rune) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = sep
	cr.FieldsPerRecord = 0 // enforce rectangular input

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInput, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no header row", ErrInput)
	}

	header := records[0]
	cols := make([]Column, len(header))
	for i, name := range header {
		cols[i] = Column{
			Name:  NormalizeName(name),
			Cells: make([]*string, len(records)-1),
		}
	}
	for row, rec := range records[1:] {
		for i, v := range rec {
			if v == "" {
				continue
			}
			val := v
			cols[i].Cells[row] = &val
		}
	}
	return New(cols...)
}

// ReadCSVFile reads a delimited export from disk.
func ReadCSVFile(path string, sep rune) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInput, err)
	}
	defer f.Close()
	return ReadCSV(f, sep)
}

// WriteCSV renders the table with a header row. Missing cells are written
// as empty fields.
func (t *Table) WriteCSV(w io.Writer, sep rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = sep

	if err := cw.Write(t.Names()); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	rows := t.Rows()
	record := make([]string, len(t.cols))
	for row := 0; row < rows; row++ {
		for i, c := range t.cols {
			if cell := c.Cells[row]; cell != nil {
				record[i] = *cell
			} else {
				record[i] = ""
			}
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing row %d: %w", row, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// NormalizeName lowercases a column name and replaces spaces, dots and
// dashes with underscores so LIS export headers line up with the
// prefix lists in presets.
func NormalizeName(name string) string {
	n := strings.TrimSpace(strings.ToLower(name))
	n = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '.', '-':
			return '_'
		}
		return r
	}, n)
	return n
}
