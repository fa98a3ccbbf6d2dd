// Package sheet reads operational work-order spreadsheets (CSV or XLSX)
// into rows keyed by canonical column, whatever the header spelling.
package sheet

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// Format is the container the rows came from. It decides the provenance
// tag of every imported value.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "excel"
)

// FormatOf picks the format from a file name.
func FormatOf(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatExcel, nil
	default:
		return "", fmt.Errorf("unsupported spreadsheet %q: expected .csv or .xlsx", filename)
	}
}

var ErrNoHeader = errors.New("no recognizable header row")

// Row is one data row. Line is 1-based in the source file.
type Row struct {
	Line  int
	cells map[Column]string
}

func (r Row) Get(c Column) string {
	return r.cells[c]
}

// Blank reports whether every mapped cell is empty.
func (r Row) Blank() bool {
	for _, v := range r.cells {
		if v != "" {
			return false
		}
	}

	return true
}

type Table struct {
	Format  Format
	Columns []Column
	Rows    []Row
}

func (t *Table) Has(c Column) bool {
	return slices.Contains(t.Columns, c)
}

// Parse reads data according to the file name's format.
func Parse(filename string, data []byte) (*Table, error) {
	format, err := FormatOf(filename)
	if err != nil {
		return nil, err
	}

	var records [][]string

	switch format {
	case FormatExcel:
		records, err = readXLSX(data)
	default:
		records, err = readCSV(data)
	}

	if err != nil {
		return nil, err
	}

	header, idx, ok := detectHeader(records)
	if !ok {
		return nil, ErrNoHeader
	}

	t := &Table{Format: format}
	for col := range idx {
		t.Columns = append(t.Columns, col)
	}

	slices.Sort(t.Columns)

	for i, rec := range records[header+1:] {
		row := Row{Line: header + i + 2, cells: make(map[Column]string, len(idx))}
		for col, pos := range idx {
			row.cells[col] = cellValue(rec, pos)
		}

		if !row.Blank() {
			t.Rows = append(t.Rows, row)
		}
	}

	return t, nil
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
