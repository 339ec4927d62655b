// Package export renders tabular report data as CSV, XLSX or PDF files.
package export

import (
	"errors"
	"fmt"
	"strings"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

var Formats = []string{string(FormatCSV), string(FormatXLSX), string(FormatPDF)}

var ErrRaggedRow = errors.New("row width does not match header")

// Table is one titled grid of cells. Every row must be as wide as Headers.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

func (t Table) validate() error {
	if len(t.Headers) == 0 {
		return errors.New("table has no columns")
	}
	for i, r := range t.Rows {
		if len(r) != len(t.Headers) {
			return fmt.Errorf("%w: row %d has %d cells, want %d", ErrRaggedRow, i, len(r), len(t.Headers))
		}
	}
	return nil
}

func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/csv; charset=utf-8"
	}
}

// Filename builds e.g. "attendance_2024-03.csv".
func Filename(kind string, year, month int, format Format) string {
	return fmt.Sprintf("%s_%04d-%02d.%s", strings.ToLower(kind), year, month, format)
}
