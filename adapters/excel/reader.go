// Package excel reads capture-history tables from spreadsheet files.
package excel

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"gocmr/domain/encounter"
	"gocmr/ports"
)

// Reader reads an individuals x occasions table from an .xlsx sheet.
type Reader struct {
	sheet     string
	headerRow bool
}

// Option configures a Reader.
type Option func(*Reader)

// WithSheet selects the sheet to read. Defaults to the first sheet.
func WithSheet(name string) Option {
	return func(r *Reader) { r.sheet = name }
}

// WithHeaderRow skips the first row (occasion labels).
func WithHeaderRow() Option {
	return func(r *Reader) { r.headerRow = true }
}

// NewReader creates a new spreadsheet reader.
func NewReader(opts ...Option) *Reader {
	r := &Reader{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ReadMatrix reads the table in the workbook at path.
func (r *Reader) ReadMatrix(ctx context.Context, path string) (*encounter.Matrix, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("workbook not found: %s", path)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := r.sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	cells, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if r.headerRow && len(cells) > 0 {
		cells = cells[1:]
	}

	// GetRows trims trailing empty cells, so pad every row to the widest.
	width := 0
	for _, row := range cells {
		if len(row) > width {
			width = len(row)
		}
	}
	rows := make([][]int, 0, len(cells))
	for i, row := range cells {
		parsed := make([]int, width)
		for j := 0; j < width; j++ {
			var cell string
			if j < len(row) {
				cell = strings.TrimSpace(row[j])
			}
			v, err := parseCell(cell)
			if err != nil {
				return nil, fmt.Errorf("sheet %s row %d col %d: %w", sheet, i+1, j+1, err)
			}
			parsed[j] = v
		}
		rows = append(rows, parsed)
	}
	return encounter.FromRows(rows)
}

func parseCell(cell string) (int, error) {
	switch cell {
	case "", "NA", "na", ".":
		return encounter.NA, nil
	}
	v, err := strconv.Atoi(cell)
	if err != nil {
		return 0, fmt.Errorf("not a cell value: %q", cell)
	}
	return v, nil
}

var _ ports.MatrixReaderPort = (*Reader)(nil)
