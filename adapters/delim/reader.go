// Package delim reads delimited numeric tables into encounter matrices.
// It accepts whitespace- or comma-separated values, one individual per
// line, with NA, ".", or an empty field marking a missing cell.
package delim

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gocmr/domain/encounter"
	"gocmr/ports"
)

var naTokens = map[string]bool{"NA": true, "na": true, ".": true, "": true}

// Reader implements MatrixReaderPort for plain text tables.
type Reader struct{}

// NewReader creates a new delimited table reader.
func NewReader() *Reader {
	return &Reader{}
}

// ReadMatrix reads the table at path into a matrix.
func (r *Reader) ReadMatrix(ctx context.Context, path string) (*encounter.Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	m, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return m, nil
}

// Parse reads a delimited table from r.
func Parse(r io.Reader) (*encounter.Matrix, error) {
	var rows [][]int
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := splitFields(text)
		row := make([]int, len(fields))
		for j, field := range fields {
			v, err := parseCell(field)
			if err != nil {
				return nil, fmt.Errorf("line %d field %d: %w", line, j+1, err)
			}
			row[j] = v
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return encounter.FromRows(rows)
}

func splitFields(line string) []string {
	if strings.Contains(line, ",") {
		fields := strings.Split(line, ",")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		return fields
	}
	return strings.Fields(line)
}

func parseCell(field string) (int, error) {
	if naTokens[field] {
		return encounter.NA, nil
	}
	v, err := strconv.Atoi(field)
	if err != nil {
		return 0, fmt.Errorf("not a cell value: %q", field)
	}
	return v, nil
}

// Write writes a matrix as a whitespace-delimited table, NA cells as "NA".
func Write(w io.Writer, m *encounter.Matrix) error {
	bw := bufio.NewWriter(w)
	for i := 0; i < m.Rows(); i++ {
		for t, v := range m.Row(i) {
			if t > 0 {
				if _, err := bw.WriteString(" "); err != nil {
					return err
				}
			}
			cell := "NA"
			if v != encounter.NA {
				cell = strconv.Itoa(v)
			}
			if _, err := bw.WriteString(cell); err != nil {
				return err
			}
		}
		if _, err := bw.WriteString("\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

var _ ports.MatrixReaderPort = (*Reader)(nil)
