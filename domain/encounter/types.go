// Package encounter holds the multi-state encoding of capture-recapture
// observations: raw detection and disease-test matrices, their combined
// observation matrix, and the partially known latent true-state matrices
// handed to the sampler.
package encounter

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gocmr/domain/core"
)

// NA marks a missing cell. Following the convention in longitudinal HMM
// datasets, missingness is a sentinel rather than a separate mask matrix.
const NA = -9999

// Observation codes. Codes 1..2 are live observations; the highest code
// is "not seen", matching the multi-state convention that the last
// observation class is non-detection.
const (
	SeenUninfected = 1
	SeenInfected   = 2
	NotSeen        = 3
)

// True-state codes. Dead is terminal and absorbing.
const (
	StateUninfected = 1
	StateInfected   = 2
	StateDead       = 3
)

// LiveStates are the true states an individual can occupy while alive.
var LiveStates = []int{StateUninfected, StateInfected}

// Matrix is a dense individuals x occasions integer matrix. Rows index
// individuals, columns index occasions; both are zero-based. Access is
// bounds-checked so indexing mistakes surface as panics, not silently
// wrong encodings.
type Matrix struct {
	rows  int
	cols  int
	cells []int
}

// NewMatrix returns a rows x cols matrix with every cell set to fill.
func NewMatrix(rows, cols, fill int) (*Matrix, error) {
	if rows <= 0 || cols <= 0 {
		return nil, core.ErrEmptyMatrix
	}
	m := &Matrix{rows: rows, cols: cols, cells: make([]int, rows*cols)}
	if fill != 0 {
		for i := range m.cells {
			m.cells[i] = fill
		}
	}
	return m, nil
}

// FromRows builds a matrix from row slices. All rows must have equal length.
func FromRows(rows [][]int) (*Matrix, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, core.ErrEmptyMatrix
	}
	cols := len(rows[0])
	m := &Matrix{rows: len(rows), cols: cols, cells: make([]int, len(rows)*cols)}
	for i, row := range rows {
		if len(row) != cols {
			return nil, core.NewShapeMismatchError(len(rows), cols, i+1, len(row))
		}
		copy(m.cells[i*cols:(i+1)*cols], row)
	}
	return m, nil
}

// Rows returns the number of individuals.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of occasions.
func (m *Matrix) Cols() int { return m.cols }

// At returns the cell at individual i, occasion t.
func (m *Matrix) At(i, t int) int {
	m.check(i, t)
	return m.cells[i*m.cols+t]
}

// Set writes the cell at individual i, occasion t.
func (m *Matrix) Set(i, t, v int) {
	m.check(i, t)
	m.cells[i*m.cols+t] = v
}

func (m *Matrix) check(i, t int) {
	if i < 0 || i >= m.rows || t < 0 || t >= m.cols {
		panic(fmt.Sprintf("encounter: index (%d,%d) out of range %dx%d", i, t, m.rows, m.cols))
	}
}

// Row returns a copy of individual i's occasion sequence.
func (m *Matrix) Row(i int) []int {
	m.check(i, 0)
	row := make([]int, m.cols)
	copy(row, m.cells[i*m.cols:(i+1)*m.cols])
	return row
}

// SameShape reports whether two matrices have identical dimensions.
func (m *Matrix) SameShape(o *Matrix) bool {
	return m.rows == o.rows && m.cols == o.cols
}

// Clone returns a deep copy.
func (m *Matrix) Clone() *Matrix {
	c := &Matrix{rows: m.rows, cols: m.cols, cells: make([]int, len(m.cells))}
	copy(c.cells, m.cells)
	return c
}

// RemoveRows returns a copy of the matrix with the given rows dropped.
// Indices outside the matrix are ignored.
func (m *Matrix) RemoveRows(drop []int) (*Matrix, error) {
	dropped := make(map[int]bool, len(drop))
	for _, i := range drop {
		if i >= 0 && i < m.rows {
			dropped[i] = true
		}
	}
	kept := make([][]int, 0, m.rows-len(dropped))
	for i := 0; i < m.rows; i++ {
		if !dropped[i] {
			kept = append(kept, m.Row(i))
		}
	}
	return FromRows(kept)
}

// ValidateBinary checks that every cell is 0, 1 or NA. This is the input
// contract for raw capture and test matrices; anything else is fatal.
func (m *Matrix) ValidateBinary() error {
	for i := 0; i < m.rows; i++ {
		for t := 0; t < m.cols; t++ {
			v := m.cells[i*m.cols+t]
			if v != 0 && v != 1 && v != NA {
				return core.NewInvalidValueError(i, t, v)
			}
		}
	}
	return nil
}

// Fingerprint hashes the matrix contents and shape.
func (m *Matrix) Fingerprint() core.Hash {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%dx%d:", m.rows, m.cols)
	for _, v := range m.cells {
		fmt.Fprintf(&buf, "%d,", v)
	}
	return core.NewHash(buf.Bytes())
}

// MarshalJSON encodes the matrix as nested arrays with null for NA cells,
// which is the shape external samplers expect for partially observed data.
func (m *Matrix) MarshalJSON() ([]byte, error) {
	out := make([][]*int, m.rows)
	for i := 0; i < m.rows; i++ {
		out[i] = make([]*int, m.cols)
		for t := 0; t < m.cols; t++ {
			if v := m.cells[i*m.cols+t]; v != NA {
				vv := v
				out[i][t] = &vv
			}
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes nested arrays, mapping null back to NA.
func (m *Matrix) UnmarshalJSON(data []byte) error {
	var in [][]*int
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	rows := make([][]int, len(in))
	for i, row := range in {
		rows[i] = make([]int, len(row))
		for t, v := range row {
			if v == nil {
				rows[i][t] = NA
			} else {
				rows[i][t] = *v
			}
		}
	}
	built, err := FromRows(rows)
	if err != nil {
		return err
	}
	*m = *built
	return nil
}
