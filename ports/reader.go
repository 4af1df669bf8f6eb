package ports

import (
	"context"

	"gocmr/domain/encounter"
)

// MatrixReaderPort reads an individuals x occasions table from an external
// source. Cells are expected to normalize to {0, 1, NA}; validation of that
// contract happens in the domain, not the reader.
type MatrixReaderPort interface {
	ReadMatrix(ctx context.Context, source string) (*encounter.Matrix, error)
}
