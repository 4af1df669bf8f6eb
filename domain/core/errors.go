package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Encoding errors
	ErrShapeMismatch = errors.New("input matrices differ in shape")
	ErrNeverDetected = errors.New("individual never detected")
	ErrInvalidValue  = errors.New("matrix entry outside {0, 1, NA}")
	ErrEmptyMatrix   = errors.New("matrix has no rows or columns")

	// Model errors
	ErrInvalidPrior     = errors.New("prior bounds invalid")
	ErrInvalidParameter = errors.New("parameter outside [0, 1]")
	ErrNotStochastic    = errors.New("probability row does not sum to one")

	// Bundle errors
	ErrBundleInconsistent = errors.New("bundle internally inconsistent")
	ErrLatentOverlap      = errors.New("known and seeded latent states overlap")

	// Repository errors
	ErrRunNotFound = errors.New("run not found")

	// Determinism errors
	ErrSeedMismatch = errors.New("seed mismatch")
)

// Error constructors with context. Row and column indices are zero-based.
func NewShapeMismatchError(rows1, cols1, rows2, cols2 int) error {
	return fmt.Errorf("%w: %dx%d vs %dx%d", ErrShapeMismatch, rows1, cols1, rows2, cols2)
}

func NewNeverDetectedError(row int) error {
	return fmt.Errorf("%w: row %d", ErrNeverDetected, row)
}

func NewInvalidValueError(row, col, value int) error {
	return fmt.Errorf("%w: row %d col %d value %d", ErrInvalidValue, row, col, value)
}

func NewRowSumError(tensor string, indices []int, sum float64) error {
	return fmt.Errorf("%w: %s row %v sums to %g", ErrNotStochastic, tensor, indices, sum)
}

func NewBundleError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrBundleInconsistent, field, reason)
}

// Error checking helpers
func IsEncodingError(err error) bool {
	return errors.Is(err, ErrShapeMismatch) ||
		errors.Is(err, ErrNeverDetected) ||
		errors.Is(err, ErrInvalidValue) ||
		errors.Is(err, ErrEmptyMatrix)
}

func IsModelError(err error) bool {
	return errors.Is(err, ErrInvalidPrior) ||
		errors.Is(err, ErrInvalidParameter) ||
		errors.Is(err, ErrNotStochastic)
}

func IsBundleError(err error) bool {
	return errors.Is(err, ErrBundleInconsistent) ||
		errors.Is(err, ErrLatentOverlap)
}
