package encounter

import (
	"gocmr/domain/core"
)

// Encode merges a detection matrix and a disease-test matrix into a single
// multi-state observation matrix. Each input is binarized independently
// (any value >= 1 counts as a positive, NA counts as zero), the two are
// summed, and a sum of zero is recoded to NotSeen. The result therefore
// holds SeenUninfected where the individual was caught and tested negative,
// SeenInfected where it was caught and tested positive, and NotSeen
// everywhere else.
func Encode(capture, test *Matrix) (*Matrix, error) {
	if !capture.SameShape(test) {
		return nil, core.NewShapeMismatchError(capture.Rows(), capture.Cols(), test.Rows(), test.Cols())
	}
	if err := capture.ValidateBinary(); err != nil {
		return nil, err
	}
	if err := test.ValidateBinary(); err != nil {
		return nil, err
	}

	obs := capture.Clone()
	for i := 0; i < obs.Rows(); i++ {
		for t := 0; t < obs.Cols(); t++ {
			sum := binarize(capture.At(i, t)) + binarize(test.At(i, t))
			if sum == 0 {
				sum = NotSeen
			}
			obs.Set(i, t, sum)
		}
	}
	return obs, nil
}

func binarize(v int) int {
	if v == NA || v < 1 {
		return 0
	}
	return 1
}

// FirstCapture returns, for each individual, the first occasion at which
// the observation is not NotSeen. An individual with no detection at any
// occasion is fatal: such rows carry no information for the model and must
// be filtered before encoding reaches the bundle.
func FirstCapture(obs *Matrix) ([]int, error) {
	first := make([]int, obs.Rows())
	for i := 0; i < obs.Rows(); i++ {
		f := -1
		for t := 0; t < obs.Cols(); t++ {
			if obs.At(i, t) != NotSeen {
				f = t
				break
			}
		}
		if f < 0 {
			return nil, core.NewNeverDetectedError(i)
		}
		first[i] = f
	}
	return first, nil
}

// NeverDetectedRows returns the indices of rows with no detection at any
// occasion, so callers can drop them before calling FirstCapture.
func NeverDetectedRows(obs *Matrix) []int {
	var rows []int
	for i := 0; i < obs.Rows(); i++ {
		seen := false
		for t := 0; t < obs.Cols(); t++ {
			if obs.At(i, t) != NotSeen {
				seen = true
				break
			}
		}
		if !seen {
			rows = append(rows, i)
		}
	}
	return rows
}
