package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"gocmr/domain/core"
)

// NStates is the number of true states (two live states plus dead).
// NObs is the number of observation classes (two seen classes plus not-seen).
const (
	NStates = 3
	NObs    = 3
)

// RowSumTolerance is the floating tolerance for stochastic-row validation.
const RowSumTolerance = 1e-9

// Tensor is a dense probability tensor indexed
// [fromIndex][individual][interval][toIndex], where fromIndex and toIndex
// are zero-based (state or observation code minus one) and interval t
// spans occasion t to t+1. The values are identical across individuals and
// intervals in the current design; both axes are materialized anyway so
// occasion- or individual-varying parameters can be introduced without
// changing consumers.
type Tensor [][][][]float64

// Row returns the probability row for a 1-based from-code at the given
// individual and interval.
func (t Tensor) Row(fromCode, individual, interval int) []float64 {
	return t[fromCode-1][individual][interval]
}

// BuildTransition constructs the state-transition tensor for nInd
// individuals over nOcc occasions (nOcc-1 intervals).
//
// From uninfected: survive and stay, survive and become infected, or die.
// From infected: survive and recover, survive and stay, or die.
// Dead is absorbing.
func BuildTransition(p Parameters, nInd, nOcc int) Tensor {
	return build(nInd, nOcc-1, [NStates][NStates]float64{
		{p.PhiU * (1 - p.PsiUI), p.PhiU * p.PsiUI, 1 - p.PhiU},
		{p.PhiI * p.PsiIU, p.PhiI * (1 - p.PsiIU), 1 - p.PhiI},
		{0, 0, 1},
	})
}

// BuildObservation constructs the observation tensor for nInd individuals
// over nOcc occasions (nOcc-1 intervals, aligned with the transition
// tensor: the emission at occasion t+1 depends on the state at t+1).
//
// An uninfected individual is seen uninfected with probability PU and
// never tests positive; an infected one is seen infected with probability
// PI and never tests negative; a dead one is always not seen.
func BuildObservation(p Parameters, nInd, nOcc int) Tensor {
	return build(nInd, nOcc-1, [NStates][NObs]float64{
		{p.PU, 0, 1 - p.PU},
		{0, p.PI, 1 - p.PI},
		{0, 0, 1},
	})
}

func build(nInd, nIntervals int, rows [NStates][NStates]float64) Tensor {
	t := make(Tensor, NStates)
	for from := 0; from < NStates; from++ {
		t[from] = make([][][]float64, nInd)
		for i := 0; i < nInd; i++ {
			t[from][i] = make([][]float64, nIntervals)
			for k := 0; k < nIntervals; k++ {
				row := make([]float64, NStates)
				copy(row, rows[from][:])
				t[from][i][k] = row
			}
		}
	}
	return t
}

// ValidateStochastic checks that every probability row of the tensor sums
// to one within RowSumTolerance. A row that does not sum to one means the
// generative process leaks or invents probability mass, which the sampler
// would never report as an error.
func (t Tensor) ValidateStochastic(name string) error {
	for from := range t {
		for i := range t[from] {
			for k := range t[from][i] {
				sum := floats.Sum(t[from][i][k])
				if math.Abs(sum-1) > RowSumTolerance {
					return core.NewRowSumError(name, []int{from + 1, i, k}, sum)
				}
			}
		}
	}
	return nil
}

// Definition describes one tensor of the model specification in a
// serializable form: the per-row probability expressions the external
// sampler evaluates itself. The expressions reference parameter names
// from MonitoredParameters.
type Definition struct {
	Name string              `json:"name"`
	Rows map[string][]string `json:"rows"`
}

// TransitionDefinition is the unevaluated transition structure.
func TransitionDefinition() Definition {
	return Definition{
		Name: "transition",
		Rows: map[string][]string{
			"uninfected": {"phi_u*(1-psi_ui)", "phi_u*psi_ui", "1-phi_u"},
			"infected":   {"phi_i*psi_iu", "phi_i*(1-psi_iu)", "1-phi_i"},
			"dead":       {"0", "0", "1"},
		},
	}
}

// ObservationDefinition is the unevaluated emission structure.
func ObservationDefinition() Definition {
	return Definition{
		Name: "observation",
		Rows: map[string][]string{
			"uninfected": {"p_u", "0", "1-p_u"},
			"infected":   {"0", "p_i", "1-p_i"},
			"dead":       {"0", "0", "1"},
		},
	}
}

// String implements fmt.Stringer for debugging.
func (d Definition) String() string {
	return fmt.Sprintf("%s(%d rows)", d.Name, len(d.Rows))
}
