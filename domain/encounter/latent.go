package encounter

import (
	"math/rand"
)

// KnownStates derives the latent true states that are logically fixed by
// the data. A direct observation pins the state: SeenUninfected means
// StateUninfected, SeenInfected means StateInfected. Everything else is NA:
// cells before first capture (the individual was not yet in the study),
// not-seen cells (the sampler estimates those), and the first-capture cell
// itself, which is supplied to the sampler as a fixed initial condition
// rather than as a known-state entry.
//
// Every at-or-after-first-capture cell is covered exactly once across
// {first-capture condition, KnownStates, InitialLatentValues}.
func KnownStates(obs *Matrix, first []int) *Matrix {
	known := mustFilled(obs.Rows(), obs.Cols(), NA)
	for i := 0; i < obs.Rows(); i++ {
		for t := first[i] + 1; t < obs.Cols(); t++ {
			switch obs.At(i, t) {
			case SeenUninfected:
				known.Set(i, t, StateUninfected)
			case SeenInfected:
				known.Set(i, t, StateInfected)
			}
		}
	}
	return known
}

// InitialLatentValues seeds starting values for exactly the latent cells
// the sampler will update: at-or-after-first-capture cells whose
// observation is NotSeen. Each such cell draws uniformly from the live
// states; the dead code is never assigned, since a dead start value would
// conflict with any later direct observation. All other cells are NA so
// the sampler treats them as fixed by data.
//
// The draw consumes the supplied rng only, so independent chains can seed
// fresh matrices from their own streams without recomputing the
// deterministic known-state and first-capture inputs.
func InitialLatentValues(obs *Matrix, first []int, rng *rand.Rand) *Matrix {
	inits := mustFilled(obs.Rows(), obs.Cols(), NA)
	for i := 0; i < obs.Rows(); i++ {
		for t := first[i]; t < obs.Cols(); t++ {
			if obs.At(i, t) == NotSeen {
				inits.Set(i, t, LiveStates[rng.Intn(len(LiveStates))])
			}
		}
	}
	return inits
}

// FirstCaptureStates returns the observed live state at each individual's
// first capture. These are the fixed initial conditions of the latent
// chains; by construction the first-capture observation is never NotSeen.
func FirstCaptureStates(obs *Matrix, first []int) []int {
	states := make([]int, obs.Rows())
	for i := 0; i < obs.Rows(); i++ {
		switch obs.At(i, first[i]) {
		case SeenUninfected:
			states[i] = StateUninfected
		case SeenInfected:
			states[i] = StateInfected
		}
	}
	return states
}

func mustFilled(rows, cols, fill int) *Matrix {
	m, err := NewMatrix(rows, cols, fill)
	if err != nil {
		panic(err)
	}
	return m
}
