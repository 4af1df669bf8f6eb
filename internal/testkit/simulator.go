// Package testkit provides synthetic cohorts, an in-memory run store, and
// a prior-sampling stand-in for the external engine.
package testkit

import (
	"fmt"
	"math/rand"

	"gocmr/domain/encounter"
	"gocmr/domain/model"
)

// SimulatorConfig describes a synthetic cohort.
type SimulatorConfig struct {
	NIndividuals int
	NOccasions   int
	Params       model.Parameters

	// ReleaseSpread staggers first releases across the first k occasions
	// (round-robin). Zero releases everyone at occasion 0.
	ReleaseSpread int
}

// Cohort is a simulated dataset plus the true history that generated it.
type Cohort struct {
	Capture    *encounter.Matrix
	Test       *encounter.Matrix
	TrueStates *encounter.Matrix
	Released   []int
}

// Simulate runs the generative process forward: each individual enters at
// its release occasion in a random live state, then at every step draws
// its next true state from the transition row of its current state and its
// observation from the emission row of its new state. The capture and test
// matrices are the raw views of those observations.
func Simulate(cfg SimulatorConfig, rng *rand.Rand) (*Cohort, error) {
	if cfg.NIndividuals < 1 || cfg.NOccasions < 2 {
		return nil, fmt.Errorf("cohort needs at least 1 individual and 2 occasions")
	}
	if err := cfg.Params.Validate(); err != nil {
		return nil, err
	}

	trans := model.BuildTransition(cfg.Params, cfg.NIndividuals, cfg.NOccasions)
	emit := model.BuildObservation(cfg.Params, cfg.NIndividuals, cfg.NOccasions)

	capture, err := encounter.NewMatrix(cfg.NIndividuals, cfg.NOccasions, 0)
	if err != nil {
		return nil, err
	}
	test := capture.Clone()
	states, err := encounter.NewMatrix(cfg.NIndividuals, cfg.NOccasions, encounter.NA)
	if err != nil {
		return nil, err
	}

	spread := cfg.ReleaseSpread
	if spread < 1 {
		spread = 1
	}
	if spread > cfg.NOccasions-1 {
		spread = cfg.NOccasions - 1
	}

	released := make([]int, cfg.NIndividuals)
	for i := 0; i < cfg.NIndividuals; i++ {
		release := i % spread
		released[i] = release

		state := encounter.LiveStates[rng.Intn(len(encounter.LiveStates))]
		states.Set(i, release, state)
		// Release is a capture by definition
		capture.Set(i, release, 1)
		if state == encounter.StateInfected {
			test.Set(i, release, 1)
		}

		for t := release + 1; t < cfg.NOccasions; t++ {
			state = drawCategorical(rng, trans.Row(state, i, t-1)) + 1
			states.Set(i, t, state)
			obs := drawCategorical(rng, emit.Row(state, i, t-1)) + 1
			switch obs {
			case encounter.SeenUninfected:
				capture.Set(i, t, 1)
			case encounter.SeenInfected:
				capture.Set(i, t, 1)
				test.Set(i, t, 1)
			}
		}
	}

	return &Cohort{Capture: capture, Test: test, TrueStates: states, Released: released}, nil
}

// drawCategorical samples a zero-based index from a probability row.
func drawCategorical(rng *rand.Rand, probs []float64) int {
	u := rng.Float64()
	cum := 0.0
	for k, p := range probs {
		cum += p
		if u < cum {
			return k
		}
	}
	return len(probs) - 1
}
