package model

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"gocmr/domain/core"
)

func TestBuildTransition_RowsSumToOne(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	priors := DefaultPriors()

	for trial := 0; trial < 50; trial++ {
		p := priors.DrawInitial(rng)
		trans := BuildTransition(p, 4, 6)
		if err := trans.ValidateStochastic("transition"); err != nil {
			t.Fatalf("trial %d params %+v: %v", trial, p, err)
		}
		emit := BuildObservation(p, 4, 6)
		if err := emit.ValidateStochastic("observation"); err != nil {
			t.Fatalf("trial %d params %+v: %v", trial, p, err)
		}
	}
}

func TestBuildTransition_Structure(t *testing.T) {
	p := Parameters{PhiU: 0.8, PhiI: 0.6, PsiUI: 0.25, PsiIU: 0.1, PU: 0.5, PI: 0.4}
	trans := BuildTransition(p, 2, 4)

	uninfected := trans.Row(1, 0, 0)
	wantU := []float64{0.8 * 0.75, 0.8 * 0.25, 0.2}
	for k, w := range wantU {
		if math.Abs(uninfected[k]-w) > 1e-12 {
			t.Errorf("uninfected row[%d] = %g, want %g", k, uninfected[k], w)
		}
	}

	infected := trans.Row(2, 1, 2)
	wantI := []float64{0.6 * 0.1, 0.6 * 0.9, 0.4}
	for k, w := range wantI {
		if math.Abs(infected[k]-w) > 1e-12 {
			t.Errorf("infected row[%d] = %g, want %g", k, infected[k], w)
		}
	}

	dead := trans.Row(3, 0, 1)
	if dead[0] != 0 || dead[1] != 0 || dead[2] != 1 {
		t.Errorf("dead row = %v, want absorbing [0 0 1]", dead)
	}
}

func TestBuildObservation_Structure(t *testing.T) {
	p := Parameters{PhiU: 0.8, PhiI: 0.6, PsiUI: 0.25, PsiIU: 0.1, PU: 0.5, PI: 0.4}
	emit := BuildObservation(p, 3, 5)

	uninfected := emit.Row(1, 0, 0)
	if uninfected[1] != 0 {
		t.Errorf("uninfected can never test positive, got prob %g", uninfected[1])
	}
	if uninfected[0] != 0.5 || uninfected[2] != 0.5 {
		t.Errorf("uninfected row = %v, want [0.5 0 0.5]", uninfected)
	}

	infected := emit.Row(2, 2, 3)
	if infected[0] != 0 {
		t.Errorf("infected can never test negative, got prob %g", infected[0])
	}

	dead := emit.Row(3, 1, 1)
	if dead[0] != 0 || dead[1] != 0 || dead[2] != 1 {
		t.Errorf("dead row = %v, want [0 0 1] (always not seen)", dead)
	}
}

func TestTensor_MaterializedPerOccasionAndIndividual(t *testing.T) {
	p := Parameters{PhiU: 0.9, PhiI: 0.7, PsiUI: 0.2, PsiIU: 0.05, PU: 0.6, PI: 0.5}
	nInd, nOcc := 5, 7
	trans := BuildTransition(p, nInd, nOcc)

	if len(trans) != NStates {
		t.Fatalf("state axis = %d, want %d", len(trans), NStates)
	}
	if len(trans[0]) != nInd {
		t.Fatalf("individual axis = %d, want %d", len(trans[0]), nInd)
	}
	if len(trans[0][0]) != nOcc-1 {
		t.Fatalf("interval axis = %d, want %d", len(trans[0][0]), nOcc-1)
	}
}

func TestValidateStochastic_RejectsBadRow(t *testing.T) {
	p := Parameters{PhiU: 0.8, PhiI: 0.6, PsiUI: 0.25, PsiIU: 0.1, PU: 0.5, PI: 0.4}
	trans := BuildTransition(p, 1, 3)
	trans[0][0][0][0] += 1e-6

	err := trans.ValidateStochastic("transition")
	if !errors.Is(err, core.ErrNotStochastic) {
		t.Fatalf("err = %v, want ErrNotStochastic", err)
	}
}

func TestPriors_DrawInitialWithinBounds(t *testing.T) {
	priors := Priors{
		PhiU:  Bounds{0.5, 0.9},
		PhiI:  Bounds{0.1, 0.3},
		PsiUI: Bounds{0, 1},
		PsiIU: Bounds{0, 1},
		PU:    Bounds{0.2, 0.8},
		PI:    Bounds{0.2, 0.8},
	}
	if err := priors.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	rng := rand.New(rand.NewSource(17))
	for trial := 0; trial < 100; trial++ {
		p := priors.DrawInitial(rng)
		if p.PhiU < 0.5 || p.PhiU > 0.9 {
			t.Fatalf("PhiU = %g outside bounds", p.PhiU)
		}
		if p.PhiI < 0.1 || p.PhiI > 0.3 {
			t.Fatalf("PhiI = %g outside bounds", p.PhiI)
		}
		if err := p.Validate(); err != nil {
			t.Fatalf("drawn params invalid: %v", err)
		}
	}
}

func TestPriors_RejectInvalidBounds(t *testing.T) {
	bad := DefaultPriors()
	bad.PU = Bounds{Lower: 0.8, Upper: 0.2}
	if err := bad.Validate(); !errors.Is(err, core.ErrInvalidPrior) {
		t.Fatalf("err = %v, want ErrInvalidPrior", err)
	}
}

func TestDefinitions_CoverAllStates(t *testing.T) {
	for _, def := range []Definition{TransitionDefinition(), ObservationDefinition()} {
		if len(def.Rows) != NStates {
			t.Errorf("%s has %d rows, want %d", def.Name, len(def.Rows), NStates)
		}
		for state, row := range def.Rows {
			if len(row) != NStates {
				t.Errorf("%s row %s has %d entries, want %d", def.Name, state, len(row), NStates)
			}
		}
	}
}
