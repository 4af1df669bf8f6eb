package testkit

import (
	"math/rand"
	"testing"

	"gocmr/domain/encounter"
	"gocmr/domain/model"
)

func simulate(t *testing.T, seed int64) *Cohort {
	t.Helper()
	cohort, err := Simulate(SimulatorConfig{
		NIndividuals: 80,
		NOccasions:   6,
		Params: model.Parameters{
			PhiU: 0.8, PhiI: 0.65,
			PsiUI: 0.25, PsiIU: 0.1,
			PU: 0.55, PI: 0.45,
		},
		ReleaseSpread: 3,
	}, rand.New(rand.NewSource(seed)))
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	return cohort
}

func TestSimulate_ObservationsConsistentWithTruth(t *testing.T) {
	cohort := simulate(t, 1)

	for i := 0; i < cohort.Capture.Rows(); i++ {
		for tt := 0; tt < cohort.Capture.Cols(); tt++ {
			state := cohort.TrueStates.At(i, tt)
			captured := cohort.Capture.At(i, tt) == 1
			positive := cohort.Test.At(i, tt) == 1

			if positive && !captured {
				t.Fatalf("(%d,%d) positive test without capture", i, tt)
			}
			if state == encounter.NA && captured {
				t.Fatalf("(%d,%d) captured before release", i, tt)
			}
			if state == encounter.StateDead && captured {
				t.Fatalf("(%d,%d) captured while dead", i, tt)
			}
			if positive && state != encounter.StateInfected {
				t.Fatalf("(%d,%d) positive test in state %d", i, tt, state)
			}
			if captured && !positive && state != encounter.StateUninfected {
				t.Fatalf("(%d,%d) negative capture in state %d", i, tt, state)
			}
		}
	}
}

func TestSimulate_DeadIsAbsorbing(t *testing.T) {
	cohort := simulate(t, 2)

	for i := 0; i < cohort.TrueStates.Rows(); i++ {
		dead := false
		for tt := 0; tt < cohort.TrueStates.Cols(); tt++ {
			state := cohort.TrueStates.At(i, tt)
			if dead && state != encounter.StateDead {
				t.Fatalf("individual %d left the dead state at occasion %d", i, tt)
			}
			if state == encounter.StateDead {
				dead = true
			}
		}
	}
}

func TestSimulate_ReleaseIsCapture(t *testing.T) {
	cohort := simulate(t, 3)

	for i, release := range cohort.Released {
		if cohort.Capture.At(i, release) != 1 {
			t.Errorf("individual %d not captured at release occasion %d", i, release)
		}
		for tt := 0; tt < release; tt++ {
			if cohort.TrueStates.At(i, tt) != encounter.NA {
				t.Errorf("individual %d has a state before release", i)
			}
		}
	}
}

func TestSimulate_EncodesCleanly(t *testing.T) {
	cohort := simulate(t, 4)

	obs, err := encounter.Encode(cohort.Capture, cohort.Test)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	for i := 0; i < obs.Rows(); i++ {
		for tt := 0; tt < obs.Cols(); tt++ {
			state := cohort.TrueStates.At(i, tt)
			if obs.At(i, tt) == encounter.SeenInfected && state != encounter.StateInfected {
				t.Fatalf("(%d,%d) encoded infected but true state %d", i, tt, state)
			}
		}
	}
}

func TestSimulate_RejectsDegenerateConfig(t *testing.T) {
	_, err := Simulate(SimulatorConfig{NIndividuals: 0, NOccasions: 5}, rand.New(rand.NewSource(1)))
	if err == nil {
		t.Fatal("empty cohort accepted")
	}
	_, err = Simulate(SimulatorConfig{NIndividuals: 5, NOccasions: 1}, rand.New(rand.NewSource(1)))
	if err == nil {
		t.Fatal("single-occasion cohort accepted")
	}
}
