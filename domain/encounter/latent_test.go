package encounter

import (
	"math/rand"
	"testing"
)

// randomObservations builds a valid observation matrix where every row has
// at least one detection.
func randomObservations(t *testing.T, rng *rand.Rand, rows, cols int) *Matrix {
	t.Helper()
	m, err := NewMatrix(rows, cols, NotSeen)
	if err != nil {
		t.Fatalf("NewMatrix: %v", err)
	}
	codes := []int{SeenUninfected, SeenInfected, NotSeen}
	for i := 0; i < rows; i++ {
		for tt := 0; tt < cols; tt++ {
			m.Set(i, tt, codes[rng.Intn(len(codes))])
		}
		// guarantee a detection somewhere
		m.Set(i, rng.Intn(cols), SeenUninfected)
	}
	return m
}

func TestLatentPartition_EveryCellCoveredOnce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	obs := randomObservations(t, rng, 40, 10)
	first, err := FirstCapture(obs)
	if err != nil {
		t.Fatalf("FirstCapture: %v", err)
	}

	known := KnownStates(obs, first)
	inits := InitialLatentValues(obs, first, rng)

	for i := 0; i < obs.Rows(); i++ {
		for tt := 0; tt < obs.Cols(); tt++ {
			k := known.At(i, tt) != NA
			s := inits.At(i, tt) != NA
			switch {
			case tt < first[i]:
				if k || s {
					t.Fatalf("cell (%d,%d) populated before first capture", i, tt)
				}
			case tt == first[i]:
				// fixed initial condition, supplied separately
				if k || s {
					t.Fatalf("first-capture cell (%d,%d) populated as known or seeded", i, tt)
				}
			default:
				if k == s {
					t.Fatalf("cell (%d,%d): known=%v seeded=%v, want exactly one", i, tt, k, s)
				}
			}
		}
	}
}

func TestInitialLatentValues_OnlyLiveStates(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	obs := randomObservations(t, rng, 30, 8)
	first, _ := FirstCapture(obs)

	inits := InitialLatentValues(obs, first, rng)
	for i := 0; i < obs.Rows(); i++ {
		for tt := 0; tt < obs.Cols(); tt++ {
			v := inits.At(i, tt)
			if v == NA {
				continue
			}
			if v != StateUninfected && v != StateInfected {
				t.Fatalf("seeded value %d at (%d,%d) outside live states", v, i, tt)
			}
			if v == StateDead {
				t.Fatalf("dead state seeded at (%d,%d)", i, tt)
			}
		}
	}
}

func TestInitialLatentValues_TrailingNotSeenAllSeeded(t *testing.T) {
	obs := mustFromRows(t, [][]int{{SeenInfected, NotSeen, NotSeen, NotSeen}})
	first, err := FirstCapture(obs)
	if err != nil {
		t.Fatalf("FirstCapture: %v", err)
	}

	inits := InitialLatentValues(obs, first, rand.New(rand.NewSource(1)))
	for tt := 1; tt < obs.Cols(); tt++ {
		if inits.At(0, tt) == NA {
			t.Errorf("trailing not-seen cell %d not seeded", tt)
		}
	}
}

func TestInitialLatentValues_DeterministicGivenSeed(t *testing.T) {
	base := rand.New(rand.NewSource(3))
	obs := randomObservations(t, base, 20, 6)
	first, _ := FirstCapture(obs)

	a := InitialLatentValues(obs, first, rand.New(rand.NewSource(99)))
	b := InitialLatentValues(obs, first, rand.New(rand.NewSource(99)))
	c := InitialLatentValues(obs, first, rand.New(rand.NewSource(100)))

	same, diff := true, true
	for i := 0; i < obs.Rows(); i++ {
		for tt := 0; tt < obs.Cols(); tt++ {
			if a.At(i, tt) != b.At(i, tt) {
				same = false
			}
			if a.At(i, tt) != c.At(i, tt) {
				diff = false
			}
		}
	}
	if !same {
		t.Error("identical seeds produced different initial values")
	}
	if diff {
		t.Error("different seeds produced identical initial values")
	}
}

func TestKnownStates_MapsObservationsToStates(t *testing.T) {
	obs := mustFromRows(t, [][]int{
		{NotSeen, SeenUninfected, NotSeen, SeenInfected},
	})
	first, _ := FirstCapture(obs)

	known := KnownStates(obs, first)
	if got := known.At(0, 0); got != NA {
		t.Errorf("pre-first cell = %d, want NA", got)
	}
	if got := known.At(0, 1); got != NA {
		t.Errorf("first-capture cell = %d, want NA", got)
	}
	if got := known.At(0, 2); got != NA {
		t.Errorf("not-seen cell = %d, want NA", got)
	}
	if got := known.At(0, 3); got != StateInfected {
		t.Errorf("seen-infected cell = %d, want StateInfected", got)
	}
}

func TestFirstCaptureStates(t *testing.T) {
	obs := mustFromRows(t, [][]int{
		{NotSeen, SeenUninfected, NotSeen},
		{SeenInfected, NotSeen, NotSeen},
	})
	first, _ := FirstCapture(obs)

	states := FirstCaptureStates(obs, first)
	if states[0] != StateUninfected {
		t.Errorf("states[0] = %d, want StateUninfected", states[0])
	}
	if states[1] != StateInfected {
		t.Errorf("states[1] = %d, want StateInfected", states[1])
	}
}
