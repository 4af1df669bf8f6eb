// Package bundle assembles the artifact handed to the external Bayesian
// sampler: the model specification, the encoded data, and per-chain
// initial values.
package bundle

import (
	"fmt"

	"gocmr/domain/core"
	"gocmr/domain/encounter"
	"gocmr/domain/model"
)

// Spec is the model specification, parameterized but not evaluated. The
// sampler evaluates the tensor definitions against its current parameter
// values; this package never runs the sampling algorithm.
type Spec struct {
	Priors      model.Priors     `json:"priors"`
	Monitored   []string         `json:"monitored"`
	Transition  model.Definition `json:"transition"`
	Observation model.Definition `json:"observation"`
	NStates     int              `json:"n_states"`
	NObs        int              `json:"n_obs"`
}

// NewSpec returns the model specification for the given priors.
func NewSpec(priors model.Priors) Spec {
	return Spec{
		Priors:      priors,
		Monitored:   model.MonitoredParameters(),
		Transition:  model.TransitionDefinition(),
		Observation: model.ObservationDefinition(),
		NStates:     model.NStates,
		NObs:        model.NObs,
	}
}

// Data is the encoded data handed to the sampler. Everything here is
// deterministic given the raw inputs and is shared read-only across chains.
type Data struct {
	Observations       *encounter.Matrix `json:"observations"`
	FirstCapture       []int             `json:"first_capture"`
	FirstCaptureStates []int             `json:"first_capture_states"`
	KnownStates        *encounter.Matrix `json:"known_states"`
	NIndividuals       int               `json:"n_individuals"`
	NOccasions         int               `json:"n_occasions"`
}

// Inits holds one chain's starting values: parameter draws within their
// prior bounds and seeded latent states for the cells the sampler updates.
type Inits struct {
	Chain        int               `json:"chain"`
	Params       model.Parameters  `json:"params"`
	LatentStates *encounter.Matrix `json:"latent_states"`
}

// ModelBundle is the complete sampler input plus its reproducibility
// manifest. Data is immutable once assembled; a fresh sampler invocation
// redraws Inits from new streams but never touches Data.
type ModelBundle struct {
	ID       core.RunID `json:"id"`
	Spec     Spec       `json:"spec"`
	Data     Data       `json:"data"`
	Inits    []Inits    `json:"inits"`
	Manifest Manifest   `json:"manifest"`
}

// Validate cross-checks the bundle's internal consistency: shapes agree,
// first-capture indices are in range and point at detections, and the
// known and seeded latent matrices are disjoint. These are the invariants
// the statistical model silently depends on.
func (b *ModelBundle) Validate() error {
	d := b.Data
	if d.Observations == nil || d.KnownStates == nil {
		return core.NewBundleError("data", "missing matrices")
	}
	if d.Observations.Rows() != d.NIndividuals || d.Observations.Cols() != d.NOccasions {
		return core.NewBundleError("observations", "shape disagrees with counts")
	}
	if !d.Observations.SameShape(d.KnownStates) {
		return core.NewBundleError("known_states", "shape disagrees with observations")
	}
	if len(d.FirstCapture) != d.NIndividuals {
		return core.NewBundleError("first_capture", "length disagrees with individual count")
	}
	for i, f := range d.FirstCapture {
		if f < 0 || f >= d.NOccasions {
			return core.NewBundleError("first_capture", fmt.Sprintf("row %d index %d out of range", i, f))
		}
		if d.Observations.At(i, f) == encounter.NotSeen {
			return core.NewBundleError("first_capture", fmt.Sprintf("row %d points at a not-seen occasion", i))
		}
	}
	if len(b.Inits) == 0 {
		return core.NewBundleError("inits", "no chains")
	}
	for _, in := range b.Inits {
		if err := in.Params.Validate(); err != nil {
			return err
		}
		if in.LatentStates == nil || !in.LatentStates.SameShape(d.Observations) {
			return core.NewBundleError("latent_states", fmt.Sprintf("chain %d shape mismatch", in.Chain))
		}
		if err := b.checkDisjoint(in); err != nil {
			return err
		}
	}
	return b.checkManifest()
}

// checkManifest recomputes the fingerprint from the bundle contents. A
// mismatch means the manifest's seed or counts no longer describe the data
// they ship with, so a replay from the manifest would diverge.
func (b *ModelBundle) checkManifest() error {
	m := b.Manifest
	if m.NChains != len(b.Inits) {
		return core.NewBundleError("manifest", "chain count disagrees with inits")
	}
	want := core.ComputeFingerprint(
		b.Data.Observations.Fingerprint().String(),
		fmt.Sprintf("seed=%d", m.Seed),
		fmt.Sprintf("chains=%d", m.NChains),
	)
	if m.Fingerprint != want {
		return fmt.Errorf("%w: manifest fingerprint does not replay from bundle contents", core.ErrSeedMismatch)
	}
	return nil
}

// checkDisjoint enforces the partition of latent cells: each at-or-after
// first-capture cell is fixed by observation, seeded for sampling, or the
// fixed first-capture condition; never more than one of those.
func (b *ModelBundle) checkDisjoint(in Inits) error {
	d := b.Data
	for i := 0; i < d.NIndividuals; i++ {
		for t := d.FirstCapture[i]; t < d.NOccasions; t++ {
			known := d.KnownStates.At(i, t) != encounter.NA
			seed := in.LatentStates.At(i, t)
			seeded := seed != encounter.NA
			if seeded && seed != encounter.StateUninfected && seed != encounter.StateInfected {
				return core.NewBundleError("latent_states",
					fmt.Sprintf("chain %d cell (%d,%d) seeded with non-live state %d", in.Chain, i, t, seed))
			}
			if known && seeded {
				return fmt.Errorf("%w: chain %d cell (%d,%d)", core.ErrLatentOverlap, in.Chain, i, t)
			}
			if t == d.FirstCapture[i] {
				continue // covered by the fixed first-capture condition
			}
			if !known && !seeded {
				return core.NewBundleError("latent_states",
					fmt.Sprintf("chain %d cell (%d,%d) neither known nor seeded", in.Chain, i, t))
			}
		}
	}
	return nil
}
