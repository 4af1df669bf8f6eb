// Package model defines the generative probability model for the two-state
// capture-recapture system: the scalar parameter pairs, their priors, and
// the state-transition and observation tensors the sampler evaluates.
package model

import (
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"

	"gocmr/domain/core"
)

// Parameters holds the four scalar parameter pairs of the model. All are
// probabilities, constant across occasions in the current design.
type Parameters struct {
	// Survival probabilities per live state
	PhiU float64 `json:"phi_u"`
	PhiI float64 `json:"phi_i"`

	// State-transition probabilities conditional on survival
	PsiUI float64 `json:"psi_ui"` // uninfected -> infected
	PsiIU float64 `json:"psi_iu"` // infected -> uninfected

	// Detection probabilities per live state
	PU float64 `json:"p_u"`
	PI float64 `json:"p_i"`
}

// Validate checks every parameter is a probability.
func (p Parameters) Validate() error {
	for _, v := range []float64{p.PhiU, p.PhiI, p.PsiUI, p.PsiIU, p.PU, p.PI} {
		if v < 0 || v > 1 {
			return core.ErrInvalidParameter
		}
	}
	return nil
}

// Bounds is a bounded uniform prior on a single parameter.
type Bounds struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

func (b Bounds) valid() bool {
	return b.Lower >= 0 && b.Upper <= 1 && b.Lower < b.Upper
}

func (b Bounds) draw(rng *rand.Rand) float64 {
	// Quantile transform so the draw consumes the injected stream.
	return distuv.Uniform{Min: b.Lower, Max: b.Upper}.Quantile(rng.Float64())
}

// Priors holds the prior bounds for every parameter.
type Priors struct {
	PhiU  Bounds `json:"phi_u"`
	PhiI  Bounds `json:"phi_i"`
	PsiUI Bounds `json:"psi_ui"`
	PsiIU Bounds `json:"psi_iu"`
	PU    Bounds `json:"p_u"`
	PI    Bounds `json:"p_i"`
}

// DefaultPriors returns flat uniform(0,1) priors for all parameters.
func DefaultPriors() Priors {
	u := Bounds{Lower: 0, Upper: 1}
	return Priors{PhiU: u, PhiI: u, PsiUI: u, PsiIU: u, PU: u, PI: u}
}

// Validate checks every bound is a sub-interval of [0,1].
func (p Priors) Validate() error {
	for _, b := range []Bounds{p.PhiU, p.PhiI, p.PsiUI, p.PsiIU, p.PU, p.PI} {
		if !b.valid() {
			return core.ErrInvalidPrior
		}
	}
	return nil
}

// DrawInitial draws an independent starting value for each parameter from
// its prior. Each chain calls this on its own rng stream.
func (p Priors) DrawInitial(rng *rand.Rand) Parameters {
	return Parameters{
		PhiU:  p.PhiU.draw(rng),
		PhiI:  p.PhiI.draw(rng),
		PsiUI: p.PsiUI.draw(rng),
		PsiIU: p.PsiIU.draw(rng),
		PU:    p.PU.draw(rng),
		PI:    p.PI.draw(rng),
	}
}

// MonitoredParameters lists the parameter names whose posteriors the
// sampler is asked to report.
func MonitoredParameters() []string {
	return []string{"phi_u", "phi_i", "psi_ui", "psi_iu", "p_u", "p_i"}
}
