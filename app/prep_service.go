// Package app orchestrates data preparation from raw matrices to the
// sampler-ready model bundle.
package app

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"gocmr/domain/bundle"
	"gocmr/domain/core"
	"gocmr/domain/encounter"
	"gocmr/domain/model"
	"gocmr/internal"
	"gocmr/ports"
)

// PrepRequest configures one preparation run.
type PrepRequest struct {
	Capture *encounter.Matrix
	Test    *encounter.Matrix
	Priors  model.Priors
	Seed    int64
	Chains  int

	// DropNeverDetected removes all-not-seen rows instead of failing.
	// The dropped indices are reported in the manifest either way.
	DropNeverDetected bool
}

// PrepResult is the prepared bundle plus the indices of any dropped rows
// (relative to the raw input).
type PrepResult struct {
	Bundle  *bundle.ModelBundle
	Dropped []int
}

// PrepService runs the encoding pipeline: validate, encode, locate first
// captures, resolve the latent-state partition, and assemble the bundle
// with independently seeded per-chain initial values.
type PrepService struct {
	rng ports.RNGPort
	log *internal.Logger
}

// NewPrepService creates a preparation service.
func NewPrepService(rng ports.RNGPort, log *internal.Logger) *PrepService {
	return &PrepService{rng: rng, log: log}
}

// Prepare runs the full pipeline. Everything up to the initial values is
// deterministic in the inputs; the initial values are deterministic in the
// seed and chain count.
func (s *PrepService) Prepare(ctx context.Context, req PrepRequest) (*PrepResult, error) {
	if req.Chains < 1 {
		return nil, fmt.Errorf("chains must be >= 1, got %d", req.Chains)
	}
	priors := req.Priors
	if priors == (model.Priors{}) {
		priors = model.DefaultPriors()
	}
	if err := priors.Validate(); err != nil {
		return nil, err
	}

	obs, err := encounter.Encode(req.Capture, req.Test)
	if err != nil {
		return nil, err
	}

	dropped := encounter.NeverDetectedRows(obs)
	if len(dropped) > 0 {
		if !req.DropNeverDetected {
			return nil, core.NewNeverDetectedError(dropped[0])
		}
		s.log.Warn("dropping %d never-detected individuals: rows %v", len(dropped), dropped)
		if obs, err = obs.RemoveRows(dropped); err != nil {
			return nil, err
		}
	}

	first, err := encounter.FirstCapture(obs)
	if err != nil {
		return nil, err
	}
	known := encounter.KnownStates(obs, first)

	data := bundle.Data{
		Observations:       obs,
		FirstCapture:       first,
		FirstCaptureStates: encounter.FirstCaptureStates(obs, first),
		KnownStates:        known,
		NIndividuals:       obs.Rows(),
		NOccasions:         obs.Cols(),
	}

	runID := core.RunID(core.NewID())
	inits, err := s.drawInits(ctx, runID, data, priors, req.Seed, req.Chains)
	if err != nil {
		return nil, err
	}

	b := &bundle.ModelBundle{
		ID:       runID,
		Spec:     bundle.NewSpec(priors),
		Data:     data,
		Inits:    inits,
		Manifest: bundle.NewManifest(runID, data, req.Seed, req.Chains, dropped),
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkTensors(b); err != nil {
		return nil, err
	}

	s.log.Info("prepared run %s: %d individuals, %d occasions, %d chains",
		runID, data.NIndividuals, data.NOccasions, req.Chains)
	return &PrepResult{Bundle: b, Dropped: dropped}, nil
}

// drawInits generates one Inits per chain concurrently, each chain on its
// own derived stream so results are order-independent and reproducible.
func (s *PrepService) drawInits(ctx context.Context, runID core.RunID, data bundle.Data, priors model.Priors, seed int64, chains int) ([]bundle.Inits, error) {
	inits := make([]bundle.Inits, chains)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for c := 1; c <= chains; c++ {
		chain := c
		g.Go(func() error {
			stream, err := s.rng.ChainStream(gctx, runID.String(), chain, seed)
			if err != nil {
				return err
			}
			params := priors.DrawInitial(stream)
			latent := encounter.InitialLatentValues(data.Observations, data.FirstCapture, stream)
			mu.Lock()
			inits[chain-1] = bundle.Inits{Chain: chain, Params: params, LatentStates: latent}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return inits, nil
}

// checkTensors materializes the tensors at each chain's starting values
// and verifies every probability row sums to one. The sampler rebuilds
// the same tensors from the definitions; checking them here means a
// mis-specified model fails at prep time, not at interpretation time.
func (s *PrepService) checkTensors(b *bundle.ModelBundle) error {
	for _, in := range b.Inits {
		trans := model.BuildTransition(in.Params, b.Data.NIndividuals, b.Data.NOccasions)
		if err := trans.ValidateStochastic("transition"); err != nil {
			return err
		}
		emit := model.BuildObservation(in.Params, b.Data.NIndividuals, b.Data.NOccasions)
		if err := emit.ValidateStochastic("observation"); err != nil {
			return err
		}
	}
	return nil
}
