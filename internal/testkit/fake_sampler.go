package testkit

import (
	"context"
	"fmt"

	"gocmr/domain/bundle"
	"gocmr/ports"
)

// FakeSampler implements SamplerPort by drawing from the priors instead of
// running inference. It exists so the pipeline around the engine (bundle
// assembly, persistence, summaries, reports) is testable without one.
type FakeSampler struct {
	rng ports.RNGPort
}

// NewFakeSampler creates a prior-sampling fake engine.
func NewFakeSampler(rng ports.RNGPort) *FakeSampler {
	return &FakeSampler{rng: rng}
}

// Sample returns prior draws for each monitored parameter, pooled across
// the requested chains. Deterministic given the bundle's seed.
func (f *FakeSampler) Sample(ctx context.Context, b *bundle.ModelBundle, opts ports.SampleOptions) (ports.PosteriorSamples, error) {
	chains := opts.Chains
	if chains < 1 {
		chains = b.Manifest.NChains
	}
	iters := opts.Iterations
	if iters < 1 {
		iters = 1000
	}

	samples := make(ports.PosteriorSamples, len(b.Spec.Monitored))
	for _, name := range b.Spec.Monitored {
		samples[name] = make([]float64, 0, chains*iters)
	}
	for c := 1; c <= chains; c++ {
		stream, err := f.rng.SeededStream(ctx, fmt.Sprintf("%s/fake-sampler/chain-%d", b.ID, c), b.Manifest.Seed)
		if err != nil {
			return nil, err
		}
		for i := 0; i < iters; i++ {
			draw := b.Spec.Priors.DrawInitial(stream)
			samples["phi_u"] = append(samples["phi_u"], draw.PhiU)
			samples["phi_i"] = append(samples["phi_i"], draw.PhiI)
			samples["psi_ui"] = append(samples["psi_ui"], draw.PsiUI)
			samples["psi_iu"] = append(samples["psi_iu"], draw.PsiIU)
			samples["p_u"] = append(samples["p_u"], draw.PU)
			samples["p_i"] = append(samples["p_i"], draw.PI)
		}
	}
	return samples, nil
}

var _ ports.SamplerPort = (*FakeSampler)(nil)
