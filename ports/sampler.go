package ports

import (
	"context"

	"gocmr/domain/bundle"
)

// PosteriorSamples maps a monitored parameter name to its pooled posterior
// draws across chains.
type PosteriorSamples map[string][]float64

// SampleOptions configures a sampler invocation.
type SampleOptions struct {
	Chains     int
	Iterations int
	Burnin     int
	Thin       int
}

// SamplerPort is the external Bayesian engine. It consumes a model bundle
// and returns posterior samples for the monitored parameters. The sampling
// algorithm itself (proposals, mixing) lives entirely behind this port.
type SamplerPort interface {
	Sample(ctx context.Context, b *bundle.ModelBundle, opts SampleOptions) (PosteriorSamples, error)
}

// ParameterSummary is a posterior summary for one monitored parameter.
type ParameterSummary struct {
	Parameter string  `json:"parameter" db:"parameter"`
	Mean      float64 `json:"mean" db:"mean"`
	StdDev    float64 `json:"std_dev" db:"std_dev"`
	Median    float64 `json:"median" db:"median"`
	P2_5      float64 `json:"p2_5" db:"p2_5"`
	P97_5     float64 `json:"p97_5" db:"p97_5"`
}
