package bundle

import (
	"fmt"

	"gocmr/domain/core"
)

// Manifest captures the determinism metadata of a prepared bundle: the
// seed, the counts, any rows dropped upstream, and a fingerprint so the
// same inputs replay to the same bundle.
type Manifest struct {
	RunID        core.RunID     `json:"run_id"`
	Seed         int64          `json:"seed"`
	NIndividuals int            `json:"n_individuals"`
	NOccasions   int            `json:"n_occasions"`
	NChains      int            `json:"n_chains"`
	DroppedRows  []int          `json:"dropped_rows,omitempty"`
	Fingerprint  core.Hash      `json:"fingerprint"`
	CreatedAt    core.Timestamp `json:"created_at"`
}

// NewManifest builds a manifest for the given data and seed. The
// fingerprint covers the observation matrix, the seed, and the chain
// count, which together determine every derived quantity in the bundle.
func NewManifest(runID core.RunID, data Data, seed int64, chains int, dropped []int) Manifest {
	return Manifest{
		RunID:        runID,
		Seed:         seed,
		NIndividuals: data.NIndividuals,
		NOccasions:   data.NOccasions,
		NChains:      chains,
		DroppedRows:  dropped,
		Fingerprint: core.ComputeFingerprint(
			data.Observations.Fingerprint().String(),
			fmt.Sprintf("seed=%d", seed),
			fmt.Sprintf("chains=%d", chains),
		),
		CreatedAt: core.Now(),
	}
}
