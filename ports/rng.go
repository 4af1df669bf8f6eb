package ports

import (
	"context"
	"math/rand"
)

// RNGPort provides seeded random number generation for deterministic operations
type RNGPort interface {
	// SeededStream creates a deterministic random number generator for a named operation
	SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error)

	// ChainStream creates a deterministic RNG stream for one sampler chain of a run.
	// The same run, chain and base seed always produce the identical stream, so
	// per-chain initial values are reproducible without sharing state across chains.
	ChainStream(ctx context.Context, runID string, chain int, baseSeed int64) (*rand.Rand, error)
}
