// Package rng implements the RNG port with deterministic named streams.
package rng

import (
	"context"
	"fmt"
	"math/rand"

	"gocmr/domain/core"
	"gocmr/ports"
)

// StreamRNG derives independent math/rand streams from a hashed
// (name, seed) pair. Streams with the same name and seed are identical;
// different names on the same seed are independent for practical purposes.
type StreamRNG struct{}

// New creates a new stream RNG adapter.
func New() *StreamRNG {
	return &StreamRNG{}
}

// SeededStream returns the deterministic stream for a named operation.
func (s *StreamRNG) SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error) {
	if name == "" {
		return nil, fmt.Errorf("stream name cannot be empty")
	}
	return rand.New(rand.NewSource(core.DeriveSeed(name, seed))), nil
}

// ChainStream returns the stream for one sampler chain of a run.
func (s *StreamRNG) ChainStream(ctx context.Context, runID string, chain int, baseSeed int64) (*rand.Rand, error) {
	if chain < 1 {
		return nil, fmt.Errorf("chain must be >= 1, got %d", chain)
	}
	return s.SeededStream(ctx, fmt.Sprintf("%s/chain-%d", runID, chain), baseSeed)
}

var _ ports.RNGPort = (*StreamRNG)(nil)
