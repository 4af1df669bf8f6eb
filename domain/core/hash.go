package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// ComputeFingerprint produces a deterministic hash over ordered parts.
// Used for run manifests so identical inputs replay to identical fingerprints.
func ComputeFingerprint(parts ...string) Hash {
	var data strings.Builder
	for _, p := range parts {
		data.WriteString(p)
		data.WriteString("|")
	}
	return NewHash([]byte(data.String()))
}

// DeriveSeed maps a named stream and base seed to a child seed. The same
// name and base always derive the same child, so chains are reproducible.
func DeriveSeed(name string, base int64) int64 {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d", name, base)))
	var seed int64
	for i := 0; i < 8; i++ {
		seed = seed<<8 | int64(sum[i])
	}
	if seed < 0 {
		seed = -seed
	}
	return seed
}
