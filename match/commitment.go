package match

import (
	"crypto/rand"

	"golang.org/x/crypto/sha3"
)

// ComputeCommitment returns the Keccak-256 commitment to a seed, the binding
// the settlement circuit checks.
func ComputeCommitment(seed Seed) Commitment {
	h := sha3.NewLegacyKeccak256()
	h.Write(seed[:])

	var out Commitment
	h.Sum(out[:0])
	return out
}

// NewSeed draws a fresh random seed.
func NewSeed() (Seed, error) {
	var s Seed
	if _, err := rand.Read(s[:]); err != nil {
		return Seed{}, err
	}
	return s, nil
}
