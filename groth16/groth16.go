// Package groth16 verifies Groth16 proofs over the BN254 curve.
//
// Proofs, verifying keys and public inputs are carried in raw big-endian
// encodings. A G1 point is 64 bytes, X then Y; a G2 point is 128 bytes in
// the order X.A1, X.A0, Y.A1, Y.A0; scalars are 32 bytes. The all-zero
// encoding of a point is the point at infinity.
//
// The package knows nothing about the game on top of it; it consumes curve
// points and scalars and evaluates the pairing equation.
package groth16

import (
	"errors"
)

const (
	// SizeG1 is the byte length of a raw affine G1 point.
	SizeG1 = 64
	// SizeG2 is the byte length of a raw affine G2 point.
	SizeG2 = 128
	// SizeScalar is the byte length of a big-endian scalar.
	SizeScalar = 32
)

var (
	// ErrInvalidPoint signals a point encoding that does not decode to a
	// curve point: wrong length, non-canonical coordinate, off curve or
	// outside the prime-order subgroup.
	ErrInvalidPoint = errors.New("invalid curve point encoding")

	// ErrInputCount signals a public input vector whose length does not
	// match the verifying key.
	ErrInputCount = errors.New("public input count does not match verifying key")
)

// G1Bytes is the raw affine encoding of a BN254 G1 point.
type G1Bytes [SizeG1]byte

// G2Bytes is the raw affine encoding of a BN254 G2 point.
type G2Bytes [SizeG2]byte

// Proof is a Groth16 proof as produced by an external prover.
type Proof struct {
	PiA G1Bytes
	PiB G2Bytes
	PiC G1Bytes
}

// VerifyingKey holds the circuit verification parameters. IC has one entry
// more than the number of public inputs.
type VerifyingKey struct {
	Alpha G1Bytes
	Beta  G2Bytes
	Gamma G2Bytes
	Delta G2Bytes
	IC    []G1Bytes
}

// NbPublicInputs returns the number of public inputs the key expects.
func (vk *VerifyingKey) NbPublicInputs() int {
	return len(vk.IC) - 1
}
