package groth16

import (
	"fmt"
	"math/big"
	"time"

	curve "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/briwylde08/dead-mans-draw/logger"
)

// Verify checks proof against vk and the ordered public inputs.
//
// Each input is interpreted as a big-endian scalar reduced mod the fr order.
// The verification equation is evaluated as a single batched pairing product
//
//	e(piA, piB) * e(-alpha, beta) * e(-vkX, gamma) * e(-piC, delta) == 1
//
// where vkX is the public input linear combination over IC. A proof that
// fails the equation yields (false, nil); a malformed point yields an error
// wrapping ErrInvalidPoint before any pairing work.
func Verify(vk *VerifyingKey, proof *Proof, publicInputs [][SizeScalar]byte) (bool, error) {
	log := logger.Logger().With().Str("curve", "bn254").Str("backend", "groth16").Logger()
	start := time.Now()

	if len(publicInputs) != vk.NbPublicInputs() {
		return false, fmt.Errorf("%w: %d inputs for %d ic points", ErrInputCount, len(publicInputs), len(vk.IC))
	}

	// vkX = IC[0] + sum_i inputs[i] * IC[i+1]
	ic0, err := decodeG1(vk.IC[0])
	if err != nil {
		return false, err
	}
	vkX := *ic0
	var s big.Int
	for i := range publicInputs {
		ic, err := decodeG1(vk.IC[i+1])
		if err != nil {
			return false, err
		}
		var scalar fr.Element
		scalar.SetBytes(publicInputs[i][:])

		var term curve.G1Affine
		term.ScalarMultiplication(ic, scalar.BigInt(&s))
		vkX.Add(&vkX, &term)
	}

	piA, err := decodeG1(proof.PiA)
	if err != nil {
		return false, err
	}
	piB, err := decodeG2(proof.PiB)
	if err != nil {
		return false, err
	}
	negAlpha, err := decodeG1(NegateG1(vk.Alpha))
	if err != nil {
		return false, err
	}
	negVkX, err := decodeG1(NegateG1(encodeG1(&vkX)))
	if err != nil {
		return false, err
	}
	negPiC, err := decodeG1(NegateG1(proof.PiC))
	if err != nil {
		return false, err
	}
	beta, err := decodeG2(vk.Beta)
	if err != nil {
		return false, err
	}
	gamma, err := decodeG2(vk.Gamma)
	if err != nil {
		return false, err
	}
	delta, err := decodeG2(vk.Delta)
	if err != nil {
		return false, err
	}

	ok, err := curve.PairingCheck(
		[]curve.G1Affine{*piA, *negAlpha, *negVkX, *negPiC},
		[]curve.G2Affine{*piB, *beta, *gamma, *delta},
	)
	if err != nil {
		return false, err
	}

	log.Debug().Dur("took", time.Since(start)).Bool("valid", ok).Msg("verifier done")
	return ok, nil
}
