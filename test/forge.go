// Package test provides helpers shared by the package tests, chiefly the
// construction of forged Groth16 instances whose pairing equation holds by
// arithmetic on known exponents rather than by running a prover.
package test

import (
	"math/big"

	curve "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/briwylde08/dead-mans-draw/groth16"
)

// ForgeGroth16 builds a verifying key and a proof that verify against the
// given public inputs. Every point is a known multiple of a group generator:
// alpha = a*G1, beta = b*G2, gamma = c*G2, delta = d*G2, IC[j] = k_j*G1,
// piB = G2, piC = z*G1 and piA = (a*b + v*c + z*d)*G1 where v is the
// exponent of the public input combination. The result exercises the real
// pairing without a circuit; it proves nothing about any statement.
func ForgeGroth16(inputs [][32]byte) (*groth16.VerifyingKey, *groth16.Proof) {
	_, _, g1, g2 := curve.Generators()
	rMod := fr.Modulus()

	a, b, c, d := big.NewInt(5), big.NewInt(7), big.NewInt(11), big.NewInt(13)
	ks := make([]*big.Int, len(inputs)+1)
	for j := range ks {
		ks[j] = big.NewInt(int64(17 + 6*j))
	}

	vk := &groth16.VerifyingKey{
		Alpha: g1Bytes(&g1, a),
		Beta:  g2Bytes(&g2, b),
		Gamma: g2Bytes(&g2, c),
		Delta: g2Bytes(&g2, d),
		IC:    make([]groth16.G1Bytes, len(ks)),
	}
	for j, k := range ks {
		vk.IC[j] = g1Bytes(&g1, k)
	}

	v := new(big.Int).Set(ks[0])
	for i := range inputs {
		var u fr.Element
		u.SetBytes(inputs[i][:])
		v.Add(v, new(big.Int).Mul(ks[i+1], u.BigInt(new(big.Int))))
	}
	v.Mod(v, rMod)

	z := big.NewInt(3)
	x := new(big.Int).Mul(a, b)
	x.Add(x, new(big.Int).Mul(v, c))
	x.Add(x, new(big.Int).Mul(z, d))
	x.Mod(x, rMod)

	proof := &groth16.Proof{
		PiA: g1Bytes(&g1, x),
		PiB: g2Bytes(&g2, big.NewInt(1)),
		PiC: g1Bytes(&g1, z),
	}
	return vk, proof
}

func g1Bytes(base *curve.G1Affine, s *big.Int) groth16.G1Bytes {
	var p curve.G1Affine
	p.ScalarMultiplication(base, s)

	var out groth16.G1Bytes
	if p.IsInfinity() {
		return out
	}
	x := p.X.Bytes()
	y := p.Y.Bytes()
	copy(out[:32], x[:])
	copy(out[32:], y[:])
	return out
}

func g2Bytes(base *curve.G2Affine, s *big.Int) groth16.G2Bytes {
	var p curve.G2Affine
	p.ScalarMultiplication(base, s)

	var out groth16.G2Bytes
	if p.IsInfinity() {
		return out
	}
	xa1 := p.X.A1.Bytes()
	xa0 := p.X.A0.Bytes()
	ya1 := p.Y.A1.Bytes()
	ya0 := p.Y.A0.Bytes()
	copy(out[0:32], xa1[:])
	copy(out[32:64], xa0[:])
	copy(out[64:96], ya1[:])
	copy(out[96:128], ya0[:])
	return out
}
