package groth16

import (
	"math/big"
	"testing"

	curve "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"
)

func encodeG2(p *curve.G2Affine) G2Bytes {
	var out G2Bytes
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

// buildInstance forges a key and proof satisfying the verification equation
// for the given inputs, using known exponents over the group generators:
// alpha = a*G1, beta = b*G2, gamma = c*G2, delta = d*G2, IC[j] = k_j*G1,
// piB = G2, piC = z*G1 and piA = (a*b + vkx*c + z*d)*G1.
func buildInstance(t *testing.T, inputs [][SizeScalar]byte) (*VerifyingKey, *Proof) {
	t.Helper()

	_, _, g1, g2 := curve.Generators()
	rMod := fr.Modulus()

	a, b, c, d := big.NewInt(5), big.NewInt(7), big.NewInt(11), big.NewInt(13)
	ks := []*big.Int{
		big.NewInt(17), big.NewInt(19), big.NewInt(23), big.NewInt(29),
		big.NewInt(31), big.NewInt(37), big.NewInt(41),
	}
	require.Len(t, ks, len(inputs)+1)

	mulG1 := func(s *big.Int) G1Bytes {
		var p curve.G1Affine
		p.ScalarMultiplication(&g1, s)
		return encodeG1(&p)
	}
	mulG2 := func(s *big.Int) G2Bytes {
		var p curve.G2Affine
		p.ScalarMultiplication(&g2, s)
		return encodeG2(&p)
	}

	vk := &VerifyingKey{
		Alpha: mulG1(a),
		Beta:  mulG2(b),
		Gamma: mulG2(c),
		Delta: mulG2(d),
		IC:    make([]G1Bytes, len(ks)),
	}
	for j, k := range ks {
		vk.IC[j] = mulG1(k)
	}

	// exponent of vkX
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

	proof := &Proof{
		PiA: mulG1(x),
		PiB: encodeG2(&g2),
		PiC: mulG1(z),
	}
	return vk, proof
}

func testInputs() [][SizeScalar]byte {
	inputs := make([][SizeScalar]byte, 6)
	for i := range inputs {
		inputs[i] = bytes32(0, 0, uint64(i), uint64(i)*1000+1)
	}
	return inputs
}

func TestVerify(t *testing.T) {
	assert := require.New(t)

	inputs := testInputs()
	vk, proof := buildInstance(t, inputs)

	ok, err := Verify(vk, proof, inputs)
	assert.NoError(err)
	assert.True(ok)
}

func TestVerifyRejectsTamperedInput(t *testing.T) {
	assert := require.New(t)

	inputs := testInputs()
	vk, proof := buildInstance(t, inputs)

	inputs[2][31] ^= 1
	ok, err := Verify(vk, proof, inputs)
	assert.NoError(err)
	assert.False(ok)
}

func TestVerifyRejectsTamperedProof(t *testing.T) {
	assert := require.New(t)

	inputs := testInputs()
	vk, proof := buildInstance(t, inputs)

	_, _, g1, _ := curve.Generators()
	var p curve.G1Affine
	p.ScalarMultiplication(&g1, big.NewInt(4))
	proof.PiC = encodeG1(&p)

	ok, err := Verify(vk, proof, inputs)
	assert.NoError(err)
	assert.False(ok)
}

func TestVerifyRejectsZeroProof(t *testing.T) {
	assert := require.New(t)

	inputs := testInputs()
	vk, _ := buildInstance(t, inputs)

	ok, err := Verify(vk, &Proof{}, inputs)
	assert.NoError(err)
	assert.False(ok)
}

func TestVerifyMalformedProofPoint(t *testing.T) {
	assert := require.New(t)

	inputs := testInputs()
	vk, proof := buildInstance(t, inputs)

	var offCurve G1Bytes
	offCurve[31] = 1
	offCurve[63] = 1
	proof.PiA = offCurve

	_, err := Verify(vk, proof, inputs)
	assert.ErrorIs(err, ErrInvalidPoint)
}

func TestVerifyInputCountMismatch(t *testing.T) {
	inputs := testInputs()
	vk, proof := buildInstance(t, inputs)

	_, err := Verify(vk, proof, inputs[:5])
	require.ErrorIs(t, err, ErrInputCount)
}
