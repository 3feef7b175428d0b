package groth16

import (
	"bytes"
	"encoding/json"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func g1ToDecimal(p G1Bytes) []string {
	if p == (G1Bytes{}) {
		return []string{"0", "1", "0"}
	}
	return []string{
		new(big.Int).SetBytes(p[:32]).String(),
		new(big.Int).SetBytes(p[32:]).String(),
		"1",
	}
}

func g2ToDecimal(p G2Bytes) [][]string {
	// snarkjs lists the A0 limb first
	return [][]string{
		{new(big.Int).SetBytes(p[32:64]).String(), new(big.Int).SetBytes(p[0:32]).String()},
		{new(big.Int).SetBytes(p[96:128]).String(), new(big.Int).SetBytes(p[64:96]).String()},
		{"1", "0"},
	}
}

func TestParseSnarkJSVerifyingKey(t *testing.T) {
	assert := require.New(t)

	inputs := testInputs()
	vk, proof := buildInstance(t, inputs)

	raw := snarkJSVerifyingKey{
		Protocol: "groth16",
		Curve:    "bn128",
		NPublic:  len(inputs),
		VkAlpha1: g1ToDecimal(vk.Alpha),
		VkBeta2:  g2ToDecimal(vk.Beta),
		VkGamma2: g2ToDecimal(vk.Gamma),
		VkDelta2: g2ToDecimal(vk.Delta),
		IC:       make([][]string, len(vk.IC)),
	}
	for i := range vk.IC {
		raw.IC[i] = g1ToDecimal(vk.IC[i])
	}
	encoded, err := json.Marshal(raw)
	assert.NoError(err)

	parsed, err := ParseSnarkJSVerifyingKey(bytes.NewReader(encoded))
	assert.NoError(err)
	assert.Equal(vk, parsed)

	// the parsed key verifies the matching proof
	ok, err := Verify(parsed, proof, inputs)
	assert.NoError(err)
	assert.True(ok)
}

func TestParseSnarkJSProof(t *testing.T) {
	assert := require.New(t)

	inputs := testInputs()
	_, proof := buildInstance(t, inputs)

	raw := snarkJSProof{
		Protocol: "groth16",
		PiA:      g1ToDecimal(proof.PiA),
		PiB:      g2ToDecimal(proof.PiB),
		PiC:      g1ToDecimal(proof.PiC),
	}
	encoded, err := json.Marshal(raw)
	assert.NoError(err)

	parsed, err := ParseSnarkJSProof(bytes.NewReader(encoded))
	assert.NoError(err)
	assert.Equal(proof, parsed)
}

func TestParseSnarkJSVerifyingKeyRejects(t *testing.T) {
	assert := require.New(t)

	_, err := ParseSnarkJSVerifyingKey(strings.NewReader(`{"protocol":"plonk","curve":"bn128"}`))
	assert.ErrorIs(err, ErrUnsupportedArtifact)

	_, err = ParseSnarkJSVerifyingKey(strings.NewReader(`{"protocol":"groth16","curve":"bls12-381"}`))
	assert.ErrorIs(err, ErrUnsupportedArtifact)

	_, err = ParseSnarkJSVerifyingKey(strings.NewReader(`not json`))
	assert.Error(err)
}

func TestParseSnarkJSPublicInputs(t *testing.T) {
	assert := require.New(t)

	got, err := ParseSnarkJSPublicInputs(strings.NewReader(`["1", "255", "0"]`))
	assert.NoError(err)
	assert.Len(got, 3)
	assert.EqualValues(1, got[0][31])
	assert.EqualValues(255, got[1][31])
	assert.Equal([SizeScalar]byte{}, got[2])

	_, err = ParseSnarkJSPublicInputs(strings.NewReader(`["-4"]`))
	assert.Error(err)

	_, err = ParseSnarkJSPublicInputs(strings.NewReader(`["xyz"]`))
	assert.Error(err)
}
