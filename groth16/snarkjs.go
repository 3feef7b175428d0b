package groth16

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
)

// snarkjs JSON artifacts carry points in projective form with decimal string
// coordinates. G2 coordinates list the A0 limb first; the raw wire encoding
// lists A1 first.

// ErrUnsupportedArtifact signals a snarkjs file for a protocol or curve
// other than groth16 over bn128.
var ErrUnsupportedArtifact = errors.New("unsupported snarkjs artifact")

type snarkJSProof struct {
	PiA      []string   `json:"pi_a"`
	PiB      [][]string `json:"pi_b"`
	PiC      []string   `json:"pi_c"`
	Protocol string     `json:"protocol"`
}

type snarkJSVerifyingKey struct {
	Protocol string     `json:"protocol"`
	Curve    string     `json:"curve"`
	NPublic  int        `json:"nPublic"`
	VkAlpha1 []string   `json:"vk_alpha_1"`
	VkBeta2  [][]string `json:"vk_beta_2"`
	VkGamma2 [][]string `json:"vk_gamma_2"`
	VkDelta2 [][]string `json:"vk_delta_2"`
	IC       [][]string `json:"IC"`
}

// ParseSnarkJSVerifyingKey reads a snarkjs verification_key.json.
func ParseSnarkJSVerifyingKey(r io.Reader) (*VerifyingKey, error) {
	var raw snarkJSVerifyingKey
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode verification key: %w", err)
	}
	if raw.Protocol != "groth16" {
		return nil, fmt.Errorf("%w: protocol %q", ErrUnsupportedArtifact, raw.Protocol)
	}
	if raw.Curve != "bn128" && raw.Curve != "bn254" {
		return nil, fmt.Errorf("%w: curve %q", ErrUnsupportedArtifact, raw.Curve)
	}
	if len(raw.IC) != raw.NPublic+1 {
		return nil, fmt.Errorf("ic length %d does not match nPublic %d", len(raw.IC), raw.NPublic)
	}

	var (
		vk  VerifyingKey
		err error
	)
	if vk.Alpha, err = g1FromDecimal(raw.VkAlpha1); err != nil {
		return nil, fmt.Errorf("vk_alpha_1: %w", err)
	}
	if vk.Beta, err = g2FromDecimal(raw.VkBeta2); err != nil {
		return nil, fmt.Errorf("vk_beta_2: %w", err)
	}
	if vk.Gamma, err = g2FromDecimal(raw.VkGamma2); err != nil {
		return nil, fmt.Errorf("vk_gamma_2: %w", err)
	}
	if vk.Delta, err = g2FromDecimal(raw.VkDelta2); err != nil {
		return nil, fmt.Errorf("vk_delta_2: %w", err)
	}
	vk.IC = make([]G1Bytes, len(raw.IC))
	for i, coords := range raw.IC {
		if vk.IC[i], err = g1FromDecimal(coords); err != nil {
			return nil, fmt.Errorf("ic[%d]: %w", i, err)
		}
	}
	return &vk, nil
}

// ParseSnarkJSProof reads a snarkjs proof.json.
func ParseSnarkJSProof(r io.Reader) (*Proof, error) {
	var raw snarkJSProof
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode proof: %w", err)
	}
	if raw.Protocol != "" && raw.Protocol != "groth16" {
		return nil, fmt.Errorf("%w: protocol %q", ErrUnsupportedArtifact, raw.Protocol)
	}

	var (
		proof Proof
		err   error
	)
	if proof.PiA, err = g1FromDecimal(raw.PiA); err != nil {
		return nil, fmt.Errorf("pi_a: %w", err)
	}
	if proof.PiB, err = g2FromDecimal(raw.PiB); err != nil {
		return nil, fmt.Errorf("pi_b: %w", err)
	}
	if proof.PiC, err = g1FromDecimal(raw.PiC); err != nil {
		return nil, fmt.Errorf("pi_c: %w", err)
	}
	return &proof, nil
}

// ParseSnarkJSPublicInputs reads a snarkjs public.json, a flat array of
// decimal strings.
func ParseSnarkJSPublicInputs(r io.Reader) ([][SizeScalar]byte, error) {
	var raw []string
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode public inputs: %w", err)
	}
	out := make([][SizeScalar]byte, len(raw))
	for i, s := range raw {
		v, ok := new(big.Int).SetString(s, 10)
		if !ok || v.Sign() < 0 {
			return nil, fmt.Errorf("public input %d: invalid decimal %q", i, s)
		}
		if v.BitLen() > 8*SizeScalar {
			return nil, fmt.Errorf("public input %d: value does not fit 32 bytes", i)
		}
		v.FillBytes(out[i][:])
	}
	return out, nil
}

func g1FromDecimal(coords []string) (G1Bytes, error) {
	var out G1Bytes
	if len(coords) != 3 {
		return out, fmt.Errorf("g1 point has %d coordinates, want 3", len(coords))
	}
	if coords[2] == "0" {
		return out, nil
	}
	if coords[2] != "1" {
		return out, errors.New("g1 point not in normalized projective form")
	}
	if err := coordFromDecimal(out[:32], coords[0]); err != nil {
		return out, err
	}
	if err := coordFromDecimal(out[32:], coords[1]); err != nil {
		return out, err
	}
	return out, nil
}

func g2FromDecimal(coords [][]string) (G2Bytes, error) {
	var out G2Bytes
	if len(coords) != 3 {
		return out, fmt.Errorf("g2 point has %d coordinates, want 3", len(coords))
	}
	for _, limb := range coords {
		if len(limb) != 2 {
			return out, fmt.Errorf("g2 coordinate has %d limbs, want 2", len(limb))
		}
	}
	if coords[2][0] == "0" && coords[2][1] == "0" {
		return out, nil
	}
	if coords[2][0] != "1" || coords[2][1] != "0" {
		return out, errors.New("g2 point not in normalized projective form")
	}
	// A1 limb first on the wire
	if err := coordFromDecimal(out[0:32], coords[0][1]); err != nil {
		return out, err
	}
	if err := coordFromDecimal(out[32:64], coords[0][0]); err != nil {
		return out, err
	}
	if err := coordFromDecimal(out[64:96], coords[1][1]); err != nil {
		return out, err
	}
	if err := coordFromDecimal(out[96:128], coords[1][0]); err != nil {
		return out, err
	}
	return out, nil
}

func coordFromDecimal(dst []byte, s string) error {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return fmt.Errorf("invalid decimal coordinate %q", s)
	}
	if v.Cmp(fp.Modulus()) >= 0 {
		return fmt.Errorf("coordinate %q exceeds field modulus", s)
	}
	v.FillBytes(dst)
	return nil
}
