package groth16

import (
	"fmt"

	curve "github.com/consensys/gnark-crypto/ecc/bn254"
)

// fpModulus is the BN254 base field modulus p as a big-endian constant,
// p = 21888242871839275222246405745257275088696311157297823662689037894645226208583.
var fpModulus = [32]byte{
	0x30, 0x64, 0x4e, 0x72, 0xe1, 0x31, 0xa0, 0x29,
	0xb8, 0x50, 0x45, 0xb6, 0x81, 0x81, 0x58, 0x5d,
	0x97, 0x81, 0x6a, 0x91, 0x68, 0x71, 0xca, 0x8d,
	0x3c, 0x20, 0x8c, 0x16, 0xd8, 0x7c, 0xfd, 0x47,
}

// NegateG1 negates a raw G1 point: (x, y) becomes (x, p-y). A point with an
// all-zero Y coordinate is the point at infinity and negates to itself.
func NegateG1(p G1Bytes) G1Bytes {
	var y [32]byte
	copy(y[:], p[32:])
	if y == [32]byte{} {
		return G1Bytes{}
	}
	negY := subBE(fpModulus, y)

	var out G1Bytes
	copy(out[:32], p[:32])
	copy(out[32:], negY[:])
	return out
}

// subBE subtracts b from a, both 32-byte big-endian unsigned integers, with
// the borrow propagating from byte 31 up to byte 0. Callers guarantee a >= b.
func subBE(a, b [32]byte) [32]byte {
	var out [32]byte
	borrow := 0
	for i := 31; i >= 0; i-- {
		d := int(a[i]) - int(b[i]) - borrow
		if d < 0 {
			d += 256
			borrow = 1
		} else {
			borrow = 0
		}
		out[i] = byte(d)
	}
	return out
}

// decodeG1 parses a raw G1 encoding. Coordinates must be canonical and the
// point must be on the curve; BN254 G1 has cofactor 1 so curve membership is
// subgroup membership.
func decodeG1(in G1Bytes) (*curve.G1Affine, error) {
	var p curve.G1Affine
	if in == (G1Bytes{}) {
		return &p, nil
	}
	if err := p.X.SetBytesCanonical(in[:32]); err != nil {
		return nil, fmt.Errorf("%w: g1 x: %v", ErrInvalidPoint, err)
	}
	if err := p.Y.SetBytesCanonical(in[32:]); err != nil {
		return nil, fmt.Errorf("%w: g1 y: %v", ErrInvalidPoint, err)
	}
	if !p.IsOnCurve() {
		return nil, fmt.Errorf("%w: g1 point not on curve", ErrInvalidPoint)
	}
	return &p, nil
}

// decodeG2 parses a raw G2 encoding, coordinate order X.A1, X.A0, Y.A1, Y.A0.
func decodeG2(in G2Bytes) (*curve.G2Affine, error) {
	var p curve.G2Affine
	if in == (G2Bytes{}) {
		return &p, nil
	}
	if err := p.X.A1.SetBytesCanonical(in[0:32]); err != nil {
		return nil, fmt.Errorf("%w: g2 x.a1: %v", ErrInvalidPoint, err)
	}
	if err := p.X.A0.SetBytesCanonical(in[32:64]); err != nil {
		return nil, fmt.Errorf("%w: g2 x.a0: %v", ErrInvalidPoint, err)
	}
	if err := p.Y.A1.SetBytesCanonical(in[64:96]); err != nil {
		return nil, fmt.Errorf("%w: g2 y.a1: %v", ErrInvalidPoint, err)
	}
	if err := p.Y.A0.SetBytesCanonical(in[96:128]); err != nil {
		return nil, fmt.Errorf("%w: g2 y.a0: %v", ErrInvalidPoint, err)
	}
	if !p.IsOnCurve() {
		return nil, fmt.Errorf("%w: g2 point not on curve", ErrInvalidPoint)
	}
	if !p.IsInSubGroup() {
		return nil, fmt.Errorf("%w: g2 point not in subgroup", ErrInvalidPoint)
	}
	return &p, nil
}

func encodeG1(p *curve.G1Affine) G1Bytes {
	var out G1Bytes
	if p.IsInfinity() {
		return out
	}
	x := p.X.Bytes()
	y := p.Y.Bytes()
	copy(out[:32], x[:])
	copy(out[32:], y[:])
	return out
}
