package groth16

import (
	"encoding/binary"
	"fmt"
	"io"
)

// maxICPoints bounds the IC length accepted by ReadFrom.
const maxICPoints = 1 << 16

// WriteTo writes the raw encoding of the proof, piA then piB then piC.
func (p *Proof) WriteTo(w io.Writer) (n int64, err error) {
	return writeChunks(w, p.PiA[:], p.PiB[:], p.PiC[:])
}

// ReadFrom reads a proof written by WriteTo.
func (p *Proof) ReadFrom(r io.Reader) (n int64, err error) {
	return readChunks(r, p.PiA[:], p.PiB[:], p.PiC[:])
}

// WriteTo writes the raw encoding of the key: alpha, beta, gamma, delta,
// then a big-endian uint32 count followed by the IC points.
func (vk *VerifyingKey) WriteTo(w io.Writer) (n int64, err error) {
	n, err = writeChunks(w, vk.Alpha[:], vk.Beta[:], vk.Gamma[:], vk.Delta[:])
	if err != nil {
		return n, err
	}

	var count [4]byte
	binary.BigEndian.PutUint32(count[:], uint32(len(vk.IC)))
	m, err := w.Write(count[:])
	n += int64(m)
	if err != nil {
		return n, err
	}

	for i := range vk.IC {
		m, err := w.Write(vk.IC[i][:])
		n += int64(m)
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// ReadFrom reads a key written by WriteTo.
func (vk *VerifyingKey) ReadFrom(r io.Reader) (n int64, err error) {
	n, err = readChunks(r, vk.Alpha[:], vk.Beta[:], vk.Gamma[:], vk.Delta[:])
	if err != nil {
		return n, err
	}

	var count [4]byte
	m, err := io.ReadFull(r, count[:])
	n += int64(m)
	if err != nil {
		return n, err
	}
	nbIC := binary.BigEndian.Uint32(count[:])
	if nbIC == 0 || nbIC > maxICPoints {
		return n, fmt.Errorf("invalid ic count %d", nbIC)
	}

	vk.IC = make([]G1Bytes, nbIC)
	for i := range vk.IC {
		m, err := io.ReadFull(r, vk.IC[i][:])
		n += int64(m)
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

func writeChunks(w io.Writer, chunks ...[]byte) (n int64, err error) {
	for _, c := range chunks {
		m, err := w.Write(c)
		n += int64(m)
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

func readChunks(r io.Reader, chunks ...[]byte) (n int64, err error) {
	for _, c := range chunks {
		m, err := io.ReadFull(r, c)
		n += int64(m)
		if err != nil {
			return n, err
		}
	}
	return n, nil
}
