// Package io provides serialization helpers shared by the wire formats in
// this module.
package io

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// RoundTripCheck serializes from, rebuilds it through builder and serializes
// again, failing unless both passes produce identical bytes and the read
// consumes exactly what the write produced.
func RoundTripCheck(from io.WriterTo, builder func() io.ReaderFrom) error {
	var buf bytes.Buffer
	written, err := from.WriteTo(&buf)
	if err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if written != int64(buf.Len()) {
		return fmt.Errorf("write reported %d bytes, produced %d", written, buf.Len())
	}
	serialized := append([]byte(nil), buf.Bytes()...)

	to := builder()
	read, err := to.ReadFrom(&buf)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}
	if read != written {
		return fmt.Errorf("read %d bytes, wrote %d", read, written)
	}

	back, ok := to.(io.WriterTo)
	if !ok {
		return fmt.Errorf("%T cannot be reserialized", to)
	}
	var again bytes.Buffer
	if _, err := back.WriteTo(&again); err != nil {
		return fmt.Errorf("rewrite: %w", err)
	}
	if !bytes.Equal(serialized, again.Bytes()) {
		return errors.New("reserialized bytes differ")
	}
	return nil
}
