// Package store provides the persistence behind the match engine: a
// bbolt-backed store for production use and an in-memory store for tests.
//
// Match records carry a lease that every write refreshes; an expired record
// is invisible to readers and eventually deleted. The verifying key lives in
// a single config slot with no expiry.
package store

import (
	"encoding/binary"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/briwylde08/dead-mans-draw/match"
)

const (
	// DefaultTTL is the lease granted to a match record on every write.
	DefaultTTL = 30 * 24 * time.Hour

	// DefaultSweepInterval is how often the bolt store scans for expired
	// records.
	DefaultSweepInterval = time.Hour
)

// record is the stored form of a match together with its lease deadline in
// unix seconds.
type record struct {
	Match     match.Match
	ExpiresAt int64
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic(err)
	}
}

func sessionKey(id match.SessionID) []byte {
	var k [4]byte
	binary.BigEndian.PutUint32(k[:], uint32(id))
	return k[:]
}
