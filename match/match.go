// Package match implements the commit/reveal/settle lifecycle of a
// two-player, proof-settled card game.
//
// A match is created by one player with a commitment to a secret seed,
// joined by a second player with their own commitment, advanced by both
// players revealing their seeds, and settled by anyone who can present a
// Groth16 proof that the claimed winner follows from the committed seeds.
// The Engine drives the lifecycle and talks to its collaborators (storage,
// authorization, the sibling lifecycle service and an event sink) through
// the interfaces in this package.
package match

import (
	"encoding/binary"
	"fmt"
)

// NbPublicInputs is the number of public signals the settlement circuit
// exposes.
const NbPublicInputs = 6

// Player is an opaque caller identity.
type Player string

// Seed is a player's secret 32-byte value.
type Seed [32]byte

// Commitment binds a seed without revealing it.
type Commitment [32]byte

// SessionID keys a match for the lifetime of its record.
type SessionID uint32

// Phase is a match lifecycle stage. It only moves forward.
type Phase uint8

const (
	PhaseCreated Phase = iota
	PhaseJoined
	PhaseRevealed
	PhaseSettled
)

func (p Phase) String() string {
	switch p {
	case PhaseCreated:
		return "created"
	case PhaseJoined:
		return "joined"
	case PhaseRevealed:
		return "revealed"
	case PhaseSettled:
		return "settled"
	default:
		return fmt.Sprintf("phase(%d)", uint8(p))
	}
}

// Match is the per-session record. Player2 is nil until a second player
// joins; each seed is nil until its owner reveals it. Winner is 0 until the
// match settles, then 1 or 2.
type Match struct {
	Player1     Player
	Player2     *Player
	SeedCommit1 Commitment
	SeedCommit2 Commitment
	Seed1       *Seed
	Seed2       *Seed
	Phase       Phase
	Winner      uint8
}

// Clone returns a copy of m that shares no pointers with the original.
func (m Match) Clone() Match {
	if m.Player2 != nil {
		p := *m.Player2
		m.Player2 = &p
	}
	if m.Seed1 != nil {
		s := *m.Seed1
		m.Seed1 = &s
	}
	if m.Seed2 != nil {
		s := *m.Seed2
		m.Seed2 = &s
	}
	return m
}

// PublicInputs are the six public signals bound into a settlement proof, in
// circuit order.
type PublicInputs struct {
	SeedCommit1 [32]byte
	SeedCommit2 [32]byte
	Seed1       [32]byte
	Seed2       [32]byte
	SessionID   [32]byte
	Winner      [32]byte
}

// Scalars returns the inputs in the order the verifier consumes them.
func (pi *PublicInputs) Scalars() [][32]byte {
	return [][32]byte{
		pi.SeedCommit1, pi.SeedCommit2,
		pi.Seed1, pi.Seed2,
		pi.SessionID, pi.Winner,
	}
}

// SessionIDBytes encodes id as a 32-byte big-endian integer, zero padded in
// the high-order bytes.
func SessionIDBytes(id SessionID) [32]byte {
	var out [32]byte
	binary.BigEndian.PutUint32(out[28:], uint32(id))
	return out
}

// WinnerBytes encodes a winner code as a 32-byte big-endian integer.
func WinnerBytes(code uint8) [32]byte {
	var out [32]byte
	out[31] = code
	return out
}
