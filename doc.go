// Package deadmansdraw implements the server side of Dead Man's Draw, a
// two-player card game settled by zero-knowledge proofs.
//
// Players commit to secret seeds, reveal them, and settle the match with a
// Groth16 proof over BN254 attesting that the claimed winner follows from the
// committed seeds. The module verifies proofs; it never generates them.
//
// The moving parts:
//   - match: the game state machine (create, join, reveal, settle)
//   - groth16: the BN254 proof verifier and wire formats
//   - store: match and verifying-key persistence
//   - server: an HTTP facade over the state machine
package deadmansdraw

import (
	"github.com/blang/semver/v4"
)

var Version = semver.MustParse("0.1.0")
