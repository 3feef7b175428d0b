package match

import "errors"

// Every failure an operation can surface is one of these sentinels, possibly
// wrapped with context. Callers match with errors.Is. No error leaves a
// match record partially updated.
var (
	ErrMatchNotFound       = errors.New("match not found")
	ErrMatchExists         = errors.New("match already exists")
	ErrNotPlayer           = errors.New("caller is not a match participant")
	ErrInvalidPhase        = errors.New("operation invalid for match phase")
	ErrSelfPlay            = errors.New("cannot join own match")
	ErrAlreadyRevealed     = errors.New("seed already revealed")
	ErrSeedsNotRevealed    = errors.New("seeds not yet revealed")
	ErrAlreadySettled      = errors.New("match already settled")
	ErrInvalidWinner       = errors.New("winner code must be 1 or 2")
	ErrNoVerifyingKey      = errors.New("no verifying key configured")
	ErrPublicInputMismatch = errors.New("public inputs do not match record")
	ErrInvalidProof        = errors.New("proof verification failed")
)
