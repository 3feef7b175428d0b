package match

import (
	"context"

	"github.com/briwylde08/dead-mans-draw/groth16"
)

// Storage persists match records and the verifying key. Implementations own
// the expiry policy and refresh a record's lease on every write.
type Storage interface {
	GetMatch(ctx context.Context, id SessionID) (Match, bool, error)
	PutMatch(ctx context.Context, id SessionID, m Match) error
	HasMatch(ctx context.Context, id SessionID) (bool, error)

	VerifyingKey(ctx context.Context) (*groth16.VerifyingKey, bool, error)
	PutVerifyingKey(ctx context.Context, vk *groth16.VerifyingKey) error
}

// Authorizer checks that the caller controls an identity. A failure aborts
// the operation that required it.
type Authorizer interface {
	RequireAuth(ctx context.Context, p Player) error
}

// Notifier is the sibling lifecycle service told when a match starts and
// ends. The triggering operation only commits after the call succeeds.
// Notifications are sent before the state write, so after a failed write the
// same notification may be repeated on retry; implementations must treat
// MatchStarted and MatchEnded as idempotent per session.
type Notifier interface {
	MatchStarted(ctx context.Context, ref string, id SessionID, player1, player2 Player) error
	MatchEnded(ctx context.Context, id SessionID, player1Won bool) error
}

// EventSink receives observation-only notifications after a state change
// commits. Delivery is best effort and never fails the operation.
type EventSink interface {
	MatchCreated(ctx context.Context, id SessionID, player1 Player)
	MatchJoined(ctx context.Context, id SessionID, player2 Player)
	SeedRevealed(ctx context.Context, id SessionID, player Player)
	MatchSettled(ctx context.Context, id SessionID, winner Player)
}
