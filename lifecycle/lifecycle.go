// Package lifecycle provides Notifier implementations for the sibling
// service that tracks running matches.
//
// The engine notifies before it persists, so a notifier may see the same
// start or end again after a failed write. Implementations must be
// idempotent per session.
package lifecycle

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/briwylde08/dead-mans-draw/logger"
	"github.com/briwylde08/dead-mans-draw/match"
)

// LogNotifier acknowledges lifecycle calls by logging them. It stands in for
// the real sibling service in demos and local runs.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{log: logger.Logger().With().Str("component", "lifecycle").Logger()}
}

func (n *LogNotifier) MatchStarted(_ context.Context, ref string, id match.SessionID, player1, player2 match.Player) error {
	n.log.Info().Str("ref", ref).Uint32("session", uint32(id)).
		Str("player1", string(player1)).Str("player2", string(player2)).
		Msg("match started")
	return nil
}

func (n *LogNotifier) MatchEnded(_ context.Context, id match.SessionID, player1Won bool) error {
	n.log.Info().Uint32("session", uint32(id)).Bool("player1Won", player1Won).
		Msg("match ended")
	return nil
}
