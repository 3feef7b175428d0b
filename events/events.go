// Package events provides EventSink implementations: a zerolog sink, a
// buffered channel sink for in-process subscribers and a fan-out combinator.
//
// Sinks are observation only. Emission never blocks a match operation and
// never reports failure back to it.
package events

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/briwylde08/dead-mans-draw/logger"
	"github.com/briwylde08/dead-mans-draw/match"
)

// Log writes every event to the process logger.
type Log struct {
	log zerolog.Logger
}

func NewLog() *Log {
	return &Log{log: logger.Logger().With().Str("component", "events").Logger()}
}

func (l *Log) MatchCreated(_ context.Context, id match.SessionID, player1 match.Player) {
	l.log.Info().Uint32("session", uint32(id)).Str("player1", string(player1)).Msg("match created")
}

func (l *Log) MatchJoined(_ context.Context, id match.SessionID, player2 match.Player) {
	l.log.Info().Uint32("session", uint32(id)).Str("player2", string(player2)).Msg("match joined")
}

func (l *Log) SeedRevealed(_ context.Context, id match.SessionID, player match.Player) {
	l.log.Info().Uint32("session", uint32(id)).Str("player", string(player)).Msg("seed revealed")
}

func (l *Log) MatchSettled(_ context.Context, id match.SessionID, winner match.Player) {
	l.log.Info().Uint32("session", uint32(id)).Str("winner", string(winner)).Msg("match settled")
}

// Multi fans each event out to every sink in order.
type Multi []match.EventSink

func (m Multi) MatchCreated(ctx context.Context, id match.SessionID, player1 match.Player) {
	for _, s := range m {
		s.MatchCreated(ctx, id, player1)
	}
}

func (m Multi) MatchJoined(ctx context.Context, id match.SessionID, player2 match.Player) {
	for _, s := range m {
		s.MatchJoined(ctx, id, player2)
	}
}

func (m Multi) SeedRevealed(ctx context.Context, id match.SessionID, player match.Player) {
	for _, s := range m {
		s.SeedRevealed(ctx, id, player)
	}
}

func (m Multi) MatchSettled(ctx context.Context, id match.SessionID, winner match.Player) {
	for _, s := range m {
		s.MatchSettled(ctx, id, winner)
	}
}
