package events

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/briwylde08/dead-mans-draw/match"
)

// Kind tags the lifecycle step an Event reports.
type Kind string

const (
	KindCreated  Kind = "created"
	KindJoined   Kind = "joined"
	KindRevealed Kind = "revealed"
	KindSettled  Kind = "settled"
)

// Event is the envelope delivered to channel subscribers. Player carries the
// acting player, or the winner for KindSettled.
type Event struct {
	ID      uuid.UUID
	Time    time.Time
	Kind    Kind
	Session match.SessionID
	Player  match.Player
}

// Channel buffers events for one consumer. Emission never blocks: when the
// buffer is full the event is dropped and counted.
type Channel struct {
	ch      chan Event
	dropped atomic.Uint64
}

func NewChannel(buffer int) *Channel {
	return &Channel{ch: make(chan Event, buffer)}
}

// Events is the subscriber end.
func (c *Channel) Events() <-chan Event {
	return c.ch
}

// Dropped reports how many events overflowed the buffer.
func (c *Channel) Dropped() uint64 {
	return c.dropped.Load()
}

func (c *Channel) emit(kind Kind, id match.SessionID, p match.Player) {
	e := Event{
		ID:      uuid.New(),
		Time:    time.Now(),
		Kind:    kind,
		Session: id,
		Player:  p,
	}
	select {
	case c.ch <- e:
	default:
		c.dropped.Add(1)
	}
}

func (c *Channel) MatchCreated(_ context.Context, id match.SessionID, player1 match.Player) {
	c.emit(KindCreated, id, player1)
}

func (c *Channel) MatchJoined(_ context.Context, id match.SessionID, player2 match.Player) {
	c.emit(KindJoined, id, player2)
}

func (c *Channel) SeedRevealed(_ context.Context, id match.SessionID, player match.Player) {
	c.emit(KindRevealed, id, player)
}

func (c *Channel) MatchSettled(_ context.Context, id match.SessionID, winner match.Player) {
	c.emit(KindSettled, id, winner)
}
