package match

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/briwylde08/dead-mans-draw/groth16"
	"github.com/briwylde08/dead-mans-draw/logger"
)

// Config wires an Engine to its collaborators. Store, Auth and Notify are
// required. Events defaults to a discard sink. Ref is an opaque reference to
// this service handed to the lifecycle collaborator on match start.
type Config struct {
	Admin  Player
	Ref    string
	Store  Storage
	Auth   Authorizer
	Notify Notifier
	Events EventSink
}

// Engine runs the match lifecycle. Operations on the same session are
// mutually exclusive; operations on distinct sessions proceed independently.
type Engine struct {
	cfg Config
	log zerolog.Logger

	// serializes verifying key rotation against in-flight settlements
	vkMu sync.RWMutex

	sessions sessionLocks
}

// New validates cfg and returns an Engine.
func New(cfg Config) (*Engine, error) {
	if cfg.Admin == "" {
		return nil, errors.New("config: admin identity required")
	}
	if cfg.Store == nil || cfg.Auth == nil || cfg.Notify == nil {
		return nil, errors.New("config: storage, authorizer and notifier required")
	}
	if cfg.Events == nil {
		cfg.Events = nopSink{}
	}
	return &Engine{
		cfg:      cfg,
		log:      logger.Logger().With().Str("component", "engine").Logger(),
		sessions: sessionLocks{locks: make(map[SessionID]*sessionLock)},
	}, nil
}

// SetVerifyingKey stores vk as the key settlements verify against. Only the
// administrator configured at construction can call it. Rotation waits for
// in-flight settlements to finish.
func (e *Engine) SetVerifyingKey(ctx context.Context, vk *groth16.VerifyingKey) error {
	if err := e.cfg.Auth.RequireAuth(ctx, e.cfg.Admin); err != nil {
		return fmt.Errorf("authorize %s: %w", e.cfg.Admin, err)
	}
	if vk == nil || len(vk.IC) != NbPublicInputs+1 {
		return fmt.Errorf("verifying key must carry %d ic points", NbPublicInputs+1)
	}

	e.vkMu.Lock()
	defer e.vkMu.Unlock()
	if err := e.cfg.Store.PutVerifyingKey(ctx, vk); err != nil {
		return fmt.Errorf("store verifying key: %w", err)
	}
	e.log.Info().Int("publicInputs", vk.NbPublicInputs()).Msg("verifying key configured")
	return nil
}

// Create opens a new match in the Created phase. The caller must control
// player1. The session id must be unused.
func (e *Engine) Create(ctx context.Context, id SessionID, player1 Player, commit1 Commitment) error {
	l := e.sessions.acquire(id)
	defer e.sessions.release(id, l)

	exists, err := e.cfg.Store.HasMatch(ctx, id)
	if err != nil {
		return fmt.Errorf("check session %d: %w", id, err)
	}
	if exists {
		return ErrMatchExists
	}
	if err := e.cfg.Auth.RequireAuth(ctx, player1); err != nil {
		return fmt.Errorf("authorize %s: %w", player1, err)
	}

	m := Match{
		Player1:     player1,
		SeedCommit1: commit1,
		Phase:       PhaseCreated,
	}
	if err := e.cfg.Store.PutMatch(ctx, id, m); err != nil {
		return fmt.Errorf("store match %d: %w", id, err)
	}

	e.cfg.Events.MatchCreated(ctx, id, player1)
	e.log.Info().Uint32("session", uint32(id)).Str("player1", string(player1)).Msg("match created")
	return nil
}

// Join enters player2 into a match in the Created phase. The lifecycle
// collaborator is notified before the joined record is written; if the write
// fails the match stays in Created and a retry repeats the notification.
func (e *Engine) Join(ctx context.Context, id SessionID, player2 Player, commit2 Commitment) error {
	l := e.sessions.acquire(id)
	defer e.sessions.release(id, l)

	m, ok, err := e.cfg.Store.GetMatch(ctx, id)
	if err != nil {
		return fmt.Errorf("load match %d: %w", id, err)
	}
	if !ok {
		return ErrMatchNotFound
	}
	if m.Phase != PhaseCreated {
		return ErrInvalidPhase
	}
	if player2 == m.Player1 {
		return ErrSelfPlay
	}
	if err := e.cfg.Auth.RequireAuth(ctx, player2); err != nil {
		return fmt.Errorf("authorize %s: %w", player2, err)
	}

	m.Player2 = &player2
	m.SeedCommit2 = commit2
	m.Phase = PhaseJoined

	if err := e.cfg.Notify.MatchStarted(ctx, e.cfg.Ref, id, m.Player1, player2); err != nil {
		return fmt.Errorf("notify start %d: %w", id, err)
	}
	if err := e.cfg.Store.PutMatch(ctx, id, m); err != nil {
		return fmt.Errorf("store match %d: %w", id, err)
	}

	e.cfg.Events.MatchJoined(ctx, id, player2)
	e.log.Info().Uint32("session", uint32(id)).Str("player2", string(player2)).Msg("match joined")
	return nil
}

// Reveal records a player's seed. Either player may reveal first; once both
// seeds are in, the match advances to Revealed.
func (e *Engine) Reveal(ctx context.Context, id SessionID, player Player, seed Seed) error {
	l := e.sessions.acquire(id)
	defer e.sessions.release(id, l)

	m, ok, err := e.cfg.Store.GetMatch(ctx, id)
	if err != nil {
		return fmt.Errorf("load match %d: %w", id, err)
	}
	if !ok {
		return ErrMatchNotFound
	}
	if m.Phase < PhaseJoined || m.Phase >= PhaseRevealed {
		return ErrInvalidPhase
	}
	if err := e.cfg.Auth.RequireAuth(ctx, player); err != nil {
		return fmt.Errorf("authorize %s: %w", player, err)
	}

	switch {
	case player == m.Player1:
		if m.Seed1 != nil {
			return ErrAlreadyRevealed
		}
		m.Seed1 = &seed
	case m.Player2 != nil && player == *m.Player2:
		if m.Seed2 != nil {
			return ErrAlreadyRevealed
		}
		m.Seed2 = &seed
	default:
		return ErrNotPlayer
	}
	if m.Seed1 != nil && m.Seed2 != nil {
		m.Phase = PhaseRevealed
	}

	if err := e.cfg.Store.PutMatch(ctx, id, m); err != nil {
		return fmt.Errorf("store match %d: %w", id, err)
	}

	e.cfg.Events.SeedRevealed(ctx, id, player)
	e.log.Info().Uint32("session", uint32(id)).Str("player", string(player)).
		Stringer("phase", m.Phase).Msg("seed revealed")
	return nil
}

// Settle finalizes a fully revealed match with a Groth16 proof and returns
// the winning identity. Anyone may call it. Validation runs cheapest first:
// record equality, session id encoding, winner code, then the single pairing
// check. The end notification precedes the state write; if the write fails
// the match stays Revealed and a retry repeats the notification.
func (e *Engine) Settle(ctx context.Context, id SessionID, proof *groth16.Proof, inputs *PublicInputs) (Player, error) {
	l := e.sessions.acquire(id)
	defer e.sessions.release(id, l)

	m, ok, err := e.cfg.Store.GetMatch(ctx, id)
	if err != nil {
		return "", fmt.Errorf("load match %d: %w", id, err)
	}
	if !ok {
		return "", ErrMatchNotFound
	}
	if m.Phase < PhaseRevealed {
		return "", ErrSeedsNotRevealed
	}
	if m.Phase > PhaseRevealed {
		return "", ErrAlreadySettled
	}
	if m.Player2 == nil || m.Seed1 == nil || m.Seed2 == nil {
		return "", ErrSeedsNotRevealed
	}

	e.vkMu.RLock()
	defer e.vkMu.RUnlock()
	vk, ok, err := e.cfg.Store.VerifyingKey(ctx)
	if err != nil {
		return "", fmt.Errorf("load verifying key: %w", err)
	}
	if !ok {
		return "", ErrNoVerifyingKey
	}

	if inputs.SeedCommit1 != [32]byte(m.SeedCommit1) ||
		inputs.SeedCommit2 != [32]byte(m.SeedCommit2) ||
		inputs.Seed1 != [32]byte(*m.Seed1) ||
		inputs.Seed2 != [32]byte(*m.Seed2) {
		return "", ErrPublicInputMismatch
	}
	if inputs.SessionID != SessionIDBytes(id) {
		return "", ErrPublicInputMismatch
	}

	var player1Won bool
	switch inputs.Winner {
	case WinnerBytes(1):
		player1Won = true
	case WinnerBytes(2):
		player1Won = false
	default:
		return "", ErrInvalidWinner
	}

	valid, err := groth16.Verify(vk, proof, inputs.Scalars())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidProof, err)
	}
	if !valid {
		return "", ErrInvalidProof
	}

	winner := m.Player1
	m.Winner = 1
	if !player1Won {
		winner = *m.Player2
		m.Winner = 2
	}
	m.Phase = PhaseSettled

	if err := e.cfg.Notify.MatchEnded(ctx, id, player1Won); err != nil {
		return "", fmt.Errorf("notify end %d: %w", id, err)
	}
	if err := e.cfg.Store.PutMatch(ctx, id, m); err != nil {
		return "", fmt.Errorf("store match %d: %w", id, err)
	}

	e.cfg.Events.MatchSettled(ctx, id, winner)
	e.log.Info().Uint32("session", uint32(id)).Str("winner", string(winner)).Msg("match settled")
	return winner, nil
}

// Get returns the match record for id, if any. No authentication required.
func (e *Engine) Get(ctx context.Context, id SessionID) (Match, bool, error) {
	return e.cfg.Store.GetMatch(ctx, id)
}

// sessionLocks hands out one mutex per in-flight session. Entries are
// reference counted and removed when the last holder releases.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[SessionID]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func (s *sessionLocks) acquire(id SessionID) *sessionLock {
	s.mu.Lock()
	l := s.locks[id]
	if l == nil {
		l = &sessionLock{}
		s.locks[id] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return l
}

func (s *sessionLocks) release(id SessionID, l *sessionLock) {
	l.mu.Unlock()

	s.mu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(s.locks, id)
	}
	s.mu.Unlock()
}

type nopSink struct{}

func (nopSink) MatchCreated(context.Context, SessionID, Player) {}
func (nopSink) MatchJoined(context.Context, SessionID, Player) {}
func (nopSink) SeedRevealed(context.Context, SessionID, Player) {}
func (nopSink) MatchSettled(context.Context, SessionID, Player) {}
