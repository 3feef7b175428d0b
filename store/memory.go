package store

import (
	"context"
	"sync"
	"time"

	"github.com/briwylde08/dead-mans-draw/groth16"
	"github.com/briwylde08/dead-mans-draw/match"
)

// Memory is an in-process Storage for tests and single-node setups. Leases
// are checked lazily on read; nothing is swept in the background.
type Memory struct {
	mu      sync.RWMutex
	matches map[match.SessionID]memRecord
	vk      *groth16.VerifyingKey
	ttl     time.Duration
	now     func() time.Time
}

type memRecord struct {
	m         match.Match
	expiresAt time.Time
}

// NewMemory returns an empty store granting ttl per write, DefaultTTL when
// zero.
func NewMemory(ttl time.Duration) *Memory {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &Memory{
		matches: make(map[match.SessionID]memRecord),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *Memory) GetMatch(_ context.Context, id match.SessionID) (match.Match, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.matches[id]
	if !ok || !rec.expiresAt.After(s.now()) {
		return match.Match{}, false, nil
	}
	return rec.m.Clone(), true, nil
}

func (s *Memory) PutMatch(_ context.Context, id match.SessionID, m match.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches[id] = memRecord{m: m.Clone(), expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *Memory) HasMatch(ctx context.Context, id match.SessionID) (bool, error) {
	_, ok, err := s.GetMatch(ctx, id)
	return ok, err
}

func (s *Memory) VerifyingKey(context.Context) (*groth16.VerifyingKey, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.vk == nil {
		return nil, false, nil
	}
	return cloneVK(s.vk), true, nil
}

func (s *Memory) PutVerifyingKey(_ context.Context, vk *groth16.VerifyingKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vk = cloneVK(vk)
	return nil
}

func cloneVK(vk *groth16.VerifyingKey) *groth16.VerifyingKey {
	out := *vk
	out.IC = append([]groth16.G1Bytes(nil), vk.IC...)
	return &out
}
