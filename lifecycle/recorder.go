package lifecycle

import (
	"context"
	"sync"

	"github.com/briwylde08/dead-mans-draw/match"
)

// Recorder captures lifecycle calls for test assertions. Safe for concurrent
// use. When an error is set every call returns it and records nothing.
type Recorder struct {
	mu      sync.Mutex
	err     error
	started []match.SessionID
	ended   []match.SessionID
}

func (r *Recorder) MatchStarted(_ context.Context, _ string, id match.SessionID, _, _ match.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.started = append(r.started, id)
	return nil
}

func (r *Recorder) MatchEnded(_ context.Context, id match.SessionID, _ bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.ended = append(r.ended, id)
	return nil
}

// SetErr makes subsequent calls fail with err; nil restores success.
func (r *Recorder) SetErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// Started returns the sessions whose start was recorded.
func (r *Recorder) Started() []match.SessionID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]match.SessionID(nil), r.started...)
}

// Ended returns the sessions whose end was recorded.
func (r *Recorder) Ended() []match.SessionID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]match.SessionID(nil), r.ended...)
}
