// Package auth provides Authorizer implementations for the match engine.
//
// The engine only asks one question: may the caller act as this identity.
// Real deployments answer it from their session or signature layer via Func;
// AllowAll and Static cover demos and tests.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/briwylde08/dead-mans-draw/match"
)

// ErrUnauthorized is returned when an identity fails authorization.
var ErrUnauthorized = errors.New("identity not authorized")

// AllowAll accepts every identity.
type AllowAll struct{}

func (AllowAll) RequireAuth(context.Context, match.Player) error {
	return nil
}

// Static authorizes exactly the identities it was built with.
type Static struct {
	allowed map[match.Player]struct{}
}

func NewStatic(players ...match.Player) *Static {
	s := &Static{allowed: make(map[match.Player]struct{}, len(players))}
	for _, p := range players {
		s.allowed[p] = struct{}{}
	}
	return s
}

func (s *Static) RequireAuth(_ context.Context, p match.Player) error {
	if _, ok := s.allowed[p]; !ok {
		return fmt.Errorf("%w: %s", ErrUnauthorized, p)
	}
	return nil
}

// Func adapts a function to the Authorizer interface.
type Func func(ctx context.Context, p match.Player) error

func (f Func) RequireAuth(ctx context.Context, p match.Player) error {
	return f(ctx, p)
}
