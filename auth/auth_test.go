package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/briwylde08/dead-mans-draw/match"
)

func TestAllowAll(t *testing.T) {
	require.NoError(t, AllowAll{}.RequireAuth(context.Background(), "anyone"))
}

func TestStatic(t *testing.T) {
	assert := require.New(t)
	s := NewStatic("alice", "bob")
	ctx := context.Background()

	assert.NoError(s.RequireAuth(ctx, "alice"))
	assert.NoError(s.RequireAuth(ctx, "bob"))
	assert.ErrorIs(s.RequireAuth(ctx, "mallory"), ErrUnauthorized)
}

func TestFunc(t *testing.T) {
	sentinel := errors.New("nope")
	f := Func(func(_ context.Context, p match.Player) error {
		if p == "mallory" {
			return sentinel
		}
		return nil
	})

	require.NoError(t, f.RequireAuth(context.Background(), "alice"))
	require.ErrorIs(t, f.RequireAuth(context.Background(), "mallory"), sentinel)
}
