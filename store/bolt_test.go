package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/briwylde08/dead-mans-draw/match"
	"github.com/briwylde08/dead-mans-draw/test"
)

func openTestBolt(t *testing.T, opts BoltOptions) *Bolt {
	t.Helper()
	if opts.SweepInterval == 0 {
		// keep the sweeper quiet while tests drive expiry by hand
		opts.SweepInterval = 24 * time.Hour
	}
	s, err := OpenBolt(filepath.Join(t.TempDir(), "draw.db"), opts)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })
	return s
}

func sampleMatch() match.Match {
	p2 := match.Player("bob")
	s1 := match.Seed{31: 1}
	return match.Match{
		Player1:     "alice",
		Player2:     &p2,
		SeedCommit1: match.Commitment{31: 5},
		SeedCommit2: match.Commitment{31: 6},
		Seed1:       &s1,
		Phase:       match.PhaseJoined,
	}
}

func TestBoltMatchRoundTrip(t *testing.T) {
	assert := require.New(t)
	s := openTestBolt(t, BoltOptions{})
	ctx := context.Background()

	_, ok, err := s.GetMatch(ctx, 1)
	assert.NoError(err)
	assert.False(ok)

	want := sampleMatch()
	assert.NoError(s.PutMatch(ctx, 1, want))

	got, ok, err := s.GetMatch(ctx, 1)
	assert.NoError(err)
	assert.True(ok)
	assert.Equal(want, got)

	// a record with no optional fields set survives too
	bare := match.Match{Player1: "carol", Phase: match.PhaseCreated}
	assert.NoError(s.PutMatch(ctx, 2, bare))
	got, ok, err = s.GetMatch(ctx, 2)
	assert.NoError(err)
	assert.True(ok)
	assert.Equal(bare, got)
	assert.Nil(got.Player2)
	assert.Nil(got.Seed1)

	has, err := s.HasMatch(ctx, 1)
	assert.NoError(err)
	assert.True(has)
	has, err = s.HasMatch(ctx, 9)
	assert.NoError(err)
	assert.False(has)
}

func TestBoltLease(t *testing.T) {
	assert := require.New(t)
	s := openTestBolt(t, BoltOptions{TTL: time.Minute})
	ctx := context.Background()

	now := time.Unix(1700000000, 0)
	s.now = func() time.Time { return now }

	assert.NoError(s.PutMatch(ctx, 1, sampleMatch()))

	now = now.Add(30 * time.Second)
	_, ok, err := s.GetMatch(ctx, 1)
	assert.NoError(err)
	assert.True(ok)

	now = now.Add(31 * time.Second)
	_, ok, err = s.GetMatch(ctx, 1)
	assert.NoError(err)
	assert.False(ok)
}

func TestBoltLeaseRefreshedOnWrite(t *testing.T) {
	assert := require.New(t)
	s := openTestBolt(t, BoltOptions{TTL: time.Minute})
	ctx := context.Background()

	now := time.Unix(1700000000, 0)
	s.now = func() time.Time { return now }

	assert.NoError(s.PutMatch(ctx, 1, sampleMatch()))

	now = now.Add(50 * time.Second)
	assert.NoError(s.PutMatch(ctx, 1, sampleMatch()))

	now = now.Add(50 * time.Second)
	_, ok, err := s.GetMatch(ctx, 1)
	assert.NoError(err)
	assert.True(ok)
}

func TestBoltDropExpired(t *testing.T) {
	assert := require.New(t)
	s := openTestBolt(t, BoltOptions{TTL: time.Minute})
	ctx := context.Background()

	now := time.Unix(1700000000, 0)
	s.now = func() time.Time { return now }

	assert.NoError(s.PutMatch(ctx, 1, sampleMatch()))

	now = now.Add(2 * time.Minute)
	assert.NoError(s.PutMatch(ctx, 2, sampleMatch()))

	dropped, err := s.dropExpired()
	assert.NoError(err)
	assert.Equal(1, dropped)

	_, ok, err := s.GetMatch(ctx, 2)
	assert.NoError(err)
	assert.True(ok)
}

func TestBoltVerifyingKey(t *testing.T) {
	assert := require.New(t)
	s := openTestBolt(t, BoltOptions{})
	ctx := context.Background()

	_, ok, err := s.VerifyingKey(ctx)
	assert.NoError(err)
	assert.False(ok)

	vk, _ := test.ForgeGroth16(make([][32]byte, 6))
	assert.NoError(s.PutVerifyingKey(ctx, vk))

	got, ok, err := s.VerifyingKey(ctx)
	assert.NoError(err)
	assert.True(ok)
	assert.Equal(vk, got)
}
