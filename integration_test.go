package deadmansdraw_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/briwylde08/dead-mans-draw/auth"
	"github.com/briwylde08/dead-mans-draw/events"
	"github.com/briwylde08/dead-mans-draw/lifecycle"
	"github.com/briwylde08/dead-mans-draw/match"
	"github.com/briwylde08/dead-mans-draw/store"
	"github.com/briwylde08/dead-mans-draw/test"
)

// TestIntegration drives full matches through the production pieces: the
// bbolt store, the engine, the event channel and a verifying key the
// settlement proofs must satisfy. The store is reopened mid-test to check
// that settled state and the verifying key survive a restart.
func TestIntegration(t *testing.T) {
	assert := require.New(t)
	ctx := context.Background()

	dbPath := filepath.Join(t.TempDir(), "integration.db")
	st, err := store.OpenBolt(dbPath, store.BoltOptions{})
	assert.NoError(err)

	notify := &lifecycle.Recorder{}
	feed := events.NewChannel(16)

	newEngine := func(s match.Storage) *match.Engine {
		engine, err := match.New(match.Config{
			Admin:  "admin",
			Ref:    "dead-mans-draw",
			Store:  s,
			Auth:   auth.NewStatic("admin", "alice", "bob"),
			Notify: notify,
			Events: feed,
		})
		assert.NoError(err)
		return engine
	}
	engine := newEngine(st)

	var seed1, seed2 match.Seed
	seed1[31], seed2[31] = 1, 2
	commit1 := match.ComputeCommitment(seed1)
	commit2 := match.ComputeCommitment(seed2)

	const id match.SessionID = 42
	inputs := match.PublicInputs{
		SeedCommit1: [32]byte(commit1),
		SeedCommit2: [32]byte(commit2),
		Seed1:       [32]byte(seed1),
		Seed2:       [32]byte(seed2),
		SessionID:   match.SessionIDBytes(id),
		Winner:      match.WinnerBytes(2),
	}
	vk, proof := test.ForgeGroth16(inputs.Scalars())
	assert.NoError(engine.SetVerifyingKey(ctx, vk))

	assert.NoError(engine.Create(ctx, id, "alice", commit1))
	assert.NoError(engine.Join(ctx, id, "bob", commit2))
	assert.NoError(engine.Reveal(ctx, id, "alice", seed1))
	assert.NoError(engine.Reveal(ctx, id, "bob", seed2))

	winner, err := engine.Settle(ctx, id, proof, &inputs)
	assert.NoError(err)
	assert.Equal(match.Player("bob"), winner)

	_, err = engine.Settle(ctx, id, proof, &inputs)
	assert.ErrorIs(err, match.ErrAlreadySettled)
	assert.ErrorIs(engine.Create(ctx, id, "alice", commit1), match.ErrMatchExists)

	assert.Equal([]match.SessionID{id}, notify.Started())
	assert.Equal([]match.SessionID{id}, notify.Ended())

	wantKinds := []events.Kind{
		events.KindCreated, events.KindJoined,
		events.KindRevealed, events.KindRevealed,
		events.KindSettled,
	}
	for _, want := range wantKinds {
		e := <-feed.Events()
		assert.Equal(want, e.Kind)
		assert.Equal(id, e.Session)
	}
	assert.Zero(feed.Dropped())

	// restart: settled state and the verifying key survive
	assert.NoError(st.Close())
	st, err = store.OpenBolt(dbPath, store.BoltOptions{})
	assert.NoError(err)
	t.Cleanup(func() { _ = st.Close() })
	engine = newEngine(st)

	m, ok, err := engine.Get(ctx, id)
	assert.NoError(err)
	assert.True(ok)
	assert.Equal(match.PhaseSettled, m.Phase)
	assert.Equal(uint8(2), m.Winner)
	assert.NotNil(m.Player2)
	assert.Equal(match.Player("bob"), *m.Player2)

	_, err = engine.Settle(ctx, id, proof, &inputs)
	assert.ErrorIs(err, match.ErrAlreadySettled)

	// a second match settles against the persisted key
	const id2 match.SessionID = 43
	inputs2 := inputs
	inputs2.SessionID = match.SessionIDBytes(id2)
	inputs2.Winner = match.WinnerBytes(1)
	_, proof2 := test.ForgeGroth16(inputs2.Scalars())

	assert.NoError(engine.Create(ctx, id2, "alice", commit1))
	assert.NoError(engine.Join(ctx, id2, "bob", commit2))
	assert.NoError(engine.Reveal(ctx, id2, "alice", seed1))
	assert.NoError(engine.Reveal(ctx, id2, "bob", seed2))

	winner, err = engine.Settle(ctx, id2, proof2, &inputs2)
	assert.NoError(err)
	assert.Equal(match.Player("alice"), winner)
}
