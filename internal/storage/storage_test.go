package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/mystery-engine/pkg/casefile"
	"github.com/jwebster45206/mystery-engine/pkg/state"
)

func storageFixture() *state.GameState {
	def := &casefile.CaseDefinition{
		ID:       "test-case",
		Title:    "A Test Case",
		Synopsis: "Something went missing.",
		Setting:  "A small town",
		Solution: "The gardener did it.",
		NPCs: []casefile.NPC{
			{ID: "gardener", Name: "The Gardener", Role: "Gardener", LocationID: "greenhouse", TrustLevel: 40, Mood: "calm"},
		},
		Locations: []casefile.Location{{ID: "greenhouse", Name: "The Greenhouse"}},
		Clues:     []casefile.Clue{{ID: "muddy-boots", Name: "Muddy Boots", SourceID: "greenhouse"}},
	}
	return state.New(def)
}

// storeUnderTest runs the same contract against every Store implementation.
func storeUnderTest(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("load missing returns nil nil", func(t *testing.T) {
		gs, err := store.LoadGameState(ctx, storageFixture().ID)
		require.NoError(t, err)
		assert.Nil(t, gs)
	})

	t.Run("save and load round trip", func(t *testing.T) {
		gs := storageFixture()
		gs = state.ApplyAll(gs, []state.Action{
			state.IncrementTurn{},
			state.DiscoverClue{ClueID: "muddy-boots", Turn: 1},
		})
		require.NoError(t, store.SaveGameState(ctx, gs.ID, gs))

		loaded, err := store.LoadGameState(ctx, gs.ID)
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, gs.ID, loaded.ID)
		assert.Equal(t, 1, loaded.Turn)
		clue, ok := loaded.Clue("muddy-boots")
		require.True(t, ok)
		assert.True(t, clue.Discovered)
	})

	t.Run("loaded copy is independent", func(t *testing.T) {
		gs := storageFixture()
		require.NoError(t, store.SaveGameState(ctx, gs.ID, gs))

		first, err := store.LoadGameState(ctx, gs.ID)
		require.NoError(t, err)
		first.NPCs[0].TrustLevel = 99

		second, err := store.LoadGameState(ctx, gs.ID)
		require.NoError(t, err)
		assert.Equal(t, 40, second.NPCs[0].TrustLevel)
	})

	t.Run("list includes saved games", func(t *testing.T) {
		gs := storageFixture()
		require.NoError(t, store.SaveGameState(ctx, gs.ID, gs))

		states, err := store.ListGameStates(ctx)
		require.NoError(t, err)

		found := false
		for _, s := range states {
			if s.ID == gs.ID {
				found = true
			}
		}
		assert.True(t, found)
	})

	t.Run("delete removes the state", func(t *testing.T) {
		gs := storageFixture()
		require.NoError(t, store.SaveGameState(ctx, gs.ID, gs))
		require.NoError(t, store.DeleteGameState(ctx, gs.ID))

		loaded, err := store.LoadGameState(ctx, gs.ID)
		require.NoError(t, err)
		assert.Nil(t, loaded)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, store.Ping(ctx))
	})
}

func TestMemoryStore(t *testing.T) {
	storeUnderTest(t, NewMemoryStore())
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStoreFromClient(client)
	t.Cleanup(func() { _ = store.Close() })

	storeUnderTest(t, store)
}

func TestRedisStore_KeyFormat(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStoreFromClient(client)
	t.Cleanup(func() { _ = store.Close() })

	gs := storageFixture()
	require.NoError(t, store.SaveGameState(context.Background(), gs.ID, gs))

	assert.True(t, mr.Exists("gamestate:"+gs.ID.String()))
}
