package checkpoint

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/opsreasoner/opsreasoner/pkg/models"
)

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func sampleState(threadID string) *models.GraphState {
	return models.NewGraphState(threadID, "why did conversions drop", nil, nil, 2)
}

func TestRedisStore_SaveLoadRoundtrip(t *testing.T) {
	client := setupTestRedis(t)
	store := NewRedisStore(client, "", 0)
	ctx := context.Background()

	state := sampleState("thread-1")
	state.HITLWait = true
	state.HITLPendingIDs = []int64{7}

	require.NoError(t, store.Save(ctx, state))

	loaded, err := store.Load(ctx, "thread-1")
	require.NoError(t, err)
	require.Equal(t, "thread-1", loaded.ThreadID)
	require.True(t, loaded.HITLWait)
	require.Equal(t, []int64{7}, loaded.HITLPendingIDs)
}

func TestRedisStore_LoadMissingReturnsNotFound(t *testing.T) {
	client := setupTestRedis(t)
	store := NewRedisStore(client, "", 0)

	_, err := store.Load(context.Background(), "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_DeleteRemovesCheckpoint(t *testing.T) {
	client := setupTestRedis(t)
	store := NewRedisStore(client, "", 0)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleState("thread-2")))
	require.NoError(t, store.Delete(ctx, "thread-2"))

	_, err := store.Load(ctx, "thread-2")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_SaveLoadRoundtrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	state := sampleState("thread-3")
	require.NoError(t, store.Save(ctx, state))

	loaded, err := store.Load(ctx, "thread-3")
	require.NoError(t, err)
	require.Equal(t, state.UserQuery, loaded.UserQuery)
}

func TestMemoryStore_LoadMissingReturnsNotFound(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.Load(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}
