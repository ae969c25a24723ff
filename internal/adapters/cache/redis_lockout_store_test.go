package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*RedisLockoutStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLockoutStore(client), mr
}

func TestLockoutStoreLocksAtThreshold(t *testing.T) {
	t.Parallel()

	store, mr := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

	for i := 1; i < 3; i++ {
		state, err := store.RecordFailure(ctx, "login:alice", now, 3, 15*time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i, state.FailedCount)
		assert.Nil(t, state.LockedUntil)
	}

	state, err := store.RecordFailure(ctx, "login:alice", now, 3, 15*time.Minute)
	require.NoError(t, err)
	require.NotNil(t, state.LockedUntil)
	assert.Equal(t, now.Add(15*time.Minute), *state.LockedUntil)

	got, err := store.Get(ctx, "login:alice")
	require.NoError(t, err)
	assert.Equal(t, 3, got.FailedCount)
	require.NotNil(t, got.LockedUntil)
	assert.Equal(t, now.Add(15*time.Minute).Unix(), got.LockedUntil.Unix())

	assert.Equal(t, 15*time.Minute, mr.TTL(lockoutKeyPrefix+"login:alice"))
}

func TestLockoutStoreWindowExpires(t *testing.T) {
	t.Parallel()

	store, mr := newTestStore(t)
	ctx := context.Background()

	_, err := store.RecordFailure(ctx, "login:bob", time.Now(), 5, time.Minute)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	got, err := store.Get(ctx, "login:bob")
	require.NoError(t, err)
	assert.Zero(t, got.FailedCount)
	assert.Nil(t, got.LockedUntil)
}

func TestLockoutStoreClear(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.RecordFailure(ctx, "login:carol", time.Now(), 1, time.Minute)
	require.NoError(t, err)
	require.NoError(t, store.Clear(ctx, "login:carol"))

	got, err := store.Get(ctx, "login:carol")
	require.NoError(t, err)
	assert.Zero(t, got.FailedCount)
}

func TestConnectRejectsBadURL(t *testing.T) {
	t.Parallel()

	_, err := Connect(context.Background(), "redis://:badport:x")
	assert.Error(t, err)
}

func TestConnectPingsServer(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client, err := Connect(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	require.NoError(t, client.Close())

	client, err = Connect(context.Background(), mr.Addr())
	require.NoError(t, err)
	require.NoError(t, client.Close())
}
