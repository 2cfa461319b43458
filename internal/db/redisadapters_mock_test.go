package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHGetAll(t *testing.T) {
	ctx := context.Background()
	store := NewMockRedisClient()
	res := store.HGetAll(ctx, "test")
	val, err := res.Result()
	require.NoError(t, err)
	assert.Equal(t, 0, len(val))
}

func TestHSetDel(t *testing.T) {
	ctx := context.Background()
	store := NewMockRedisClient()
	res1 := store.HSet(ctx, "test", "f1", "v1", "f2", 2)
	_, err := res1.Result()
	require.NoError(t, err)
	res2 := store.HGetAll(ctx, "test")
	val, err := res2.Result()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"f1": "v1", "f2": "2"}, val)
	res3 := store.Del(ctx, "test")
	_, err = res3.Result()
	require.NoError(t, err)
	res4 := store.HGetAll(ctx, "test")
	val, err = res4.Result()
	require.NoError(t, err)
	assert.Equal(t, 0, len(val))
}

func TestHSetOddValues(t *testing.T) {
	store := NewMockRedisClient()
	err := store.HSet(context.Background(), "test", "f1").Err()
	assert.Error(t, err)
}

func TestExpireAt(t *testing.T) {
	ctx := context.Background()
	store := NewMockRedisClient()
	now := time.Now()
	store.now = func() time.Time { return now }
	require.NoError(t, store.HSet(ctx, "test", "f1", "v1").Err())

	ok, err := store.ExpireAt(ctx, "missing", now.Add(time.Minute)).Result()
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.ExpireAt(ctx, "test", now.Add(time.Minute)).Result()
	require.NoError(t, err)
	assert.True(t, ok)
	ttl, hasTTL := store.TTL("test")
	assert.True(t, hasTTL)
	assert.Equal(t, time.Minute, ttl)

	store.now = func() time.Time { return now.Add(2 * time.Minute) }
	val, err := store.HGetAll(ctx, "test").Result()
	require.NoError(t, err)
	assert.Len(t, val, 0)
}

func TestPersist(t *testing.T) {
	ctx := context.Background()
	store := NewMockRedisClient()
	require.NoError(t, store.HSet(ctx, "test", "f1", "v1").Err())
	require.NoError(t, store.ExpireAt(ctx, "test", time.Now().Add(time.Minute)).Err())
	ok, err := store.Persist(ctx, "test").Result()
	require.NoError(t, err)
	assert.True(t, ok)
	_, hasTTL := store.TTL("test")
	assert.False(t, hasTTL)
}
