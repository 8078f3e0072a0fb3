package kvstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, "review"), mr
}

func TestRedisStore_SetGetExpire(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	_, err := s.Get(ctx, "token:abc")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "token:abc", "review-1", time.Hour))
	assert.True(t, mr.Exists("review:token:abc"))

	val, err := s.Get(ctx, "token:abc")
	require.NoError(t, err)
	assert.Equal(t, "review-1", val)

	ttl, err := s.TTL(ctx, "token:abc")
	require.NoError(t, err)
	assert.Equal(t, time.Hour, ttl)

	mr.FastForward(61 * time.Minute)
	_, err = s.Get(ctx, "token:abc")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.TTL(ctx, "token:abc")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_SetNX(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	ok, err := s.SetNX(ctx, "k", "first", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.SetNX(ctx, "k", "second", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	val, _ := s.Get(ctx, "k")
	assert.Equal(t, "first", val)
}

func TestRedisStore_CompareAndDeleteAndPersistentTTL(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "forever", "1", 0))
	ttl, err := s.TTL(ctx, "forever")
	require.NoError(t, err)
	assert.Zero(t, ttl)

	deleted, err := s.CompareAndDelete(ctx, "forever", "2")
	require.NoError(t, err)
	assert.False(t, deleted, "value mismatch must keep the key")

	deleted, err = s.CompareAndDelete(ctx, "forever", "1")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = s.CompareAndDelete(ctx, "forever", "1")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestRedisStore_ConnectionError(t *testing.T) {
	s, mr := newTestStore(t)
	mr.Close()

	_, err := s.Get(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
