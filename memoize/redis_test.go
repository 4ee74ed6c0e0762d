package memoize

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisReadWrite(t *testing.T) {
	ctx := context.Background()
	_, client := newTestRedis(t)
	store := NewRedis(client, WithPrefix("memo"))
	defer store.Close()

	require.NoError(t, store.Exists(ctx))

	found, data, err := store.Read(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, data)

	require.NoError(t, store.Write(ctx, "k", []byte("payload")))
	found, data, err = store.Read(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("payload"), data)
}

func TestRedisPrefixNamespacing(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	store := NewRedis(client, WithPrefix("memo"))
	defer store.Close()

	require.NoError(t, store.Write(ctx, "k", []byte("v")))
	assert.True(t, mr.Exists("memo:k"))
	assert.False(t, mr.Exists("k"))
}

func TestRedisExistsUnreachable(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	store := NewRedis(client)
	mr.Close()

	err := store.Exists(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStoreNotExist))
}

func TestRedisInvoke(t *testing.T) {
	ctx := context.Background()
	_, client := newTestRedis(t)
	store := NewRedis(client, WithPrefix("memo"))
	defer store.Close()

	calls := 0
	invoke := func(ctx context.Context) (int, error) {
		calls++
		return 12, nil
	}
	got, err := Invoke(ctx, Config{Name: "test.Double", Args: []any{6}}, store, invoke)
	require.NoError(t, err)
	assert.Equal(t, 12, got)
	got, err = Invoke(ctx, Config{Name: "test.Double", Args: []any{6}}, store, invoke)
	require.NoError(t, err)
	assert.Equal(t, 12, got)
	assert.Equal(t, 1, calls)
}
