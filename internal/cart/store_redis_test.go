package cart

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a real server when FRESHBASKET_TEST_REDIS is set, e.g. localhost:6379.
func TestRedisStore_RoundTrip(t *testing.T) {
	addr := os.Getenv("FRESHBASKET_TEST_REDIS")
	if addr == "" {
		t.Skip("FRESHBASKET_TEST_REDIS not set")
	}

	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	s := NewRedisStore(client, time.Minute)
	require.NoError(t, s.Ping(ctx))

	sid := uuid.NewString()
	t.Cleanup(func() { _ = s.Clear(ctx, sid) })

	empty, err := s.Load(ctx, sid)
	require.NoError(t, err)
	assert.Zero(t, empty.Count())

	c := Cart{"1": decimal.RequireFromString("2.5"), "22": decimal.NewFromInt(1)}
	require.NoError(t, s.Save(ctx, sid, c))

	got, err := s.Load(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Count())
	assert.True(t, got["1"].Equal(c["1"]))

	ttl, err := client.TTL(ctx, "cart:"+sid).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	delete(c, "22")
	require.NoError(t, s.Save(ctx, sid, c))
	got, err = s.Load(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Count())

	require.NoError(t, s.Clear(ctx, sid))
	got, err = s.Load(ctx, sid)
	require.NoError(t, err)
	assert.Zero(t, got.Count())
}
