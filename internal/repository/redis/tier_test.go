package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/inkdesk/internal/model"
)

func newTestTier(t *testing.T, ttl time.Duration) (*Tier, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewTier(rdb, "inkdesk", model.NamespaceSession, ttl), mr
}

func TestTier_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	tier, mr := newTestTier(t, time.Hour)

	require.NoError(t, tier.SetAll(ctx, map[string]string{
		model.KeyAccessToken:  "a",
		model.KeyRefreshToken: "r",
	}))
	assert.True(t, mr.Exists("inkdesk:session:accessToken"))

	v, ok, err := tier.Get(ctx, model.KeyAccessToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a", v)

	require.NoError(t, tier.Delete(ctx, model.KeyAccessToken, model.KeyRefreshToken))

	_, ok, err = tier.Get(ctx, model.KeyAccessToken)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, mr.Exists("inkdesk:session:refreshToken"))
}

func TestTier_KeysExpire(t *testing.T) {
	ctx := context.Background()
	tier, mr := newTestTier(t, time.Minute)

	require.NoError(t, tier.SetAll(ctx, map[string]string{model.KeyAccessToken: "a"}))
	mr.FastForward(2 * time.Minute)

	_, ok, err := tier.Get(ctx, model.KeyAccessToken)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTier_Unavailable(t *testing.T) {
	ctx := context.Background()
	tier, mr := newTestTier(t, time.Minute)
	mr.Close()

	_, _, err := tier.Get(ctx, model.KeyAccessToken)
	require.Error(t, err)

	require.Error(t, tier.SetAll(ctx, map[string]string{model.KeyAccessToken: "a"}))
	require.Error(t, tier.Delete(ctx, model.KeyAccessToken))
}
