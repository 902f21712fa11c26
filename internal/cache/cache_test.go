package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return New(client), mr
}

func TestGetMissReturnsFalse(t *testing.T) {
	c, _ := newTestCache(t)

	var dest map[string]string
	hit, err := c.Get(context.Background(), "missing", &dest)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestSetGetRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)

	value := map[string]int{"total": 42}
	require.NoError(t, c.Set(context.Background(), "dashboard", value, time.Minute, TagDashboard))

	var dest map[string]int
	hit, err := c.Get(context.Background(), "dashboard", &dest)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 42, dest["total"])
}

func TestInvalidateTagsRemovesTaggedKeys(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "ambassador-list", []string{"a"}, time.Minute, TagAmbassadors))
	require.NoError(t, c.Set(ctx, "dashboard-analytics", []string{"b"}, time.Minute, TagDashboard, TagAmbassadors))
	require.NoError(t, c.Set(ctx, "developer-list", []string{"c"}, time.Minute, TagDevelopers))

	require.NoError(t, c.InvalidateTags(ctx, TagAmbassadors))

	var dest []string
	hit, err := c.Get(ctx, "ambassador-list", &dest)
	require.NoError(t, err)
	assert.False(t, hit)

	hit, err = c.Get(ctx, "dashboard-analytics", &dest)
	require.NoError(t, err)
	assert.False(t, hit)

	// Entries under other tags survive.
	hit, err = c.Get(ctx, "developer-list", &dest)
	require.NoError(t, err)
	assert.True(t, hit)
}

func TestInvalidateUnknownTagIsNoop(t *testing.T) {
	c, _ := newTestCache(t)

	require.NoError(t, c.InvalidateTags(context.Background(), "never-used"))
}

func TestEntryExpiresWithTTL(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "dashboard", 1, time.Minute, TagDashboard))
	mr.FastForward(2 * time.Minute)

	var dest int
	hit, err := c.Get(ctx, "dashboard", &dest)
	require.NoError(t, err)
	assert.False(t, hit)
}
