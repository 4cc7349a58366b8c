package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledCacheMisses(t *testing.T) {
	ctx := context.Background()
	c, err := NewRedis(ctx, "", "", 0)
	require.NoError(t, err)
	assert.False(t, c.Enabled())

	require.NoError(t, c.Set(ctx, "k", []string{"a"}, time.Minute))
	var out []string
	assert.False(t, c.Get(ctx, "k", &out))
	assert.NoError(t, c.Delete(ctx, "k"))
	assert.NoError(t, c.Close())
}

func TestNilCacheIsSafe(t *testing.T) {
	var c *Redis
	assert.False(t, c.Enabled())
	assert.False(t, c.Get(context.Background(), "k", new(int)))
	assert.NoError(t, c.Set(context.Background(), "k", 1, time.Second))
}
