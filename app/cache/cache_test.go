package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	IDs   []int
	Title string
}

func newTestCache(t *testing.T) *Cache {
	c, err := New(Config{Enabled: true, TTL: time.Minute, MaxCost: 100})
	require.NoError(t, err)
	require.NotNil(t, c)
	return c
}

func TestDisabledCache(t *testing.T) {
	ctx := context.Background()
	c, err := New(Config{Enabled: false})
	require.NoError(t, err)
	assert.Nil(t, c)

	c.Set(ctx, "k", entry{Title: "x"})
	assert.False(t, c.Get(ctx, "k", new(entry)))
	c.Invalidate(ctx, "posts")
	c.Clear(ctx)
}

func TestSetGet(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)

	assert.False(t, c.Get(ctx, "similar#1", new(entry)))

	c.Set(ctx, "similar#1", entry{IDs: []int{3, 2}, Title: "hello"}, "posts")
	var got entry
	require.True(t, c.Get(ctx, "similar#1", &got))
	assert.Equal(t, []int{3, 2}, got.IDs)
	assert.Equal(t, "hello", got.Title)
}

func TestInvalidate(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)

	c.Set(ctx, "a", entry{Title: "a"}, "posts")
	c.Set(ctx, "b", entry{Title: "b"}, "tags")
	c.Invalidate(ctx, "posts")

	assert.False(t, c.Get(ctx, "a", new(entry)))
	assert.True(t, c.Get(ctx, "b", new(entry)))
}
