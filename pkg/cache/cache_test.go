package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheSetGet(t *testing.T) {
	t.Parallel()

	c := NewInMemoryCache[string, int](time.Minute)
	c.Set("a", 1, 0)
	c.Set("b", 2, time.Hour)

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, 2, c.Size())
}

func TestCacheExpiry(t *testing.T) {
	t.Parallel()

	c := NewInMemoryCache[string, string](time.Minute)
	c.Set("k", "v", 10*time.Millisecond)

	v, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	time.Sleep(20 * time.Millisecond)
	_, ok = c.Get("k")
	assert.False(t, ok)
}

func TestCacheDeleteAndClear(t *testing.T) {
	t.Parallel()

	c := NewInMemoryCache[string, int](time.Minute)
	c.Set("a", 1, 0)
	c.Set("b", 2, 0)

	c.Delete("a")
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Size())

	c.Clear()
	assert.Equal(t, 0, c.Size())
}
