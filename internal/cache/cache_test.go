package cache

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPut(t *testing.T) {
	c := New()
	_, ok := c.Get("k1", "aov")
	assert.False(t, ok)

	c.Put("k1", "aov", 120.0)
	v, ok := c.Get("k1", "aov")
	require.True(t, ok)
	assert.Equal(t, 120.0, v)
	assert.Equal(t, Stats{Hits: 1, Misses: 1}, c.Stats())
}

func TestKeyChangeInvalidates(t *testing.T) {
	c := New()
	c.Put("k1", "aov", 120.0)
	c.Put("k1", "churn", 0.25)
	require.Equal(t, 2, c.Len())

	_, ok := c.Get("k2", "aov")
	assert.False(t, ok)
	assert.Equal(t, "k2", c.Key())
	assert.Zero(t, c.Len())

	// Switching back does not resurrect old entries.
	_, ok = c.Get("k1", "aov")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Stats().Invalidations)
}

func TestPutWithNewKeyDropsOthers(t *testing.T) {
	c := New()
	c.Put("k1", "aov", 1)
	c.Put("k2", "churn", 2)

	_, ok := c.Get("k2", "aov")
	assert.False(t, ok)
	v, ok := c.Get("k2", "churn")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestLoad(t *testing.T) {
	c := New()
	calls := 0
	compute := func() (interface{}, error) {
		calls++
		return calls, nil
	}

	v, err := c.Load("k", "panel", compute)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	v, err = c.Load("k", "panel", compute)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Equal(t, 1, calls)
}

func TestLoadDoesNotCacheErrors(t *testing.T) {
	c := New()
	boom := errors.New("boom")
	calls := 0
	fail := func() (interface{}, error) {
		calls++
		return nil, boom
	}

	_, err := c.Load("k", "panel", fail)
	assert.ErrorIs(t, err, boom)
	_, err = c.Load("k", "panel", fail)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
	assert.Zero(t, c.Len())
}

func TestLoadDropsResultForSupersededKey(t *testing.T) {
	c := New()
	v, err := c.Load("old", "panel", func() (interface{}, error) {
		c.Get("new", "other")
		return "stale", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "stale", v)
	assert.Equal(t, "new", c.Key())
	assert.Zero(t, c.Len())
}

func TestInvalidate(t *testing.T) {
	c := New()
	c.Put("k", "a", 1)
	c.Invalidate()
	assert.Zero(t, c.Len())
	assert.Equal(t, "k", c.Key())
}

func TestConcurrentAccess(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _ = c.Load("k", "panel", func() (interface{}, error) { return j, nil })
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, c.Len())
}
