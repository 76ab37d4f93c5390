package memcache

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCacheGetSet(t *testing.T) {
	c := New[string](time.Minute, 0)
	defer c.Close()

	_, found := c.Get("missing")
	require.False(t, found)

	c.Set("k", "v")
	got, found := c.Get("k")
	require.True(t, found)
	require.Equal(t, "v", got)
}

func TestCacheExpiredEntryBehavesAsMiss(t *testing.T) {
	c := New[int](time.Minute, 0)
	defer c.Close()

	c.SetTTL("short", 42, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	_, found := c.Get("short")
	require.False(t, found)
}

func TestCacheStatsCounters(t *testing.T) {
	c := New[int](time.Minute, 128)
	defer c.Close()

	c.Set("a", 1)
	c.Set("b", 2)

	_, _ = c.Get("a")
	_, _ = c.Get("a")
	_, _ = c.Get("nope")

	stats := c.Stats()
	require.Equal(t, uint64(2), stats.Hits)
	require.Equal(t, uint64(1), stats.Misses)
	require.Equal(t, 2, stats.Size)
	require.Equal(t, 128, stats.MaxSize)
}

func TestCacheDelete(t *testing.T) {
	c := New[int](time.Minute, 0)
	defer c.Close()

	c.Set("a", 1)
	c.Delete("a")

	_, found := c.Get("a")
	require.False(t, found)
	require.Equal(t, 0, c.Stats().Size)
}

func TestCachePatternOps(t *testing.T) {
	c := New[int](time.Minute, 0)
	defer c.Close()

	c.Set("meta:exact:1", 1)
	c.Set("meta:exact:2", 2)
	c.Set("meta:fuzzy:1", 3)

	exact := regexp.MustCompile(`^meta:exact:`)

	entries := c.GetByPattern(exact)
	require.Len(t, entries, 2)

	evicted := c.DeletePattern(exact)
	require.Equal(t, 2, evicted)

	_, found := c.Get("meta:exact:1")
	require.False(t, found)

	got, found := c.Get("meta:fuzzy:1")
	require.True(t, found)
	require.Equal(t, 3, got)
}
