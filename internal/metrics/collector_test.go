package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/debrr/pkg/memcache"
)

type staticStats struct {
	stats memcache.Stats
}

func (s staticStats) Stats() memcache.Stats { return s.stats }

func TestCacheCollectorExportsPerCacheSeries(t *testing.T) {
	collector := NewCacheCollector(map[string]CacheStatsSource{
		"metadata": staticStats{stats: memcache.Stats{Hits: 10, Misses: 4, Size: 7, MaxSize: 100}},
	})

	expected := `
# HELP debrr_cache_entries Current number of cache entries by cache
# TYPE debrr_cache_entries gauge
debrr_cache_entries{cache="metadata"} 7
# HELP debrr_cache_entries_max Configured cache capacity by cache
# TYPE debrr_cache_entries_max gauge
debrr_cache_entries_max{cache="metadata"} 100
# HELP debrr_cache_hits_total Total number of cache hits by cache
# TYPE debrr_cache_hits_total counter
debrr_cache_hits_total{cache="metadata"} 10
# HELP debrr_cache_misses_total Total number of cache misses by cache
# TYPE debrr_cache_misses_total counter
debrr_cache_misses_total{cache="metadata"} 4
`
	require.NoError(t, testutil.CollectAndCompare(collector, strings.NewReader(expected)))
}

func TestManagerRegistersCollectors(t *testing.T) {
	m := NewManager(map[string]CacheStatsSource{
		"metadata": staticStats{},
	})

	m.SearchesTotal.WithLabelValues("movie", "ok").Inc()
	m.StreamsTotal.WithLabelValues("movie").Add(3)

	families, err := m.GetRegistry().Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	require.True(t, names["debrr_searches_total"])
	require.True(t, names["debrr_streams_returned_total"])
	require.True(t, names["debrr_cache_hits_total"])
}
