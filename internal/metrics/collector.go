// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: MIT

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/autobrr/debrr/pkg/memcache"
)

// CacheStatsSource exposes the counters of one named cache.
type CacheStatsSource interface {
	Stats() memcache.Stats
}

// CacheCollector exports hit/miss/occupancy gauges for every registered
// cache, read at scrape time.
type CacheCollector struct {
	sources map[string]CacheStatsSource

	hitsDesc    *prometheus.Desc
	missesDesc  *prometheus.Desc
	sizeDesc    *prometheus.Desc
	maxSizeDesc *prometheus.Desc
}

func NewCacheCollector(sources map[string]CacheStatsSource) *CacheCollector {
	return &CacheCollector{
		sources: sources,

		hitsDesc: prometheus.NewDesc(
			"debrr_cache_hits_total",
			"Total number of cache hits by cache",
			[]string{"cache"},
			nil,
		),
		missesDesc: prometheus.NewDesc(
			"debrr_cache_misses_total",
			"Total number of cache misses by cache",
			[]string{"cache"},
			nil,
		),
		sizeDesc: prometheus.NewDesc(
			"debrr_cache_entries",
			"Current number of cache entries by cache",
			[]string{"cache"},
			nil,
		),
		maxSizeDesc: prometheus.NewDesc(
			"debrr_cache_entries_max",
			"Configured cache capacity by cache",
			[]string{"cache"},
			nil,
		),
	}
}

func (c *CacheCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.hitsDesc
	ch <- c.missesDesc
	ch <- c.sizeDesc
	ch <- c.maxSizeDesc
}

func (c *CacheCollector) Collect(ch chan<- prometheus.Metric) {
	for name, source := range c.sources {
		stats := source.Stats()

		ch <- prometheus.MustNewConstMetric(c.hitsDesc, prometheus.CounterValue, float64(stats.Hits), name)
		ch <- prometheus.MustNewConstMetric(c.missesDesc, prometheus.CounterValue, float64(stats.Misses), name)
		ch <- prometheus.MustNewConstMetric(c.sizeDesc, prometheus.GaugeValue, float64(stats.Size), name)
		ch <- prometheus.MustNewConstMetric(c.maxSizeDesc, prometheus.GaugeValue, float64(stats.MaxSize), name)
	}
}
