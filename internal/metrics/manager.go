// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
)

type Manager struct {
	registry       *prometheus.Registry
	cacheCollector *CacheCollector

	SearchesTotal  *prometheus.CounterVec
	StreamsTotal   *prometheus.CounterVec
	SearchDuration *prometheus.HistogramVec
}

func NewManager(caches map[string]CacheStatsSource) *Manager {
	registry := prometheus.NewRegistry()

	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	cacheCollector := NewCacheCollector(caches)
	registry.MustRegister(cacheCollector)

	searchesTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "debrr_searches_total",
		Help: "Total number of stream searches by content type and outcome",
	}, []string{"type", "outcome"})

	streamsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "debrr_streams_returned_total",
		Help: "Total number of stream candidates returned by content type",
	}, []string{"type"})

	searchDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "debrr_search_duration_seconds",
		Help:    "Stream search duration by content type",
		Buckets: prometheus.DefBuckets,
	}, []string{"type"})

	registry.MustRegister(searchesTotal, streamsTotal, searchDuration)

	log.Info().Msg("Metrics manager initialized with cache collector")

	return &Manager{
		registry:       registry,
		cacheCollector: cacheCollector,
		SearchesTotal:  searchesTotal,
		StreamsTotal:   streamsTotal,
		SearchDuration: searchDuration,
	}
}

func (m *Manager) GetRegistry() *prometheus.Registry {
	return m.registry
}
