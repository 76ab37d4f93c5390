// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package search

import (
	"context"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/debrr/internal/debrid"
	"github.com/autobrr/debrr/internal/metacache"
	"github.com/autobrr/debrr/pkg/memcache"
)

// Service runs the full pipeline: listing, matching, detail resolution,
// filtering, formatting, deduplication and ranking. Whole result sets are
// cached briefly so a player probing the same episode twice does not
// replay the provider round trips.
type Service struct {
	registry     *debrid.Registry
	matcher      *Matcher
	orchestrator *Orchestrator
	metaCache    *metacache.Cache
	results      *memcache.Cache[[]StreamRecord]
}

func NewService(registry *debrid.Registry, matcher *Matcher, orchestrator *Orchestrator, metaCache *metacache.Cache, resultTTL time.Duration) *Service {
	if resultTTL <= 0 {
		resultTTL = 5 * time.Minute
	}
	return &Service{
		registry:     registry,
		matcher:      matcher,
		orchestrator: orchestrator,
		metaCache:    metaCache,
		results:      memcache.New[[]StreamRecord](resultTTL, 1024),
	}
}

// Close releases the result cache.
func (s *Service) Close() {
	s.results.Close()
}

// SearchMovie returns ranked stream candidates for one movie.
func (s *Service) SearchMovie(ctx context.Context, req Request) ([]StreamRecord, error) {
	req.ContentType = metacache.ContentMovie
	return s.search(ctx, req)
}

// SearchEpisode returns ranked stream candidates for one episode.
func (s *Service) SearchEpisode(ctx context.Context, req Request) ([]StreamRecord, error) {
	req.ContentType = metacache.ContentSeries
	return s.search(ctx, req)
}

// ResolvePlaybackURL unrestricts a provider link for playback.
func (s *Service) ResolvePlaybackURL(ctx context.Context, providerName, apiKey, encodedURL, clientIP string) (string, error) {
	provider, ok := s.registry.Get(providerName)
	if !ok {
		return "", errors.Errorf("search: unknown provider %q", providerName)
	}
	return provider.UnrestrictURL(ctx, apiKey, encodedURL, clientIP)
}

func (s *Service) search(ctx context.Context, req Request) ([]StreamRecord, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	provider, ok := s.registry.Get(req.Provider)
	if !ok {
		return nil, &ValidationError{Field: "provider", Reason: fmt.Sprintf("unknown provider %q", req.Provider)}
	}

	cacheKey := resultKey(req)
	if cached, found := s.results.Get(cacheKey); found {
		return cloneRecords(cached), nil
	}

	started := time.Now()

	listings, err := provider.ListAccountItems(ctx, req.APIKey)
	if err != nil {
		return nil, errors.Wrapf(err, "list account items via %s", provider.Name())
	}

	coordinated, err := s.matcher.Coordinate(ctx, req, listings)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(coordinated.Results))
	var direct []debrid.TorrentContainer
	for _, m := range coordinated.Results {
		if m.ID == "" {
			// Direct download: the listing itself is the single video.
			direct = append(direct, debrid.TorrentContainer{
				Name:   m.Name,
				Source: m.Source,
				Type:   debrid.TypeDownload,
				Videos: []debrid.Video{{Name: m.Name, URL: m.URL, Size: m.Size}},
			})
			continue
		}
		ids = append(ids, m.ID)
	}

	containers, err := s.orchestrator.ResolveDetails(ctx, provider, req.APIKey, ids)
	if err != nil {
		return nil, err
	}

	ordered := make([]debrid.TorrentContainer, 0, len(containers)+len(direct))
	// Iterate in matched order so ranking ties stay deterministic.
	for _, id := range ids {
		if container, ok := containers[id]; ok {
			ordered = append(ordered, container)
		}
	}
	ordered = append(ordered, direct...)

	records := make([]StreamRecord, 0, len(ordered))
	target := TargetFor(req, coordinated.Mapping)

	for _, container := range ordered {
		AnnotateVideos(s.metaCache, &container, req.ContentType)

		var videos []debrid.Video
		if req.ContentType == metacache.ContentMovie {
			videos = FilterMovie(container, s.metaCache, coordinated.Context.Year)
		} else {
			videos = FilterEpisode(container, target)
		}

		for _, v := range videos {
			records = append(records, BuildStreamRecord(container, v, s.metaCache, req.ContentType, provider.Name()))
		}
	}

	records = DedupStreams(records)
	Rank(records)

	log.Debug().
		Str("imdbID", req.ImdbID).
		Str("provider", provider.Name()).
		Int("candidates", len(ids)).
		Int("streams", len(records)).
		Dur("elapsed", time.Since(started)).
		Msg("search completed")

	s.results.Set(cacheKey, cloneRecords(records))
	return records, nil
}

// resultKey includes a digest of the credential so different accounts on
// the same provider never share cached results.
func resultKey(req Request) string {
	return fmt.Sprintf("result:%s:%016x:%s:%s:%d:%d",
		req.Provider, xxhash.Sum64String(req.APIKey), req.ContentType, req.ImdbID, req.Season, req.Episode)
}

func cloneRecords(records []StreamRecord) []StreamRecord {
	return append([]StreamRecord(nil), records...)
}
