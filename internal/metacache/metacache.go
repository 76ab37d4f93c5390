// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package metacache caches parsed release metadata at two levels: an
// exact key over (container, video, content type), and a fuzzy key with
// the episode-identifying token neutralized. Episodes of the same release
// share title and technical metadata, so a fuzzy hit only needs the
// episode-dependent fields re-extracted from the current name.
package metacache

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/debrr/pkg/memcache"
	"github.com/autobrr/debrr/pkg/videoname"
)

// ContentType tags what kind of title a parse was requested for.
type ContentType string

const (
	ContentMovie  ContentType = "movie"
	ContentSeries ContentType = "series"
)

// Provenance records how a cached result was produced.
type Provenance string

const (
	// ProvenanceParsed marks a full parse (cache miss).
	ProvenanceParsed Provenance = "parsed"
	// ProvenanceFuzzyAdapted marks a fuzzy-tier hit whose episode fields
	// were rewritten for the requesting name.
	ProvenanceFuzzyAdapted Provenance = "fuzzy_adapted"
)

// ParsedMetadata is the cached parse of one container/video pair.
type ParsedMetadata struct {
	Type       ContentType
	Container  videoname.Parsed
	Video      videoname.Parsed
	Provenance Provenance
}

const (
	exactPrefix = "exact:"
	fuzzyPrefix = "fuzzy:"
)

var (
	punctNoiseRe = regexp.MustCompile(`[\[\]()_.]+`)
	// Per-episode checksum tags ([8A91B42D]) would otherwise make every
	// episode of a release hash to a different fuzzy key.
	checksumTagRe = regexp.MustCompile(`(?i)\[[0-9a-f]{8}\]`)
)

// Cache is the fuzzy metadata cache. Fuzzy entries live twice as long as
// exact entries because they are shared across episodes of a release.
type Cache struct {
	store    *memcache.Cache[ParsedMetadata]
	exactTTL time.Duration
}

// New builds a metadata cache on top of store. exactTTL controls the
// exact tier; the fuzzy tier uses 2x exactTTL.
func New(store *memcache.Cache[ParsedMetadata], exactTTL time.Duration) *Cache {
	return &Cache{
		store:    store,
		exactTTL: exactTTL,
	}
}

// GetOrParse returns metadata for the given names, from the exact tier,
// the fuzzy tier (adapted), or a full parse.
func (c *Cache) GetOrParse(containerName, videoName string, contentType ContentType) ParsedMetadata {
	exactKey := exactKey(containerName, videoName, contentType)
	if cached, found := c.store.Get(exactKey); found {
		return cached
	}

	fuzzyKey := fuzzyKey(containerName, contentType)
	if cached, found := c.store.Get(fuzzyKey); found {
		adapted := adapt(cached, containerName, videoName)
		c.store.SetTTL(exactKey, adapted, c.exactTTL)

		log.Trace().
			Str("container", containerName).
			Str("fuzzyKey", fuzzyKey).
			Msg("adapted fuzzy metadata hit")
		return adapted
	}

	parsed := ParsedMetadata{
		Type:       contentType,
		Container:  videoname.Parse(containerName),
		Video:      videoname.Parse(videoName),
		Provenance: ProvenanceParsed,
	}

	c.store.SetTTL(exactKey, parsed, c.exactTTL)
	c.store.SetTTL(fuzzyKey, parsed, 2*c.exactTTL)

	return parsed
}

// Invalidate drops every entry in both tiers.
func (c *Cache) Invalidate() int {
	return c.store.DeletePattern(regexp.MustCompile(`^(exact|fuzzy):`))
}

// Stats exposes the underlying store counters.
func (c *Cache) Stats() memcache.Stats {
	return c.store.Stats()
}

// adapt deep-copies cached metadata and rewrites only the episode-dependent
// fields from the names of the current request. Title, quality and
// technical attributes are inherited from the cached parse.
func adapt(cached ParsedMetadata, containerName, videoName string) ParsedMetadata {
	adapted := cached
	adapted.Container.Variants = append([]string(nil), cached.Container.Variants...)
	adapted.Video.Variants = append([]string(nil), cached.Video.Variants...)
	adapted.Provenance = ProvenanceFuzzyAdapted

	fresh := videoname.Parse(containerName)
	adapted.Container.Season = fresh.Season
	adapted.Container.Episode = fresh.Episode
	adapted.Container.AbsoluteEpisode = fresh.AbsoluteEpisode

	freshVideo := videoname.Parse(videoName)
	adapted.Video.Season = freshVideo.Season
	adapted.Video.Episode = freshVideo.Episode
	adapted.Video.AbsoluteEpisode = freshVideo.AbsoluteEpisode

	return adapted
}

func exactKey(containerName, videoName string, contentType ContentType) string {
	h := xxhash.New()
	_, _ = h.WriteString(containerName)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(videoName)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(string(contentType))
	return fmt.Sprintf("%s%016x", exactPrefix, h.Sum64())
}

// fuzzyKey normalizes the container name and neutralizes its episode
// token so all episodes of one release share a key.
func fuzzyKey(containerName string, contentType ContentType) string {
	normalized := strings.ToLower(containerName)
	normalized = checksumTagRe.ReplaceAllString(normalized, " ")
	normalized = punctNoiseRe.ReplaceAllString(normalized, " ")
	normalized = strings.Join(strings.Fields(normalized), " ")

	if replaced, ok := videoname.ReplaceClassicEpisode(normalized); ok {
		normalized = replaced
	} else if replaced, ok := videoname.ReplaceAbsoluteEpisode(normalized); ok {
		normalized = replaced
	} else {
		normalized = videoname.SweepEpisodeTokens(normalized)
	}

	return fuzzyPrefix + string(contentType) + ":" + normalized
}
