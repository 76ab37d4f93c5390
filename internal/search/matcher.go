// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package search

import (
	"context"
	"regexp"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/debrr/internal/debrid"
	"github.com/autobrr/debrr/internal/metacache"
	"github.com/autobrr/debrr/internal/metadata"
	"github.com/autobrr/debrr/pkg/stringutils"
)

// Matcher coordinates metadata resolution with title matching over the
// account's raw listings. The canonical source is required; the enricher
// is optional and every enricher failure degrades the search instead of
// failing it.
type Matcher struct {
	meta     metadata.Source
	enricher metadata.Enricher
	cache    *metacache.Cache
}

func NewMatcher(meta metadata.Source, enricher metadata.Enricher, cache *metacache.Cache) *Matcher {
	return &Matcher{
		meta:     meta,
		enricher: enricher,
		cache:    cache,
	}
}

// Coordinate resolves the canonical title, gathers alternative titles and
// (for series) the episode numbering scheme, then scores every deduplicated
// listing against the title set. Listings below the request threshold are
// dropped.
func (m *Matcher) Coordinate(ctx context.Context, req Request, listings []debrid.RawListing) (Coordinated, error) {
	meta, err := m.meta.GetMeta(ctx, string(req.ContentType), req.ImdbID)
	if err != nil {
		return Coordinated{}, errors.Wrapf(err, "resolve metadata for %s", req.ImdbID)
	}

	sctx := Context{
		SearchTitle: meta.Name,
		Year:        meta.Year,
	}

	// Requests originate from the same catalog the episode list comes
	// from, so an episode the catalog does not know cannot have streams.
	// Bailing here also skips the enrichment round trips.
	if req.ContentType == metacache.ContentSeries && !meta.HasEpisode(req.Season, req.Episode) {
		log.Debug().
			Str("imdbID", req.ImdbID).
			Int("season", req.Season).
			Int("episode", req.Episode).
			Msg("requested episode not in canonical episode list")
		return Coordinated{Context: sctx}, nil
	}

	var mapping *metadata.AbsoluteMapping
	if m.enricher != nil {
		titles, err := m.enricher.GetAlternativeTitles(ctx, req.ImdbID)
		if err != nil {
			log.Warn().Err(err).Str("imdbID", req.ImdbID).Msg("alternative titles unavailable, matching on canonical title only")
		} else {
			// The same alias set recurs across every episode of a show.
			sctx.AlternativeTitles = stringutils.InternAll(titles)
		}

		if req.ContentType == metacache.ContentSeries {
			mapped, ok, err := m.enricher.GetAbsoluteEpisodeMapping(ctx, req.ImdbID, req.Season, req.Episode)
			if err != nil {
				log.Warn().Err(err).Str("imdbID", req.ImdbID).Msg("episode numbering enrichment unavailable, using requested numbering")
			} else if ok {
				mapping = &mapped
			}
		}
	}

	threshold := req.threshold()
	targets := append([]string{sctx.SearchTitle}, sctx.AlternativeTitles...)

	deduped := DedupListings(listings, req.ContentType == metacache.ContentSeries)

	results := make([]MatchedListing, 0, len(deduped))
	for _, listing := range deduped {
		parsed := m.cache.GetOrParse(listing.Name, listing.Name, req.ContentType)
		score := bestTitleScore(parsed.Video.Title, listing.Name, targets)
		if score < threshold {
			continue
		}
		results = append(results, MatchedListing{RawListing: listing, Score: score})
	}

	log.Debug().
		Str("imdbID", req.ImdbID).
		Str("title", sctx.SearchTitle).
		Int("listings", len(listings)).
		Int("matched", len(results)).
		Float64("threshold", threshold).
		Msg("coordinated title matching")

	return Coordinated{Results: results, Context: sctx, Mapping: mapping}, nil
}

// bestTitleScore scores a candidate against every known title and keeps
// the best result. The parsed title is the primary signal; the raw name
// backs it up when release parsing mangles the title.
func bestTitleScore(parsedTitle, rawName string, targets []string) float64 {
	best := 0.0
	for _, target := range targets {
		if s := titleSimilarity(parsedTitle, target); s > best {
			best = s
		}
		if s := containmentScore(rawName, target); s > best {
			best = s
		}
	}
	return best
}

var titleNoiseRe = regexp.MustCompile(`[^a-z0-9]+`)

// normalizeTitle folds diacritics, punctuation and separator noise so
// "Shōgun", "shogun" and "Shogun.2024" compare equal. Results are cached
// by the matching normalizer; this runs per listing per target.
func normalizeTitle(s string) string {
	s = stringutils.NormalizeForMatching(s)
	s = titleNoiseRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// titleSimilarity is a normalized Levenshtein ratio in [0,1].
func titleSimilarity(candidate, target string) float64 {
	c := normalizeTitle(candidate)
	t := normalizeTitle(target)
	if c == "" || t == "" {
		return 0
	}
	if c == t {
		return 1
	}

	dist := fuzzy.LevenshteinDistance(c, t)
	longest := len(c)
	if len(t) > longest {
		longest = len(t)
	}
	return 1 - float64(dist)/float64(longest)
}

// containmentScore handles full release names, where edit distance against
// a short title is meaningless but a normalized substring hit is strong
// evidence.
func containmentScore(candidate, target string) float64 {
	c := normalizeTitle(candidate)
	t := normalizeTitle(target)
	if c == "" || t == "" {
		return 0
	}
	if strings.Contains(c, t) {
		return 0.85
	}
	return 0
}
