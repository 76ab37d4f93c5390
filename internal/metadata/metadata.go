// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package metadata defines the collaborator contracts the search pipeline
// consumes for canonical titles and episode numbering. The primary source
// (Cinemeta) is required; enrichment sources (Trakt) are optional and the
// pipeline degrades to classic-only matching without them.
package metadata

import "context"

// EpisodeRef is one canonical episode entry of a series.
type EpisodeRef struct {
	Season  int    `json:"season"`
	Episode int    `json:"episode"`
	Title   string `json:"name"`
}

// Meta is the canonical metadata for one title.
type Meta struct {
	Name     string
	Year     int
	Episodes []EpisodeRef
}

// HasEpisode reports whether the canonical episode list contains the
// requested (season, episode). An empty list cannot rule anything out:
// some catalog entries ship without videos.
func (m Meta) HasEpisode(season, episode int) bool {
	if len(m.Episodes) == 0 {
		return true
	}
	for _, e := range m.Episodes {
		if e.Season == season && e.Episode == episode {
			return true
		}
	}
	return false
}

// AbsoluteMapping translates a requested (season, episode) into the
// numbering scheme actually used on disk. Produced when the canonical
// source and the enrichment source disagree, typical for anime.
type AbsoluteMapping struct {
	OriginalSeason  int
	OriginalEpisode int
	MappedSeason    int
	MappedEpisode   int
	AbsoluteEpisode int
}

// Source is the primary metadata source (Cinemeta-equivalent). A failure
// here is fatal to the request: there is no title to match against.
type Source interface {
	GetMeta(ctx context.Context, contentType, imdbID string) (Meta, error)
}

// Enricher provides alternative titles and absolute-episode numbering
// (Trakt/TMDb-equivalent). All methods may fail without failing a search.
type Enricher interface {
	GetAlternativeTitles(ctx context.Context, imdbID string) ([]string, error)
	// GetAbsoluteEpisodeMapping returns the on-disk numbering for the
	// requested episode. ok is false when numbering agrees and no
	// remapping is needed.
	GetAbsoluteEpisodeMapping(ctx context.Context, imdbID string, season, episode int) (AbsoluteMapping, bool, error)
}
