// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package search implements the matching and ranking pipeline that turns
// a debrid account listing into ordered, playable stream candidates for
// one movie or episode.
package search

import (
	"fmt"
	"regexp"

	"github.com/autobrr/debrr/internal/debrid"
	"github.com/autobrr/debrr/internal/metacache"
	"github.com/autobrr/debrr/internal/metadata"
)

// Request describes one search. Immutable per call.
type Request struct {
	APIKey      string
	Provider    string
	ContentType metacache.ContentType
	ImdbID      string
	Season      int
	Episode     int
	// Threshold overrides the per-content-type default minimum title
	// similarity when > 0.
	Threshold float64
	ClientIP  string
}

const (
	movieThreshold = 0.4
	// Series matching is looser: episode filtering downstream provides a
	// second correctness gate.
	seriesThreshold = 0.3
)

func (r Request) threshold() float64 {
	if r.Threshold > 0 {
		return r.Threshold
	}
	if r.ContentType == metacache.ContentMovie {
		return movieThreshold
	}
	return seriesThreshold
}

var imdbIDRe = regexp.MustCompile(`^tt\d{7,8}$`)

// Validate rejects malformed requests before any network traffic.
func (r Request) Validate() error {
	switch r.ContentType {
	case metacache.ContentMovie, metacache.ContentSeries:
	default:
		return &ValidationError{Field: "contentType", Reason: fmt.Sprintf("unsupported content type %q", r.ContentType)}
	}

	if !imdbIDRe.MatchString(r.ImdbID) {
		return &ValidationError{Field: "imdbId", Reason: fmt.Sprintf("malformed imdb id %q", r.ImdbID)}
	}

	if r.ContentType == metacache.ContentSeries {
		if r.Season < 1 || r.Season > 100 {
			return &ValidationError{Field: "season", Reason: fmt.Sprintf("season %d out of range", r.Season)}
		}
		if r.Episode < 1 || r.Episode > 10000 {
			return &ValidationError{Field: "episode", Reason: fmt.Sprintf("episode %d out of range", r.Episode)}
		}
	}

	if r.Threshold < 0 || r.Threshold > 1 {
		return &ValidationError{Field: "matchThreshold", Reason: "threshold must be within [0,1]"}
	}

	return nil
}

// ValidationError marks a malformed request. Never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("search: invalid request: %s: %s", e.Field, e.Reason)
}

// Context carries the resolved titles alongside results so variant
// detection never needs a second metadata round trip.
type Context struct {
	SearchTitle       string
	AlternativeTitles []string
	Year              int
}

// MatchedListing is a raw listing that passed title matching.
type MatchedListing struct {
	debrid.RawListing
	Score float64
}

// Coordinated is the matcher output: title-filtered listings plus the
// numbering scheme downstream filtering must use.
type Coordinated struct {
	Results []MatchedListing
	Context Context
	// Mapping is non-nil when the enrichment source reported divergent
	// numbering; callers must prefer its mapped values over the
	// originally requested season/episode.
	Mapping *metadata.AbsoluteMapping
}

// EpisodeTarget is the (possibly anime-remapped) episode the filter
// accepts videos against.
type EpisodeTarget struct {
	Season          int
	Episode         int
	AbsoluteEpisode int
	TraktMapped     bool
}

// TargetFor derives the filter target from the request and an optional
// mapping.
func TargetFor(req Request, mapping *metadata.AbsoluteMapping) EpisodeTarget {
	if mapping == nil {
		return EpisodeTarget{Season: req.Season, Episode: req.Episode}
	}
	return EpisodeTarget{
		Season:          mapping.MappedSeason,
		Episode:         mapping.MappedEpisode,
		AbsoluteEpisode: mapping.AbsoluteEpisode,
		TraktMapped:     true,
	}
}

// StreamRecord is the terminal, immutable result handed to the caller.
type StreamRecord struct {
	Name       string `json:"name"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	BingeGroup string `json:"bingeGroup"`
	Filename   string `json:"filename"`
	Size       int64  `json:"size"`
}
