// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package videoname classifies raw torrent/file names into structured
// attributes. Parsing is built on moistari/rls with extra heuristics for
// anime-style absolute episode numbering, which rls does not recognize
// (e.g. "One Piece - 1071 (1080p)").
//
// Parse is a pure function: the same input always yields the same result,
// and malformed input degrades to zero-valued fields instead of failing.
package videoname

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/moistari/rls"
)

var (
	classicEpisodeRe = regexp.MustCompile(`(?i)\bs(\d{1,2})[\s._]?e(\d{1,3})\b`)
	crossEpisodeRe   = regexp.MustCompile(`(?i)\b(\d{1,2})x(\d{2,3})\b`)
	longFormRe       = regexp.MustCompile(`(?i)\bseason[\s._]*(\d{1,2})[\s._]*episode[\s._]*(\d{1,3})\b`)

	// Absolute-episode forms, in matching order: " - 1071", "Ep 13" / "Episode 13",
	// then a bare trailing number before a bracketed tag.
	dashAbsoluteRe    = regexp.MustCompile(`\s-\s(\d{1,4})(?:\s|$|\.|\()`)
	labeledAbsoluteRe = regexp.MustCompile(`(?i)\b(?:ep|episode)[\s._]?(\d{1,4})\b`)
	bareAbsoluteRe    = regexp.MustCompile(`[\s._](\d{2,4})[\s._]*[(\[]`)

	// Generic sweep for cache-key neutralization when no single pattern wins.
	sweepRe = regexp.MustCompile(`(?i)\b(?:s\d{1,2}[\s._]?e\d{1,3}|\d{1,2}x\d{2,3}|ep(?:isode)?[\s._]?\d{1,4}|\d{2,4})\b`)

	resolutionScores = map[string]int{
		"2160p": 100,
		"4k":    100,
		"1440p": 85,
		"1080p": 80,
		"720p":  60,
		"576p":  45,
		"480p":  40,
		"360p":  20,
	}

	sourceScores = map[string]int{
		"REMUX":      15,
		"UHD.BLURAY": 10,
		"BLURAY":     10,
		"WEB-DL":     5,
		"WEB":        4,
		"WEBRIP":     3,
		"HDTV":       1,
	}

	lowQualitySources = map[string]struct{}{
		"CAM": {}, "TS": {}, "TELESYNC": {}, "TC": {}, "HDCAM": {}, "SCR": {}, "SCREENER": {},
	}
)

// UnknownQualityScore sorts below every recognized quality.
const UnknownQualityScore = -1

// Parsed holds the structured attributes extracted from one name. Fields
// that could not be determined are zero-valued; QualityScore is
// UnknownQualityScore when neither resolution nor source was recognized.
type Parsed struct {
	Title           string
	Year            int
	Season          int
	Episode         int
	AbsoluteEpisode int
	Resolution      string
	Quality         string
	QualityScore    int
	Technical       string
	Group           string
	Container       string
	Variants        []string
}

// HasClassicEpisode reports whether a classic season/episode pattern was found.
func (p Parsed) HasClassicEpisode() bool {
	return p.Season > 0 && p.Episode > 0
}

// Parse classifies name. It never fails; unparseable names produce a
// Parsed with empty fields and an unknown quality score.
func Parse(name string) Parsed {
	r := rls.ParseString(name)

	p := Parsed{
		Title:      r.Title,
		Year:       r.Year,
		Season:     r.Series,
		Episode:    r.Episode,
		Resolution: strings.ToLower(strings.TrimSpace(r.Resolution)),
		Group:      r.Group,
		Container:  r.Container,
	}

	// rls occasionally misses classic forms in noisy names; a direct scan
	// keeps the extractor authoritative for the forms we filter on.
	if !p.HasClassicEpisode() {
		if season, episode, ok := matchClassicEpisode(name); ok {
			p.Season = season
			p.Episode = episode
		}
	}

	if !p.HasClassicEpisode() {
		p.AbsoluteEpisode = matchAbsoluteEpisode(name)
	}

	p.Variants = collectVariants(r)
	p.Technical = technicalDetails(r)
	p.Quality, p.QualityScore = qualityOf(r)

	return p
}

// matchClassicEpisode scans for SxxEyy, NxM and "Season X Episode Y" forms.
func matchClassicEpisode(name string) (season, episode int, ok bool) {
	for _, re := range []*regexp.Regexp{classicEpisodeRe, longFormRe, crossEpisodeRe} {
		if m := re.FindStringSubmatch(name); m != nil {
			season, _ = strconv.Atoi(m[1])
			episode, _ = strconv.Atoi(m[2])
			return season, episode, season > 0 && episode > 0
		}
	}
	return 0, 0, false
}

// matchAbsoluteEpisode extracts an anime-style sequential episode number.
// Only called when no classic pattern was found, so a bare number is
// unambiguous enough to use.
func matchAbsoluteEpisode(name string) int {
	for _, re := range []*regexp.Regexp{dashAbsoluteRe, labeledAbsoluteRe, bareAbsoluteRe} {
		if m := re.FindStringSubmatch(name); m != nil {
			n, _ := strconv.Atoi(m[1])
			// Four-digit numbers in the year range are almost always years,
			// unless the name spells out "episode".
			if re != labeledAbsoluteRe && n >= 1900 && n <= 2100 {
				continue
			}
			if n > 0 {
				return n
			}
		}
	}
	return 0
}

func collectVariants(r rls.Release) []string {
	var variants []string
	for _, group := range [][]string{r.Cut, r.Edition, r.Other} {
		for _, v := range group {
			v = strings.ToUpper(strings.TrimSpace(v))
			if v != "" {
				variants = append(variants, v)
			}
		}
	}
	sort.Strings(variants)
	return variants
}

// technicalDetails joins source/codec/audio/HDR tags into a single display
// string, empty when nothing was recognized.
func technicalDetails(r rls.Release) string {
	var parts []string

	if r.Source != "" {
		parts = append(parts, r.Source)
	}
	parts = append(parts, r.Codec...)
	parts = append(parts, r.HDR...)
	parts = append(parts, r.Audio...)
	if r.Channels != "" {
		parts = append(parts, r.Channels)
	}

	return strings.Join(parts, " ")
}

// qualityOf derives a display label and a comparable score from resolution
// and source. Unknown quality scores UnknownQualityScore so it ranks last.
func qualityOf(r rls.Release) (string, int) {
	resolution := strings.ToLower(strings.TrimSpace(r.Resolution))
	source := strings.ToUpper(strings.TrimSpace(r.Source))

	var labelParts []string
	if resolution != "" {
		labelParts = append(labelParts, resolution)
	}
	if r.Source != "" {
		labelParts = append(labelParts, r.Source)
	}
	label := strings.Join(labelParts, " ")

	if _, low := lowQualitySources[source]; low {
		return label, 10
	}

	score, known := resolutionScores[resolution]
	if !known && source == "" {
		return label, UnknownQualityScore
	}
	score += sourceScores[source]

	return label, score
}

// ScoreFromLabel re-derives a quality score from a formatted quality label,
// used when ranking already-formatted stream records.
func ScoreFromLabel(label string) int {
	fields := strings.Fields(strings.ToLower(label))
	if len(fields) == 0 {
		return UnknownQualityScore
	}

	score := UnknownQualityScore
	for _, f := range fields {
		if s, ok := resolutionScores[f]; ok {
			if score == UnknownQualityScore {
				score = 0
			}
			score += s
		}
		if s, ok := sourceScores[strings.ToUpper(f)]; ok {
			if score == UnknownQualityScore {
				score = 0
			}
			score += s
		}
		if _, low := lowQualitySources[strings.ToUpper(f)]; low {
			return 10
		}
	}
	return score
}

// ReplaceClassicEpisode rewrites the first classic season/episode token
// with a canonical placeholder, reporting whether one was found. Used for
// episode-agnostic cache keys.
func ReplaceClassicEpisode(name string) (string, bool) {
	for _, re := range []*regexp.Regexp{classicEpisodeRe, longFormRe} {
		if re.MatchString(name) {
			return re.ReplaceAllString(name, "s00e00"), true
		}
	}
	if crossEpisodeRe.MatchString(name) {
		return crossEpisodeRe.ReplaceAllString(name, "0x00"), true
	}
	return name, false
}

// ReplaceAbsoluteEpisode rewrites the first absolute-episode token with a
// zero placeholder, reporting whether one was found.
func ReplaceAbsoluteEpisode(name string) (string, bool) {
	for _, re := range []*regexp.Regexp{dashAbsoluteRe, labeledAbsoluteRe, bareAbsoluteRe} {
		if m := re.FindStringSubmatchIndex(name); m != nil {
			// Replace only the captured number, keeping surrounding tokens.
			return name[:m[2]] + "0000" + name[m[3]:], true
		}
	}
	return name, false
}

// SweepEpisodeTokens neutralizes any remaining episode-looking tokens.
// Fallback for names where neither targeted replacement applied.
func SweepEpisodeTokens(name string) string {
	return sweepRe.ReplaceAllString(name, "0000")
}

// EpisodeTag formats season/episode in the canonical SxxEyy form.
func EpisodeTag(season, episode int) string {
	return fmt.Sprintf("S%02dE%02d", season, episode)
}
