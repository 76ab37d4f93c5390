// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package search

import (
	"regexp"
	"sort"

	"github.com/autobrr/debrr/internal/debrid"
	"github.com/autobrr/debrr/internal/metacache"
)

// avoidanceRes mark files that must never surface as results: numbered
// copy suffixes ("movie (1).mkv"), samples and trailers.
var avoidanceRes = []*regexp.Regexp{
	regexp.MustCompile(`\(\d+\)(\.\w{2,4})?$`),
	regexp.MustCompile(`(?i)\bsample\b`),
	regexp.MustCompile(`(?i)\btrailer\b`),
}

func avoided(name string) bool {
	for _, re := range avoidanceRes {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

// Match priority for episode filtering, lower is better. Native classic
// numbering beats mapping-assisted absolute matches, which beat plain
// absolute matches.
const (
	priorityClassic = iota
	priorityMappedAbsolute
	priorityPlainAbsolute
)

// AnnotateVideos runs every video of a container through the metadata
// cache and fills in its parsed numbering and resolution. Container-level
// numbering backfills videos whose own name carries none.
func AnnotateVideos(cache *metacache.Cache, container *debrid.TorrentContainer, contentType metacache.ContentType) {
	for i := range container.Videos {
		v := &container.Videos[i]
		md := cache.GetOrParse(container.Name, v.Name, contentType)

		v.Season = md.Video.Season
		v.Episode = md.Video.Episode
		v.AbsoluteEpisode = md.Video.AbsoluteEpisode
		v.Resolution = md.Video.Resolution
		if v.Resolution == "" {
			v.Resolution = md.Container.Resolution
		}

		// A season pack names the season once at the container level.
		if v.Season == 0 && md.Container.Season > 0 {
			v.Season = md.Container.Season
		}
		if v.Episode == 0 && v.AbsoluteEpisode == 0 {
			v.Episode = md.Container.Episode
			v.AbsoluteEpisode = md.Container.AbsoluteEpisode
		}
	}
}

// FilterEpisode keeps the container's videos that match the target
// episode, ordered by match priority. Videos matched through absolute
// numbering are flagged so formatting can annotate them.
func FilterEpisode(container debrid.TorrentContainer, target EpisodeTarget) []debrid.Video {
	type ranked struct {
		video    debrid.Video
		priority int
	}

	var kept []ranked
	for _, v := range container.Videos {
		if avoided(v.Name) {
			continue
		}

		switch {
		case v.Season == target.Season && v.Episode == target.Episode:
			kept = append(kept, ranked{video: v, priority: priorityClassic})

		case target.AbsoluteEpisode > 0 && v.AbsoluteEpisode == target.AbsoluteEpisode:
			v.IsAbsoluteMatch = true
			v.TraktMapped = target.TraktMapped
			priority := priorityPlainAbsolute
			if target.TraktMapped {
				priority = priorityMappedAbsolute
			}
			kept = append(kept, ranked{video: v, priority: priority})

		case target.AbsoluteEpisode == 0 && target.Season == 1 && v.Season == 0 && v.AbsoluteEpisode == target.Episode:
			// Absolutely-numbered file for a season 1 request with no
			// divergent mapping: " - 05" matches S01E05.
			v.IsAbsoluteMatch = true
			kept = append(kept, ranked{video: v, priority: priorityPlainAbsolute})
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].priority < kept[j].priority
	})

	out := make([]debrid.Video, 0, len(kept))
	for _, r := range kept {
		out = append(out, r.video)
	}
	return out
}

// FilterMovie keeps the container's playable videos for a movie request.
// Year is checked only when both sides know it; many rips omit the year
// at the file level.
func FilterMovie(container debrid.TorrentContainer, cache *metacache.Cache, year int) []debrid.Video {
	var out []debrid.Video
	for _, v := range container.Videos {
		if avoided(v.Name) {
			continue
		}
		if year > 0 {
			md := cache.GetOrParse(container.Name, v.Name, metacache.ContentMovie)
			parsedYear := md.Video.Year
			if parsedYear == 0 {
				parsedYear = md.Container.Year
			}
			if parsedYear != 0 && parsedYear != year {
				continue
			}
		}
		out = append(out, v)
	}
	return out
}
