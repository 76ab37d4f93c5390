// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package search

import (
	"fmt"
	"strings"

	"github.com/autobrr/debrr/internal/debrid"
	"github.com/autobrr/debrr/internal/metacache"
	"github.com/autobrr/debrr/pkg/stringutils"
)

const addonShortName = "debrr"

// BuildStreamRecord renders one matched video into its final stream
// shape. The title is multi-line: filename, then the quality line the
// ranker scores, then the size annotation.
func BuildStreamRecord(container debrid.TorrentContainer, video debrid.Video, cache *metacache.Cache, contentType metacache.ContentType, providerName string) StreamRecord {
	md := cache.GetOrParse(container.Name, video.Name, contentType)

	quality := qualityLine(md, video)
	name := fmt.Sprintf("[%s+] %s", strings.ToUpper(shortProvider(providerName)), addonShortName)
	if resolution := displayResolution(md, video); resolution != "" {
		name += "\n" + resolution
	}

	lines := []string{video.Name}
	if quality != "" {
		lines = append(lines, quality)
	}
	lines = append(lines, fmt.Sprintf("💾 %s ⚙️ %s", humanSize(video.Size), providerName))

	// Name and binge group repeat verbatim across every episode of a
	// release lineage; interning collapses them to one allocation.
	return StreamRecord{
		Name:       stringutils.Intern(name),
		Title:      strings.Join(lines, "\n"),
		URL:        video.URL,
		BingeGroup: bingeGroup(container, md, providerName),
		Filename:   video.Name,
		Size:       video.Size,
	}
}

// qualityLine combines quality, technical detail, variants and the match
// annotations into the second title line.
func qualityLine(md metacache.ParsedMetadata, video debrid.Video) string {
	var parts []string

	quality := md.Video.Quality
	if quality == "" {
		quality = md.Container.Quality
	}
	if quality != "" {
		parts = append(parts, quality)
	}

	technical := md.Video.Technical
	if technical == "" {
		technical = md.Container.Technical
	}
	if technical != "" {
		parts = append(parts, technical)
	}

	variants := md.Video.Variants
	if len(variants) == 0 {
		variants = md.Container.Variants
	}
	parts = append(parts, variants...)

	if video.IsAbsoluteMatch {
		if video.TraktMapped {
			parts = append(parts, "[abs·trakt]")
		} else {
			parts = append(parts, "[abs]")
		}
	}

	return strings.Join(parts, " ")
}

func displayResolution(md metacache.ParsedMetadata, video debrid.Video) string {
	if video.Resolution != "" {
		return video.Resolution
	}
	if md.Video.Resolution != "" {
		return md.Video.Resolution
	}
	return md.Container.Resolution
}

// bingeGroup keys episodes of the same release together so players
// auto-advance within one quality/group lineage.
func bingeGroup(container debrid.TorrentContainer, md metacache.ParsedMetadata, providerName string) string {
	parts := []string{addonShortName, providerName}

	if res := md.Container.Resolution; res != "" {
		parts = append(parts, res)
	} else if md.Video.Resolution != "" {
		parts = append(parts, md.Video.Resolution)
	}
	if group := md.Container.Group; group != "" {
		parts = append(parts, group)
	} else {
		parts = append(parts, container.ID)
	}

	return stringutils.Intern(strings.Join(parts, "|"))
}

func shortProvider(name string) string {
	switch strings.ToLower(name) {
	case "alldebrid":
		return "AD"
	case "realdebrid", "real-debrid":
		return "RD"
	case "premiumize":
		return "PM"
	case "debridlink", "debrid-link":
		return "DL"
	case "torbox":
		return "TB"
	}
	if len(name) >= 2 {
		return name[:2]
	}
	return name
}

const (
	kb = 1 << 10
	mb = 1 << 20
	gb = 1 << 30
)

func humanSize(size int64) string {
	switch {
	case size >= gb:
		return fmt.Sprintf("%.2f GB", float64(size)/float64(gb))
	case size >= mb:
		return fmt.Sprintf("%.2f MB", float64(size)/float64(mb))
	case size >= kb:
		return fmt.Sprintf("%.2f KB", float64(size)/float64(kb))
	case size > 0:
		return fmt.Sprintf("%d B", size)
	}
	return "unknown"
}
