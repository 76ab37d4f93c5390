// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package search

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/autobrr/debrr/pkg/videoname"
)

// Rank orders records by quality score descending, then size descending.
// The sort is stable: records equal on both axes keep their pipeline
// order, so repeated searches return identical sequences.
func Rank(records []StreamRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		qi, qj := recordQuality(records[i]), recordQuality(records[j])
		if qi != qj {
			return qi > qj
		}
		return recordSize(records[i]) > recordSize(records[j])
	})
}

// recordQuality scores the record from its rendered quality line, so the
// ranking reflects exactly what the user is shown.
func recordQuality(r StreamRecord) int {
	lines := strings.Split(r.Title, "\n")
	best := videoname.UnknownQualityScore
	// Skip the filename line; its tokens are already condensed into the
	// quality line and raw filenames can carry misleading digits.
	for _, line := range lines[1:] {
		if score := videoname.ScoreFromLabel(line); score > best {
			best = score
		}
	}
	if best == videoname.UnknownQualityScore {
		// Dotted release names need splitting before token scoring.
		tokens := strings.NewReplacer(".", " ", "_", " ").Replace(r.Filename)
		if score := videoname.ScoreFromLabel(tokens); score > best {
			best = score
		}
	}
	return best
}

var sizeAnnotationRe = regexp.MustCompile(`([\d.]+)\s*(GB|MB|KB|B)\b`)

// recordSize prefers the rendered size annotation and falls back to the
// raw byte count.
func recordSize(r StreamRecord) int64 {
	if m := sizeAnnotationRe.FindStringSubmatch(r.Title); m != nil {
		value, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			switch m[2] {
			case "GB":
				return int64(value * float64(gb))
			case "MB":
				return int64(value * float64(mb))
			case "KB":
				return int64(value * float64(kb))
			default:
				return int64(value)
			}
		}
	}
	return r.Size
}
