// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package search

import (
	"fmt"

	"github.com/autobrr/debrr/internal/debrid"
	"github.com/autobrr/debrr/pkg/stringutils"
)

// DedupListings collapses the raw account listing before any expensive
// detail fetch. Entries with an id are deduplicated on id alone so one
// torrent is never expanded twice; id-less entries (direct downloads)
// fall back to a name+size key. Series mode keeps the id set separate
// from the file key set, because a series torrent may legitimately share
// its name+size with a single-file download of one episode.
func DedupListings(listings []debrid.RawListing, series bool) []debrid.RawListing {
	seenIDs := make(map[string]struct{}, len(listings))
	seenFiles := make(map[string]struct{}, len(listings))

	out := make([]debrid.RawListing, 0, len(listings))
	for _, l := range listings {
		if l.ID != "" {
			if _, dup := seenIDs[l.ID]; dup {
				continue
			}
			seenIDs[l.ID] = struct{}{}
			if !series {
				// Movies: a re-added torrent under a new id is still the
				// same payload.
				key := fileKey(l.Name, l.Size)
				if _, dup := seenFiles[key]; dup {
					continue
				}
				seenFiles[key] = struct{}{}
			}
			out = append(out, l)
			continue
		}

		key := fileKey(l.Name, l.Size)
		if _, dup := seenFiles[key]; dup {
			continue
		}
		seenFiles[key] = struct{}{}
		out = append(out, l)
	}
	return out
}

// DedupStreams drops later records whose normalized filename and size
// already appeared. Input order is preserved; the service runs this
// before ranking, so the earliest record in pipeline order survives.
func DedupStreams(records []StreamRecord) []StreamRecord {
	seen := make(map[string]struct{}, len(records))
	out := make([]StreamRecord, 0, len(records))
	for _, r := range records {
		key := fileKey(r.Filename, r.Size)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

// fileKey interns the normalized name: the same filenames recur across
// listings, containers and stream records within one search.
func fileKey(name string, size int64) string {
	return fmt.Sprintf("%s|%d", stringutils.InternNormalized(name), size)
}
