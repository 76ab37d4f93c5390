// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package search

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func record(filename, quality, size string, rawSize int64) StreamRecord {
	return StreamRecord{
		Name:     "[AD+] debrr",
		Title:    filename + "\n" + quality + "\n💾 " + size + " ⚙️ alldebrid",
		Filename: filename,
		Size:     rawSize,
	}
}

func TestRankQualityBeforeSize(t *testing.T) {
	records := []StreamRecord{
		record("a.mkv", "1080p WEB-DL", "4.00 GB", 4<<30),
		record("b.mkv", "2160p BluRay", "1.00 GB", 1<<30),
		record("c.mkv", "720p WEB", "8.00 GB", 8<<30),
	}

	Rank(records)

	// 2160p BluRay (110) > 1080p WEB-DL (85) > 720p WEB (64), regardless
	// of size.
	require.Equal(t, "b.mkv", records[0].Filename)
	require.Equal(t, "a.mkv", records[1].Filename)
	require.Equal(t, "c.mkv", records[2].Filename)
}

func TestRankSizeBreaksQualityTies(t *testing.T) {
	records := []StreamRecord{
		record("small.mkv", "1080p WEB-DL", "1.00 GB", 1<<30),
		record("large.mkv", "1080p WEB-DL", "2.00 GB", 2<<30),
	}

	Rank(records)

	require.Equal(t, "large.mkv", records[0].Filename)
	require.Equal(t, "small.mkv", records[1].Filename)
}

func TestRankUnknownQualitySortsLast(t *testing.T) {
	records := []StreamRecord{
		record("mystery.avi", "", "9.00 GB", 9<<30),
		record("known.mkv", "480p", "0.50 GB", 1<<29),
	}

	Rank(records)

	require.Equal(t, "known.mkv", records[0].Filename)
	require.Equal(t, "mystery.avi", records[1].Filename)
}

func TestRankStableOnFullTies(t *testing.T) {
	records := []StreamRecord{
		record("first.mkv", "1080p", "1.00 GB", 1<<30),
		record("second.mkv", "1080p", "1.00 GB", 1<<30),
	}

	Rank(records)

	require.Equal(t, "first.mkv", records[0].Filename)
	require.Equal(t, "second.mkv", records[1].Filename)
}

func TestRankDeterministic(t *testing.T) {
	build := func() []StreamRecord {
		return []StreamRecord{
			record("a.mkv", "720p HDTV", "1.20 GB", 1288490188),
			record("b.mkv", "1080p WEB-DL", "2.40 GB", 2576980377),
			record("c.mkv", "1080p WEB-DL", "2.40 GB", 2576980377),
			record("d.mkv", "2160p", "0.90 GB", 966367641),
		}
	}

	first := build()
	second := build()
	Rank(first)
	Rank(second)

	require.Equal(t, first, second)
}

func TestRecordSizeParsesAnnotation(t *testing.T) {
	r := record("a.mkv", "1080p", "1.50 GB", 0)
	require.Equal(t, int64(1.5*float64(1<<30)), recordSize(r))

	// Missing annotation falls back to the raw byte count.
	r = StreamRecord{Title: "a.mkv", Size: 42}
	require.Equal(t, int64(42), recordSize(r))
}

func TestRecordQualityFallsBackToFilename(t *testing.T) {
	r := StreamRecord{
		Title:    "Show.S01E01.1080p.mkv\n💾 1.00 GB",
		Filename: "Show.S01E01.1080p.mkv",
	}
	require.Equal(t, 80, recordQuality(r))
}
