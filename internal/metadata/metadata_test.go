// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetaHasEpisode(t *testing.T) {
	listed := Meta{
		Name: "The Expanse",
		Episodes: []EpisodeRef{
			{Season: 1, Episode: 1},
			{Season: 1, Episode: 2},
			{Season: 2, Episode: 1},
		},
	}

	tests := []struct {
		name    string
		meta    Meta
		season  int
		episode int
		want    bool
	}{
		{"listed episode", listed, 1, 2, true},
		{"episode past season end", listed, 1, 3, false},
		{"unknown season", listed, 3, 1, false},
		{"empty list cannot rule out", Meta{Name: "X"}, 7, 7, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.meta.HasEpisode(tt.season, tt.episode))
		})
	}
}
