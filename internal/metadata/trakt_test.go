package metadata

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func seasonsFixture() []traktSeason {
	mk := func(n, count, absStart int) traktSeason {
		s := traktSeason{Number: n}
		for i := 1; i <= count; i++ {
			ep := traktEpisode{Number: i}
			if absStart > 0 {
				ep.NumberAbs = absStart + i - 1
			}
			s.Episodes = append(s.Episodes, ep)
		}
		return s
	}

	return []traktSeason{
		mk(0, 3, 0),  // specials, ignored
		mk(1, 12, 1), // absolute 1-12
		mk(2, 12, 13),
	}
}

func TestResolveMappingOverflowWalksSeasons(t *testing.T) {
	mapping, ok := resolveMapping(seasonsFixture(), 1, 13)

	require.True(t, ok)
	require.Equal(t, 1, mapping.OriginalSeason)
	require.Equal(t, 13, mapping.OriginalEpisode)
	require.Equal(t, 2, mapping.MappedSeason)
	require.Equal(t, 1, mapping.MappedEpisode)
	require.Equal(t, 13, mapping.AbsoluteEpisode)
}

func TestResolveMappingIdentityForRegularShow(t *testing.T) {
	seasons := []traktSeason{
		{Number: 1, Episodes: []traktEpisode{{Number: 1}, {Number: 2}}},
		{Number: 2, Episodes: []traktEpisode{{Number: 1}, {Number: 2}}},
	}

	mapping, ok := resolveMapping(seasons, 2, 2)
	require.False(t, ok)
	require.Equal(t, 2, mapping.MappedSeason)
	require.Equal(t, 2, mapping.MappedEpisode)
	require.Zero(t, mapping.AbsoluteEpisode)
}

func TestResolveMappingAnimeAbsoluteWithinSeason(t *testing.T) {
	// Season 2 episode 1 carries absolute number 13: divergent numbering
	// even without a season walk.
	mapping, ok := resolveMapping(seasonsFixture(), 2, 1)

	require.True(t, ok)
	require.Equal(t, 2, mapping.MappedSeason)
	require.Equal(t, 1, mapping.MappedEpisode)
	require.Equal(t, 13, mapping.AbsoluteEpisode)
}

func TestResolveMappingUnknownSeason(t *testing.T) {
	_, ok := resolveMapping(seasonsFixture(), 9, 1)
	require.False(t, ok)
}

func TestResolveMappingPastLastSeason(t *testing.T) {
	_, ok := resolveMapping(seasonsFixture(), 2, 40)
	require.False(t, ok)
}

func TestResolveMappingNoSeasons(t *testing.T) {
	_, ok := resolveMapping(nil, 1, 1)
	require.False(t, ok)
}

func TestParseYear(t *testing.T) {
	require.Equal(t, 2013, parseYear("2013"))
	require.Equal(t, 2013, parseYear("2013-2019"))
	require.Equal(t, 2013, parseYear("2013–"))
	require.Zero(t, parseYear(""))
	require.Zero(t, parseYear("unknown"))
}
