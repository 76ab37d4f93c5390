package videoname

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseClassicEpisodeForms(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		season  int
		episode int
	}{
		{"sxxeyy", "The.Expanse.S03E05.1080p.WEB-DL.DDP5.1.H.264-NTb", 3, 5},
		{"lowercase", "the office s02e14 hdtv", 2, 14},
		{"cross form", "Breaking Bad 2x07 720p", 2, 7},
		{"long form", "Doctor Who Season 4 Episode 10 BluRay", 4, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Parse(tt.input)
			require.Equal(t, tt.season, p.Season)
			require.Equal(t, tt.episode, p.Episode)
			require.True(t, p.HasClassicEpisode())
			require.Zero(t, p.AbsoluteEpisode)
		})
	}
}

func TestParseAbsoluteEpisode(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		absolute int
	}{
		{"dash number", "[SubsPlease] One Piece - 1071 (1080p) [8A91B42D].mkv", 1071},
		{"labeled", "Naruto Shippuuden Ep 213 [720p]", 213},
		{"episode word", "Bleach Episode 366 1080p", 366},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Parse(tt.input)
			require.Equal(t, tt.absolute, p.AbsoluteEpisode)
			require.False(t, p.HasClassicEpisode())
		})
	}
}

func TestParseClassicWinsOverAbsolute(t *testing.T) {
	p := Parse("Show S01E02 - 45 (1080p)")
	require.Equal(t, 1, p.Season)
	require.Equal(t, 2, p.Episode)
	require.Zero(t, p.AbsoluteEpisode)
}

func TestParseQualityScore(t *testing.T) {
	uhd := Parse("Movie.2020.2160p.UHD.BluRay.REMUX.HDR.HEVC-GROUP")
	fhd := Parse("Movie.2020.1080p.WEB-DL.H264-GROUP")
	sd := Parse("Movie 2020 480p")

	require.Greater(t, uhd.QualityScore, fhd.QualityScore)
	require.Greater(t, fhd.QualityScore, sd.QualityScore)
}

func TestParseUnknownQuality(t *testing.T) {
	p := Parse("totally unremarkable name")
	require.Equal(t, UnknownQualityScore, p.QualityScore)
}

func TestParseMalformedInputDoesNotPanic(t *testing.T) {
	for _, input := range []string{"", "....", "((((", "\x00\x01", "-"} {
		require.NotPanics(t, func() { Parse(input) })
	}
}

func TestParseIsReproducible(t *testing.T) {
	const name = "The.Expanse.S03E05.1080p.WEB-DL.DDP5.1.H.264-NTb"
	require.Equal(t, Parse(name), Parse(name))
}

func TestReplaceClassicEpisode(t *testing.T) {
	out, ok := ReplaceClassicEpisode("Show.S03E05.1080p.WEB-DL")
	require.True(t, ok)
	require.Contains(t, out, "s00e00")
	require.NotContains(t, out, "S03E05")

	out, ok = ReplaceClassicEpisode("Show 2x07 720p")
	require.True(t, ok)
	require.Contains(t, out, "0x00")

	_, ok = ReplaceClassicEpisode("Movie.2020.1080p")
	require.False(t, ok)
}

func TestReplaceAbsoluteEpisode(t *testing.T) {
	out, ok := ReplaceAbsoluteEpisode("[SubsPlease] One Piece - 1071 (1080p)")
	require.True(t, ok)
	require.Contains(t, out, "0000")
	require.NotContains(t, out, "1071")
}

func TestEpisodeTag(t *testing.T) {
	require.Equal(t, "S01E09", EpisodeTag(1, 9))
	require.Equal(t, "S12E110", EpisodeTag(12, 110))
}
