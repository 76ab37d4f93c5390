// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package stringutils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewNormalizer(t *testing.T) {
	t.Parallel()

	transform := func(s string) string {
		return strings.ToUpper(s)
	}

	normalizer := NewNormalizer(time.Minute, transform)
	assert.NotNil(t, normalizer)
	assert.NotNil(t, normalizer.cache)
	assert.NotNil(t, normalizer.transform)
}

func TestNormalizer_Normalize(t *testing.T) {
	t.Parallel()

	t.Run("caches transform results", func(t *testing.T) {
		t.Parallel()

		callCount := 0
		transform := func(s string) string {
			callCount++
			return Intern(strings.ToLower(strings.TrimSpace(s)))
		}

		normalizer := NewNormalizer(time.Minute, transform)

		result := normalizer.Normalize("  HELLO  ")
		assert.Equal(t, "hello", result)
		assert.Equal(t, 1, callCount)

		// Second call - should use cache, no new transform
		result = normalizer.Normalize("  HELLO  ")
		assert.Equal(t, "hello", result)
		assert.Equal(t, 1, callCount)
	})

	t.Run("different keys", func(t *testing.T) {
		t.Parallel()

		normalizer := NewNormalizer(time.Minute, func(s string) string {
			return Intern(strings.ToLower(s))
		})

		assert.Equal(t, "hello", normalizer.Normalize("HELLO"))
		assert.Equal(t, "world", normalizer.Normalize("WORLD"))
	})

	t.Run("generic types", func(t *testing.T) {
		t.Parallel()

		transform := func(n int) string {
			switch n {
			case 1:
				return Intern("one")
			case 2:
				return Intern("two")
			default:
				return Intern("other")
			}
		}

		normalizer := NewNormalizer(time.Minute, transform)

		assert.Equal(t, "one", normalizer.Normalize(1))
		assert.Equal(t, "two", normalizer.Normalize(2))
		assert.Equal(t, "other", normalizer.Normalize(99))
	})
}

func TestNormalizeForMatching(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"diacritics", "Shōgun S01", "shogun s01"},
		{"ligature", "Æon Flux", "aeon flux"},
		{"apostrophe", "Bob's Burgers", "bobs burgers"},
		{"unicode apostrophe", "Bob’s Burgers", "bobs burgers"},
		{"colon", "CSI: Miami", "csi miami"},
		{"ampersand", "His & Hers", "his and hers"},
		{"hyphen", "Spider-Man", "spider man"},
		{"space collapse", "The   Expanse", "the expanse"},
		{"already normalized", "the expanse", "the expanse"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, NormalizeForMatching(tt.input))
		})
	}
}

func TestNormalizeForMatchingCachedStability(t *testing.T) {
	t.Parallel()

	// Repeated calls go through the cache and must agree with the first.
	first := NormalizeForMatching("Amélie")
	second := NormalizeForMatching("Amélie")
	assert.Equal(t, "amelie", first)
	assert.Equal(t, first, second)
}

func BenchmarkNormalizeForMatching(b *testing.B) {
	inputs := []string{"Shōgun S01", "The.Expanse.S03E05", "CSI: Miami", "Spider-Man"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, input := range inputs {
			_ = NormalizeForMatching(input)
		}
	}
}

func BenchmarkNormalizerParallel(b *testing.B) {
	normalizer := NewNormalizer(time.Minute, func(s string) string {
		return InternNormalized(s)
	})
	inputs := []string{"HELLO", "  WORLD  ", "TeSt", "already lowercase"}

	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			_ = normalizer.Normalize(inputs[i%len(inputs)])
			i++
		}
	})
}
