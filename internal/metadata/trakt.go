// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/debrr/pkg/httphelpers"
)

// TraktConfig holds the options for constructing a TraktClient.
type TraktConfig struct {
	BaseURL    string
	ClientID   string
	Timeout    int
	HTTPClient *http.Client
}

// TraktClient provides alternative titles and season/episode numbering
// from the Trakt API. It is an enrichment source: callers treat every
// failure as a capability degradation, not a search failure.
type TraktClient struct {
	baseURL    string
	clientID   string
	httpClient *http.Client
}

// NewTraktClient constructs a new TraktClient.
func NewTraktClient(cfg TraktConfig) *TraktClient {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = "https://api.trakt.tv"
	}

	return &TraktClient{
		baseURL:    base,
		clientID:   cfg.ClientID,
		httpClient: client,
	}
}

type traktAlias struct {
	Title string `json:"title"`
}

type traktSeason struct {
	Number   int            `json:"number"`
	Episodes []traktEpisode `json:"episodes"`
}

type traktEpisode struct {
	Number    int `json:"number"`
	NumberAbs int `json:"number_abs"`
}

// GetAlternativeTitles returns the distinct alias titles known for the show.
func (c *TraktClient) GetAlternativeTitles(ctx context.Context, imdbID string) ([]string, error) {
	var aliases []traktAlias
	if err := c.get(ctx, fmt.Sprintf("/shows/%s/aliases", imdbID), &aliases); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(aliases))
	var titles []string
	for _, alias := range aliases {
		title := strings.TrimSpace(alias.Title)
		key := strings.ToLower(title)
		if title == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		titles = append(titles, title)
	}
	return titles, nil
}

// GetAbsoluteEpisodeMapping resolves the on-disk numbering for the
// requested (season, episode). When the canonical request overflows the
// season's episode count, the overflow is carried into later seasons —
// the usual divergence between Cinemeta and Trakt numbering for anime.
// ok is false when numbering agrees and no remapping is needed.
func (c *TraktClient) GetAbsoluteEpisodeMapping(ctx context.Context, imdbID string, season, episode int) (AbsoluteMapping, bool, error) {
	var seasons []traktSeason
	if err := c.get(ctx, fmt.Sprintf("/shows/%s/seasons?extended=episodes", imdbID), &seasons); err != nil {
		return AbsoluteMapping{}, false, err
	}

	mapping, ok := resolveMapping(seasons, season, episode)
	if ok {
		log.Debug().
			Str("imdbID", imdbID).
			Int("season", season).
			Int("episode", episode).
			Int("mappedSeason", mapping.MappedSeason).
			Int("mappedEpisode", mapping.MappedEpisode).
			Int("absoluteEpisode", mapping.AbsoluteEpisode).
			Msg("resolved absolute episode mapping")
	}
	return mapping, ok, nil
}

// resolveMapping walks the season table. Specials (season 0) are ignored
// for both mapping and absolute counting.
func resolveMapping(seasons []traktSeason, season, episode int) (AbsoluteMapping, bool) {
	mapping := AbsoluteMapping{
		OriginalSeason:  season,
		OriginalEpisode: episode,
		MappedSeason:    season,
		MappedEpisode:   episode,
	}

	var regular []traktSeason
	for _, s := range seasons {
		if s.Number > 0 {
			regular = append(regular, s)
		}
	}
	if len(regular) == 0 {
		return mapping, false
	}

	// Absolute position of the requested episode, counting from the
	// requested season onward.
	absoluteBefore := 0
	startIdx := -1
	for i, s := range regular {
		if s.Number == season {
			startIdx = i
			break
		}
		absoluteBefore += len(s.Episodes)
	}
	if startIdx < 0 {
		return mapping, false
	}

	remaining := episode
	for i := startIdx; i < len(regular); i++ {
		count := len(regular[i].Episodes)
		if remaining <= count {
			mapping.MappedSeason = regular[i].Number
			mapping.MappedEpisode = remaining

			ep := regular[i].Episodes[remaining-1]
			walked := mapping.MappedSeason != season || mapping.MappedEpisode != episode

			// Only carry an absolute number when the show actually uses
			// absolute numbering, or when the request had to be walked
			// across seasons; a plain S02E05 must not pick up a cumulative
			// count that downstream filters would match against.
			if ep.NumberAbs > 0 {
				mapping.AbsoluteEpisode = ep.NumberAbs
			} else if walked {
				mapping.AbsoluteEpisode = absoluteBefore + remaining
			}

			diverges := walked || (ep.NumberAbs > 0 && ep.NumberAbs != episode)
			return mapping, diverges
		}
		remaining -= count
		absoluteBefore += count
	}

	// Ran past the last known season; numbering source is stale.
	return mapping, false
}

func (c *TraktClient) get(ctx context.Context, endpoint string, out any) error {
	reqURL := c.baseURL + endpoint

	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("trakt-api-version", "2")
			if c.clientID != "" {
				req.Header.Set("trakt-api-key", c.clientID)
			}

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return errors.Wrap(err, "trakt: request failed")
			}
			defer httphelpers.DrainAndClose(resp)

			if resp.StatusCode == http.StatusNotFound {
				return retry.Unrecoverable(errors.Errorf("trakt: not found: %s", endpoint))
			}
			if resp.StatusCode != http.StatusOK {
				return errors.Errorf("trakt: unexpected status %d", resp.StatusCode)
			}

			body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
			if err != nil {
				return errors.Wrap(err, "trakt: read response")
			}
			return json.Unmarshal(body, out)
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(300*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
}
