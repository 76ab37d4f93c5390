// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/pkg/errors"

	"github.com/autobrr/debrr/pkg/httphelpers"
)

// CinemetaConfig holds the options for constructing a CinemetaClient.
type CinemetaConfig struct {
	BaseURL    string
	Timeout    int
	HTTPClient *http.Client
}

// CinemetaClient fetches canonical metadata from a Cinemeta-compatible
// addon endpoint.
type CinemetaClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewCinemetaClient constructs a new CinemetaClient.
func NewCinemetaClient(cfg CinemetaConfig) *CinemetaClient {
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
		base = "https://v3-cinemeta.strem.io"
	}

	return &CinemetaClient{
		baseURL:    base,
		httpClient: client,
	}
}

type cinemetaResponse struct {
	Meta struct {
		Name   string       `json:"name"`
		Year   string       `json:"year"`
		Videos []EpisodeRef `json:"videos"`
	} `json:"meta"`
}

// GetMeta returns name, year and (for series) the canonical episode list.
func (c *CinemetaClient) GetMeta(ctx context.Context, contentType, imdbID string) (Meta, error) {
	reqURL := fmt.Sprintf("%s/meta/%s/%s.json", c.baseURL, contentType, imdbID)

	var decoded cinemetaResponse
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return errors.Wrap(err, "cinemeta: request failed")
			}
			defer httphelpers.DrainAndClose(resp)

			if resp.StatusCode == http.StatusNotFound {
				return retry.Unrecoverable(errors.Errorf("cinemeta: no meta for %s/%s", contentType, imdbID))
			}
			if resp.StatusCode != http.StatusOK {
				return errors.Errorf("cinemeta: unexpected status %d", resp.StatusCode)
			}

			body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
			if err != nil {
				return errors.Wrap(err, "cinemeta: read response")
			}
			return json.Unmarshal(body, &decoded)
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(300*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return Meta{}, err
	}

	if decoded.Meta.Name == "" {
		return Meta{}, errors.Errorf("cinemeta: empty meta for %s/%s", contentType, imdbID)
	}

	return Meta{
		Name:     decoded.Meta.Name,
		Year:     parseYear(decoded.Meta.Year),
		Episodes: decoded.Meta.Videos,
	}, nil
}

// parseYear handles both "2013" and series ranges like "2013-2019".
func parseYear(value string) int {
	value = strings.TrimSpace(value)
	for i, r := range value {
		if r < '0' || r > '9' {
			value = value[:i]
			break
		}
	}
	year, _ := strconv.Atoi(value)
	return year
}
