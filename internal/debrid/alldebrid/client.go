// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package alldebrid implements the debrid.Provider contract against the
// AllDebrid v4 REST API. Deliberately wire-thin: identification, ranking
// and filtering of the returned listings live in the search pipeline.
package alldebrid

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/pkg/errors"

	"github.com/autobrr/debrr/internal/debrid"
	"github.com/autobrr/debrr/pkg/httphelpers"
	"github.com/autobrr/debrr/pkg/redact"
)

const providerName = "alldebrid"

var videoExtensions = map[string]struct{}{
	".mkv": {}, ".mp4": {}, ".avi": {}, ".m4v": {}, ".mov": {}, ".ts": {}, ".webm": {},
}

// Config holds the options for constructing a Client.
type Config struct {
	BaseURL    string
	Agent      string
	Timeout    int
	HTTPClient *http.Client
}

// Client is a minimal AllDebrid v4 API wrapper.
type Client struct {
	baseURL    string
	agent      string
	httpClient *http.Client
}

// NewClient constructs a new Client using the provided configuration.
func NewClient(cfg Config) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = "https://api.alldebrid.com"
	}

	agent := strings.TrimSpace(cfg.Agent)
	if agent == "" {
		agent = "debrr"
	}

	return &Client{
		baseURL:    base,
		agent:      agent,
		httpClient: client,
	}
}

func (c *Client) Name() string { return providerName }

type apiEnvelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  *apiError       `json:"error"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type magnet struct {
	ID         int64        `json:"id"`
	Filename   string       `json:"filename"`
	Size       int64        `json:"size"`
	Status     string       `json:"status"`
	UploadDate int64        `json:"uploadDate"`
	Links      []magnetLink `json:"links"`
}

type magnetLink struct {
	Link     string `json:"link"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

// ListAccountItems returns every magnet currently in the account.
func (c *Client) ListAccountItems(ctx context.Context, apiKey string) ([]debrid.RawListing, error) {
	magnets, err := c.magnetStatus(ctx, apiKey, "")
	if err != nil {
		return nil, err
	}

	listings := make([]debrid.RawListing, 0, len(magnets))
	for _, m := range magnets {
		listings = append(listings, debrid.RawListing{
			ID:        fmt.Sprintf("%d", m.ID),
			Name:      m.Filename,
			Size:      m.Size,
			CreatedAt: time.Unix(m.UploadDate, 0),
			Source:    providerName,
		})
	}
	return listings, nil
}

// GetDetails resolves the file list of a single magnet.
func (c *Client) GetDetails(ctx context.Context, apiKey, id string) (debrid.TorrentContainer, error) {
	magnets, err := c.magnetStatus(ctx, apiKey, id)
	if err != nil {
		return debrid.TorrentContainer{}, err
	}
	if len(magnets) == 0 {
		return debrid.TorrentContainer{}, errors.Errorf("alldebrid: magnet %s not found", id)
	}
	return toContainer(magnets[0]), nil
}

// BulkGetDetails fetches the whole account status once and projects the
// requested ids, giving the orchestrator its single-round-trip path.
func (c *Client) BulkGetDetails(ctx context.Context, apiKey string, ids []string) (map[string]debrid.TorrentContainer, error) {
	magnets, err := c.magnetStatus(ctx, apiKey, "")
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	containers := make(map[string]debrid.TorrentContainer, len(ids))
	for _, m := range magnets {
		id := fmt.Sprintf("%d", m.ID)
		if _, ok := wanted[id]; ok {
			containers[id] = toContainer(m)
		}
	}
	return containers, nil
}

// UnrestrictURL exchanges a hoster link for a direct download URL.
func (c *Client) UnrestrictURL(ctx context.Context, apiKey, encodedURL, clientIP string) (string, error) {
	params := url.Values{}
	params.Set("link", encodedURL)
	if clientIP != "" {
		params.Set("ip", clientIP)
	}

	var data struct {
		Link string `json:"link"`
	}
	if err := c.call(ctx, apiKey, "/v4/link/unlock", params, &data); err != nil {
		return "", err
	}
	if data.Link == "" {
		return "", errors.New("alldebrid: unlock returned no link")
	}
	return data.Link, nil
}

func (c *Client) magnetStatus(ctx context.Context, apiKey, id string) ([]magnet, error) {
	params := url.Values{}
	if id != "" {
		params.Set("id", id)
	}

	var data struct {
		Magnets json.RawMessage `json:"magnets"`
	}
	if err := c.call(ctx, apiKey, "/v4/magnet/status", params, &data); err != nil {
		return nil, err
	}

	// The endpoint returns an object for a single id and an array otherwise.
	var magnets []magnet
	if len(data.Magnets) > 0 && data.Magnets[0] == '{' {
		var single magnet
		if err := json.Unmarshal(data.Magnets, &single); err != nil {
			return nil, errors.Wrap(err, "alldebrid: decode magnet")
		}
		magnets = []magnet{single}
	} else if len(data.Magnets) > 0 {
		if err := json.Unmarshal(data.Magnets, &magnets); err != nil {
			return nil, errors.Wrap(err, "alldebrid: decode magnets")
		}
	}
	return magnets, nil
}

func (c *Client) call(ctx context.Context, apiKey, endpoint string, params url.Values, out any) error {
	params.Set("agent", c.agent)
	params.Set("apikey", apiKey)

	reqURL := c.baseURL + endpoint + "?" + params.Encode()

	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}

			resp, err := c.httpClient.Do(req)
			if err != nil {
				// The request URL carries the credential as a query param.
				return errors.Wrap(redact.URLError(err), "alldebrid: request failed")
			}
			defer httphelpers.DrainAndClose(resp)

			body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
			if err != nil {
				return errors.Wrap(err, "alldebrid: read response")
			}

			var envelope apiEnvelope
			if err := json.Unmarshal(body, &envelope); err != nil {
				return errors.Wrapf(err, "alldebrid: decode %s response", path.Base(endpoint))
			}

			if envelope.Status != "success" {
				if envelope.Error != nil && strings.HasPrefix(envelope.Error.Code, "AUTH_") {
					return retry.Unrecoverable(fmt.Errorf("%w: %s", debrid.ErrAuth, envelope.Error.Code))
				}
				if envelope.Error != nil {
					return errors.Errorf("alldebrid: %s: %s", envelope.Error.Code, envelope.Error.Message)
				}
				return errors.New("alldebrid: request was not successful")
			}

			return json.Unmarshal(envelope.Data, out)
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
}

func toContainer(m magnet) debrid.TorrentContainer {
	container := debrid.TorrentContainer{
		ID:     fmt.Sprintf("%d", m.ID),
		Name:   m.Filename,
		Source: providerName,
		Type:   debrid.TypeTorrent,
	}

	for _, link := range m.Links {
		if !isVideo(link.Filename) {
			continue
		}
		container.Videos = append(container.Videos, debrid.Video{
			Name: link.Filename,
			URL:  link.Link,
			Size: link.Size,
		})
	}

	// A magnet with exactly one link and no recognizable video extension
	// behaves like a direct download.
	if len(container.Videos) == 0 && len(m.Links) == 1 {
		container.Type = debrid.TypeDownload
		container.Videos = []debrid.Video{{
			Name: m.Links[0].Filename,
			URL:  m.Links[0].Link,
			Size: m.Links[0].Size,
		}}
	}

	return container
}

func isVideo(name string) bool {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return false
	}
	_, ok := videoExtensions[strings.ToLower(name[idx:])]
	return ok
}
