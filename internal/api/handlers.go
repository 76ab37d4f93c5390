// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/debrr/internal/metacache"
	"github.com/autobrr/debrr/internal/search"
)

// addonConfig is the per-user configuration carried in the URL path,
// encoded as a query string ("provider=alldebrid&apikey=...").
type addonConfig struct {
	Provider string
	APIKey   string
}

func parseAddonConfig(segment string) (addonConfig, error) {
	values, err := url.ParseQuery(segment)
	if err != nil {
		return addonConfig{}, err
	}

	cfg := addonConfig{
		Provider: values.Get("provider"),
		APIKey:   values.Get("apikey"),
	}
	if cfg.Provider == "" {
		cfg.Provider = "alldebrid"
	}
	return cfg, nil
}

type manifest struct {
	ID            string   `json:"id"`
	Version       string   `json:"version"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Resources     []string `json:"resources"`
	Types         []string `json:"types"`
	IDPrefixes    []string `json:"idPrefixes"`
	Catalogs      []any    `json:"catalogs"`
	BehaviorHints struct {
		Configurable bool `json:"configurable"`
	} `json:"behaviorHints"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleManifest(w http.ResponseWriter, _ *http.Request) {
	m := manifest{
		ID:          "com.autobrr.debrr",
		Version:     s.cfg.Version,
		Name:        "debrr",
		Description: "Streams from files already present in your debrid account",
		Resources:   []string{"stream"},
		Types:       []string{"movie", "series"},
		IDPrefixes:  []string{"tt"},
		Catalogs:    []any{},
	}
	m.BehaviorHints.Configurable = true
	if m.Version == "" {
		m.Version = "0.0.0"
	}

	writeJSON(w, http.StatusOK, m)
}

type streamResponse struct {
	Streams []stream `json:"streams"`
}

type stream struct {
	Name          string `json:"name"`
	Title         string `json:"title"`
	URL           string `json:"url"`
	BehaviorHints struct {
		BingeGroup string `json:"bingeGroup,omitempty"`
		Filename   string `json:"filename,omitempty"`
	} `json:"behaviorHints"`
}

// handleStream answers stream lookups. Failures deliberately produce an
// empty stream list: players treat non-200 responses as addon errors and
// retry aggressively.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	cfg, err := parseAddonConfig(chi.URLParam(r, "config"))
	if err != nil {
		log.Debug().Err(err).Msg("malformed addon config")
		writeJSON(w, http.StatusOK, streamResponse{Streams: []stream{}})
		return
	}

	contentType := chi.URLParam(r, "type")
	id, err := url.PathUnescape(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusOK, streamResponse{Streams: []stream{}})
		return
	}

	req := search.Request{
		APIKey:    cfg.APIKey,
		Provider:  cfg.Provider,
		ClientIP:  r.RemoteAddr,
		Threshold: s.cfg.MatchThreshold,
	}

	var records []search.StreamRecord
	var searchErr error

	start := time.Now()
	switch contentType {
	case string(metacache.ContentMovie):
		req.ImdbID = id
		records, searchErr = s.search.SearchMovie(r.Context(), req)
	case string(metacache.ContentSeries):
		imdbID, season, episode, ok := parseSeriesID(id)
		if !ok {
			writeJSON(w, http.StatusOK, streamResponse{Streams: []stream{}})
			return
		}
		req.ImdbID = imdbID
		req.Season = season
		req.Episode = episode
		records, searchErr = s.search.SearchEpisode(r.Context(), req)
	default:
		writeJSON(w, http.StatusOK, streamResponse{Streams: []stream{}})
		return
	}

	outcome := "ok"
	if searchErr != nil {
		outcome = "error"
		log.Warn().Err(searchErr).Str("type", contentType).Str("id", id).Msg("stream search failed")
		records = nil
	}
	if s.metrics != nil {
		s.metrics.SearchesTotal.WithLabelValues(contentType, outcome).Inc()
		s.metrics.StreamsTotal.WithLabelValues(contentType).Add(float64(len(records)))
		s.metrics.SearchDuration.WithLabelValues(contentType).Observe(time.Since(start).Seconds())
	}

	streams := make([]stream, 0, len(records))
	for _, rec := range records {
		st := stream{
			Name:  rec.Name,
			Title: rec.Title,
			URL:   rec.URL,
		}
		st.BehaviorHints.BingeGroup = rec.BingeGroup
		st.BehaviorHints.Filename = rec.Filename
		streams = append(streams, st)
	}

	writeJSON(w, http.StatusOK, streamResponse{Streams: streams})
}

// handlePlayback unrestricts a provider link and redirects the player.
func (s *Server) handlePlayback(w http.ResponseWriter, r *http.Request) {
	cfg, err := parseAddonConfig(chi.URLParam(r, "config"))
	if err != nil {
		http.Error(w, "bad config", http.StatusBadRequest)
		return
	}

	link := r.URL.Query().Get("url")
	if link == "" {
		http.Error(w, "missing url", http.StatusBadRequest)
		return
	}

	resolved, err := s.search.ResolvePlaybackURL(r.Context(), cfg.Provider, cfg.APIKey, link, r.RemoteAddr)
	if err != nil {
		log.Warn().Err(err).Msg("playback resolution failed")
		http.Error(w, "resolution failed", http.StatusBadGateway)
		return
	}

	http.Redirect(w, r, resolved, http.StatusFound)
}

// parseSeriesID splits "tt1234567:3:5" into its parts.
func parseSeriesID(id string) (imdbID string, season, episode int, ok bool) {
	parts := strings.Split(id, ":")
	if len(parts) != 3 {
		return "", 0, 0, false
	}

	season, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, 0, false
	}
	episode, err = strconv.Atoi(parts[2])
	if err != nil {
		return "", 0, 0, false
	}
	return parts[0], season, episode, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}
