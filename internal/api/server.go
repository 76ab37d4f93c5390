// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package api is the thin HTTP boundary: it adapts Stremio-shaped
// requests onto the search service and never contains matching logic.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/debrr/internal/domain"
	"github.com/autobrr/debrr/internal/metrics"
	"github.com/autobrr/debrr/internal/search"
	"github.com/autobrr/debrr/pkg/httphelpers"
)

type Server struct {
	cfg     *domain.Config
	search  *search.Service
	metrics *metrics.Manager

	httpServer *http.Server
}

func NewServer(cfg *domain.Config, searchSvc *search.Service, metricsManager *metrics.Manager) *Server {
	return &Server{
		cfg:     cfg,
		search:  searchSvc,
		metrics: metricsManager,
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Get("/manifest.json", s.handleManifest)

	r.Route("/{config}", func(r chi.Router) {
		r.Get("/manifest.json", s.handleManifest)
		r.Get("/stream/{type}/{id}.json", s.handleStream)
		r.Get("/playback", s.handlePlayback)
	})

	base := httphelpers.NormalizeBasePath(s.cfg.BaseURL)
	if base == "" || base == "/" {
		return r
	}

	outer := chi.NewRouter()
	outer.Mount(base, r)
	return outer
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info().Str("addr", addr).Msg("starting http server")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// requestLogger logs each request with zerolog at debug level.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		// The route pattern keeps the credential-bearing config segment
		// out of the logs.
		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}

		log.Debug().
			Str("method", r.Method).
			Str("path", path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("http request")
	})
}
