// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/autobrr/debrr/internal/api"
	"github.com/autobrr/debrr/internal/buildinfo"
	"github.com/autobrr/debrr/internal/config"
	"github.com/autobrr/debrr/internal/debrid"
	"github.com/autobrr/debrr/internal/debrid/alldebrid"
	"github.com/autobrr/debrr/internal/logger"
	"github.com/autobrr/debrr/internal/metacache"
	"github.com/autobrr/debrr/internal/metadata"
	"github.com/autobrr/debrr/internal/metrics"
	"github.com/autobrr/debrr/internal/search"
	"github.com/autobrr/debrr/pkg/memcache"
)

func RunServeCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the stream search service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(configPath)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to config.toml")
	return cmd
}

func runServe(configPath string) error {
	appCfg, err := config.New(configPath)
	if err != nil {
		return err
	}
	cfg := appCfg.Config
	cfg.Version = buildinfo.Version

	logger.Setup(cfg)
	defer logger.Close()

	log.Info().
		Str("version", buildinfo.Version).
		Str("config", appCfg.ConfigPath()).
		Msg("starting debrr")

	metadataTTL := time.Duration(cfg.MetadataCacheTTL) * time.Minute
	if metadataTTL <= 0 {
		metadataTTL = time.Hour
	}

	store := memcache.New[metacache.ParsedMetadata](metadataTTL, 10000)
	defer store.Close()
	metaCache := metacache.New(store, metadataTTL)

	cinemeta := metadata.NewCinemetaClient(metadata.CinemetaConfig{
		BaseURL: cfg.CinemetaURL,
	})

	var enricher metadata.Enricher
	if cfg.TraktClientID != "" {
		enricher = metadata.NewTraktClient(metadata.TraktConfig{
			BaseURL:  cfg.TraktURL,
			ClientID: cfg.TraktClientID,
		})
	} else {
		log.Info().Msg("no trakt client id configured, anime remapping and alternative titles disabled")
	}

	registry := debrid.NewRegistry(
		alldebrid.NewClient(alldebrid.Config{
			BaseURL: cfg.AllDebridURL,
			Agent:   cfg.AllDebridAgent,
		}),
	)

	resultTTL := time.Duration(cfg.ResultCacheTTL) * time.Minute
	searchSvc := search.NewService(
		registry,
		search.NewMatcher(cinemeta, enricher, metaCache),
		search.NewOrchestrator(cfg.FetchConcurrency),
		metaCache,
		resultTTL,
	)
	defer searchSvc.Close()

	metricsManager := metrics.NewManager(map[string]metrics.CacheStatsSource{
		"metadata": metaCache,
	})

	server := api.NewServer(cfg, searchSvc, metricsManager)

	errCh := make(chan error, 2)
	go func() {
		errCh <- server.Start()
	}()

	var metricsServer *metrics.Server
	if cfg.MetricsEnabled {
		metricsServer = metrics.NewServer(metricsManager, cfg.MetricsHost, cfg.MetricsPort)
		go func() {
			errCh <- metricsServer.Start()
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("metrics server shutdown")
		}
	}
	return server.Shutdown(ctx)
}
