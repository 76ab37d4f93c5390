// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package search

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/autobrr/debrr/internal/debrid"
)

// DefaultConcurrency bounds parallel detail fetches against a provider.
const DefaultConcurrency = 6

// Orchestrator resolves container details for matched listings. Providers
// with a bulk endpoint get one round trip; everything else is fanned out
// with bounded concurrency.
type Orchestrator struct {
	concurrency int
}

func NewOrchestrator(concurrency int) *Orchestrator {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Orchestrator{concurrency: concurrency}
}

// ResolveDetails fetches the container for every id. A single failed
// fetch is logged and dropped so one stale torrent cannot empty the whole
// result set; an authentication failure aborts everything.
func (o *Orchestrator) ResolveDetails(ctx context.Context, provider debrid.Provider, apiKey string, ids []string) (map[string]debrid.TorrentContainer, error) {
	if len(ids) == 0 {
		return map[string]debrid.TorrentContainer{}, nil
	}

	if bulk, ok := provider.(debrid.BulkProvider); ok {
		containers, err := bulk.BulkGetDetails(ctx, apiKey, ids)
		if err != nil {
			if errors.Is(err, debrid.ErrAuth) {
				return nil, err
			}
			log.Warn().Err(err).Str("provider", provider.Name()).Msg("bulk details fetch failed, falling back to per-item fetches")
		} else {
			return containers, nil
		}
	}

	var mu sync.Mutex
	containers := make(map[string]debrid.TorrentContainer, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)

	for _, id := range ids {
		g.Go(func() error {
			container, err := provider.GetDetails(gctx, apiKey, id)
			if err != nil {
				if errors.Is(err, debrid.ErrAuth) {
					return err
				}
				log.Warn().Err(err).
					Str("provider", provider.Name()).
					Str("id", id).
					Msg("details fetch failed, dropping candidate")
				return nil
			}

			mu.Lock()
			containers[id] = container
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return containers, nil
}
