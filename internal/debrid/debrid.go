// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package debrid defines the data model and provider contracts for
// debrid account access. Provider implementations are thin REST
// wrappers; everything interesting happens in the search pipeline.
package debrid

import (
	"context"
	"errors"
	"time"
)

// ErrAuth marks a provider-wide authentication failure. Unlike per-item
// fetch errors it aborts the whole search.
var ErrAuth = errors.New("debrid: provider rejected credentials")

// ContainerType distinguishes torrents from direct downloads. A DOWNLOAD
// container behaves as a single implicit video.
type ContainerType string

const (
	TypeTorrent  ContainerType = "TORRENT"
	TypeDownload ContainerType = "DOWNLOAD"
)

// RawListing is one entry of a provider's account listing. Direct
// downloads have no ID and carry their link inline; torrents resolve
// their files through a details fetch.
type RawListing struct {
	ID        string
	Name      string
	Size      int64
	URL       string
	CreatedAt time.Time
	Source    string
}

// Video is a single playable file inside a container. Season/Episode come
// from name parsing; IsAbsoluteMatch and TraktMapped record how the video
// was matched to the request and drive the filter's tie-break priority.
type Video struct {
	Name            string
	URL             string
	Size            int64
	Season          int
	Episode         int
	AbsoluteEpisode int
	Resolution      string
	IsAbsoluteMatch bool
	TraktMapped     bool
}

// TorrentContainer is a torrent or download entry with its resolved files.
type TorrentContainer struct {
	ID     string
	Name   string
	Source string
	Type   ContainerType
	Videos []Video
}

// Provider is the minimal per-provider client surface consumed by the
// search pipeline.
type Provider interface {
	Name() string
	ListAccountItems(ctx context.Context, apiKey string) ([]RawListing, error)
	GetDetails(ctx context.Context, apiKey, id string) (TorrentContainer, error)
	UnrestrictURL(ctx context.Context, apiKey, encodedURL, clientIP string) (string, error)
}

// BulkProvider is implemented by providers with a batch details endpoint,
// letting the fetch orchestrator resolve all candidates in one round trip.
type BulkProvider interface {
	Provider
	BulkGetDetails(ctx context.Context, apiKey string, ids []string) (map[string]TorrentContainer, error)
}

// Registry resolves providers by name.
type Registry struct {
	providers map[string]Provider
}

func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		r.providers[p.Name()] = p
	}
	return r
}

// Get returns the provider registered under name.
func (r *Registry) Get(name string) (Provider, bool) {
	p, ok := r.providers[name]
	return p, ok
}
