// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package domain

import (
	"errors"
	"fmt"
)

// Config represents the application configuration
type Config struct {
	Version       string
	Host          string `toml:"host" mapstructure:"host"`
	Port          int    `toml:"port" mapstructure:"port"`
	BaseURL       string `toml:"baseUrl" mapstructure:"baseUrl"`
	LogLevel      string `toml:"logLevel" mapstructure:"logLevel"`
	LogPath       string `toml:"logPath" mapstructure:"logPath"`
	LogMaxSize    int    `toml:"logMaxSize" mapstructure:"logMaxSize"`
	LogMaxBackups int    `toml:"logMaxBackups" mapstructure:"logMaxBackups"`

	MetricsEnabled bool   `toml:"metricsEnabled" mapstructure:"metricsEnabled"`
	MetricsHost    string `toml:"metricsHost" mapstructure:"metricsHost"`
	MetricsPort    int    `toml:"metricsPort" mapstructure:"metricsPort"`

	// Upstream endpoints. Empty values fall back to the public instances.
	CinemetaURL   string `toml:"cinemetaUrl" mapstructure:"cinemetaUrl"`
	TraktURL      string `toml:"traktUrl" mapstructure:"traktUrl"`
	TraktClientID string `toml:"traktClientId" mapstructure:"traktClientId"`
	AllDebridURL  string `toml:"allDebridUrl" mapstructure:"allDebridUrl"`

	// AllDebridAgent is the application identifier AllDebrid requires on
	// every request.
	AllDebridAgent string `toml:"allDebridAgent" mapstructure:"allDebridAgent"`

	// MatchThreshold overrides the per-content-type title similarity
	// minimums when > 0.
	MatchThreshold float64 `toml:"matchThreshold" mapstructure:"matchThreshold"`

	// FetchConcurrency bounds parallel detail fetches per search.
	FetchConcurrency int `toml:"fetchConcurrency" mapstructure:"fetchConcurrency"`

	// Cache lifetimes in minutes. Fuzzy parse entries live twice the
	// metadata TTL.
	MetadataCacheTTL int `toml:"metadataCacheTtl" mapstructure:"metadataCacheTtl"`
	ResultCacheTTL   int `toml:"resultCacheTtl" mapstructure:"resultCacheTtl"`
}

// Validate checks the fields that would otherwise fail at first use.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.MetricsEnabled && (c.MetricsPort < 1 || c.MetricsPort > 65535) {
		return fmt.Errorf("invalid metrics port %d", c.MetricsPort)
	}
	if c.MatchThreshold < 0 || c.MatchThreshold > 1 {
		return errors.New("matchThreshold must be within [0,1]")
	}
	if c.FetchConcurrency < 0 {
		return errors.New("fetchConcurrency must not be negative")
	}
	return nil
}
