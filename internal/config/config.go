// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package config loads application configuration from a TOML file with
// DEBRR__ environment variable overrides. A default config file is
// written on first run.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/autobrr/debrr/internal/domain"
)

// AppConfig wraps the loaded configuration and its origin path.
type AppConfig struct {
	Config *domain.Config

	viper      *viper.Viper
	configPath string
}

// envBindings maps config keys to their DEBRR__ environment overrides.
var envBindings = map[string]string{
	"host":             "DEBRR__HOST",
	"port":             "DEBRR__PORT",
	"baseUrl":          "DEBRR__BASE_URL",
	"logLevel":         "DEBRR__LOG_LEVEL",
	"logPath":          "DEBRR__LOG_PATH",
	"logMaxSize":       "DEBRR__LOG_MAX_SIZE",
	"logMaxBackups":    "DEBRR__LOG_MAX_BACKUPS",
	"metricsEnabled":   "DEBRR__METRICS_ENABLED",
	"metricsHost":      "DEBRR__METRICS_HOST",
	"metricsPort":      "DEBRR__METRICS_PORT",
	"cinemetaUrl":      "DEBRR__CINEMETA_URL",
	"traktUrl":         "DEBRR__TRAKT_URL",
	"traktClientId":    "DEBRR__TRAKT_CLIENT_ID",
	"allDebridUrl":     "DEBRR__ALLDEBRID_URL",
	"allDebridAgent":   "DEBRR__ALLDEBRID_AGENT",
	"matchThreshold":   "DEBRR__MATCH_THRESHOLD",
	"fetchConcurrency": "DEBRR__FETCH_CONCURRENCY",
	"metadataCacheTtl": "DEBRR__METADATA_CACHE_TTL",
	"resultCacheTtl":   "DEBRR__RESULT_CACHE_TTL",
}

// New loads configuration from configPath. When configPath is empty the
// default config directory is used and a config file is created if none
// exists.
func New(configPath string) (*AppConfig, error) {
	c := &AppConfig{viper: viper.New()}

	c.setDefaults()

	if configPath == "" {
		configPath = filepath.Join(getDefaultConfigDir(), "config.toml")
	}
	c.configPath = configPath

	if err := c.ensureConfigFile(); err != nil {
		return nil, err
	}

	c.viper.SetConfigFile(c.configPath)
	c.viper.SetConfigType("toml")

	for key, env := range envBindings {
		if err := c.viper.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind env for %s: %w", key, err)
		}
	}

	if err := c.viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", c.configPath, err)
	}

	cfg := &domain.Config{}
	if err := c.viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c.Config = cfg
	return c, nil
}

// ConfigPath returns the path the configuration was loaded from.
func (c *AppConfig) ConfigPath() string {
	return c.configPath
}

func (c *AppConfig) setDefaults() {
	c.viper.SetDefault("host", "0.0.0.0")
	c.viper.SetDefault("port", 7050)
	c.viper.SetDefault("baseUrl", "/")
	c.viper.SetDefault("logLevel", "info")
	c.viper.SetDefault("logMaxSize", 50)
	c.viper.SetDefault("logMaxBackups", 3)
	c.viper.SetDefault("metricsEnabled", false)
	c.viper.SetDefault("metricsHost", "127.0.0.1")
	c.viper.SetDefault("metricsPort", 9074)
	c.viper.SetDefault("allDebridAgent", "debrr")
	c.viper.SetDefault("matchThreshold", 0.0)
	c.viper.SetDefault("fetchConcurrency", 6)
	c.viper.SetDefault("metadataCacheTtl", 60)
	c.viper.SetDefault("resultCacheTtl", 5)
}

func (c *AppConfig) ensureConfigFile() error {
	if _, err := os.Stat(c.configPath); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(c.configPath), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(c.configPath, []byte(defaultConfigTemplate), 0o644); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}

	log.Info().Str("path", c.configPath).Msg("created default config file")
	return nil
}

// getDefaultConfigDir resolves the config directory. A bare XDG_CONFIG_HOME
// (container setups) is used directly when it already ends in a dedicated
// directory.
func getDefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		if filepath.Base(xdg) == "config" {
			return xdg
		}
		return filepath.Join(xdg, "debrr")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "debrr")
}

const defaultConfigTemplate = `# config.toml

# Hostname / IP
#
host = "0.0.0.0"

# Port
#
port = 7050

# Base url
# Set custom baseUrl eg /debrr/ to serve in subdirectory.
#
#baseUrl = "/debrr/"

# Log level
#
# Options: "ERROR", "DEBUG", "INFO", "WARN", "TRACE"
#
logLevel = "info"

# Log path
# Log to file with rotation when set.
#
#logPath = "log/debrr.log"

# Cinemeta endpoint
#
#cinemetaUrl = "https://v3-cinemeta.strem.io"

# Trakt client id
# Enables alternative titles and anime episode remapping.
#
#traktClientId = ""

# AllDebrid agent identifier
#
allDebridAgent = "debrr"

# Title match threshold
# 0 uses the defaults (0.4 movies, 0.3 series).
#
#matchThreshold = 0.0

# Parallel detail fetches per search
#
fetchConcurrency = 6

# Cache lifetimes in minutes
#
metadataCacheTtl = 60
resultCacheTtl = 5

# Prometheus metrics
#
#metricsEnabled = true
#metricsHost = "127.0.0.1"
#metricsPort = 9074
`
