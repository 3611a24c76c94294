// Package config holds the alert-digest configuration: defaults, YAML file
// loading, environment overrides and validation.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RobinCoderZhao/alert-digest/internal/alertdigest/store"
	appconfig "github.com/RobinCoderZhao/alert-digest/pkg/config"
	"github.com/RobinCoderZhao/alert-digest/pkg/i18n"
	"github.com/RobinCoderZhao/alert-digest/pkg/notify"
	"github.com/RobinCoderZhao/alert-digest/pkg/scraper"
)

// DefaultPath is the config file read when no --config flag is given.
const DefaultPath = "alertdigest.yaml"

// Config is the main configuration for alert-digest.
type Config struct {
	Feeds      []string `yaml:"feeds" env:"FEEDS"`
	Sentences  int      `yaml:"sentences" env:"SENTENCES"`
	MaxPerFeed int      `yaml:"max_per_feed" env:"MAX_PER_FEED"`
	Timeout    int      `yaml:"timeout" env:"TIMEOUT"` // seconds, per request
	OutputDir  string   `yaml:"output_dir" env:"OUTPUT_DIR"`
	Language   string   `yaml:"language" env:"LANGUAGE"`
	Workers    int      `yaml:"workers" env:"WORKERS"`

	State   StateConfig   `yaml:"state"`
	Fetch   FetchConfig   `yaml:"fetch"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
	Watch   WatchConfig   `yaml:"watch"`
	Notify  notify.Config `yaml:"notify"`
}

// StateConfig selects where the seen set and history live.
type StateConfig struct {
	Backend string `yaml:"backend" env:"STATE_BACKEND"` // "json" or "sqlite"
}

// FetchConfig tunes article downloads.
type FetchConfig struct {
	RequestsPerSecond    float64 `yaml:"requests_per_second" env:"FETCH_RPS"`
	BlockPrivateNetworks bool    `yaml:"block_private_networks" env:"FETCH_BLOCK_PRIVATE"`
	MaxBodySize          int64   `yaml:"max_body_size" env:"FETCH_MAX_BODY"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"` // "text" or "json"
}

// MetricsConfig enables the Prometheus textfile export.
type MetricsConfig struct {
	File string `yaml:"file" env:"METRICS_FILE"`
}

// WatchConfig drives the watch command.
type WatchConfig struct {
	Schedule   string `yaml:"schedule" env:"WATCH_SCHEDULE"` // cron expression
	RunOnStart bool   `yaml:"run_on_start" env:"WATCH_RUN_ON_START"`
}

// Default returns a Config with the documented defaults.
func Default() Config {
	return Config{
		Sentences:  4,
		MaxPerFeed: 20,
		Timeout:    20,
		OutputDir:  "output",
		Language:   string(i18n.LangFR),
		Workers:    1,
		State:      StateConfig{Backend: store.KindJSON},
		Fetch:      FetchConfig{MaxBodySize: 5 << 20},
		Log:        LogConfig{Level: "info", Format: "text"},
		Watch:      WatchConfig{Schedule: "0 7 * * *"},
	}
}

// Load reads path (a missing file is fine) over the defaults, then applies
// environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if err := appconfig.LoadOrDefault(path, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks every value except the feed list, which the pipeline
// reports on its own.
func (c *Config) Validate() error {
	var errs []error
	if c.Sentences < 1 {
		errs = append(errs, fmt.Errorf("sentences must be at least 1, got %d", c.Sentences))
	}
	if c.MaxPerFeed < 1 {
		errs = append(errs, fmt.Errorf("max_per_feed must be at least 1, got %d", c.MaxPerFeed))
	}
	if c.Timeout < 1 {
		errs = append(errs, fmt.Errorf("timeout must be at least 1 second, got %d", c.Timeout))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		errs = append(errs, errors.New("output_dir must not be empty"))
	}
	lang, err := i18n.ParseLanguage(c.Language)
	if err != nil {
		errs = append(errs, err)
	} else {
		c.Language = string(lang)
	}
	switch c.State.Backend {
	case "", store.KindJSON, store.KindSQLite:
	default:
		errs = append(errs, fmt.Errorf("unknown state backend %q", c.State.Backend))
	}
	if c.Fetch.RequestsPerSecond < 0 {
		errs = append(errs, errors.New("fetch.requests_per_second must not be negative"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Lang returns the configured language. Call Validate first.
func (c *Config) Lang() i18n.Language {
	lang, err := i18n.ParseLanguage(c.Language)
	if err != nil {
		return i18n.LangFR
	}
	return lang
}

// RequestTimeout returns Timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// FetchOptions builds the article fetcher options.
func (c *Config) FetchOptions() *scraper.FetchOptions {
	opts := scraper.DefaultFetchOptions()
	opts.Timeout = c.RequestTimeout()
	opts.AcceptLanguage = i18n.AcceptLanguage(c.Lang())
	opts.RequestsPerSecond = c.Fetch.RequestsPerSecond
	opts.BlockPrivateNetworks = c.Fetch.BlockPrivateNetworks
	if c.Fetch.MaxBodySize > 0 {
		opts.MaxBodySize = c.Fetch.MaxBodySize
	}
	return opts
}
