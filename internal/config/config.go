package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel string

	APIBaseURL       string
	APITimeout       time.Duration
	GenerationPerMin int

	ManifestPath string
	CachePath    string

	ViewerURL            string
	ViewerHeadless       bool
	RendererReadyRetries int
	RendererReadyDelay   time.Duration
	HighlightSettle      time.Duration
	HighlightFollowup    time.Duration

	PollInterval time.Duration

	MetricsPort string
}

// fileConfig mirrors Config for the YAML file, with durations as strings
// ("30s", "1m") so the file reads the way the env vars do.
type fileConfig struct {
	LogLevel             string `yaml:"log_level"`
	APIBaseURL           string `yaml:"api_base_url"`
	APITimeout           string `yaml:"api_timeout"`
	GenerationPerMin     int    `yaml:"generation_per_min"`
	ManifestPath         string `yaml:"manifest_path"`
	CachePath            string `yaml:"cache_path"`
	ViewerURL            string `yaml:"viewer_url"`
	ViewerHeadless       *bool  `yaml:"viewer_headless"`
	RendererReadyRetries int    `yaml:"renderer_ready_retries"`
	RendererReadyDelay   string `yaml:"renderer_ready_delay"`
	HighlightSettle      string `yaml:"highlight_settle"`
	HighlightFollowup    string `yaml:"highlight_followup"`
	PollInterval         string `yaml:"poll_interval"`
	MetricsPort          string `yaml:"metrics_port"`
}

// Load builds the configuration from an optional YAML file (SESSION_CONFIG)
// overridden by environment variables. Missing values fall back to defaults.
func Load() (Config, error) {
	cfg := defaults()

	if path := os.Getenv("SESSION_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		var file fileConfig
		if err := yaml.Unmarshal(data, &file); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
		if err := file.apply(&cfg); err != nil {
			return Config{}, err
		}
	}

	cfg.LogLevel = envString("LOG_LEVEL", cfg.LogLevel)
	cfg.APIBaseURL = envString("API_BASE_URL", cfg.APIBaseURL)
	cfg.APITimeout = envDuration("API_TIMEOUT", cfg.APITimeout)
	cfg.GenerationPerMin = envInt("GENERATION_PER_MIN", cfg.GenerationPerMin)
	cfg.ManifestPath = envString("MANIFEST_PATH", cfg.ManifestPath)
	cfg.CachePath = envString("CACHE_PATH", cfg.CachePath)
	cfg.ViewerURL = envString("VIEWER_URL", cfg.ViewerURL)
	cfg.ViewerHeadless = envBool("VIEWER_HEADLESS", cfg.ViewerHeadless)
	cfg.RendererReadyRetries = envInt("RENDERER_READY_RETRIES", cfg.RendererReadyRetries)
	cfg.RendererReadyDelay = envDuration("RENDERER_READY_DELAY", cfg.RendererReadyDelay)
	cfg.HighlightSettle = envDuration("HIGHLIGHT_SETTLE", cfg.HighlightSettle)
	cfg.HighlightFollowup = envDuration("HIGHLIGHT_FOLLOWUP", cfg.HighlightFollowup)
	cfg.PollInterval = envDuration("POLL_INTERVAL", cfg.PollInterval)
	cfg.MetricsPort = envString("METRICS_PORT", cfg.MetricsPort)

	return cfg, nil
}

func (f fileConfig) apply(cfg *Config) error {
	setString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setString(&cfg.LogLevel, f.LogLevel)
	setString(&cfg.APIBaseURL, f.APIBaseURL)
	setString(&cfg.ManifestPath, f.ManifestPath)
	setString(&cfg.CachePath, f.CachePath)
	setString(&cfg.ViewerURL, f.ViewerURL)
	setString(&cfg.MetricsPort, f.MetricsPort)
	if f.GenerationPerMin > 0 {
		cfg.GenerationPerMin = f.GenerationPerMin
	}
	if f.RendererReadyRetries > 0 {
		cfg.RendererReadyRetries = f.RendererReadyRetries
	}
	if f.ViewerHeadless != nil {
		cfg.ViewerHeadless = *f.ViewerHeadless
	}

	durations := []struct {
		raw string
		dst *time.Duration
		key string
	}{
		{f.APITimeout, &cfg.APITimeout, "api_timeout"},
		{f.RendererReadyDelay, &cfg.RendererReadyDelay, "renderer_ready_delay"},
		{f.HighlightSettle, &cfg.HighlightSettle, "highlight_settle"},
		{f.HighlightFollowup, &cfg.HighlightFollowup, "highlight_followup"},
		{f.PollInterval, &cfg.PollInterval, "poll_interval"},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("parse %s: %w", d.key, err)
		}
		*d.dst = parsed
	}
	return nil
}

func defaults() Config {
	return Config{
		LogLevel:             "info",
		APIBaseURL:           "http://localhost:5000",
		APITimeout:           120 * time.Second,
		GenerationPerMin:     20,
		ManifestPath:         "./data/manifest",
		CachePath:            "./data/cache",
		ViewerURL:            "http://localhost:5000/viewer",
		ViewerHeadless:       true,
		RendererReadyRetries: 10,
		RendererReadyDelay:   500 * time.Millisecond,
		HighlightSettle:      time.Second,
		HighlightFollowup:    750 * time.Millisecond,
		PollInterval:         5 * time.Second,
		MetricsPort:          "9090",
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
