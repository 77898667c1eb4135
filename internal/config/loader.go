package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and will be replaced by flag defaults in main.
type Config struct {
	Addr         string `json:"addr" yaml:"addr" toml:"addr"`
	CatalogDir   string `json:"catalog_dir" yaml:"catalog_dir" toml:"catalog_dir"`
	WatchCatalog bool   `json:"watch_catalog" yaml:"watch_catalog" toml:"watch_catalog"`
	AssetBaseURL string `json:"asset_base_url" yaml:"asset_base_url" toml:"asset_base_url"`

	MaxWarmScenes        int      `json:"max_warm_scenes" yaml:"max_warm_scenes" toml:"max_warm_scenes"`
	WarmTTLSeconds       int      `json:"warm_ttl_seconds" yaml:"warm_ttl_seconds" toml:"warm_ttl_seconds"`
	SweepIntervalSeconds int      `json:"sweep_interval_seconds" yaml:"sweep_interval_seconds" toml:"sweep_interval_seconds"`
	PreloadStrategy      string   `json:"preload_strategy" yaml:"preload_strategy" toml:"preload_strategy"`
	PreloadToolsets      []string `json:"preload_toolsets" yaml:"preload_toolsets" toml:"preload_toolsets"`
	MaxConcurrentRenders int      `json:"max_concurrent_renders" yaml:"max_concurrent_renders" toml:"max_concurrent_renders"`
	RenderQueueWaitMS    int      `json:"render_queue_wait_ms" yaml:"render_queue_wait_ms" toml:"render_queue_wait_ms"`

	LogLevel  string `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat string `json:"log_format" yaml:"log_format" toml:"log_format"`

	CORSEnabled  bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSOrigins  []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
	CORSMethods  []string `json:"cors_methods" yaml:"cors_methods" toml:"cors_methods"`
	CORSHeaders  []string `json:"cors_headers" yaml:"cors_headers" toml:"cors_headers"`
	MaxBodyBytes int64    `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, cfg.Validate()
}

// Validate rejects values that are set but out of range.
func (c Config) Validate() error {
	if c.MaxWarmScenes < 0 {
		return fmt.Errorf("max_warm_scenes must be >= 0, got %d", c.MaxWarmScenes)
	}
	if c.WarmTTLSeconds < 0 {
		return fmt.Errorf("warm_ttl_seconds must be >= 0, got %d", c.WarmTTLSeconds)
	}
	if c.SweepIntervalSeconds < 0 {
		return fmt.Errorf("sweep_interval_seconds must be >= 0, got %d", c.SweepIntervalSeconds)
	}
	if c.MaxConcurrentRenders < 0 {
		return fmt.Errorf("max_concurrent_renders must be >= 0, got %d", c.MaxConcurrentRenders)
	}
	if c.RenderQueueWaitMS < 0 {
		return fmt.Errorf("render_queue_wait_ms must be >= 0, got %d", c.RenderQueueWaitMS)
	}
	switch c.PreloadStrategy {
	case "", "immediate", "proximity", "on-demand":
	default:
		return fmt.Errorf("unknown preload_strategy %q", c.PreloadStrategy)
	}
	switch c.LogFormat {
	case "", "json", "console":
	default:
		return fmt.Errorf("unknown log_format %q", c.LogFormat)
	}
	return nil
}
